// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// stagePrefixes names the per-stage identifier prefix used for buffer and
// varying declarations, indexed by shader.Stage.
var stagePrefixes = [...]string{"vs", "vs", "tcs", "tes", "gs", "fs", "cs"}

type writer struct {
	p       *ir.Program
	env     shader.Environment
	profile *shader.Profile
	rt      *shader.RuntimeInfo

	header strings.Builder
	body   strings.Builder
	indent int

	// names maps an instruction to its temporary, counts runs one counter
	// per temporary class, decls collects the grouped declarations emitted
	// at the top of main.
	names  map[*ir.Inst]string
	counts map[string]int
	decls  map[string][]string

	// helpers holds function definitions keyed by name, emitted sorted
	// between the declarations and main.
	helpers map[string]string

	// done marks instructions a consumer already rendered inline, such as
	// pseudo results written next to their carrying operation.
	done map[*ir.Inst]bool

	loopID    int
	loopStack []int

	// carryDeclared and shuffleDeclared track the shared scratch slots
	// used by uaddCarry/usubBorrow and the SHFL lane computations.
	// imageCasDeclared covers the imageAtomicCompSwap loop temporaries.
	carryDeclared    bool
	shuffleDeclared  bool
	imageCasDeclared bool

	prefix string
	err    error
}

func newWriter(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) *writer {
	return &writer{
		p:       p,
		env:     env,
		profile: profile,
		rt:      rt,
		names:   map[*ir.Inst]string{},
		counts:  map[string]int{},
		decls:   map[string][]string{},
		helpers: map[string]string{},
		done:    map[*ir.Inst]bool{},
		prefix:  stagePrefixes[p.Stage],
	}
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) failf(format string, args ...any) {
	w.fail(shader.NotImplemented(format, args...))
}

// line writes one indented statement into the body.
func (w *writer) line(format string, args ...any) {
	for i := 0; i < w.indent; i++ {
		w.body.WriteString("    ")
	}
	fmt.Fprintf(&w.body, format, args...)
	w.body.WriteByte('\n')
}

// write assigns an expression to the instruction's temporary.
func (w *writer) write(inst *ir.Inst, format string, args ...any) {
	w.line("%s = %s;", w.name(inst), fmt.Sprintf(format, args...))
}

// discard renders a statement with no result.
func (w *writer) discard(format string, args ...any) {
	w.line(format+";", args...)
}

// Temporary classes, keyed by result type. The second field is the name
// prefix; every class gets its own counter so the text stays readable.

type varClass struct {
	glsl   string
	prefix string
}

var varClasses = map[ir.Type]varClass{
	ir.TypeU1:    {"bool", "b"},
	ir.TypeU8:    {"uint", "u"},
	ir.TypeU16:   {"uint", "u"},
	ir.TypeU32:   {"uint", "u"},
	ir.TypeU64:   {"uint64_t", "ul"},
	ir.TypeF16:   {"float16_t", "h"},
	ir.TypeF32:   {"float", "f"},
	ir.TypeF64:   {"double", "d"},
	ir.TypeU32x2: {"uvec2", "u2_"},
	ir.TypeU32x3: {"uvec3", "u3_"},
	ir.TypeU32x4: {"uvec4", "u4_"},
	ir.TypeF16x2: {"f16vec2", "h2_"},
	ir.TypeF32x2: {"vec2", "f2_"},
	ir.TypeF32x3: {"vec3", "f3_"},
	ir.TypeF32x4: {"vec4", "f4_"},
	ir.TypeF64x2: {"dvec2", "d2_"},
}

// name returns the temporary holding the instruction's result, allocating
// it on first use. Phi nodes are named ahead of the walk so moves can
// reference them before their defining block is reached.
func (w *writer) name(inst *ir.Inst) string {
	if n, ok := w.names[inst]; ok {
		return n
	}
	t := inst.ResultType()
	c, ok := varClasses[t]
	if !ok {
		w.fail(shader.Logic("no temporary class for %v result of %v", t, inst.Opcode()))
		return "0"
	}
	glsl, prefix := c.glsl, c.prefix
	if w.precise(inst) {
		glsl = "precise " + glsl
		prefix = "p" + prefix
	}
	id := w.counts[prefix]
	w.counts[prefix] = id + 1
	n := fmt.Sprintf("%s%d", prefix, id)
	w.decls[glsl] = append(w.decls[glsl], n)
	w.names[inst] = n
	return n
}

func (w *writer) precise(inst *ir.Inst) bool {
	if w.profile.HasGLPreciseBug && w.p.Stage == shader.StageFragment {
		return false
	}
	if !inst.FpControl().NoContraction {
		return false
	}
	t := inst.ResultType()
	return t == ir.TypeF32 || t == ir.TypeF64 || t == ir.TypeF32x2
}

// val renders a value as a GLSL expression.
func (w *writer) val(v ir.Value) string {
	v = v.Resolve()
	if inst := v.Inst(); inst != nil {
		return w.name(inst)
	}
	switch v.Type() {
	case ir.TypeU1:
		if v.U1() {
			return "true"
		}
		return "false"
	case ir.TypeU8:
		return immU32(uint32(v.U8()))
	case ir.TypeU16:
		return immU32(uint32(v.U16()))
	case ir.TypeU32:
		return immU32(v.U32())
	case ir.TypeU64:
		return fmt.Sprintf("0x%xul", v.U64())
	case ir.TypeF16:
		return fmt.Sprintf("float16_t(%s)", immF32(f16ToF32(v.F16Bits())))
	case ir.TypeF32:
		return immF32(v.F32())
	case ir.TypeF64:
		return immF64(v.F64())
	default:
		w.fail(shader.Logic("%v value reached the backend", v))
		return "0u"
	}
}

func immU32(v uint32) string {
	if v < 10 {
		return fmt.Sprintf("%du", v)
	}
	return fmt.Sprintf("0x%xu", v)
}

func immF32(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return fmt.Sprintf("utof(0x%xu)", math.Float32bits(f))
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func immF64(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		bits := math.Float64bits(f)
		return fmt.Sprintf("packDouble2x32(uvec2(0x%xu, 0x%xu))", uint32(bits), uint32(bits>>32))
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s + "lf"
}

func f16ToF32(bits uint16) float32 {
	sign := uint32(bits>>15) << 31
	exp := uint32(bits >> 10 & 0x1f)
	mant := uint32(bits & 0x3ff)
	switch {
	case exp == 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal half, normal float.
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		return math.Float32frombits(sign | (exp+1+127-15)<<23 | (mant&0x3ff)<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
	}
}

// helper registers a function definition once and returns its name.
func (w *writer) helper(name, def string) string {
	if _, ok := w.helpers[name]; !ok {
		w.helpers[name] = def
	}
	return name
}

// carryName returns the shared scratch for uaddCarry and usubBorrow
// results, declaring it on first use.
func (w *writer) carryName() string {
	if !w.carryDeclared {
		w.carryDeclared = true
		w.decls["uint"] = append(w.decls["uint"], "carry")
	}
	return "carry"
}

// precolorPhis names every phi and appends a move to each predecessor so
// the walk can render phis as plain temporaries.
func (w *writer) precolorPhis() {
	e := ir.NewEmitter(w.p, nil)
	for _, b := range w.p.Blocks {
		for inst := b.Head(); inst != nil && inst.Opcode() == ir.OpPhi; inst = inst.Next() {
			w.name(inst)
			for n := 0; n < inst.NumArgs(); n++ {
				e.SetBlock(inst.PhiBlock(n))
				e.PhiMove(ir.MakeInst(inst), inst.Arg(n))
			}
		}
	}
}

// assemble stitches header, helpers, and body into the final text.
func (w *writer) assemble() string {
	var out strings.Builder
	out.WriteString(w.versionLine())
	w.writeExtensions(&out)
	out.WriteString("#define ftou floatBitsToUint\n")
	out.WriteString("#define utof uintBitsToFloat\n")
	out.WriteString("#define ftoi floatBitsToInt\n")
	out.WriteString("#define itof intBitsToFloat\n")
	out.WriteString(w.header.String())

	names := make([]string, 0, len(w.helpers))
	for n := range w.helpers {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		out.WriteString(w.helpers[n])
	}

	out.WriteString("void main() {\n")
	types := make([]string, 0, len(w.decls))
	for t := range w.decls {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&out, "    %s %s;\n", t, strings.Join(w.decls[t], ", "))
	}
	if w.p.LocalMemorySize > 0 {
		fmt.Fprintf(&out, "    uint lmem[%d];\n", (w.p.LocalMemorySize+3)/4)
	}
	out.WriteString(w.body.String())
	out.WriteString("}\n")
	return out.String()
}

func (w *writer) versionLine() string {
	if w.usesLegacyVaryings() {
		return "#version 450 compatibility\n"
	}
	return "#version 450\n"
}

func (w *writer) usesLegacyVaryings() bool {
	for a := ir.AttributeFrontDiffuseR; a < ir.NumAttributes; a++ {
		if a.IsLegacy() && (w.p.Info.Loads.Get(uint(a)) || w.p.Info.Stores.Get(uint(a))) {
			return true
		}
	}
	return false
}
