// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/maxwell/ir"
)

// Plain 32-bit integer atomics map straight onto the GLSL builtins. The
// rest (signed min/max on the uint backed arrays, wrapping inc/dec, the
// float forms) go through atomicCompSwap loops, and the 64-bit forms fall
// back to non-atomic word pairs since the arrays are declared as uint.

var atomicBuiltins = map[ir.Opcode]string{
	ir.OpSharedAtomicIAdd32:      "atomicAdd",
	ir.OpSharedAtomicUMin32:      "atomicMin",
	ir.OpSharedAtomicUMax32:      "atomicMax",
	ir.OpSharedAtomicAnd32:       "atomicAnd",
	ir.OpSharedAtomicOr32:        "atomicOr",
	ir.OpSharedAtomicXor32:       "atomicXor",
	ir.OpSharedAtomicExchange32:  "atomicExchange",
	ir.OpStorageAtomicIAdd32:     "atomicAdd",
	ir.OpStorageAtomicUMin32:     "atomicMin",
	ir.OpStorageAtomicUMax32:     "atomicMax",
	ir.OpStorageAtomicAnd32:      "atomicAnd",
	ir.OpStorageAtomicOr32:       "atomicOr",
	ir.OpStorageAtomicXor32:      "atomicXor",
	ir.OpStorageAtomicExchange32: "atomicExchange",
	ir.OpGlobalAtomicIAdd32:      "atomicAdd",
	ir.OpGlobalAtomicUMin32:      "atomicMin",
	ir.OpGlobalAtomicUMax32:      "atomicMax",
	ir.OpGlobalAtomicAnd32:       "atomicAnd",
	ir.OpGlobalAtomicOr32:        "atomicOr",
	ir.OpGlobalAtomicXor32:       "atomicXor",
	ir.OpGlobalAtomicExchange32:  "atomicExchange",
}

// casKind describes one compare and swap loop body. The expr computes the
// replacement word from the current word "old" and the operand "value".
type casKind struct {
	name string
	typ  string // GLSL operand and return type
	expr string // replacement word
	ret  string // result conversion from the old word
}

var casKinds = map[ir.Opcode]casKind{
	ir.OpSharedAtomicSMin32:     {"smin", "uint", "uint(min(int(old), int(value)))", "old"},
	ir.OpSharedAtomicSMax32:     {"smax", "uint", "uint(max(int(old), int(value)))", "old"},
	ir.OpSharedAtomicInc32:      {"inc", "uint", "old >= value ? 0u : old + 1u", "old"},
	ir.OpSharedAtomicDec32:      {"dec", "uint", "(old == 0u || old > value) ? value : old - 1u", "old"},
	ir.OpStorageAtomicSMin32:    {"smin", "uint", "uint(min(int(old), int(value)))", "old"},
	ir.OpStorageAtomicSMax32:    {"smax", "uint", "uint(max(int(old), int(value)))", "old"},
	ir.OpStorageAtomicInc32:     {"inc", "uint", "old >= value ? 0u : old + 1u", "old"},
	ir.OpStorageAtomicDec32:     {"dec", "uint", "(old == 0u || old > value) ? value : old - 1u", "old"},
	ir.OpStorageAtomicAddF32:    {"fadd", "float", "ftou(utof(old) + value)", "utof(old)"},
	ir.OpStorageAtomicAddF16x2:  {"hadd2", "f16vec2", "packFloat2x16(unpackFloat2x16(old) + value)", "unpackFloat2x16(old)"},
	ir.OpStorageAtomicMinF16x2:  {"hmin2", "f16vec2", "packFloat2x16(min(unpackFloat2x16(old), value))", "unpackFloat2x16(old)"},
	ir.OpStorageAtomicMaxF16x2:  {"hmax2", "f16vec2", "packFloat2x16(max(unpackFloat2x16(old), value))", "unpackFloat2x16(old)"},
	ir.OpGlobalAtomicSMin32:     {"smin", "uint", "uint(min(int(old), int(value)))", "old"},
	ir.OpGlobalAtomicSMax32:     {"smax", "uint", "uint(max(int(old), int(value)))", "old"},
	ir.OpGlobalAtomicInc32:      {"inc", "uint", "old >= value ? 0u : old + 1u", "old"},
	ir.OpGlobalAtomicDec32:      {"dec", "uint", "(old == 0u || old > value) ? value : old - 1u", "old"},
	ir.OpGlobalAtomicAddF32:     {"fadd", "float", "ftou(utof(old) + value)", "utof(old)"},
	ir.OpGlobalAtomicAddF16x2:   {"hadd2", "f16vec2", "packFloat2x16(unpackFloat2x16(old) + value)", "unpackFloat2x16(old)"},
	ir.OpGlobalAtomicMinF16x2:   {"hmin2", "f16vec2", "packFloat2x16(min(unpackFloat2x16(old), value))", "unpackFloat2x16(old)"},
	ir.OpGlobalAtomicMaxF16x2:   {"hmax2", "f16vec2", "packFloat2x16(max(unpackFloat2x16(old), value))", "unpackFloat2x16(old)"},
}

// atomic64Exprs computes a 64-bit replacement from o and v, both uint64_t.
var atomic64Exprs = map[ir.Opcode]string{
	ir.OpSharedAtomicExchange64:  "v",
	ir.OpStorageAtomicIAdd64:     "o + v",
	ir.OpStorageAtomicSMin64:     "uint64_t(min(int64_t(o), int64_t(v)))",
	ir.OpStorageAtomicUMin64:     "min(o, v)",
	ir.OpStorageAtomicSMax64:     "uint64_t(max(int64_t(o), int64_t(v)))",
	ir.OpStorageAtomicUMax64:     "max(o, v)",
	ir.OpStorageAtomicAnd64:      "o & v",
	ir.OpStorageAtomicOr64:       "o | v",
	ir.OpStorageAtomicXor64:      "o ^ v",
	ir.OpStorageAtomicExchange64: "v",
	ir.OpGlobalAtomicIAdd64:      "o + v",
	ir.OpGlobalAtomicSMin64:      "uint64_t(min(int64_t(o), int64_t(v)))",
	ir.OpGlobalAtomicUMin64:      "min(o, v)",
	ir.OpGlobalAtomicSMax64:      "uint64_t(max(int64_t(o), int64_t(v)))",
	ir.OpGlobalAtomicUMax64:      "max(o, v)",
	ir.OpGlobalAtomicAnd64:       "o & v",
	ir.OpGlobalAtomicOr64:        "o | v",
	ir.OpGlobalAtomicXor64:       "o ^ v",
	ir.OpGlobalAtomicExchange64:  "v",
}

func atomicFamily(op ir.Opcode) (family string, ok bool) {
	name := op.String()
	switch {
	case strings.HasPrefix(name, "SharedAtomic"):
		return "shared", true
	case strings.HasPrefix(name, "StorageAtomic"):
		return "storage", true
	case strings.HasPrefix(name, "GlobalAtomic"):
		return "global", true
	}
	return "", false
}

func (w *writer) emitAtomic(inst *ir.Inst) bool {
	family, ok := atomicFamily(inst.Opcode())
	if !ok {
		return false
	}
	switch family {
	case "shared":
		w.sharedAtomic(inst)
	case "storage":
		w.storageAtomic(inst)
	case "global":
		w.globalAtomic(inst)
	}
	return true
}

func (w *writer) sharedAtomic(inst *ir.Inst) {
	op := inst.Opcode()
	offset := w.val(inst.Arg(0))
	value := w.val(inst.Arg(1))
	if fn, ok := atomicBuiltins[op]; ok {
		w.write(inst, "%s(smem[%s >> 2u], %s)", fn, offset, value)
		return
	}
	if k, ok := casKinds[op]; ok {
		w.write(inst, "%s(%s, %s)", w.sharedCasHelper(k), offset, value)
		return
	}
	if op == ir.OpSharedAtomicExchange64 {
		w.write(inst, "%s(%s, %s)", w.sharedExchange64Helper(), offset, value)
		return
	}
	w.failf("%v", op)
}

func (w *writer) storageAtomic(inst *ir.Inst) {
	op := inst.Opcode()
	binding := w.ssboBinding(inst)
	ssbo := fmt.Sprintf("%s_ssbo%d", w.prefix, binding)
	offset := w.val(inst.Arg(1))
	value := w.val(inst.Arg(2))
	if fn, ok := atomicBuiltins[op]; ok {
		w.write(inst, "%s(%s[%s >> 2u], %s)", fn, ssbo, offset, value)
		return
	}
	if k, ok := casKinds[op]; ok {
		w.write(inst, "%s(%s, %s)", w.ssboCasHelper(binding, k), offset, value)
		return
	}
	if expr, ok := atomic64Exprs[op]; ok {
		w.write(inst, "%s(%s, %s)", w.ssbo64Helper(binding, op, expr), offset, value)
		return
	}
	w.failf("%v", op)
}

func (w *writer) globalAtomic(inst *ir.Inst) {
	op := inst.Opcode()
	addr := w.val(inst.Arg(0))
	value := w.val(inst.Arg(1))
	if fn, ok := atomicBuiltins[op]; ok {
		w.write(inst, "%s(%s, %s)", w.globalDirectHelper(op, fn), addr, value)
		return
	}
	if k, ok := casKinds[op]; ok {
		w.write(inst, "%s(%s, %s)", w.globalCasHelper(k), addr, value)
		return
	}
	if expr, ok := atomic64Exprs[op]; ok {
		w.write(inst, "%s(%s, %s)", w.global64Helper(op, expr), addr, value)
		return
	}
	w.failf("%v", op)
}

func (w *writer) sharedCasHelper(k casKind) string {
	name := "smem_cas_" + k.name
	body := fmt.Sprintf(`%[1]s %[2]s(uint offset, %[1]s value) {
    uint old;
    do { old = smem[offset >> 2u]; }
    while (atomicCompSwap(smem[offset >> 2u], old, %[3]s) != old);
    return %[4]s;
}
`, k.typ, name, k.expr, k.ret)
	return w.helper(name, body)
}

func (w *writer) ssboCasHelper(binding uint32, k casKind) string {
	ssbo := fmt.Sprintf("%s_ssbo%d", w.prefix, binding)
	name := fmt.Sprintf("%s_cas_%s", ssbo, k.name)
	body := fmt.Sprintf(`%[1]s %[2]s(uint offset, %[1]s value) {
    uint old;
    do { old = %[3]s[offset >> 2u]; }
    while (atomicCompSwap(%[3]s[offset >> 2u], old, %[4]s) != old);
    return %[5]s;
}
`, k.typ, name, ssbo, k.expr, k.ret)
	return w.helper(name, body)
}

func (w *writer) sharedExchange64Helper() string {
	return w.helper("smem_xchg64", `uvec2 smem_xchg64(uint offset, uvec2 value) {
    uvec2 old = uvec2(smem[offset >> 2u], smem[(offset >> 2u) + 1u]);
    smem[offset >> 2u] = value.x;
    smem[(offset >> 2u) + 1u] = value.y;
    return old;
}
`)
}

func (w *writer) ssbo64Helper(binding uint32, op ir.Opcode, expr string) string {
	ssbo := fmt.Sprintf("%s_ssbo%d", w.prefix, binding)
	name := fmt.Sprintf("%s_%s", ssbo, casName64(op))
	body := fmt.Sprintf(`uvec2 %[1]s(uint offset, uvec2 value) {
    uvec2 old = uvec2(%[2]s[offset >> 2u], %[2]s[(offset >> 2u) + 1u]);
    uint64_t o = packUint2x32(old);
    uint64_t v = packUint2x32(value);
    uvec2 repl = unpackUint2x32(%[3]s);
    %[2]s[offset >> 2u] = repl.x;
    %[2]s[(offset >> 2u) + 1u] = repl.y;
    return old;
}
`, name, ssbo, expr)
	return w.helper(name, body)
}

// casName64 derives a stable helper suffix from the opcode name.
func casName64(op ir.Opcode) string {
	name := op.String()
	// Strip the family prefix, keep e.g. "IAdd64" as "iadd64".
	for _, prefix := range []string{"SharedAtomic", "StorageAtomic", "GlobalAtomic"} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			name = name[len(prefix):]
			break
		}
	}
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// globalDirectHelper scans the writable storage buffer windows and applies
// the builtin inside the one containing the pointer.
func (w *writer) globalDirectHelper(op ir.Opcode, fn string) string {
	name := "ga_" + casName64(op)
	body := fmt.Sprintf("uint %s(uint64_t addr, uint value) {\n    uint64_t base;\n", name)
	for i := range w.p.Info.StorageBuffers {
		d := &w.p.Info.StorageBuffers[i]
		if !d.IsWritten {
			continue
		}
		body += fmt.Sprintf("    base = %s;\n", w.ssboBaseExpr(d))
		body += fmt.Sprintf("    if (addr >= base && addr < base + uint64_t(%s)) {\n", w.ssboSizeExpr(d))
		body += fmt.Sprintf("        return %s(%s_ssbo%d[uint(addr - base) >> 2u], value);\n",
			fn, w.prefix, i)
		body += "    }\n"
	}
	body += "    return 0u;\n}\n"
	return w.helper(name, body)
}

func (w *writer) globalCasHelper(k casKind) string {
	name := "ga_cas_" + k.name
	body := fmt.Sprintf("%[1]s %[2]s(uint64_t addr, %[1]s value) {\n    uint64_t base;\n", k.typ, name)
	for i := range w.p.Info.StorageBuffers {
		d := &w.p.Info.StorageBuffers[i]
		if !d.IsWritten {
			continue
		}
		body += fmt.Sprintf("    base = %s;\n", w.ssboBaseExpr(d))
		body += fmt.Sprintf("    if (addr >= base && addr < base + uint64_t(%s)) {\n", w.ssboSizeExpr(d))
		body += fmt.Sprintf("        return %s(uint(addr - base), value);\n", w.ssboCasHelper(uint32(i), k))
		body += "    }\n"
	}
	zero := "0u"
	if k.typ == "float" {
		zero = "0.0"
	} else if k.typ == "f16vec2" {
		zero = "f16vec2(0.0)"
	}
	body += fmt.Sprintf("    return %s;\n}\n", zero)
	return w.helper(name, body)
}

func (w *writer) global64Helper(op ir.Opcode, expr string) string {
	name := "ga_" + casName64(op)
	load := w.globalLoadHelper(64)
	store := w.globalWriteHelper(64)
	body := fmt.Sprintf(`uvec2 %s(uint64_t addr, uvec2 value) {
    uvec2 old = %s(addr);
    uint64_t o = packUint2x32(old);
    uint64_t v = packUint2x32(value);
    %s(addr, unpackUint2x32(%s));
    return old;
}
`, name, load, store, expr)
	return w.helper(name, body)
}
