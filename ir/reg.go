package ir

import "fmt"

// Reg is a Maxwell general purpose register index. RegRZ reads as zero and
// discards writes.
type Reg uint8

const (
	Reg0  Reg = 0
	RegRZ Reg = 255
)

// Offset returns the register count positions after r.
func (r Reg) Offset(n int) Reg {
	return Reg(int(r) + n)
}

func (r Reg) String() string {
	if r == RegRZ {
		return "RZ"
	}
	return fmt.Sprintf("R%d", uint8(r))
}

// Pred is a Maxwell predicate register index. PredPT is always true.
type Pred uint8

const (
	Pred0  Pred = 0
	PredPT Pred = 7
)

func (p Pred) String() string {
	if p == PredPT {
		return "PT"
	}
	return fmt.Sprintf("P%d", uint8(p))
}

// NumRegs and NumPreds bound the SSA rewrite's per-block definition tables.
// The flag variables follow the architectural registers in the same table.
const (
	NumRegs  = 256
	NumPreds = 8
)

// FlowTest is the condition-code test a branch or EXIT can be guarded by.
type FlowTest uint8

const (
	FlowTestT FlowTest = iota // always pass
	FlowTestF                 // never pass
	FlowTestEQ
	FlowTestNE
	FlowTestLT
	FlowTestLE
	FlowTestGT
	FlowTestGE
)
