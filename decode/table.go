package decode

// Op identifies one Maxwell instruction form. The R/C/I suffixes mark the
// register, constant buffer, and immediate operand variants of an opcode.
type Op uint16

const (
	InvalidOp Op = iota
	Bra
	Brx
	Jmp
	Jmx
	Cal
	Jcal
	Ret
	Exit
	Kil
	Ssy
	Pbk
	Pcnt
	Pexit
	Plongjmp
	Longjmp
	Sync
	Brk
	Cont
	Nop
	Bar
	Membar
	Depbar
	S2R
	MovR
	MovC
	MovI
	Mov32I
	IAddR
	IAddC
	IAddI
	IAdd32I
	IAdd3R
	IScAddR
	IScAddC
	IScAddI
	FloR
	PopcR
	ShlR
	ShlC
	ShlI
	ShrR
	ShrC
	ShrI
	ImnmxR
	ImnmxC
	ImnmxI
	LopR
	LopC
	LopI
	Lop32I
	Lop3R
	BfeR
	BfeC
	BfeI
	BfiR
	SelR
	SelC
	SelI
	IsetpR
	IsetpC
	IsetpI
	IsetR
	XmadR
	PsetR
	PsetpR
	FAddR
	FAddC
	FAddI
	FAdd32I
	FMulR
	FMulC
	FMulI
	FMul32I
	FFmaR
	FFmaC
	FFmaI
	FmnmxR
	FmnmxC
	FmnmxI
	Mufu
	FsetR
	FsetpR
	FsetpC
	FsetpI
	DAddR
	DMulR
	DFmaR
	Hfma2R
	Hmul2R
	Hadd2R
	Hset2R
	Hsetp2R
	F2FR
	F2FC
	F2FI
	F2IR
	F2IC
	F2II
	I2FR
	I2FC
	I2FI
	I2IR
	I2IC
	I2II
	Ldg
	Stg
	Ldl
	Lds
	Stl
	Sts
	Ldc
	Atom
	Atoms
	Ald
	Ast
	Ipa
	Out
	Tex
	Texs
	Tld
	Tlds
	Tld4
	Tld4s
	Tmml
	Txd
	Txq
	Suld
	Sust
	Suatom
	Shfl
	Vote
	Fswzadd

	numOps
)

// NumOps is the number of decodable instruction forms.
const NumOps = int(numOps) - 1

var opNames = [numOps]string{
	InvalidOp: "INVALID",
	Bra: "BRA",
	Brx: "BRX",
	Jmp: "JMP",
	Jmx: "JMX",
	Cal: "CAL",
	Jcal: "JCAL",
	Ret: "RET",
	Exit: "EXIT",
	Kil: "KIL",
	Ssy: "SSY",
	Pbk: "PBK",
	Pcnt: "PCNT",
	Pexit: "PEXIT",
	Plongjmp: "PLONGJMP",
	Longjmp: "LONGJMP",
	Sync: "SYNC",
	Brk: "BRK",
	Cont: "CONT",
	Nop: "NOP",
	Bar: "BAR",
	Membar: "MEMBAR",
	Depbar: "DEPBAR",
	S2R: "S2R",
	MovR: "MOV_reg",
	MovC: "MOV_cbuf",
	MovI: "MOV_imm",
	Mov32I: "MOV32I",
	IAddR: "IADD_reg",
	IAddC: "IADD_cbuf",
	IAddI: "IADD_imm",
	IAdd32I: "IADD32I",
	IAdd3R: "IADD3_reg",
	IScAddR: "ISCADD_reg",
	IScAddC: "ISCADD_cbuf",
	IScAddI: "ISCADD_imm",
	FloR: "FLO_reg",
	PopcR: "POPC_reg",
	ShlR: "SHL_reg",
	ShlC: "SHL_cbuf",
	ShlI: "SHL_imm",
	ShrR: "SHR_reg",
	ShrC: "SHR_cbuf",
	ShrI: "SHR_imm",
	ImnmxR: "IMNMX_reg",
	ImnmxC: "IMNMX_cbuf",
	ImnmxI: "IMNMX_imm",
	LopR: "LOP_reg",
	LopC: "LOP_cbuf",
	LopI: "LOP_imm",
	Lop32I: "LOP32I",
	Lop3R: "LOP3_reg",
	BfeR: "BFE_reg",
	BfeC: "BFE_cbuf",
	BfeI: "BFE_imm",
	BfiR: "BFI_reg",
	SelR: "SEL_reg",
	SelC: "SEL_cbuf",
	SelI: "SEL_imm",
	IsetpR: "ISETP_reg",
	IsetpC: "ISETP_cbuf",
	IsetpI: "ISETP_imm",
	IsetR: "ISET_reg",
	XmadR: "XMAD_reg",
	PsetR: "PSET",
	PsetpR: "PSETP",
	FAddR: "FADD_reg",
	FAddC: "FADD_cbuf",
	FAddI: "FADD_imm",
	FAdd32I: "FADD32I",
	FMulR: "FMUL_reg",
	FMulC: "FMUL_cbuf",
	FMulI: "FMUL_imm",
	FMul32I: "FMUL32I",
	FFmaR: "FFMA_reg",
	FFmaC: "FFMA_cbuf",
	FFmaI: "FFMA_imm",
	FmnmxR: "FMNMX_reg",
	FmnmxC: "FMNMX_cbuf",
	FmnmxI: "FMNMX_imm",
	Mufu: "MUFU",
	FsetR: "FSET_reg",
	FsetpR: "FSETP_reg",
	FsetpC: "FSETP_cbuf",
	FsetpI: "FSETP_imm",
	DAddR: "DADD_reg",
	DMulR: "DMUL_reg",
	DFmaR: "DFMA_reg",
	Hfma2R: "HFMA2_reg",
	Hmul2R: "HMUL2_reg",
	Hadd2R: "HADD2_reg",
	Hset2R: "HSET2_reg",
	Hsetp2R: "HSETP2_reg",
	F2FR: "F2F_reg",
	F2FC: "F2F_cbuf",
	F2FI: "F2F_imm",
	F2IR: "F2I_reg",
	F2IC: "F2I_cbuf",
	F2II: "F2I_imm",
	I2FR: "I2F_reg",
	I2FC: "I2F_cbuf",
	I2FI: "I2F_imm",
	I2IR: "I2I_reg",
	I2IC: "I2I_cbuf",
	I2II: "I2I_imm",
	Ldg: "LDG",
	Stg: "STG",
	Ldl: "LDL",
	Lds: "LDS",
	Stl: "STL",
	Sts: "STS",
	Ldc: "LDC",
	Atom: "ATOM",
	Atoms: "ATOMS",
	Ald: "ALD",
	Ast: "AST",
	Ipa: "IPA",
	Out: "OUT",
	Tex: "TEX",
	Texs: "TEXS",
	Tld: "TLD",
	Tlds: "TLDS",
	Tld4: "TLD4",
	Tld4s: "TLD4S",
	Tmml: "TMML",
	Txd: "TXD",
	Txq: "TXQ",
	Suld: "SULD",
	Sust: "SUST",
	Suatom: "SUATOM",
	Shfl: "SHFL",
	Vote: "VOTE",
	Fswzadd: "FSWZADD",
}

func (o Op) String() string {
	if o >= numOps {
		return "INVALID"
	}
	return opNames[o]
}

// encodings maps each instruction form to its bit pattern, MSB first.
// '0' and '1' constrain a bit, '-' leaves it free.
var encodings = [...]struct {
	op      Op
	pattern string
}{
	{Bra, "111000100100----------------------------------------------------"},
	{Brx, "111000100101----------------------------------------------------"},
	{Jmp, "111000100001----------------------------------------------------"},
	{Jmx, "111000100000----------------------------------------------------"},
	{Cal, "111000100110----------------------------------------------------"},
	{Jcal, "111000100010----------------------------------------------------"},
	{Ret, "111000110010----------------------------------------------------"},
	{Exit, "111000110000----------------------------------------------------"},
	{Kil, "111000110011----------------------------------------------------"},
	{Ssy, "111000101001----------------------------------------------------"},
	{Pbk, "111000101010----------------------------------------------------"},
	{Pcnt, "111000101011----------------------------------------------------"},
	{Pexit, "111000100011----------------------------------------------------"},
	{Plongjmp, "111000101000----------------------------------------------------"},
	{Longjmp, "111000110001----------------------------------------------------"},
	{Sync, "1111000011111---------------------------------------------------"},
	{Brk, "111101000010----------------------------------------------------"},
	{Cont, "111101000011----------------------------------------------------"},
	{Nop, "0101000010110---------------------------------------------------"},
	{Bar, "1111000010101---------------------------------------------------"},
	{Membar, "1110111110011---------------------------------------------------"},
	{Depbar, "1111000011110---------------------------------------------------"},
	{S2R, "1111000011001---------------------------------------------------"},
	{MovR, "0101110010011---------------------------------------------------"},
	{MovC, "0100110010011---------------------------------------------------"},
	{MovI, "0011100-10011---------------------------------------------------"},
	{Mov32I, "000000010000----------------------------------------------------"},
	{IAddR, "0101110000010---------------------------------------------------"},
	{IAddC, "0100110000010---------------------------------------------------"},
	{IAddI, "0011100-00010---------------------------------------------------"},
	{IAdd32I, "0001110---------------------------------------------------------"},
	{IAdd3R, "010111001100----------------------------------------------------"},
	{IScAddR, "0101110000011---------------------------------------------------"},
	{IScAddC, "0100110000011---------------------------------------------------"},
	{IScAddI, "0011100-00011---------------------------------------------------"},
	{FloR, "0101110000111---------------------------------------------------"},
	{PopcR, "0101110000001---------------------------------------------------"},
	{ShlR, "0101110001001---------------------------------------------------"},
	{ShlC, "0100110001001---------------------------------------------------"},
	{ShlI, "0011100-01001---------------------------------------------------"},
	{ShrR, "0101110000101---------------------------------------------------"},
	{ShrC, "0100110000101---------------------------------------------------"},
	{ShrI, "0011100-00101---------------------------------------------------"},
	{ImnmxR, "0101110000100---------------------------------------------------"},
	{ImnmxC, "0100110000100---------------------------------------------------"},
	{ImnmxI, "0011100-00100---------------------------------------------------"},
	{LopR, "0101110001000---------------------------------------------------"},
	{LopC, "0100110001000---------------------------------------------------"},
	{LopI, "0011100-01000---------------------------------------------------"},
	{Lop32I, "000001----------------------------------------------------------"},
	{Lop3R, "010110111110----------------------------------------------------"},
	{BfeR, "0101110000000---------------------------------------------------"},
	{BfeC, "0100110000000---------------------------------------------------"},
	{BfeI, "0011100-00000---------------------------------------------------"},
	{BfiR, "0101101111110---------------------------------------------------"},
	{SelR, "0101110010100---------------------------------------------------"},
	{SelC, "0100110010100---------------------------------------------------"},
	{SelI, "0011100-10100---------------------------------------------------"},
	{IsetpR, "0101101101100---------------------------------------------------"},
	{IsetpC, "0100101101100---------------------------------------------------"},
	{IsetpI, "0011011-01100---------------------------------------------------"},
	{IsetR, "0101101101010---------------------------------------------------"},
	{XmadR, "0101101100------------------------------------------------------"},
	{PsetR, "0101000010001---------------------------------------------------"},
	{PsetpR, "0101000010010---------------------------------------------------"},
	{FAddR, "0101110001011---------------------------------------------------"},
	{FAddC, "0100110001011---------------------------------------------------"},
	{FAddI, "0011100-01011---------------------------------------------------"},
	{FAdd32I, "000010----------------------------------------------------------"},
	{FMulR, "0101110001101---------------------------------------------------"},
	{FMulC, "0100110001101---------------------------------------------------"},
	{FMulI, "0011100-01101---------------------------------------------------"},
	{FMul32I, "00011110--------------------------------------------------------"},
	{FFmaR, "010110011-------------------------------------------------------"},
	{FFmaC, "010010011-------------------------------------------------------"},
	{FFmaI, "0011001-1-------------------------------------------------------"},
	{FmnmxR, "0101110001100---------------------------------------------------"},
	{FmnmxC, "0100110001100---------------------------------------------------"},
	{FmnmxI, "0011100-01100---------------------------------------------------"},
	{Mufu, "0101000010000---------------------------------------------------"},
	{FsetR, "01011000--------------------------------------------------------"},
	{FsetpR, "0101101110111---------------------------------------------------"},
	{FsetpC, "0100101110111---------------------------------------------------"},
	{FsetpI, "0011011-10111---------------------------------------------------"},
	{DAddR, "0101110001110---------------------------------------------------"},
	{DMulR, "0101110010000---------------------------------------------------"},
	{DFmaR, "010110110111----------------------------------------------------"},
	{Hfma2R, "0101110100000---------------------------------------------------"},
	{Hmul2R, "0101110100001---------------------------------------------------"},
	{Hadd2R, "0101110100010---------------------------------------------------"},
	{Hset2R, "0101110100011---------------------------------------------------"},
	{Hsetp2R, "0101110100100---------------------------------------------------"},
	{F2FR, "0101110010101---------------------------------------------------"},
	{F2FC, "0100110010101---------------------------------------------------"},
	{F2FI, "0011100-10101---------------------------------------------------"},
	{F2IR, "0101110010110---------------------------------------------------"},
	{F2IC, "0100110010110---------------------------------------------------"},
	{F2II, "0011100-10110---------------------------------------------------"},
	{I2FR, "0101110010111---------------------------------------------------"},
	{I2FC, "0100110010111---------------------------------------------------"},
	{I2FI, "0011100-10111---------------------------------------------------"},
	{I2IR, "0101110011100---------------------------------------------------"},
	{I2IC, "0100110011100---------------------------------------------------"},
	{I2II, "0011100-11100---------------------------------------------------"},
	{Ldg, "1110111011010---------------------------------------------------"},
	{Stg, "1110111011011---------------------------------------------------"},
	{Ldl, "1110111101000---------------------------------------------------"},
	{Lds, "1110111101001---------------------------------------------------"},
	{Stl, "1110111101010---------------------------------------------------"},
	{Sts, "1110111101011---------------------------------------------------"},
	{Ldc, "1110111110010---------------------------------------------------"},
	{Atom, "11101101--------------------------------------------------------"},
	{Atoms, "11101100--------------------------------------------------------"},
	{Ald, "1110111111011---------------------------------------------------"},
	{Ast, "1110111111110---------------------------------------------------"},
	{Ipa, "11100000--------------------------------------------------------"},
	{Out, "1111101111100---------------------------------------------------"},
	{Tex, "11000000--------------------------------------------------------"},
	{Texs, "1101100---------------------------------------------------------"},
	{Tld, "11011100--------------------------------------------------------"},
	{Tlds, "1101101---------------------------------------------------------"},
	{Tld4, "11000010--------------------------------------------------------"},
	{Tld4s, "1101111100------------------------------------------------------"},
	{Tmml, "1101111101011---------------------------------------------------"},
	{Txd, "1101111010------------------------------------------------------"},
	{Txq, "1101111101001---------------------------------------------------"},
	{Suld, "11101011000-----------------------------------------------------"},
	{Sust, "11101011001-----------------------------------------------------"},
	{Suatom, "11101010--------------------------------------------------------"},
	{Shfl, "1110111100010---------------------------------------------------"},
	{Vote, "0101000011011---------------------------------------------------"},
	{Fswzadd, "0101000011111---------------------------------------------------"},
}
