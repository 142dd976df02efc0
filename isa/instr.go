package isa

// Op names every decoded mnemonic this simulator implements, plus the two
// sentinels Illegal and Custom. It is the closed enumeration spec.md
// describes for the decoded-instruction tag.
type Op int

const (
	OpIllegal Op = iota
	OpCustom

	// RV32I
	OpLui
	OpAuipc
	OpJal
	OpJalr
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpFence
	OpFenceI
	OpEcall
	OpEbreak

	// RV32M
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	// Zicsr
	OpCsrrw
	OpCsrrs
	OpCsrrc
	OpCsrrwi
	OpCsrrsi
	OpCsrrci

	// Privileged
	OpMret
	OpSret
	OpWfi

	// RV32F
	OpFlw
	OpFsw
	OpFmaddS
	OpFmsubS
	OpFnmsubS
	OpFnmaddS
	OpFaddS
	OpFsubS
	OpFmulS
	OpFdivS
	OpFsqrtS
	OpFsgnjS
	OpFsgnjnS
	OpFsgnjxS
	OpFminS
	OpFmaxS
	OpFcvtWS
	OpFcvtWuS
	OpFmvXW
	OpFeqS
	OpFltS
	OpFleS
	OpFclassS
	OpFcvtSW
	OpFcvtSWu
	OpFmvWX
)

// Instr is the decoded-instruction record. Only the fields relevant to Op
// are meaningful; the rest are left at their zero value. This flat-struct
// shape (rather than one Go type per variant) is the common idiom this
// simulator's domain corpus uses for a closed instruction union.
type Instr struct {
	Op  Op
	Raw uint32

	Rd, Rs1, Rs2, Rs3 uint8
	Imm               int32
	Shamt             uint8
	Csr               uint16
	Zimm              uint8
	Rm                uint8

	// CustomOpcode/CustomExt are populated only for OpCustom, an escape
	// hatch for extension prototyping that every in-tree executor treats
	// as illegal.
	CustomOpcode uint32
	CustomExt    string
}

// Decoded pairs a raw word with its decoded form.
type Decoded struct {
	Raw   uint32
	Instr Instr
}

// Illegal builds the Illegal sentinel record for a raw word.
func Illegal(raw uint32) Decoded {
	return Decoded{Raw: raw, Instr: Instr{Op: OpIllegal, Raw: raw}}
}
