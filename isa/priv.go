package isa

// Priv is the privileged-instruction table (3 entries per spec.md §4.C):
// MRET, SRET, WFI. All are exact-match SYSTEM-opcode words with funct3=0 and
// rd=rs1=0, distinguished only by the funct7/rs2 fields.
var Priv = []Def{
	{"mret", MaskExact, 0x30200073, buildNoOperand(OpMret)},
	{"sret", MaskExact, 0x10200073, buildNoOperand(OpSret)},
	{"wfi", MaskExact, 0x10500073, buildNoOperand(OpWfi)},
}

// NewPrivDecoder returns a Decoder for the privileged table, sharing the
// SYSTEM opcode with RV32I's ECALL/EBREAK and Zicsr.
func NewPrivDecoder() Decoder {
	return newTableDecoder("priv", Priv, true)
}
