package isa

func buildCsr(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Csr: CsrAddr(raw)}
	}
}

func buildCsrImm(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Zimm: CsrZimm(raw), Csr: CsrAddr(raw)}
	}
}

// Zicsr is the control-and-status-register table (6 entries per spec.md
// §4.C), all sharing the SYSTEM opcode, discriminated by funct3.
var Zicsr = []Def{
	{"csrrw", MaskIBranchOrStore, opSystem | f3(0x1), buildCsr(OpCsrrw)},
	{"csrrs", MaskIBranchOrStore, opSystem | f3(0x2), buildCsr(OpCsrrs)},
	{"csrrc", MaskIBranchOrStore, opSystem | f3(0x3), buildCsr(OpCsrrc)},
	{"csrrwi", MaskIBranchOrStore, opSystem | f3(0x5), buildCsrImm(OpCsrrwi)},
	{"csrrsi", MaskIBranchOrStore, opSystem | f3(0x6), buildCsrImm(OpCsrrsi)},
	{"csrrci", MaskIBranchOrStore, opSystem | f3(0x7), buildCsrImm(OpCsrrci)},
}

// NewZicsrDecoder returns a Decoder for the CSR table. SYSTEM is shared with
// RV32I's ECALL/EBREAK (exact-match, funct3=0) and the privileged table
// (exact-match, funct3=0), neither of which overlaps funct3 1-7.
func NewZicsrDecoder() Decoder {
	return newTableDecoder("zicsr", Zicsr, true)
}
