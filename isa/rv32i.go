package isa

// RV32I is the base integer instruction table (41 entries):
// 10 R-type ALU, 9 I-type ALU (3 of them shift-immediates keyed on funct7),
// 5 loads, 3 stores, 6 branches, LUI/AUIPC/JAL/JALR, FENCE, FENCE.I, ECALL,
// EBREAK.
var RV32I = []Def{
	// R-type ALU (OP, funct3+funct7 select).
	{"add", MaskR, opOp | f3(0x0) | f7(0x00), buildR(OpAdd)},
	{"sub", MaskR, opOp | f3(0x0) | f7(0x20), buildR(OpSub)},
	{"sll", MaskR, opOp | f3(0x1) | f7(0x00), buildR(OpSll)},
	{"slt", MaskR, opOp | f3(0x2) | f7(0x00), buildR(OpSlt)},
	{"sltu", MaskR, opOp | f3(0x3) | f7(0x00), buildR(OpSltu)},
	{"xor", MaskR, opOp | f3(0x4) | f7(0x00), buildR(OpXor)},
	{"srl", MaskR, opOp | f3(0x5) | f7(0x00), buildR(OpSrl)},
	{"sra", MaskR, opOp | f3(0x5) | f7(0x20), buildR(OpSra)},
	{"or", MaskR, opOp | f3(0x6) | f7(0x00), buildR(OpOr)},
	{"and", MaskR, opOp | f3(0x7) | f7(0x00), buildR(OpAnd)},

	// I-type ALU (OP-IMM, funct3 selects; shifts additionally key on funct7).
	{"addi", MaskIBranchOrStore, opOpImm | f3(0x0), buildI(OpAddi)},
	{"slti", MaskIBranchOrStore, opOpImm | f3(0x2), buildI(OpSlti)},
	{"sltiu", MaskIBranchOrStore, opOpImm | f3(0x3), buildI(OpSltiu)},
	{"xori", MaskIBranchOrStore, opOpImm | f3(0x4), buildI(OpXori)},
	{"ori", MaskIBranchOrStore, opOpImm | f3(0x6), buildI(OpOri)},
	{"andi", MaskIBranchOrStore, opOpImm | f3(0x7), buildI(OpAndi)},
	{"slli", MaskShift, opOpImm | f3(0x1) | f7(0x00), buildShift(OpSlli)},
	{"srli", MaskShift, opOpImm | f3(0x5) | f7(0x00), buildShift(OpSrli)},
	{"srai", MaskShift, opOpImm | f3(0x5) | f7(0x20), buildShift(OpSrai)},

	// Loads.
	{"lb", MaskIBranchOrStore, opLoad | f3(0x0), buildI(OpLb)},
	{"lh", MaskIBranchOrStore, opLoad | f3(0x1), buildI(OpLh)},
	{"lw", MaskIBranchOrStore, opLoad | f3(0x2), buildI(OpLw)},
	{"lbu", MaskIBranchOrStore, opLoad | f3(0x4), buildI(OpLbu)},
	{"lhu", MaskIBranchOrStore, opLoad | f3(0x5), buildI(OpLhu)},

	// Stores.
	{"sb", MaskIBranchOrStore, opStore | f3(0x0), buildS(OpSb)},
	{"sh", MaskIBranchOrStore, opStore | f3(0x1), buildS(OpSh)},
	{"sw", MaskIBranchOrStore, opStore | f3(0x2), buildS(OpSw)},

	// Branches.
	{"beq", MaskIBranchOrStore, opBranch | f3(0x0), buildB(OpBeq)},
	{"bne", MaskIBranchOrStore, opBranch | f3(0x1), buildB(OpBne)},
	{"blt", MaskIBranchOrStore, opBranch | f3(0x4), buildB(OpBlt)},
	{"bge", MaskIBranchOrStore, opBranch | f3(0x5), buildB(OpBge)},
	{"bltu", MaskIBranchOrStore, opBranch | f3(0x6), buildB(OpBltu)},
	{"bgeu", MaskIBranchOrStore, opBranch | f3(0x7), buildB(OpBgeu)},

	// U/J-type and jumps.
	{"lui", MaskUJ, opLui, buildU(OpLui)},
	{"auipc", MaskUJ, opAuipc, buildU(OpAuipc)},
	{"jal", MaskUJ, opJal, buildJ(OpJal)},
	{"jalr", MaskIBranchOrStore, opJalr | f3(0x0), buildI(OpJalr)},

	// Fences and environment calls.
	{"fence", MaskIBranchOrStore, opMiscMem | f3(0x0), buildNoOperand(OpFence)},
	{"fence.i", MaskIBranchOrStore, opMiscMem | f3(0x1), buildNoOperand(OpFenceI)},
	{"ecall", MaskExact, 0x00000073, buildNoOperand(OpEcall)},
	{"ebreak", MaskExact, 0x00100073, buildNoOperand(OpEbreak)},
}

func f3(v uint32) uint32 { return v << 12 }
func f7(v uint32) uint32 { return v << 25 }

func buildR(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Rs2: Rs2(raw)}
	}
}

func buildI(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Imm: ImmI(raw)}
	}
}

func buildShift(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Shamt: Shamt(raw)}
	}
}

func buildS(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rs1: Rs1(raw), Rs2: Rs2(raw), Imm: ImmS(raw)}
	}
}

func buildB(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rs1: Rs1(raw), Rs2: Rs2(raw), Imm: ImmB(raw)}
	}
}

func buildU(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Imm: ImmU(raw)}
	}
}

func buildJ(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Imm: ImmJ(raw)}
	}
}

func buildNoOperand(op Op) func(uint32) Instr {
	return func(raw uint32) Instr { return Instr{Op: op, Raw: raw} }
}

// NewRV32IDecoder returns a Decoder serving the base table. It allows
// opcode overlap because OP is shared with RV32M and SYSTEM is shared with
// Zicsr and the privileged table; none of those tables' entries actually
// collide with RV32I's (disjoint funct7/exact-match patterns), so the
// shared bucket never produces an ambiguous match at runtime.
func NewRV32IDecoder() Decoder {
	return newTableDecoder("rv32i", RV32I, true)
}
