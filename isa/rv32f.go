package isa

func buildFR(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Rs2: Rs2(raw), Rm: Rm(raw)}
	}
}

func buildFCmp(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Rs2: Rs2(raw)}
	}
}

func buildFSqrtCvt(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Rm: Rm(raw)}
	}
}

func buildFMoveClass(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw)}
	}
}

func buildF4(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Rs2: Rs2(raw), Rs3: Rs3(raw), Rm: Rm(raw)}
	}
}

func buildFLoad(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rd: Rd(raw), Rs1: Rs1(raw), Imm: ImmI(raw)}
	}
}

func buildFStore(op Op) func(uint32) Instr {
	return func(raw uint32) Instr {
		return Instr{Op: op, Raw: raw, Rs1: Rs1(raw), Rs2: Rs2(raw), Imm: ImmS(raw)}
	}
}

// RV32F is the single-precision floating-point table (26 entries per
// spec.md §4.C, across the LOAD-FP/STORE-FP/MADD/MSUB/NMSUB/NMADD/OP-FP
// opcodes). Family-by-family:
//
//   - FLW/FSW: LOAD-FP/STORE-FP, funct3 fixed to 010 (word).
//   - FMADD.S/FMSUB.S/FNMSUB.S/FNMADD.S: fused multiply-add opcodes, fmt
//     bits [26:25] fixed to 00 (single precision), funct3 carries the
//     dynamic rounding mode, rs3 is the addend/minuend operand.
//   - FADD.S/FSUB.S/FMUL.S/FDIV.S: OP-FP, funct7 selects the operation,
//     rs2 is a real operand, funct3 carries the dynamic rounding mode.
//   - FSQRT.S: OP-FP, funct7=0x2C, rs2 fixed to 00000.
//   - FSGNJ.S/FSGNJN.S/FSGNJX.S: OP-FP, funct7=0x10, funct3 selects variant,
//     rs2 is a real operand.
//   - FMIN.S/FMAX.S: OP-FP, funct7=0x14, funct3 selects variant, rs2 is a
//     real operand.
//   - FCVT.W.S/FCVT.WU.S: OP-FP, funct7=0x60, rs2 selects variant (00000/
//     00001), funct3 carries the dynamic rounding mode.
//   - FMV.X.W/FCLASS.S: OP-FP, funct7=0x70, rs2 fixed to 00000, funct3
//     selects variant (000/001).
//   - FEQ.S/FLT.S/FLE.S: OP-FP, funct7=0x50, funct3 selects variant, rs2 is
//     a real operand.
//   - FCVT.S.W/FCVT.S.WU: OP-FP, funct7=0x68, rs2 selects variant (00000/
//     00001), funct3 carries the dynamic rounding mode.
//   - FMV.W.X: OP-FP, funct7=0x78, rs2 fixed to 00000, funct3 fixed to 000.
var RV32F = []Def{
	{"flw", MaskIBranchOrStore, opLoadFP | f3(0x2), buildFLoad(OpFlw)},
	{"fsw", MaskIBranchOrStore, opStoreFP | f3(0x2), buildFStore(OpFsw)},

	{"fmadd.s", MaskR4, opMadd, buildF4(OpFmaddS)},
	{"fmsub.s", MaskR4, opMsub, buildF4(OpFmsubS)},
	{"fnmsub.s", MaskR4, opNmsub, buildF4(OpFnmsubS)},
	{"fnmadd.s", MaskR4, opNmadd, buildF4(OpFnmaddS)},

	{"fadd.s", MaskFPR, opOpFP | f7(0x00), buildFR(OpFaddS)},
	{"fsub.s", MaskFPR, opOpFP | f7(0x04), buildFR(OpFsubS)},
	{"fmul.s", MaskFPR, opOpFP | f7(0x08), buildFR(OpFmulS)},
	{"fdiv.s", MaskFPR, opOpFP | f7(0x0C), buildFR(OpFdivS)},

	{"fsqrt.s", MaskFPCvt, opOpFP | f7(0x2C) | rs2sel(0x00), buildFSqrtCvt(OpFsqrtS)},

	{"fsgnj.s", MaskR, opOpFP | f3(0x0) | f7(0x10), buildFCmp(OpFsgnjS)},
	{"fsgnjn.s", MaskR, opOpFP | f3(0x1) | f7(0x10), buildFCmp(OpFsgnjnS)},
	{"fsgnjx.s", MaskR, opOpFP | f3(0x2) | f7(0x10), buildFCmp(OpFsgnjxS)},

	{"fmin.s", MaskR, opOpFP | f3(0x0) | f7(0x14), buildFCmp(OpFminS)},
	{"fmax.s", MaskR, opOpFP | f3(0x1) | f7(0x14), buildFCmp(OpFmaxS)},

	{"fcvt.w.s", MaskFPCvt, opOpFP | f7(0x60) | rs2sel(0x00), buildFSqrtCvt(OpFcvtWS)},
	{"fcvt.wu.s", MaskFPCvt, opOpFP | f7(0x60) | rs2sel(0x01), buildFSqrtCvt(OpFcvtWuS)},

	{"fmv.x.w", MaskRFull, opOpFP | f3(0x0) | f7(0x70) | rs2sel(0x00), buildFMoveClass(OpFmvXW)},
	{"fclass.s", MaskRFull, opOpFP | f3(0x1) | f7(0x70) | rs2sel(0x00), buildFMoveClass(OpFclassS)},

	{"feq.s", MaskR, opOpFP | f3(0x2) | f7(0x50), buildFCmp(OpFeqS)},
	{"flt.s", MaskR, opOpFP | f3(0x1) | f7(0x50), buildFCmp(OpFltS)},
	{"fle.s", MaskR, opOpFP | f3(0x0) | f7(0x50), buildFCmp(OpFleS)},

	{"fcvt.s.w", MaskFPCvt, opOpFP | f7(0x68) | rs2sel(0x00), buildFSqrtCvt(OpFcvtSW)},
	{"fcvt.s.wu", MaskFPCvt, opOpFP | f7(0x68) | rs2sel(0x01), buildFSqrtCvt(OpFcvtSWu)},

	{"fmv.w.x", MaskRFull, opOpFP | f3(0x0) | f7(0x78) | rs2sel(0x00), buildFMoveClass(OpFmvWX)},
}

func rs2sel(v uint32) uint32 { return v << 20 }

// NewRV32FDecoder returns a Decoder for the single-precision FP table. It
// exclusively owns LOAD-FP/STORE-FP/MADD/MSUB/NMSUB/NMADD/OP-FP, none of
// which any other table touches, so it does not need overlap tolerance.
func NewRV32FDecoder() Decoder {
	return newTableDecoder("rv32f", RV32F, false)
}
