package isa

// RV32M is the integer multiply/divide table (8 entries per spec.md §4.C),
// all sharing the OP opcode with RV32I's R-type ALU ops but discriminated by
// funct7 = 0000001.
var RV32M = []Def{
	{"mul", MaskR, opOp | f3(0x0) | f7(0x01), buildR(OpMul)},
	{"mulh", MaskR, opOp | f3(0x1) | f7(0x01), buildR(OpMulh)},
	{"mulhsu", MaskR, opOp | f3(0x2) | f7(0x01), buildR(OpMulhsu)},
	{"mulhu", MaskR, opOp | f3(0x3) | f7(0x01), buildR(OpMulhu)},
	{"div", MaskR, opOp | f3(0x4) | f7(0x01), buildR(OpDiv)},
	{"divu", MaskR, opOp | f3(0x5) | f7(0x01), buildR(OpDivu)},
	{"rem", MaskR, opOp | f3(0x6) | f7(0x01), buildR(OpRem)},
	{"remu", MaskR, opOp | f3(0x7) | f7(0x01), buildR(OpRemu)},
}

// NewRV32MDecoder returns a Decoder for the multiply/divide table. It shares
// the OP opcode with RV32I, so it must be registered as overlap-tolerant;
// RV32I's own entries never match funct7=0000001, so the two tables never
// actually collide on a given raw word despite sharing the bucket.
func NewRV32MDecoder() Decoder {
	return newTableDecoder("rv32m", RV32M, true)
}
