package isa

import "testing"

func encodeR(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint8) uint32 {
	return opcode | (uint32(rd) << 7) | (funct3 << 12) | (uint32(rs1) << 15) | (uint32(rs2) << 20) | (funct7 << 25)
}

func encodeI(opcode, funct3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return opcode | (uint32(rd) << 7) | (funct3 << 12) | (uint32(rs1) << 15) | (uint32(imm&0xFFF) << 20)
}

func encodeS(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return opcode | ((u & 0x1F) << 7) | (funct3 << 12) | (uint32(rs1) << 15) | (uint32(rs2) << 20) | ((u >> 5) << 25)
}

func encodeB(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFF
	bit11 := (u >> 11) & 0x1
	bit12 := (u >> 12) & 0x1
	bits4_1 := (u >> 1) & 0xF
	bits10_5 := (u >> 5) & 0x3F
	return opcode | (bit11 << 7) | (bits4_1 << 8) | (funct3 << 12) |
		(uint32(rs1) << 15) | (uint32(rs2) << 20) | (bits10_5 << 25) | (bit12 << 31)
}

func encodeU(opcode uint32, rd uint8, imm int32) uint32 {
	return opcode | (uint32(rd) << 7) | (uint32(imm) & 0xFFFFF000)
}

func encodeJ(opcode uint32, rd uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFFFF
	bit20 := (u >> 20) & 0x1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19_12 := (u >> 12) & 0xFF
	return opcode | (uint32(rd) << 7) | (bits19_12 << 12) | (bit11 << 20) | (bits10_1 << 21) | (bit20 << 31)
}

func newFullRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewConfig().WithMExtension().WithFExtension().WithZicsrExtension().WithPrivExtension().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func TestDecodeRV32IBasics(t *testing.T) {
	reg := newFullRegistry(t)

	raw := encodeR(opOp, 0x0, 0x00, 1, 2, 3) // add x1, x2, x3
	dec := reg.Decode(raw)
	if dec.Instr.Op != OpAdd || dec.Instr.Rd != 1 || dec.Instr.Rs1 != 2 || dec.Instr.Rs2 != 3 {
		t.Fatalf("add decode mismatch: %+v", dec.Instr)
	}

	raw = encodeI(opOpImm, 0x0, 1, 2, 100) // addi x1, x2, 100
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpAddi || dec.Instr.Imm != 100 {
		t.Fatalf("addi decode mismatch: %+v", dec.Instr)
	}

	raw = encodeI(opOpImm, 0x0, 1, 2, -1) // addi x1, x2, -1
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpAddi || dec.Instr.Imm != -1 {
		t.Fatalf("addi negative immediate mismatch: %+v", dec.Instr)
	}

	raw = encodeJ(opJal, 1, 0x1000) // jal x1, 0x1000
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpJal || dec.Instr.Imm != 0x1000 || dec.Instr.Rd != 1 {
		t.Fatalf("jal decode mismatch: %+v", dec.Instr)
	}

	raw = encodeB(opBranch, 0x0, 1, 2, -8) // beq x1, x2, -8
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpBeq || dec.Instr.Imm != -8 {
		t.Fatalf("beq decode mismatch: %+v", dec.Instr)
	}

	raw = encodeI(opLoad, 0x2, 5, 2, 16) // lw x5, 16(x2)
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpLw || dec.Instr.Rd != 5 || dec.Instr.Rs1 != 2 || dec.Instr.Imm != 16 {
		t.Fatalf("lw decode mismatch: %+v", dec.Instr)
	}

	raw = encodeS(opStore, 0x2, 2, 5, 16) // sw x5, 16(x2)
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpSw || dec.Instr.Rs1 != 2 || dec.Instr.Rs2 != 5 || dec.Instr.Imm != 16 {
		t.Fatalf("sw decode mismatch: %+v", dec.Instr)
	}

	raw = encodeU(opLui, 1, 0x12345000) // lui x1, 0x12345
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpLui || dec.Instr.Imm != 0x12345000 {
		t.Fatalf("lui decode mismatch: %+v", dec.Instr)
	}
}

func TestDecodeExactMatchInstructions(t *testing.T) {
	reg := newFullRegistry(t)

	cases := []struct {
		raw uint32
		op  Op
	}{
		{0x00000073, OpEcall},
		{0x00100073, OpEbreak},
		{0x30200073, OpMret},
		{0x10200073, OpSret},
		{0x10500073, OpWfi},
	}
	for _, c := range cases {
		dec := reg.Decode(c.raw)
		if dec.Instr.Op != c.op {
			t.Errorf("raw 0x%08x: expected op %v, got %v", c.raw, c.op, dec.Instr.Op)
		}
	}
}

func TestDecodeRV32M(t *testing.T) {
	reg := newFullRegistry(t)

	raw := encodeR(opOp, 0x0, 0x01, 1, 2, 3) // mul x1, x2, x3
	dec := reg.Decode(raw)
	if dec.Instr.Op != OpMul {
		t.Fatalf("mul decode mismatch: %+v", dec.Instr)
	}

	raw = encodeR(opOp, 0x4, 0x01, 1, 2, 3) // div x1, x2, x3
	dec = reg.Decode(raw)
	if dec.Instr.Op != OpDiv {
		t.Fatalf("div decode mismatch: %+v", dec.Instr)
	}
}

func TestDecodeZicsr(t *testing.T) {
	reg := newFullRegistry(t)

	raw := encodeI(opSystem, 0x1, 1, 2, int32(CsrMcauseForTest)) // csrrw x1, mcause, x2
	dec := reg.Decode(raw)
	if dec.Instr.Op != OpCsrrw || dec.Instr.Rd != 1 || dec.Instr.Rs1 != 2 || dec.Instr.Csr != uint16(CsrMcauseForTest) {
		t.Fatalf("csrrw decode mismatch: %+v", dec.Instr)
	}
}

// CsrMcauseForTest avoids importing vm (which would create an import cycle)
// just to name a CSR address in this package's own tests.
const CsrMcauseForTest = 0x342

func TestRegistryRejectsGenuineConflict(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(NewRV32IDecoder()); err != nil {
		t.Fatalf("register rv32i: %v", err)
	}

	conflicting := newTableDecoder("fake", []Def{{"fake-add", MaskR, opOp | f3(0x0) | f7(0x00), buildR(OpAdd)}}, false)
	if err := reg.Register(conflicting); err == nil {
		t.Fatal("expected conflict error when registering an overlapping exclusive decoder")
	}
}

func TestDecodeIllegalFallback(t *testing.T) {
	reg := newFullRegistry(t)
	dec := reg.Decode(0xFFFFFFFF)
	if dec.Instr.Op != OpIllegal {
		t.Fatalf("expected illegal, got %v", dec.Instr.Op)
	}
}

func TestConfigDetectsNoConflictsAcrossAllExtensions(t *testing.T) {
	cfg := NewConfig().WithMExtension().WithFExtension().WithZicsrExtension().WithPrivExtension()
	if conflicts := cfg.DetectConflicts(); len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}
	if got := cfg.ISAString(); got != "RV32IMFZicsrPriv" {
		t.Fatalf("unexpected ISA string: %s", got)
	}
}
