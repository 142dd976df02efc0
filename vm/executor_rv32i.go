package vm

import (
	"errors"

	"github.com/rvsim/rv32sim/isa"
)

// executeRV32I implements every base-integer opcode, grounded on the
// integer executor semantics in original_source/src/cpu/exu (ALU, branch,
// load/store dispatch) and the teacher's instruction-by-instruction
// execution style in vm/data_processing.go.
func (c *CPU) executeRV32I(mem *Memory, in isa.Instr, nextPC *uint32) (bool, error) {
	s := c.Status
	switch in.Op {
	case isa.OpLui:
		s.WriteInt(in.Rd, uint32(in.Imm))
	case isa.OpAuipc:
		s.WriteInt(in.Rd, c.PC+uint32(in.Imm))

	case isa.OpJal:
		s.WriteInt(in.Rd, c.PC+4)
		c.PC = c.PC + uint32(in.Imm)
		return true, nil
	case isa.OpJalr:
		target := (s.ReadInt(in.Rs1) + uint32(in.Imm)) &^ 1
		s.WriteInt(in.Rd, c.PC+4)
		c.PC = target
		return true, nil

	case isa.OpBeq, isa.OpBne, isa.OpBlt, isa.OpBge, isa.OpBltu, isa.OpBgeu:
		if branchTaken(in.Op, s.ReadInt(in.Rs1), s.ReadInt(in.Rs2)) {
			c.PC = c.PC + uint32(in.Imm)
			return true, nil
		}
		return false, nil

	case isa.OpLb, isa.OpLh, isa.OpLw, isa.OpLbu, isa.OpLhu:
		addr := s.ReadInt(in.Rs1) + uint32(in.Imm)
		v, trapped := c.doLoad(mem, in.Op, addr)
		if trapped {
			return true, nil
		}
		s.WriteInt(in.Rd, v)

	case isa.OpSb, isa.OpSh, isa.OpSw:
		addr := s.ReadInt(in.Rs1) + uint32(in.Imm)
		if c.doStore(mem, in.Op, addr, s.ReadInt(in.Rs2)) {
			return true, nil
		}

	case isa.OpAddi:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)+uint32(in.Imm))
	case isa.OpSlti:
		s.WriteInt(in.Rd, boolToWord(int32(s.ReadInt(in.Rs1)) < in.Imm))
	case isa.OpSltiu:
		s.WriteInt(in.Rd, boolToWord(s.ReadInt(in.Rs1) < uint32(in.Imm)))
	case isa.OpXori:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)^uint32(in.Imm))
	case isa.OpOri:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)|uint32(in.Imm))
	case isa.OpAndi:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)&uint32(in.Imm))
	case isa.OpSlli:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)<<(in.Shamt&0x1F))
	case isa.OpSrli:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)>>(in.Shamt&0x1F))
	case isa.OpSrai:
		s.WriteInt(in.Rd, uint32(int32(s.ReadInt(in.Rs1))>>(in.Shamt&0x1F)))

	case isa.OpAdd:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)+s.ReadInt(in.Rs2))
	case isa.OpSub:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)-s.ReadInt(in.Rs2))
	case isa.OpSll:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)<<(s.ReadInt(in.Rs2)&0x1F))
	case isa.OpSlt:
		s.WriteInt(in.Rd, boolToWord(int32(s.ReadInt(in.Rs1)) < int32(s.ReadInt(in.Rs2))))
	case isa.OpSltu:
		s.WriteInt(in.Rd, boolToWord(s.ReadInt(in.Rs1) < s.ReadInt(in.Rs2)))
	case isa.OpXor:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)^s.ReadInt(in.Rs2))
	case isa.OpSrl:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)>>(s.ReadInt(in.Rs2)&0x1F))
	case isa.OpSra:
		s.WriteInt(in.Rd, uint32(int32(s.ReadInt(in.Rs1))>>(s.ReadInt(in.Rs2)&0x1F)))
	case isa.OpOr:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)|s.ReadInt(in.Rs2))
	case isa.OpAnd:
		s.WriteInt(in.Rd, s.ReadInt(in.Rs1)&s.ReadInt(in.Rs2))

	case isa.OpFence, isa.OpFenceI:
		// Single-hart in-order model: no memory reordering to flush.

	case isa.OpEcall:
		c.PC = c.TakeTrap(EcallFrom(s.Privilege), 0)
		return true, nil
	case isa.OpEbreak:
		c.PC = c.TakeTrap(CauseBreakpoint, c.PC)
		return true, nil
	}
	return false, nil
}

func branchTaken(op isa.Op, a, b uint32) bool {
	switch op {
	case isa.OpBeq:
		return a == b
	case isa.OpBne:
		return a != b
	case isa.OpBlt:
		return int32(a) < int32(b)
	case isa.OpBge:
		return int32(a) >= int32(b)
	case isa.OpBltu:
		return a < b
	case isa.OpBgeu:
		return a >= b
	}
	return false
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// doLoad performs a load of the width implied by op, raising a trap (and
// reporting trapped=true) on a memory fault rather than returning a Go
// error, per spec.md §4.K. Half/word loads never trap on misalignment: per
// spec.md §4.G/§9 and original_source/src/cpu/exu/rv32i.rs's
// load_halfword/load_word, a misaligned access decomposes into individual
// byte reads instead, trapping only if a byte falls outside memory.
func (c *CPU) doLoad(mem *Memory, op isa.Op, addr uint32) (value uint32, trapped bool) {
	switch op {
	case isa.OpLb:
		v, err := mem.Read8(addr)
		if err != nil {
			return c.trapLoad(addr, err), true
		}
		return uint32(int32(int8(v))), false
	case isa.OpLbu:
		v, err := mem.Read8(addr)
		if err != nil {
			return c.trapLoad(addr, err), true
		}
		return uint32(v), false
	case isa.OpLh:
		v, err := readBytes16(mem, addr)
		if err != nil {
			return c.trapLoad(addr, err), true
		}
		return uint32(int32(int16(v))), false
	case isa.OpLhu:
		v, err := readBytes16(mem, addr)
		if err != nil {
			return c.trapLoad(addr, err), true
		}
		return uint32(v), false
	case isa.OpLw:
		v, err := readBytes32(mem, addr)
		if err != nil {
			return c.trapLoad(addr, err), true
		}
		return v, false
	}
	return 0, false
}

func (c *CPU) trapLoad(addr uint32, err error) uint32 {
	cause := CauseLoadAccessFault
	var me *MemoryError
	if errors.As(err, &me) && me.Kind == "unaligned" {
		cause = CauseLoadAddressMisaligned
	}
	c.PC = c.TakeTrap(cause, addr)
	return 0
}

// doStore performs a store of the width implied by op, raising a trap (and
// reporting trapped=true) on a memory fault. As with doLoad, half/word
// stores byte-decompose on misalignment instead of trapping for it.
func (c *CPU) doStore(mem *Memory, op isa.Op, addr uint32, value uint32) (trapped bool) {
	var err error
	switch op {
	case isa.OpSb:
		err = mem.Write8(addr, uint8(value))
	case isa.OpSh:
		err = writeBytes16(mem, addr, uint16(value))
	case isa.OpSw:
		err = writeBytes32(mem, addr, value)
	}
	if err != nil {
		cause := CauseStoreAccessFault
		var me *MemoryError
		if errors.As(err, &me) && me.Kind == "unaligned" {
			cause = CauseStoreAddressMisaligned
		}
		c.PC = c.TakeTrap(cause, addr)
		return true
	}
	return false
}

// readBytes16/readBytes32 load a little-endian half/word one byte at a
// time, so a misaligned address only faults if a constituent byte is
// out-of-range, never because of the misalignment itself.
func readBytes16(mem *Memory, addr uint32) (uint16, error) {
	b, err := mem.ReadBytes(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func readBytes32(mem *Memory, addr uint32) (uint32, error) {
	b, err := mem.ReadBytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func writeBytes16(mem *Memory, addr uint32, v uint16) error {
	return mem.WriteBytes(addr, []byte{byte(v), byte(v >> 8)})
}

func writeBytes32(mem *Memory, addr uint32, v uint32) error {
	return mem.WriteBytes(addr, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
