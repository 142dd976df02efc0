package vm

import "github.com/rvsim/rv32sim/isa"

// executeRV32M implements the multiply/divide extension, matching the
// division-by-zero and overflow conventions of the RISC-V M extension
// (unsigned-wrapping on overflow, quotient -1 / remainder = dividend on
// divide-by-zero, no trap), grounded on
// original_source/src/cpu/exu/rv32m.rs.
func (c *CPU) executeRV32M(in isa.Instr) {
	s := c.Status
	a := s.ReadInt(in.Rs1)
	b := s.ReadInt(in.Rs2)
	sa, sb := int32(a), int32(b)

	switch in.Op {
	case isa.OpMul:
		s.WriteInt(in.Rd, a*b)
	case isa.OpMulh:
		s.WriteInt(in.Rd, uint32((int64(sa)*int64(sb))>>32))
	case isa.OpMulhsu:
		s.WriteInt(in.Rd, uint32((int64(sa)*int64(uint64(b)))>>32))
	case isa.OpMulhu:
		s.WriteInt(in.Rd, uint32((uint64(a)*uint64(b))>>32))

	case isa.OpDiv:
		switch {
		case b == 0:
			s.WriteInt(in.Rd, 0xFFFFFFFF)
		case sa == -2147483648 && sb == -1:
			s.WriteInt(in.Rd, uint32(sa))
		default:
			s.WriteInt(in.Rd, uint32(sa/sb))
		}
	case isa.OpDivu:
		if b == 0 {
			s.WriteInt(in.Rd, 0xFFFFFFFF)
		} else {
			s.WriteInt(in.Rd, a/b)
		}
	case isa.OpRem:
		switch {
		case b == 0:
			s.WriteInt(in.Rd, uint32(sa))
		case sa == -2147483648 && sb == -1:
			s.WriteInt(in.Rd, 0)
		default:
			s.WriteInt(in.Rd, uint32(sa%sb))
		}
	case isa.OpRemu:
		if b == 0 {
			s.WriteInt(in.Rd, a)
		} else {
			s.WriteInt(in.Rd, a%b)
		}
	}
}
