package vm

import "github.com/rvsim/rv32sim/isa"

// executeZicsr implements the six CSR instructions. Per spec.md §4.F, an
// access to an unregistered CSR does not trap: it reads as zero until
// written and keeps whatever is written (the permissive CSR model); a genuinely illegal CSR
// instruction is already filtered out by the decoder, so no trap path is
// needed here.
func (c *CPU) executeZicsr(in isa.Instr) {
	s := c.Status
	old := s.CSR.Read(in.Csr)

	switch in.Op {
	case isa.OpCsrrw:
		s.CSR.Write(in.Csr, s.ReadInt(in.Rs1))
	case isa.OpCsrrs:
		if in.Rs1 != 0 {
			s.CSR.Write(in.Csr, old|s.ReadInt(in.Rs1))
		}
	case isa.OpCsrrc:
		if in.Rs1 != 0 {
			s.CSR.Write(in.Csr, old&^s.ReadInt(in.Rs1))
		}
	case isa.OpCsrrwi:
		s.CSR.Write(in.Csr, uint32(in.Zimm))
	case isa.OpCsrrsi:
		if in.Zimm != 0 {
			s.CSR.Write(in.Csr, old|uint32(in.Zimm))
		}
	case isa.OpCsrrci:
		if in.Zimm != 0 {
			s.CSR.Write(in.Csr, old&^uint32(in.Zimm))
		}
	}

	if in.Op == isa.OpCsrrw || in.Op == isa.OpCsrrwi {
		// CSRRW(I) with rd=x0 still must not trigger read side effects per
		// the spec, but this bank has none; writing Rd with the pre-write
		// value for rd=0 is a harmless no-op via WriteInt.
	}
	s.WriteInt(in.Rd, old)
}
