package vm

// Status holds all architectural register state: the integer file, the
// optional single-precision FP file, the optional inert vector scratch
// space (SPEC_FULL.md §4.NEW), the CSR bank, and the current privilege
// mode. Grounded on original_source/src/cpu.rs's CpuCore fields plus the
// Status type its CpuBuilder constructs.
type Status struct {
	Int [32]uint32

	// Fp is nil unless the F (or D) extension was enabled.
	Fp *[32]uint32

	// Vec is nil unless the (inert, unexecuted) V extension was enabled.
	Vec *[32][16]byte

	CSR       *CSRBank
	Privilege PrivilegeMode

	// The F extension's five sticky exception bits live in the fflags CSR
	// (see CPU.raiseFPFlags); Status keeps no separate copy.
}

// NewStatus returns a Status with x0 hardwired to zero, starting in
// machine mode, and an empty CSR bank (extensions register their own CSRs).
func NewStatus() *Status {
	return &Status{CSR: NewCSRBank(), Privilege: PrivMachine}
}

// ReadInt returns register reg (x0 always reads zero).
func (s *Status) ReadInt(reg uint8) uint32 {
	if reg == 0 {
		return 0
	}
	return s.Int[reg]
}

// WriteInt sets register reg, silently discarding writes to x0.
func (s *Status) WriteInt(reg uint8, v uint32) {
	if reg == 0 {
		return
	}
	s.Int[reg] = v
}

// EnableFP allocates the single-precision FP register file.
func (s *Status) EnableFP() {
	if s.Fp == nil {
		s.Fp = &[32]uint32{}
	}
}

// ReadFP returns FP register reg's raw bit pattern.
func (s *Status) ReadFP(reg uint8) uint32 {
	if s.Fp == nil {
		return 0
	}
	return s.Fp[reg]
}

// WriteFP sets FP register reg's raw bit pattern.
func (s *Status) WriteFP(reg uint8, v uint32) {
	if s.Fp == nil {
		return
	}
	s.Fp[reg] = v
}

// EnableVec allocates the inert vector scratch register file (SPEC_FULL.md
// §4.NEW: present for CSR-probing purposes, never written by any executor).
func (s *Status) EnableVec() {
	if s.Vec == nil {
		s.Vec = &[32][16]byte{}
	}
}
