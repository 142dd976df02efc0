package vm

// PrivilegeMode is the current execution privilege level, matching
// original_source/src/cpu/trap.rs's PrivilegeMode.
type PrivilegeMode uint8

const (
	PrivUser       PrivilegeMode = 0
	PrivSupervisor PrivilegeMode = 1
	privReserved   PrivilegeMode = 2
	PrivMachine    PrivilegeMode = 3
)

// PrivilegeFromBits maps a 2-bit mpp/spp field to a PrivilegeMode.
func PrivilegeFromBits(bits uint32) PrivilegeMode { return PrivilegeMode(bits & 0x3) }

// mstatus bit positions, per spec.md §4.F's explicit layout table.
const (
	mstatusUIE  = 0
	mstatusSIE  = 1
	mstatusMIE  = 3
	mstatusUPIE = 4
	mstatusSPIE = 5
	mstatusMPIE = 7
	mstatusSPP  = 8
	mstatusMPPLo = 11 // 2-bit field, bits 11:12
	mstatusFS   = 13 // 2-bit field
	mstatusXS   = 15 // 2-bit field
	mstatusMPRV = 17
	mstatusSUM  = 18
	mstatusMXR  = 19
	mstatusTVM  = 20
	mstatusTW   = 21
	mstatusTSR  = 22
	mstatusSD   = 31
)

func bitGet(v uint32, bit int) bool { return v&(1<<uint(bit)) != 0 }

func bitSet(v uint32, bit int, on bool) uint32 {
	if on {
		return v | (1 << uint(bit))
	}
	return v &^ (1 << uint(bit))
}

func field2Get(v uint32, lo int) uint32 { return (v >> uint(lo)) & 0x3 }

func field2Set(v uint32, lo int, val uint32) uint32 {
	mask := uint32(0x3) << uint(lo)
	return (v &^ mask) | ((val & 0x3) << uint(lo))
}

// TrapCause identifies why a trap was taken, matching
// original_source/src/cpu/trap.rs's TrapCause (20 variants: 9 interrupts
// and 11 exceptions, exact numeric codes per the RISC-V privileged spec).
type TrapCause int

const (
	// Interrupts.
	CauseUserSoftwareInterrupt TrapCause = iota
	CauseSupervisorSoftwareInterrupt
	CauseMachineSoftwareInterrupt
	CauseUserTimerInterrupt
	CauseSupervisorTimerInterrupt
	CauseMachineTimerInterrupt
	CauseUserExternalInterrupt
	CauseSupervisorExternalInterrupt
	CauseMachineExternalInterrupt

	// Exceptions.
	CauseInstructionAddressMisaligned
	CauseInstructionAccessFault
	CauseIllegalInstruction
	CauseBreakpoint
	CauseLoadAddressMisaligned
	CauseLoadAccessFault
	CauseStoreAddressMisaligned
	CauseStoreAccessFault
	CauseEcallFromUMode
	CauseEcallFromSMode
	CauseEcallFromMMode
)

var causeIsInterrupt = map[TrapCause]bool{
	CauseUserSoftwareInterrupt:       true,
	CauseSupervisorSoftwareInterrupt: true,
	CauseMachineSoftwareInterrupt:    true,
	CauseUserTimerInterrupt:          true,
	CauseSupervisorTimerInterrupt:    true,
	CauseMachineTimerInterrupt:       true,
	CauseUserExternalInterrupt:       true,
	CauseSupervisorExternalInterrupt: true,
	CauseMachineExternalInterrupt:    true,
}

var causeCode = map[TrapCause]uint32{
	CauseUserSoftwareInterrupt:       0,
	CauseSupervisorSoftwareInterrupt: 1,
	CauseMachineSoftwareInterrupt:    3,
	CauseUserTimerInterrupt:          4,
	CauseSupervisorTimerInterrupt:    5,
	CauseMachineTimerInterrupt:       7,
	CauseUserExternalInterrupt:       8,
	CauseSupervisorExternalInterrupt: 9,
	CauseMachineExternalInterrupt:    11,

	CauseInstructionAddressMisaligned: 0,
	CauseInstructionAccessFault:       1,
	CauseIllegalInstruction:           2,
	CauseBreakpoint:                   3,
	CauseLoadAddressMisaligned:        4,
	CauseLoadAccessFault:              5,
	CauseStoreAddressMisaligned:       6,
	CauseStoreAccessFault:             7,
	CauseEcallFromUMode:               8,
	CauseEcallFromSMode:               9,
	CauseEcallFromMMode:               11,
}

// IsInterrupt reports whether c is an interrupt cause (vs. a synchronous exception).
func (c TrapCause) IsInterrupt() bool { return causeIsInterrupt[c] }

// IsException reports the complement of IsInterrupt.
func (c TrapCause) IsException() bool { return !causeIsInterrupt[c] }

// Code returns c's numeric exception/interrupt code.
func (c TrapCause) Code() uint32 { return causeCode[c] }

// CauseValue returns the full mcause/scause encoding: the interrupt bit in
// bit 31 plus the code in the low bits.
func (c TrapCause) CauseValue() uint32 {
	v := c.Code()
	if c.IsInterrupt() {
		v |= 1 << 31
	}
	return v
}

// EcallFrom returns the ECALL exception cause appropriate to mode.
func EcallFrom(mode PrivilegeMode) TrapCause {
	switch mode {
	case PrivUser:
		return CauseEcallFromUMode
	case PrivSupervisor:
		return CauseEcallFromSMode
	default:
		return CauseEcallFromMMode
	}
}

// mtvecMode/mtvecBase split an mtvec CSR value into its 2-bit mode field and
// 4-byte-aligned base address, per spec.md §4.F.
func mtvecMode(mtvec uint32) uint32  { return mtvec & 0x3 }
func mtvecBase(mtvec uint32) uint32 { return mtvec &^ 0x3 }

// calculateTrapPC computes the PC to enter on a trap: Direct mode always
// jumps to base; Vectored mode adds 4*code for interrupts only.
func calculateTrapPC(mtvec uint32, cause TrapCause) uint32 {
	base := mtvecBase(mtvec)
	if mtvecMode(mtvec) == 1 && cause.IsInterrupt() {
		return base + 4*cause.Code()
	}
	return base
}

// TakeTrap enters machine mode at the current PC as the trap's origin,
// updating mstatus/mepc/mcause/mtval and returning the new PC, matching
// original_source/src/cpu.rs's take_trap.
func (c *CPU) TakeTrap(cause TrapCause, tval uint32) uint32 {
	return c.TakeTrapAt(cause, tval, c.PC)
}

// TakeTrapAt is TakeTrap with an explicit originating PC (used when the
// faulting instruction's PC differs from the CPU's current PC).
func (c *CPU) TakeTrapAt(cause TrapCause, tval uint32, originPC uint32) uint32 {
	status := c.Status.CSR

	mstatus := status.Read(CsrMstatus)
	mie := bitGet(mstatus, mstatusMIE)
	mstatus = bitSet(mstatus, mstatusMPIE, mie)
	mstatus = bitSet(mstatus, mstatusMIE, false)
	mstatus = field2Set(mstatus, mstatusMPPLo, uint32(c.Status.Privilege))
	status.ForceWrite(CsrMstatus, mstatus)

	status.ForceWrite(CsrMepc, originPC)
	status.ForceWrite(CsrMcause, cause.CauseValue())
	status.ForceWrite(CsrMtval, tval)

	c.Status.Privilege = PrivMachine

	mtvec := status.Read(CsrMtvec)
	return calculateTrapPC(mtvec, cause)
}

// ExecuteMret performs the MRET return-from-trap sequence, matching
// original_source/src/cpu/exu/priv_instr.rs's execute_mret.
func (c *CPU) ExecuteMret() {
	status := c.Status.CSR
	mstatus := status.Read(CsrMstatus)

	mpie := bitGet(mstatus, mstatusMPIE)
	mpp := field2Get(mstatus, mstatusMPPLo)

	mstatus = bitSet(mstatus, mstatusMIE, mpie)
	mstatus = field2Set(mstatus, mstatusMPPLo, uint32(PrivUser))
	mstatus = bitSet(mstatus, mstatusMPIE, true)
	status.ForceWrite(CsrMstatus, mstatus)

	c.Status.Privilege = PrivilegeFromBits(mpp)
	c.PC = status.Read(CsrMepc)
}

// ExecuteSret performs the SRET return-from-trap sequence, matching
// original_source/src/cpu/exu/priv_instr.rs's execute_sret.
func (c *CPU) ExecuteSret() {
	status := c.Status.CSR
	sstatus := status.Read(CsrSstatus)

	spie := bitGet(sstatus, mstatusSPIE)
	spp := bitGet(sstatus, mstatusSPP)

	sstatus = bitSet(sstatus, mstatusSIE, spie)
	sstatus = bitSet(sstatus, mstatusSPP, false)
	sstatus = bitSet(sstatus, mstatusSPIE, true)
	status.ForceWrite(CsrSstatus, sstatus)

	if spp {
		c.Status.Privilege = PrivSupervisor
	} else {
		c.Status.Privilege = PrivUser
	}
	c.PC = status.Read(CsrSepc)
}

// ExecuteWfi enters the wait-for-interrupt state, matching
// original_source/src/cpu/exu/priv_instr.rs's execute_wfi.
func (c *CPU) ExecuteWfi() {
	c.State = StateWaitForInterrupt
}
