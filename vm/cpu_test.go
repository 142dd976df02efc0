package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(t *testing.T, b *Builder) (*CPU, *Memory) {
	t.Helper()
	cpu, err := b.Build()
	require.NoError(t, err)
	mem := NewMemory(4096, 0)
	return cpu, mem
}

// encR/encI/encB are test-only raw-word encoders mirroring isa's own
// (private to each package, so duplicated rather than imported).
func encR(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint8) uint32 {
	return opcode | (uint32(rd) << 7) | (funct3 << 12) | (uint32(rs1) << 15) | (uint32(rs2) << 20) | (funct7 << 25)
}

func encI(opcode, funct3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return opcode | (uint32(rd) << 7) | (funct3 << 12) | (uint32(rs1) << 15) | (uint32(imm&0xFFF) << 20)
}

func encB(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFF
	bit11 := (u >> 11) & 0x1
	bit12 := (u >> 12) & 0x1
	bits4_1 := (u >> 1) & 0xF
	bits10_5 := (u >> 5) & 0x3F
	return opcode | (bit11 << 7) | (bits4_1 << 8) | (funct3 << 12) |
		(uint32(rs1) << 15) | (uint32(rs2) << 20) | (bits10_5 << 25) | (bit12 << 31)
}

const (
	opOpImm  = 0x13
	opOp     = 0x33
	opBranch = 0x63
	opSystem = 0x73
)

func TestSimpleCountingLoop(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0))

	// addi x1, x0, 0       ; i = 0
	// addi x2, x0, 5       ; limit = 5
	// addi x1, x1, 1       ; loop: i++
	// bne  x1, x2, loop
	require.NoError(t, mem.Write32(0, encI(opOpImm, 0x0, 1, 0, 0)))
	require.NoError(t, mem.Write32(4, encI(opOpImm, 0x0, 2, 0, 5)))
	require.NoError(t, mem.Write32(8, encI(opOpImm, 0x0, 1, 1, 1)))
	require.NoError(t, mem.Write32(12, encB(opBranch, 0x1, 1, 2, -4))) // bne x1, x2, -4 -> addr 8

	cpu.PC = 0
	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Step(mem), "step %d", i)
	}
	for cpu.PC == 8 || cpu.PC == 12 {
		require.NoError(t, cpu.Step(mem))
		require.Less(t, cpu.InstructionsExecuted, uint64(100), "loop did not terminate")
	}
	assert.Equal(t, uint32(5), cpu.Status.ReadInt(1))
	assert.Equal(t, uint32(16), cpu.PC, "pc should be past the loop on exit")
}

func TestRV32MDivByZero(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithMExtension())

	cpu.Status.WriteInt(1, 10)
	cpu.Status.WriteInt(2, 0)
	require.NoError(t, mem.Write32(0, encR(opOp, 0x4, 0x01, 3, 1, 2))) // div x3, x1, x2

	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	// RISC-V division by zero: quotient is all-ones, no trap.
	assert.Equal(t, uint32(0xFFFFFFFF), cpu.Status.ReadInt(3))
}

func TestRV32MRemByZero(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithMExtension())

	cpu.Status.WriteInt(1, 10)
	cpu.Status.WriteInt(2, 0)
	require.NoError(t, mem.Write32(0, encR(opOp, 0x6, 0x01, 3, 1, 2))) // rem x3, x1, x2

	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	// Remainder-by-zero returns the dividend unchanged.
	assert.Equal(t, uint32(10), cpu.Status.ReadInt(3))
}

func TestZicsrReadWrite(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithZicsrExtension().WithPrivExtension())

	cpu.Status.WriteInt(2, 0xDEADBEEF)
	require.NoError(t, mem.Write32(0, encI(opSystem, 0x1, 1, 2, int32(CsrMscratch)))) // csrrw x1, mscratch, x2

	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	assert.Equal(t, uint32(0xDEADBEEF), cpu.Status.CSR.Read(CsrMscratch))
	assert.Equal(t, uint32(0), cpu.Status.ReadInt(1), "x1 should hold mscratch's prior value")
}

func TestMretReturnsToMepcAndRestoresPrivilege(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithZicsrExtension().WithPrivExtension())

	cpu.Status.CSR.ForceWrite(CsrMepc, 0x1000)
	cpu.Status.CSR.ForceWrite(CsrMstatus, 0)
	cpu.Status.Privilege = PrivMachine

	require.NoError(t, mem.Write32(0, 0x30200073)) // mret

	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	assert.Equal(t, uint32(0x1000), cpu.PC)
	assert.Equal(t, PrivUser, cpu.Status.Privilege, "mpp was 0 (user)")
}

func TestWfiEntersWaitState(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithPrivExtension())

	require.NoError(t, mem.Write32(0, 0x10500073)) // wfi
	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	assert.Equal(t, StateWaitForInterrupt, cpu.State)
}

func TestTakeTrapDirectMode(t *testing.T) {
	cpu, _ := newTestCPU(t, NewBuilder(0).WithZicsrExtension().WithPrivExtension())

	cpu.Status.CSR.ForceWrite(CsrMtvec, 0x8000) // mode bits 00: direct
	cpu.PC = 0x100

	newPC := cpu.TakeTrap(CauseIllegalInstruction, 0xBAD)
	assert.Equal(t, uint32(0x8000), newPC)
	assert.Equal(t, uint32(0x100), cpu.Status.CSR.Read(CsrMepc))
	assert.Equal(t, CauseIllegalInstruction.Code(), cpu.Status.CSR.Read(CsrMcause))
}

func TestCSRWritePersistsOnUnregisteredAddress(t *testing.T) {
	bank := NewCSRBank()

	const unregistered uint16 = 0x7C0 // not part of any registered group
	require.False(t, bank.IsRegistered(unregistered))
	assert.Equal(t, uint32(0), bank.Read(unregistered))

	bank.Write(unregistered, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), bank.Read(unregistered), "unregistered writes must persist")
	assert.False(t, bank.IsRegistered(unregistered), "Write must not flip registered bookkeeping")
}

func TestVlenbResetsTo16(t *testing.T) {
	cpu, err := NewBuilder(0).WithVExtension().Build()
	require.NoError(t, err)
	assert.Equal(t, uint32(16), cpu.Status.CSR.Read(CsrVlenb))
	assert.True(t, cpu.Status.CSR.IsRegistered(CsrVlenb))
	assert.Equal(t, uint32(0), cpu.Status.CSR.Read(CsrVl), "the other V CSRs still reset to 0")
}

func TestIllegalInstructionSetsStateWithoutTrapping(t *testing.T) {
	cpu, mem := newTestCPU(t, NewBuilder(0).WithZicsrExtension().WithPrivExtension())

	raw := uint32(0xFFFFFFFF) // decodes to OpIllegal under every registered extension
	require.NoError(t, mem.Write32(0, raw))

	cpu.PC = 0
	require.NoError(t, cpu.Step(mem))
	assert.Equal(t, StateIllegalInstruction, cpu.State)
	assert.Equal(t, raw, cpu.IllegalRaw)
	assert.Equal(t, uint32(4), cpu.PC, "step 3's unconditional pre-advance still applies")
	assert.Equal(t, uint32(0), cpu.Status.CSR.Read(CsrMcause), "no trap: mcause must be untouched")

	// Stepping again is a no-op: the CPU idles in the non-Running state.
	require.NoError(t, cpu.Step(mem))
	assert.Equal(t, uint32(4), cpu.PC)
}

func TestTakeTrapVectoredModeOnlyAffectsInterrupts(t *testing.T) {
	cpu, _ := newTestCPU(t, NewBuilder(0).WithZicsrExtension().WithPrivExtension())

	cpu.Status.CSR.ForceWrite(CsrMtvec, 0x8000|0x1) // mode bits 01: vectored

	excPC := cpu.TakeTrap(CauseIllegalInstruction, 0)
	assert.Equal(t, uint32(0x8000), excPC, "exceptions ignore vectoring")

	intPC := cpu.TakeTrap(CauseMachineTimerInterrupt, 0)
	want := uint32(0x8000) + 4*CauseMachineTimerInterrupt.Code()
	assert.Equal(t, want, intPC)
}
