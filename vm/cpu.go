package vm

import (
	"fmt"

	"github.com/rvsim/rv32sim/isa"
)

// State is the CPU's run state, matching original_source/src/cpu.rs's
// CpuState.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateWaitForInterrupt
	StateIllegalInstruction
)

// CPU is the architectural core: register/CSR state, program counter, run
// state, and a reference to the decoder registry built for its enabled
// extensions. Grounded on original_source/src/cpu.rs's CpuCore.
type CPU struct {
	Status   *Status
	PC       uint32
	State    State
	decoders *isa.Registry

	// IllegalRaw holds the undecoded word that put the CPU into
	// StateIllegalInstruction, for host inspection. Zero in every other
	// state.
	IllegalRaw uint32

	// InstructionsExecuted counts committed steps, used by Run's bound and
	// shown by the debugger.
	InstructionsExecuted uint64
}

// New returns a CPU starting execution at entryPC, decoding with decoders.
func New(entryPC uint32, status *Status, decoders *isa.Registry) *CPU {
	return &CPU{Status: status, PC: entryPC, State: StateRunning, decoders: decoders}
}

// Fetch reads and decodes the instruction at PC.
func (c *CPU) Fetch(mem *Memory) (isa.Decoded, error) {
	raw, err := mem.Read32(c.PC)
	if err != nil {
		return isa.Decoded{}, fmt.Errorf("cpu: fetch at 0x%08x: %w", c.PC, err)
	}
	return c.decoders.Decode(raw), nil
}

// Step fetches, decodes, and executes a single instruction, advancing PC
// (unless the instruction itself branched) and InstructionsExecuted. It
// matches spec.md §4.K's step-loop contract: memory faults, including a
// failed fetch (InstructionAccessFault), raise a trap instead of returning
// a Go error, and an unclaimed instruction sets StateIllegalInstruction
// without trapping.
func (c *CPU) Step(mem *Memory) error {
	if c.State != StateRunning {
		return nil
	}

	dec, err := c.Fetch(mem)
	if err != nil {
		c.PC = c.TakeTrap(CauseInstructionAccessFault, c.PC)
		return nil
	}

	nextPC := c.PC + 4
	branched, trapErr := c.execute(mem, dec.Instr, &nextPC)
	if trapErr != nil {
		return trapErr
	}
	if !branched {
		c.PC = nextPC
	}
	c.InstructionsExecuted++
	return nil
}

// Run steps until the CPU leaves the Running state or maxSteps have
// executed (0 means unbounded).
func (c *CPU) Run(mem *Memory, maxSteps uint64) error {
	for maxSteps == 0 || c.InstructionsExecuted < maxSteps {
		if c.State != StateRunning {
			return nil
		}
		if err := c.Step(mem); err != nil {
			return err
		}
	}
	return nil
}
