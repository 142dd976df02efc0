// Package sim binds a vm.CPU to a vm.Memory, loads ELF program images, and
// drives the HTIF tohost/fromhost protocol used by RISC-V ISA compliance
// tests, grounded on original_source/src/sim_env.rs's SimEnv.
package sim

import (
	"fmt"

	"github.com/rvsim/rv32sim/loader"
	"github.com/rvsim/rv32sim/vm"
)

// Extensions selects which instruction-set extensions a simulation enables,
// matching original_source/src/sim_env.rs's IsaExtensions.
type Extensions struct {
	M     bool
	F     bool
	D     bool
	V     bool
	Zicsr bool
	Priv  bool
}

// RV32IM returns the default extension set: base integer plus multiply/divide.
func RV32IM() Extensions { return Extensions{M: true} }

// RV32IMFZicsr returns base integer, multiply/divide, single-precision FP
// (which implies Zicsr), and the privileged MRET/SRET/WFI trio.
func RV32IMFZicsr() Extensions {
	return Extensions{M: true, F: true, Zicsr: true, Priv: true}
}

// ExtensionsFromString parses a RISC-V ISA mnemonic such as "rv32imfzicsr"
// into an Extensions set, matching original_source/src/sim_env.rs's
// IsaExtensions::from_str: a "rv32"/"rv64" prefix is stripped, then letters
// are consumed one at a time; 'g' sets M, F, D, Zicsr and Priv (there is
// no A flag); unrecognized characters are ignored.
func ExtensionsFromString(s string) Extensions {
	var e Extensions
	i := 0
	if len(s) >= 4 && (s[0:4] == "rv32" || s[0:4] == "rv64") {
		i = 4
	}
	for ; i < len(s); i++ {
		switch s[i] {
		case 'm', 'M':
			e.M = true
		case 'f', 'F':
			e.F = true
			e.Zicsr = true
		case 'd', 'D':
			e.F = true
			e.D = true
			e.Zicsr = true
		case 'v', 'V':
			e.V = true
		case 'g', 'G':
			e.M, e.F, e.D, e.Zicsr, e.Priv = true, true, true, true, true
		case '_':
			// separator, ignored
		}
	}
	return e
}

// Config selects the inputs and resources for a simulation run, matching
// original_source/src/sim_env.rs's SimConfig.
type Config struct {
	ElfPath        string
	BinPath        string
	BinLoadAddr    uint32
	EntryPC        uint32
	EntryPCSet     bool
	MemoryBase     uint32
	MemorySize     int
	Extensions     Extensions
	MaxInstructions uint64
	StopOnTrap     bool
	Verbose        bool
}

// DefaultConfig returns a 64KB RAM region at address 0 running RV32IM.
func DefaultConfig() Config {
	return Config{MemoryBase: 0, MemorySize: 64 * 1024, Extensions: RV32IM(), MaxInstructions: 1_000_000}
}

// TestResultKind classifies the outcome of an ISA compliance test run.
type TestResultKind int

const (
	TestPass TestResultKind = iota
	TestFail
	TestTimeout
)

// TestResult is the outcome of RunISATest: Kind plus, for TestFail, the
// failing test-case number.
type TestResult struct {
	Kind TestResultKind
	Code uint32
}

// resultFromTohost decodes an HTIF tohost write, matching
// original_source/src/sim_env.rs's TestResult::from_tohost: value 1 is
// pass, any other odd value encodes a failing case number in its upper
// bits (value >> 1), and zero or an even value is reported as a timeout.
func resultFromTohost(value uint32) TestResult {
	switch {
	case value == 1:
		return TestResult{Kind: TestPass}
	case value&1 == 1:
		return TestResult{Kind: TestFail, Code: value >> 1}
	default:
		return TestResult{Kind: TestTimeout}
	}
}

// Env is a runnable simulation: a CPU, its memory, and the HTIF mailbox
// addresses (if the loaded image defines them).
type Env struct {
	CPU    *vm.CPU
	Memory *vm.Memory
	Config Config

	tohostAddr   uint32
	hasTohost    bool
	fromhostAddr uint32
	hasFromhost  bool
}

// FromConfig builds an Env from cfg: allocates memory, loads an ELF or raw
// binary image if configured, builds a CPU for the requested extensions,
// and resolves tohost/fromhost symbols, matching
// original_source/src/sim_env.rs's SimEnv::from_config.
func FromConfig(cfg Config) (*Env, error) {
	mem := vm.NewMemory(cfg.MemorySize, cfg.MemoryBase)

	entryPC := cfg.MemoryBase
	var img *loader.Image

	if cfg.ElfPath != "" {
		var err error
		img, err = loader.Load(cfg.ElfPath)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		entryPC = img.EntryPC
		if err := loader.LoadSegments(mem, img); err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
	} else if cfg.BinPath != "" {
		if err := loader.LoadRawBinary(mem, cfg.BinPath, cfg.BinLoadAddr); err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		entryPC = cfg.BinLoadAddr
	}
	if cfg.EntryPCSet {
		entryPC = cfg.EntryPC
	}

	cpu, err := buildCPU(entryPC, cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	env := &Env{CPU: cpu, Memory: mem, Config: cfg}
	if img != nil {
		if addr, ok := img.FindSymbol("tohost"); ok {
			env.tohostAddr, env.hasTohost = addr, true
		}
		if addr, ok := img.FindSymbol("fromhost"); ok {
			env.fromhostAddr, env.hasFromhost = addr, true
		}
	}
	env.ClearHTIFMailboxes()
	return env, nil
}

func buildCPU(entryPC uint32, ext Extensions) (*vm.CPU, error) {
	b := vm.NewBuilder(entryPC)
	if ext.M {
		b.WithMExtension()
	}
	if ext.F || ext.D {
		b.WithFExtension()
	}
	if ext.V {
		b.WithVExtension()
	}
	if ext.Zicsr {
		b.WithZicsrExtension()
	}
	if ext.Priv {
		b.WithPrivExtension()
	}
	return b.Build()
}

// Step executes one instruction.
func (e *Env) Step() error { return e.CPU.Step(e.Memory) }

// Run executes up to maxInstructions instructions (0 = unbounded) or until
// the CPU halts.
func (e *Env) Run(maxInstructions uint64) error { return e.CPU.Run(e.Memory, maxInstructions) }

// RunUntilHalt runs with the Env's configured instruction cap.
func (e *Env) RunUntilHalt() error { return e.Run(e.Config.MaxInstructions) }

// ClearHTIFMailboxes zeroes both HTIF addresses if the image defines them.
func (e *Env) ClearHTIFMailboxes() {
	if e.hasTohost {
		_ = e.Memory.Write32(e.tohostAddr, 0)
	}
	if e.hasFromhost {
		_ = e.Memory.Write32(e.fromhostAddr, 0)
	}
}

// CheckTohost polls the tohost mailbox; if it holds a nonzero value, the
// value is acknowledged (tohost cleared, value echoed into fromhost) and
// returned.
func (e *Env) CheckTohost() (uint32, bool) {
	if !e.hasTohost {
		return 0, false
	}
	v, err := e.Memory.Read32(e.tohostAddr)
	if err != nil || v == 0 {
		return 0, false
	}
	e.AcknowledgeTohost(v)
	return v, true
}

// AcknowledgeTohost clears tohost and writes value into fromhost.
func (e *Env) AcknowledgeTohost(value uint32) {
	_ = e.Memory.Write32(e.tohostAddr, 0)
	if e.hasFromhost {
		_ = e.Memory.Write32(e.fromhostAddr, value)
	}
}

// RunISATest drives an HTIF-style compliance test to completion: with no
// tohost symbol it simply runs to halt; otherwise it polls tohost after
// every step (and once more after the CPU leaves the running state, to
// catch a final write), matching original_source/src/sim_env.rs's
// run_isa_test.
func (e *Env) RunISATest(maxInstructions uint64) (TestResult, error) {
	if maxInstructions == 0 {
		maxInstructions = 1_000_000
	}
	if !e.hasTohost {
		if err := e.Run(maxInstructions); err != nil {
			return TestResult{}, err
		}
		return TestResult{Kind: TestTimeout}, nil
	}

	for i := uint64(0); i < maxInstructions; i++ {
		if e.CPU.State != vm.StateRunning {
			if v, ok := e.CheckTohost(); ok {
				return resultFromTohost(v), nil
			}
			return TestResult{Kind: TestTimeout}, nil
		}
		if err := e.Step(); err != nil {
			return TestResult{}, err
		}
		if v, ok := e.CheckTohost(); ok {
			return resultFromTohost(v), nil
		}
	}
	return TestResult{Kind: TestTimeout}, nil
}
