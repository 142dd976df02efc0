package vm

import (
	"fmt"

	"github.com/rvsim/rv32sim/isa"
)

// Builder assembles a CPU from a chosen set of extensions, matching
// original_source/src/cpu/builder.rs's CpuBuilder.
type Builder struct {
	entryPC  uint32
	isa      *isa.Config
	enableF  bool
	enableD  bool
	enableV  bool
	enableM  bool // M-mode (privileged), default true
	enableS  bool
}

// NewBuilder returns a Builder starting execution at entryPC with the base
// RV32I table always present and M-mode enabled by default.
func NewBuilder(entryPC uint32) *Builder {
	return &Builder{entryPC: entryPC, isa: isa.NewConfig(), enableM: true}
}

// WithMExtension enables the multiply/divide instructions.
func (b *Builder) WithMExtension() *Builder { b.isa.WithMExtension(); return b }

// WithZicsrExtension enables CSR instructions.
func (b *Builder) WithZicsrExtension() *Builder { b.isa.WithZicsrExtension(); return b }

// WithPrivExtension enables MRET/SRET/WFI.
func (b *Builder) WithPrivExtension() *Builder { b.isa.WithPrivExtension(); return b }

// WithFExtension enables the single-precision FP register file and table.
func (b *Builder) WithFExtension() *Builder {
	b.enableF = true
	b.isa.WithFExtension()
	return b
}

// WithVExtension enables the inert vector-register scaffolding and its CSRs
// (SPEC_FULL.md §4.NEW); no V opcode is ever decoded.
func (b *Builder) WithVExtension() *Builder { b.enableV = true; return b }

// WithSMode enables supervisor-mode CSRs (sstatus/sepc/scause/...).
func (b *Builder) WithSMode() *Builder { b.enableS = true; return b }

// WithoutMMode disables registration of the machine-mode CSR group, for a
// minimal user-mode-only configuration.
func (b *Builder) WithoutMMode() *Builder { b.enableM = false; return b }

// ExtensionsSummary renders the enabled extension set, e.g. "RV32IMFZicsr + S-mode".
func (b *Builder) ExtensionsSummary() string {
	s := b.isa.ISAString()
	if b.enableV {
		s += "V"
	}
	if b.enableS {
		s += " + S-mode"
	}
	return s
}

// Build assembles the decoder registry and register/CSR state, returning
// the configured CPU.
func (b *Builder) Build() (*CPU, error) {
	registry, err := b.isa.Build()
	if err != nil {
		return nil, fmt.Errorf("vm: builder: %w", err)
	}

	status := NewStatus()
	status.CSR.RegisterAll(BaseCSRs)

	if b.enableF || b.enableD {
		status.EnableFP()
		status.CSR.RegisterAll(FCSRs)
	}
	if b.enableV {
		status.EnableVec()
		status.CSR.RegisterAll(VCSRs)
		// vlenb is read-only hardware-constant: VLEN/8 with VLEN=128 (spec.md
		// §3/§4.E), not the generic zero reset RegisterAll gives every other
		// V CSR.
		status.CSR.Register(CsrVlenb, 16)
	}
	if b.enableM {
		status.CSR.RegisterAll(MCSRs)
	}
	if b.enableS {
		status.CSR.RegisterAll(SCSRs)
	}

	return New(b.entryPC, status, registry), nil
}
