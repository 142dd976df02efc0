package vm

import "github.com/rvsim/rv32sim/isa"

// execute dispatches a decoded instruction to the executor owning its Op,
// matching spec.md §4.G-§4.K's five-executor split. It returns branched=true
// when the instruction itself set CPU.PC (branches, jumps, MRET/SRET,
// traps), so Step should not additionally advance PC by 4.
//
// An unclaimed word (OpIllegal, OpCustom, or any Op none of the five
// executors own) does not trap: it sets CPU.State to
// StateIllegalInstruction and lets Step's unconditional PC+4 pre-advance
// stand, per §4.K step 5 and §9's "trap-less illegal instruction" note. The
// CPU then idles in that state (Step returns immediately while
// State != StateRunning) until a host resets it.
func (c *CPU) execute(mem *Memory, in isa.Instr, nextPC *uint32) (branched bool, err error) {
	switch {
	case in.Op == isa.OpIllegal:
		c.setIllegal(in.Raw)
		return false, nil

	case isRV32I(in.Op):
		return c.executeRV32I(mem, in, nextPC)

	case isRV32M(in.Op):
		c.executeRV32M(in)
		return false, nil

	case isZicsr(in.Op):
		c.executeZicsr(in)
		return false, nil

	case isPriv(in.Op):
		return c.executePriv(in)

	case isRV32F(in.Op):
		return c.executeRV32F(mem, in)
	}

	c.setIllegal(in.Raw)
	return false, nil
}

func (c *CPU) setIllegal(raw uint32) {
	c.State = StateIllegalInstruction
	c.IllegalRaw = raw
}

func isRV32I(op isa.Op) bool { return op >= isa.OpLui && op <= isa.OpEbreak }
func isRV32M(op isa.Op) bool { return op >= isa.OpMul && op <= isa.OpRemu }
func isZicsr(op isa.Op) bool { return op >= isa.OpCsrrw && op <= isa.OpCsrrci }
func isPriv(op isa.Op) bool  { return op >= isa.OpMret && op <= isa.OpWfi }
func isRV32F(op isa.Op) bool { return op >= isa.OpFlw && op <= isa.OpFmvWX }
