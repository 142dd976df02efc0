package vm

import "github.com/rvsim/rv32sim/isa"

// executePriv implements MRET, SRET, and WFI by delegating to the trap
// unit's return-from-trap sequences, matching
// original_source/src/cpu/exu/priv_instr.rs's execute().
func (c *CPU) executePriv(in isa.Instr) (bool, error) {
	switch in.Op {
	case isa.OpMret:
		c.ExecuteMret()
		return true, nil
	case isa.OpSret:
		c.ExecuteSret()
		return true, nil
	case isa.OpWfi:
		c.ExecuteWfi()
		return false, nil
	}
	return false, nil
}
