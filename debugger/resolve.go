package debugger

import (
	"strconv"
	"strings"

	"github.com/rvsim/rv32sim/vm"
)

// abiRegNames gives the standard RISC-V calling-convention name for each
// integer register, used alongside the raw x<N> form when parsing and
// displaying register references.
var abiRegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// intRegNumber resolves a register reference (x<N> or its ABI name) to a
// register number. "pc" is not handled here; callers check it separately.
func intRegNumber(name string) (int, bool) {
	name = strings.ToLower(name)
	for i, n := range abiRegNames {
		if n == name {
			return i, true
		}
	}
	if strings.HasPrefix(name, "x") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n <= 31 {
			return n, true
		}
	}
	return 0, false
}

// fpRegNumber resolves an "f<N>" single-precision FP register reference.
func fpRegNumber(name string) (int, bool) {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n <= 31 {
			return n, true
		}
	}
	return 0, false
}

// csrNameToAddr maps the lowercase mnemonic of every CSR this simulator
// registers to its address, for "print mstatus"-style lookups.
var csrNameToAddr = map[string]uint16{
	"mstatus": vm.CsrMstatus, "misa": vm.CsrMisa, "mie": vm.CsrMie, "mtvec": vm.CsrMtvec,
	"mscratch": vm.CsrMscratch, "mepc": vm.CsrMepc, "mcause": vm.CsrMcause, "mtval": vm.CsrMtval, "mip": vm.CsrMip,
	"sstatus": vm.CsrSstatus, "sie": vm.CsrSie, "stvec": vm.CsrStvec, "sscratch": vm.CsrSscratch,
	"sepc": vm.CsrSepc, "scause": vm.CsrScause, "stval": vm.CsrStval, "sip": vm.CsrSip, "satp": vm.CsrSatp,
	"fflags": vm.CsrFflags, "frm": vm.CsrFrm, "fcsr": vm.CsrFcsr,
}

// ResolveValue evaluates a print/set/watch target: "pc", an integer register
// (x<N> or its ABI name), an FP register (f<N>), a CSR mnemonic, a *addr or
// [addr] memory dereference, a symbol, or a numeric literal. Unlike the
// upstream expression evaluator this replaces, it has no arithmetic —
// one target per expression.
func (d *Debugger) ResolveValue(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)
	lower := strings.ToLower(expr)

	if lower == "pc" {
		return d.Env.CPU.PC, nil
	}
	if n, ok := intRegNumber(lower); ok {
		return d.Env.CPU.Status.ReadInt(uint8(n)), nil
	}
	if n, ok := fpRegNumber(lower); ok {
		return d.Env.CPU.Status.ReadFP(uint8(n)), nil
	}
	if addr, ok := csrNameToAddr[lower]; ok {
		return d.Env.CPU.Status.CSR.Read(addr), nil
	}
	if strings.HasPrefix(expr, "*") {
		addr, err := d.ResolveAddress(expr[1:])
		if err != nil {
			return 0, err
		}
		return d.Env.Memory.Read32(addr)
	}
	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addr, err := d.ResolveAddress(strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]"))
		if err != nil {
			return 0, err
		}
		return d.Env.Memory.Read32(addr)
	}

	return d.ResolveAddress(expr)
}

// SetValue writes value to a register or memory target, the counterpart to
// ResolveValue for the "set" command.
func (d *Debugger) SetValue(target string, value uint32) error {
	target = strings.TrimSpace(target)
	lower := strings.ToLower(target)

	if lower == "pc" {
		d.Env.CPU.PC = value
		return nil
	}
	if n, ok := intRegNumber(lower); ok {
		d.Env.CPU.Status.WriteInt(uint8(n), value)
		return nil
	}
	if n, ok := fpRegNumber(lower); ok {
		d.Env.CPU.Status.WriteFP(uint8(n), value)
		return nil
	}
	if addr, ok := csrNameToAddr[lower]; ok {
		d.Env.CPU.Status.CSR.Write(addr, value)
		return nil
	}
	if strings.HasPrefix(target, "*") {
		addr, err := d.ResolveAddress(target[1:])
		if err != nil {
			return err
		}
		return d.Env.Memory.Write32(addr, value)
	}

	return &unresolvedTargetError{target: target}
}

type unresolvedTargetError struct{ target string }

func (e *unresolvedTargetError) Error() string {
	return "invalid set target: " + e.target
}

// parseWatchExpression parses a watch expression into either a register
// reference or a resolved memory address.
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register int, address uint32, err error) {
	expr = strings.ToLower(strings.TrimSpace(expr))

	if n, ok := intRegNumber(expr); ok {
		return true, n, 0, nil
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, err := d.ResolveAddress(addrStr)
		if err != nil {
			return false, 0, 0, err
		}
		return false, 0, addr, nil
	}

	addr, err := d.ResolveAddress(expr)
	if err != nil {
		return false, 0, 0, &unresolvedTargetError{target: expr}
	}
	return false, 0, addr, nil
}
