package vm

import (
	"errors"
	"math"

	"github.com/rvsim/rv32sim/isa"
)

// Single-precision fflags bits, per the standard RISC-V fcsr encoding.
const (
	fflagNX uint32 = 1 << 0 // inexact
	fflagUF uint32 = 1 << 1 // underflow
	fflagOF uint32 = 1 << 2 // overflow
	fflagDZ uint32 = 1 << 3 // divide by zero
	fflagNV uint32 = 1 << 4 // invalid operation
)

const canonicalNaN32 uint32 = 0x7FC00000

// RoundingMode names an RV32F rounding-mode encoding.
type RoundingMode uint8

const (
	RoundNearestEven RoundingMode = 0
	RoundTowardZero  RoundingMode = 1
	RoundDown        RoundingMode = 2
	RoundUp          RoundingMode = 3
	RoundNearestMax  RoundingMode = 4
	roundDynamic     RoundingMode = 7
)

// decodeRoundingMode resolves an instruction's rm field, reading the frm
// CSR when rm signals "dynamic" (0b111), matching rv32f.rs's
// decode_rounding_mode. ok is false for the reserved encodings 0b101/0b110
// (and for a dynamic rm whose frm holds one of them), in which case the
// caller must refuse the instruction rather than execute it.
func (c *CPU) decodeRoundingMode(rm uint8) (mode RoundingMode, ok bool) {
	resolved := RoundingMode(rm)
	if resolved == roundDynamic {
		resolved = RoundingMode(c.Status.CSR.Read(CsrFrm) & 0x7)
	}
	switch resolved {
	case RoundNearestEven, RoundTowardZero, RoundDown, RoundUp, RoundNearestMax:
		return resolved, true
	default:
		return 0, false
	}
}

// requireRoundingMode resolves rm, falling through to Illegal (per spec.md
// §4.I/§9: no-op, CPU.State becomes StateIllegalInstruction rather than a
// trap) and reporting ok=false if it names a reserved encoding.
func (c *CPU) requireRoundingMode(rm uint8, raw uint32) (mode RoundingMode, ok bool) {
	mode, ok = c.decodeRoundingMode(rm)
	if !ok {
		c.setIllegal(raw)
	}
	return mode, ok
}

// roundToFloat32 rounds the exact (or double-precision-exact-enough) real
// value v to the nearest float32 under rm, rather than the std conversion's
// fixed round-to-nearest-even. Computing the operation in float64 first and
// rounding once here (rather than letting Go's native float32 operators
// round at float32 precision) is what makes the directed/ties-away modes
// meaningful, grounded on the rounding contract original_source/src/cpu/exu/
// rv32f.rs gets from the simple_soft_float crate's RoundingMode parameter.
func roundToFloat32(v float64, rm RoundingMode) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return float32(v)
	}
	nearest := float32(v) // round-to-nearest-even cast
	switch rm {
	case RoundNearestEven:
		return nearest
	case RoundTowardZero:
		if v > 0 && float64(nearest) > v {
			return math.Nextafter32(nearest, 0)
		}
		if v < 0 && float64(nearest) < v {
			return math.Nextafter32(nearest, 0)
		}
		return nearest
	case RoundDown:
		if float64(nearest) > v {
			return math.Nextafter32(nearest, float32(math.Inf(-1)))
		}
		return nearest
	case RoundUp:
		if float64(nearest) < v {
			return math.Nextafter32(nearest, float32(math.Inf(1)))
		}
		return nearest
	case RoundNearestMax:
		down := roundToFloat32(v, RoundDown)
		up := roundToFloat32(v, RoundUp)
		if down == up {
			return down
		}
		mid := (float64(down) + float64(up)) / 2
		switch {
		case v > mid:
			return up
		case v < mid:
			return down
		default: // exact tie: away from zero
			if v >= 0 {
				return up
			}
			return down
		}
	default:
		return nearest
	}
}

// raiseFPFlags ORs additional sticky bits into fflags, matching rv32f.rs's
// apply_fp_state.
func (c *CPU) raiseFPFlags(flags uint32) {
	bank := c.Status.CSR
	bank.ForceWrite(CsrFflags, bank.Read(CsrFflags)|flags)
}

func f32bits(f float32) uint32     { return math.Float32bits(f) }
func f32fromBits(b uint32) float32 { return math.Float32frombits(b) }

func isSignalingNaN32(bits uint32) bool {
	return (bits&0x7FC00000) == 0x7F800000 && (bits&0x003FFFFF) != 0
}

// canonicalizeResult replaces a NaN result with the canonical NaN bit
// pattern and raises NV if either operand was already NaN, matching the
// IEEE-754/RISC-V convention rv32f.rs implements via apply_fp_state.
func (c *CPU) canonicalizeResult(result float32, operandsNaN bool) uint32 {
	if math.IsNaN(float64(result)) {
		if operandsNaN {
			c.raiseFPFlags(fflagNV)
		}
		return canonicalNaN32
	}
	return f32bits(result)
}

// executeRV32F implements the single-precision floating-point extension.
func (c *CPU) executeRV32F(mem *Memory, in isa.Instr) (bool, error) {
	s := c.Status
	switch in.Op {
	case isa.OpFlw:
		// Byte-decomposes on misalignment rather than trapping for it, same
		// as the integer executor's doLoad (spec.md §4.G/§9).
		addr := s.ReadInt(in.Rs1) + uint32(in.Imm)
		v, err := readBytes32(mem, addr)
		if err != nil {
			c.trapLoad(addr, err)
			return true, nil
		}
		s.WriteFP(in.Rd, v)
		return false, nil
	case isa.OpFsw:
		addr := s.ReadInt(in.Rs1) + uint32(in.Imm)
		if err := writeBytes32(mem, addr, s.ReadFP(in.Rs2)); err != nil {
			cause := CauseStoreAccessFault
			var me *MemoryError
			if errors.As(err, &me) && me.Kind == "unaligned" {
				cause = CauseStoreAddressMisaligned
			}
			c.PC = c.TakeTrap(cause, addr)
			return true, nil
		}
		return false, nil
	}

	a := f32fromBits(s.ReadFP(in.Rs1))
	b := f32fromBits(s.ReadFP(in.Rs2))
	eitherNaN := math.IsNaN(float64(a)) || math.IsNaN(float64(b))

	switch in.Op {
	case isa.OpFaddS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(float64(a)+float64(b), rm), eitherNaN))
	case isa.OpFsubS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(float64(a)-float64(b), rm), eitherNaN))
	case isa.OpFmulS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(float64(a)*float64(b), rm), eitherNaN))
	case isa.OpFdivS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		if b == 0 && !eitherNaN {
			c.raiseFPFlags(fflagDZ)
		}
		s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(float64(a)/float64(b), rm), eitherNaN))
	case isa.OpFsqrtS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		if a < 0 && !math.IsNaN(float64(a)) {
			c.raiseFPFlags(fflagNV)
			s.WriteFP(in.Rd, canonicalNaN32)
		} else {
			s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(math.Sqrt(float64(a)), rm), eitherNaN))
		}

	case isa.OpFmaddS, isa.OpFmsubS, isa.OpFnmsubS, isa.OpFnmaddS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		c3 := f32fromBits(s.ReadFP(in.Rs3))
		anyNaN := eitherNaN || math.IsNaN(float64(c3))
		var r float64
		switch in.Op {
		case isa.OpFmaddS:
			r = float64(a)*float64(b) + float64(c3)
		case isa.OpFmsubS:
			r = float64(a)*float64(b) - float64(c3)
		case isa.OpFnmsubS:
			r = -(float64(a) * float64(b)) + float64(c3)
		case isa.OpFnmaddS:
			r = -(float64(a) * float64(b)) - float64(c3)
		}
		s.WriteFP(in.Rd, c.canonicalizeResult(roundToFloat32(r, rm), anyNaN))

	case isa.OpFsgnjS:
		s.WriteFP(in.Rd, (f32bits(a)&0x7FFFFFFF)|(f32bits(b)&0x80000000))
	case isa.OpFsgnjnS:
		s.WriteFP(in.Rd, (f32bits(a)&0x7FFFFFFF)|(^f32bits(b)&0x80000000))
	case isa.OpFsgnjxS:
		s.WriteFP(in.Rd, f32bits(a)^(f32bits(b)&0x80000000))

	case isa.OpFminS, isa.OpFmaxS:
		s.WriteFP(in.Rd, c.handleMinMax(in.Op, a, b))

	case isa.OpFeqS:
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			if isSignalingNaN32(f32bits(a)) || isSignalingNaN32(f32bits(b)) {
				c.raiseFPFlags(fflagNV)
			}
			s.WriteInt(in.Rd, 0)
		} else {
			s.WriteInt(in.Rd, boolToWord(a == b))
		}
	case isa.OpFltS:
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			c.raiseFPFlags(fflagNV)
			s.WriteInt(in.Rd, 0)
		} else {
			s.WriteInt(in.Rd, boolToWord(a < b))
		}
	case isa.OpFleS:
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			c.raiseFPFlags(fflagNV)
			s.WriteInt(in.Rd, 0)
		} else {
			s.WriteInt(in.Rd, boolToWord(a <= b))
		}

	case isa.OpFclassS:
		s.WriteInt(in.Rd, fclass32(f32bits(a)))
	case isa.OpFmvXW:
		s.WriteInt(in.Rd, f32bits(a))
	case isa.OpFmvWX:
		s.WriteFP(in.Rd, s.ReadInt(in.Rs1))

	case isa.OpFcvtWS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		s.WriteInt(in.Rd, uint32(c.cvtFloatToInt32(a, rm)))
	case isa.OpFcvtWuS:
		rm, ok := c.requireRoundingMode(in.Rm, in.Raw)
		if !ok {
			return false, nil
		}
		s.WriteInt(in.Rd, c.cvtFloatToUint32(a, rm))
	case isa.OpFcvtSW:
		s.WriteFP(in.Rd, f32bits(float32(int32(s.ReadInt(in.Rs1)))))
	case isa.OpFcvtSWu:
		s.WriteFP(in.Rd, f32bits(float32(s.ReadInt(in.Rs1))))
	}
	return false, nil
}

// handleMinMax applies RISC-V's NaN-propagation and signed-zero rules for
// FMIN.S/FMAX.S, matching rv32f.rs's handle_min_max.
func (c *CPU) handleMinMax(op isa.Op, a, b float32) uint32 {
	aNaN, bNaN := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	if isSignalingNaN32(f32bits(a)) || isSignalingNaN32(f32bits(b)) {
		c.raiseFPFlags(fflagNV)
	}
	switch {
	case aNaN && bNaN:
		return canonicalNaN32
	case aNaN:
		return f32bits(b)
	case bNaN:
		return f32bits(a)
	}
	if a == 0 && b == 0 {
		aNeg := f32bits(a)&0x80000000 != 0
		bNeg := f32bits(b)&0x80000000 != 0
		if op == isa.OpFminS {
			if aNeg || bNeg {
				return 0x80000000
			}
			return 0
		}
		if aNeg && bNeg {
			return 0x80000000
		}
		return 0
	}
	if op == isa.OpFminS {
		if a < b {
			return f32bits(a)
		}
		return f32bits(b)
	}
	if a > b {
		return f32bits(a)
	}
	return f32bits(b)
}

// fclass32 builds the 10-bit FCLASS.S classification, matching rv32f.rs's
// fclass.
func fclass32(bits uint32) uint32 {
	sign := bits&0x80000000 != 0
	exp := (bits >> 23) & 0xFF
	mant := bits & 0x7FFFFF

	switch {
	case exp == 0xFF && mant != 0:
		if mant&0x400000 == 0 {
			return 1 << 8 // signaling NaN
		}
		return 1 << 9 // quiet NaN
	case exp == 0xFF:
		if sign {
			return 1 << 0 // -inf
		}
		return 1 << 7 // +inf
	case exp == 0 && mant == 0:
		if sign {
			return 1 << 3 // -0
		}
		return 1 << 4 // +0
	case exp == 0:
		if sign {
			return 1 << 2 // negative subnormal
		}
		return 1 << 5 // positive subnormal
	default:
		if sign {
			return 1 << 1 // negative normal
		}
		return 1 << 6 // positive normal
	}
}

func roundFloat(v float64, rm RoundingMode) float64 {
	switch rm {
	case RoundTowardZero:
		return math.Trunc(v)
	case RoundDown:
		return math.Floor(v)
	case RoundUp:
		return math.Ceil(v)
	case RoundNearestMax:
		return math.Round(v)
	default: // RoundNearestEven
		return math.RoundToEven(v)
	}
}

// cvtFloatToInt32 converts a to a signed 32-bit integer with RISC-V's
// saturating FCVT semantics: out-of-range or NaN values saturate to
// INT32_MAX/INT32_MIN (NaN saturates to INT32_MAX), raising NV.
func (c *CPU) cvtFloatToInt32(a float32, rm RoundingMode) int32 {
	if math.IsNaN(float64(a)) {
		c.raiseFPFlags(fflagNV)
		return math.MaxInt32
	}
	r := roundFloat(float64(a), rm)
	if r != float64(a) {
		c.raiseFPFlags(fflagNX)
	}
	switch {
	case r >= 2147483648.0:
		c.raiseFPFlags(fflagNV)
		return math.MaxInt32
	case r < -2147483648.0:
		c.raiseFPFlags(fflagNV)
		return math.MinInt32
	}
	return int32(r)
}

// cvtFloatToUint32 is cvtFloatToInt32's unsigned counterpart: values that
// round below zero saturate to 0, while NaN and overflow saturate to
// UINT32_MAX per the RISC-V convention for unsigned FCVT; each raises NV.
func (c *CPU) cvtFloatToUint32(a float32, rm RoundingMode) uint32 {
	if math.IsNaN(float64(a)) {
		c.raiseFPFlags(fflagNV)
		return math.MaxUint32
	}
	r := roundFloat(float64(a), rm)
	if r != float64(a) {
		c.raiseFPFlags(fflagNX)
	}
	switch {
	case r >= 4294967296.0:
		c.raiseFPFlags(fflagNV)
		return math.MaxUint32
	case r < 0:
		c.raiseFPFlags(fflagNV)
		return 0
	}
	return uint32(r)
}
