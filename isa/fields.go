// Package isa decodes RV32 instruction words into a closed set of
// semantic records and manages the per-extension instruction tables that
// produce them.
package isa

// Opcode returns the low 7 bits of a raw instruction word.
func Opcode(raw uint32) uint32 { return raw & 0x7F }

// Rd extracts the destination register field, bits [11:7].
func Rd(raw uint32) uint8 { return uint8((raw >> 7) & 0x1F) }

// Funct3 extracts bits [14:12].
func Funct3(raw uint32) uint32 { return (raw >> 12) & 0x7 }

// Rs1 extracts the first source register field, bits [19:15].
func Rs1(raw uint32) uint8 { return uint8((raw >> 15) & 0x1F) }

// Rs2 extracts the second source register field, bits [24:20].
func Rs2(raw uint32) uint8 { return uint8((raw >> 20) & 0x1F) }

// Rs3 extracts the R4-type third source register field, bits [31:27].
func Rs3(raw uint32) uint8 { return uint8((raw >> 27) & 0x1F) }

// Funct7 extracts bits [31:25].
func Funct7(raw uint32) uint32 { return (raw >> 25) & 0x7F }

// Shamt extracts the 5-bit shift amount, bits [24:20].
func Shamt(raw uint32) uint8 { return uint8((raw >> 20) & 0x1F) }

// Rm extracts the 3-bit FP rounding-mode field, bits [14:12] (same bits as Funct3).
func Rm(raw uint32) uint8 { return uint8((raw >> 12) & 0x7) }

// CsrAddr extracts the 12-bit CSR address, bits [31:20].
func CsrAddr(raw uint32) uint16 { return uint16((raw >> 20) & 0xFFF) }

// CsrZimm extracts the zero-extended 5-bit CSR immediate, bits [19:15].
func CsrZimm(raw uint32) uint8 { return uint8((raw >> 15) & 0x1F) }

// ImmI sign-extends the I-type immediate, word[31:20].
func ImmI(raw uint32) int32 { return int32(raw) >> 20 }

// ImmS assembles and sign-extends the S-type immediate:
// {word[31:25], word[11:7]}.
func ImmS(raw uint32) int32 {
	imm := ((raw >> 25) << 5) | ((raw >> 7) & 0x1F)
	return (int32(imm) << 20) >> 20
}

// ImmB assembles and sign-extends the B-type immediate:
// {word[31], word[7], word[30:25], word[11:8], 0}.
func ImmB(raw uint32) int32 {
	imm := ((raw >> 31) << 12) |
		(((raw >> 7) & 0x1) << 11) |
		(((raw >> 25) & 0x3F) << 5) |
		(((raw >> 8) & 0xF) << 1)
	return (int32(imm) << 19) >> 19
}

// ImmU extracts the U-type immediate: word[31:12] shifted to position, low
// 12 bits zero. No further sign-extension is needed; the high bit of the
// word already occupies bit 31 of the result.
func ImmU(raw uint32) int32 { return int32(raw & 0xFFFFF000) }

// ImmJ assembles and sign-extends the J-type immediate:
// {word[31], word[19:12], word[20], word[30:21], 0}.
func ImmJ(raw uint32) int32 {
	imm := ((raw >> 31) << 20) |
		(((raw >> 12) & 0xFF) << 12) |
		(((raw >> 20) & 0x1) << 11) |
		(((raw >> 21) & 0x3FF) << 1)
	return (int32(imm) << 11) >> 11
}
