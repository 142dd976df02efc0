package vm

import "fmt"

// AccessSize names a load/store width for bounds and alignment checking.
type AccessSize int

const (
	Byte AccessSize = 1
	Half AccessSize = 2
	Word AccessSize = 4
)

// MemoryError reports a failed memory access, grounded on
// original_source/src/memory.rs's MemError.
type MemoryError struct {
	Addr   uint32
	Size   AccessSize
	Kind   string // "unaligned" or "out-of-range"
	Base   uint32
	Region uint32
}

func (e *MemoryError) Error() string {
	if e.Kind == "unaligned" {
		return fmt.Sprintf("memory: unaligned access at 0x%08x (size %d)", e.Addr, e.Size)
	}
	return fmt.Sprintf("memory: address 0x%08x (size %d) out of range [0x%08x, 0x%08x)", e.Addr, e.Size, e.Base, e.Base+e.Region)
}

// Memory is a flat byte-addressable little-endian address space with a base
// offset, matching original_source/src/memory.rs's FlatMemory.
type Memory struct {
	data []byte
	base uint32
}

// NewMemory allocates a zero-filled region of size bytes starting at base.
func NewMemory(size int, base uint32) *Memory {
	return &Memory{data: make([]byte, size), base: base}
}

// Base returns the region's starting address.
func (m *Memory) Base() uint32 { return m.base }

// Size returns the region's length in bytes.
func (m *Memory) Size() int { return len(m.data) }

func (m *Memory) bounds(addr uint32, size AccessSize) (int, error) {
	if size == Half && addr%2 != 0 {
		return 0, &MemoryError{Addr: addr, Size: size, Kind: "unaligned"}
	}
	if size == Word && addr%4 != 0 {
		return 0, &MemoryError{Addr: addr, Size: size, Kind: "unaligned"}
	}
	if addr < m.base {
		return 0, &MemoryError{Addr: addr, Size: size, Kind: "out-of-range", Base: m.base, Region: uint32(len(m.data))}
	}
	rel := addr - m.base
	end := uint64(rel) + uint64(size)
	if end > uint64(len(m.data)) {
		return 0, &MemoryError{Addr: addr, Size: size, Kind: "out-of-range", Base: m.base, Region: uint32(len(m.data))}
	}
	return int(rel), nil
}

// Read8 loads a single byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	rel, err := m.bounds(addr, Byte)
	if err != nil {
		return 0, err
	}
	return m.data[rel], nil
}

// Read16 loads a little-endian halfword. addr must be 2-byte aligned.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	rel, err := m.bounds(addr, Half)
	if err != nil {
		return 0, err
	}
	return uint16(m.data[rel]) | uint16(m.data[rel+1])<<8, nil
}

// Read32 loads a little-endian word. addr must be 4-byte aligned.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	rel, err := m.bounds(addr, Word)
	if err != nil {
		return 0, err
	}
	return uint32(m.data[rel]) | uint32(m.data[rel+1])<<8 |
		uint32(m.data[rel+2])<<16 | uint32(m.data[rel+3])<<24, nil
}

// Write8 stores a single byte.
func (m *Memory) Write8(addr uint32, v uint8) error {
	rel, err := m.bounds(addr, Byte)
	if err != nil {
		return err
	}
	m.data[rel] = v
	return nil
}

// Write16 stores a little-endian halfword. addr must be 2-byte aligned.
func (m *Memory) Write16(addr uint32, v uint16) error {
	rel, err := m.bounds(addr, Half)
	if err != nil {
		return err
	}
	m.data[rel] = byte(v)
	m.data[rel+1] = byte(v >> 8)
	return nil
}

// Write32 stores a little-endian word. addr must be 4-byte aligned.
func (m *Memory) Write32(addr uint32, v uint32) error {
	rel, err := m.bounds(addr, Word)
	if err != nil {
		return err
	}
	m.data[rel] = byte(v)
	m.data[rel+1] = byte(v >> 8)
	m.data[rel+2] = byte(v >> 16)
	m.data[rel+3] = byte(v >> 24)
	return nil
}

// WriteBytes copies src into the region starting at addr, unaligned and
// unchecked against AccessSize, but still bounds-checked byte-for-byte.
func (m *Memory) WriteBytes(addr uint32, src []byte) error {
	for i, b := range src {
		if err := m.Write8(addr+uint32(i), b); err != nil {
			return fmt.Errorf("memory: write_bytes at offset %d: %w", i, err)
		}
	}
	return nil
}

// ReadBytes copies n bytes starting at addr into a new slice.
func (m *Memory) ReadBytes(addr uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := m.Read8(addr + uint32(i))
		if err != nil {
			return nil, fmt.Errorf("memory: read_bytes at offset %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// Fill zero-fills [addr, addr+n).
func (m *Memory) Fill(addr uint32, n int) error {
	for i := 0; i < n; i++ {
		if err := m.Write8(addr+uint32(i), 0); err != nil {
			return err
		}
	}
	return nil
}
