// Package loader parses RV32 ELF program images and copies their loadable
// segments into simulator memory.
package loader

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/rvsim/rv32sim/vm"
)

// Segment is one PT_LOAD program-header entry, grounded on
// original_source/src/sim_env.rs's ElfInfo segment extraction.
type Segment struct {
	VAddr      uint32
	FileSize   uint32
	MemSize    uint32
	Data       []byte
	Executable bool
	Writable   bool
}

// Image is a parsed ELF program: its entry point, loadable segments, and
// symbol table, matching original_source/src/sim_env.rs's ElfInfo.
type Image struct {
	EntryPC  uint32
	Segments []Segment
	symbols  map[string]uint32
}

// Load parses path as a 32-bit little-endian RV32 ELF executable.
func Load(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: %s: not a 32-bit ELF", path)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: %s: not an EM_RISCV image (got %s)", path, f.Machine)
	}

	img := &Image{EntryPC: uint32(f.Entry), symbols: map[string]uint32{}}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if prog.Filesz > 0 {
			if _, err := prog.ReadAt(data, 0); err != nil {
				return nil, fmt.Errorf("loader: %s: reading PT_LOAD segment at 0x%08x: %w", path, prog.Vaddr, err)
			}
		}
		img.Segments = append(img.Segments, Segment{
			VAddr:      uint32(prog.Vaddr),
			FileSize:   uint32(prog.Filesz),
			MemSize:    uint32(prog.Memsz),
			Data:       data,
			Executable: prog.Flags&elf.PF_X != 0,
			Writable:   prog.Flags&elf.PF_W != 0,
		})
	}

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, fmt.Errorf("loader: %s: reading symbol table: %w", path, err)
	}
	for _, sym := range syms {
		if sym.Name != "" {
			img.symbols[sym.Name] = uint32(sym.Value)
		}
	}

	return img, nil
}

// FindSymbol looks up name in the image's symbol table, matching
// original_source/src/sim_env.rs's ElfInfo::find_symbol.
func (img *Image) FindSymbol(name string) (uint32, bool) {
	addr, ok := img.symbols[name]
	return addr, ok
}

// LoadRawBinary reads path as a flat, unstructured binary image and copies
// it into mem starting at loadAddr, for program images with no ELF headers
// (e.g. hand-assembled blobs). There is no entry-point or symbol metadata;
// callers must supply an explicit entry point.
func LoadRawBinary(mem *vm.Memory, path string, loadAddr uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: reading raw binary %s: %w", path, err)
	}
	if err := mem.WriteBytes(loadAddr, data); err != nil {
		return fmt.Errorf("loader: raw binary %s exceeds memory region: %w", path, err)
	}
	return nil
}

// LoadSegments copies every PT_LOAD segment's file bytes into mem at its
// virtual address and zero-fills the remainder up to MemSize (BSS),
// matching original_source/src/sim_env.rs's load_segments_into_memory.
func LoadSegments(mem *vm.Memory, img *Image) error {
	for _, seg := range img.Segments {
		if seg.FileSize > 0 {
			if err := mem.WriteBytes(seg.VAddr, seg.Data); err != nil {
				return fmt.Errorf("loader: segment at 0x%08x exceeds memory region: %w", seg.VAddr, err)
			}
		}
		if seg.MemSize > seg.FileSize {
			bssStart := seg.VAddr + seg.FileSize
			bssLen := int(seg.MemSize - seg.FileSize)
			if err := mem.Fill(bssStart, bssLen); err != nil {
				return fmt.Errorf("loader: bss fill at 0x%08x exceeds memory region: %w", bssStart, err)
			}
		}
	}
	return nil
}
