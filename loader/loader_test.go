package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rvsim/rv32sim/vm"
)

func TestLoadSegmentsCopiesFileBytesAndZeroFillsBSS(t *testing.T) {
	mem := vm.NewMemory(4096, 0)
	img := &Image{
		EntryPC: 0x100,
		Segments: []Segment{
			{
				VAddr:    0x100,
				FileSize: 4,
				MemSize:  8, // 4 extra BSS bytes
				Data:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
			},
		},
		symbols: map[string]uint32{"_start": 0x100},
	}

	if err := LoadSegments(mem, img); err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}

	got, err := mem.ReadBytes(0x100, 8)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}

	if addr, ok := img.FindSymbol("_start"); !ok || addr != 0x100 {
		t.Fatalf("FindSymbol(_start) = (0x%x, %v), want (0x100, true)", addr, ok)
	}
	if _, ok := img.FindSymbol("nonexistent"); ok {
		t.Fatal("expected FindSymbol to report missing symbol as not found")
	}
}

func TestLoadSegmentsRejectsOutOfRangeAddress(t *testing.T) {
	mem := vm.NewMemory(16, 0)
	img := &Image{
		Segments: []Segment{{VAddr: 0x1000, FileSize: 4, MemSize: 4, Data: []byte{1, 2, 3, 4}}},
	}
	if err := LoadSegments(mem, img); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestLoadRawBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	mem := vm.NewMemory(4096, 0)
	if err := LoadRawBinary(mem, path, 0x200); err != nil {
		t.Fatalf("LoadRawBinary: %v", err)
	}

	got, err := mem.ReadBytes(0x200, len(data))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d: got 0x%02x, want 0x%02x", i, got[i], data[i])
		}
	}
}

func TestLoadRawBinaryMissingFile(t *testing.T) {
	mem := vm.NewMemory(4096, 0)
	if err := LoadRawBinary(mem, filepath.Join(t.TempDir(), "missing.bin"), 0); err == nil {
		t.Fatal("expected error reading missing file")
	}
}
