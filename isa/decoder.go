package isa

import "fmt"

// Decoder is the interface every per-extension instruction table satisfies,
// grounded on original_source/src/isa/decoder.rs's InstrDecoder trait.
type Decoder interface {
	// Name identifies the decoder for conflict-error messages.
	Name() string
	// Decode attempts to decode raw, returning ok=false if no entry matches.
	Decode(raw uint32) (Decoded, bool)
	// HandledOpcodes lists the primary opcodes this decoder claims. A nil
	// slice marks a wildcard decoder that may match any opcode.
	HandledOpcodes() []uint32
	// AllowOpcodeOverlap reports whether this decoder tolerates sharing an
	// opcode bucket with another decoder. Table decoders set it explicitly:
	// RV32I, RV32M, Zicsr and Priv allow overlap; RV32F does not.
	AllowOpcodeOverlap() bool
}

// tableDecoder adapts a flat []Def table (plus the opcode it's keyed on) to
// the Decoder interface.
type tableDecoder struct {
	name         string
	defs         []Def
	allowOverlap bool
	opcodes      []uint32
}

func newTableDecoder(name string, defs []Def, allowOverlap bool) Decoder {
	seen := map[uint32]bool{}
	var opcodes []uint32
	for _, d := range defs {
		op := d.Match & 0x7F
		if !seen[op] {
			seen[op] = true
			opcodes = append(opcodes, op)
		}
	}
	return &tableDecoder{name: name, defs: defs, allowOverlap: allowOverlap, opcodes: opcodes}
}

func (t *tableDecoder) Name() string { return t.name }

func (t *tableDecoder) Decode(raw uint32) (Decoded, bool) {
	for _, d := range t.defs {
		if d.Matches(raw) {
			return d.DecodeInstr(raw), true
		}
	}
	return Decoded{}, false
}

func (t *tableDecoder) HandledOpcodes() []uint32   { return t.opcodes }
func (t *tableDecoder) AllowOpcodeOverlap() bool   { return t.allowOverlap }

// Registry dispatches a raw word to the first registered decoder whose
// bucket matches, falling back to Illegal. Registration enforces spec.md
// §4.D's build-time conflict rule: two decoders may not both claim the same
// opcode unless both explicitly allow overlap.
type Registry struct {
	decoders  []Decoder
	opcodeMap [128][]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds d to the registry, rejecting it if it conflicts with an
// already-registered decoder over a shared opcode.
func (r *Registry) Register(d Decoder) error {
	opcodes := d.HandledOpcodes()
	if opcodes == nil {
		// Wildcard decoder: must not collide with any existing bucket.
		for op := range r.opcodeMap {
			for _, idx := range r.opcodeMap[op] {
				if !r.decoders[idx].AllowOpcodeOverlap() || !d.AllowOpcodeOverlap() {
					return fmt.Errorf("isa: decoder %q conflicts with %q on opcode 0x%02x", d.Name(), r.decoders[idx].Name(), op)
				}
			}
		}
		idx := len(r.decoders)
		r.decoders = append(r.decoders, d)
		for op := range r.opcodeMap {
			r.opcodeMap[op] = append(r.opcodeMap[op], idx)
		}
		return nil
	}

	for _, op := range opcodes {
		for _, idx := range r.opcodeMap[op] {
			if !r.decoders[idx].AllowOpcodeOverlap() || !d.AllowOpcodeOverlap() {
				return fmt.Errorf("isa: decoder %q conflicts with %q on opcode 0x%02x", d.Name(), r.decoders[idx].Name(), op)
			}
		}
	}

	idx := len(r.decoders)
	r.decoders = append(r.decoders, d)
	for _, op := range opcodes {
		r.opcodeMap[op] = append(r.opcodeMap[op], idx)
	}
	return nil
}

// Decode dispatches raw to the bucket of decoders registered for its opcode,
// trying each in registration order, falling back to Illegal.
func (r *Registry) Decode(raw uint32) Decoded {
	op := Opcode(raw)
	for _, idx := range r.opcodeMap[op] {
		if dec, ok := r.decoders[idx].Decode(raw); ok {
			return dec
		}
	}
	return Illegal(raw)
}
