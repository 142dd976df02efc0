package isa

import "fmt"

// Extension names an instruction-set extension this simulator can enable,
// mirroring original_source/src/isa/config.rs's IsaExtension enum.
type Extension string

const (
	ExtRV32I Extension = "RV32I"
	ExtRV32M Extension = "RV32M"
	ExtRV32F Extension = "RV32F"
	ExtZicsr Extension = "Zicsr"
	ExtPriv  Extension = "Priv"
)

// Conflict describes two table entries that can both match some raw word,
// discovered by Config.DetectConflicts.
type Conflict struct {
	Extension1, Name1 string
	Extension2, Name2 string
	ExampleRaw        uint32
}

func (c Conflict) Error() string {
	return fmt.Sprintf("isa: %s.%s conflicts with %s.%s on raw word 0x%08x",
		c.Extension1, c.Name1, c.Extension2, c.Name2, c.ExampleRaw)
}

type taggedDef struct {
	ext Extension
	def Def
}

// Config accumulates the instruction tables for a chosen set of extensions
// and builds a conflict-checked Registry from them, mirroring
// original_source/src/isa/config.rs's IsaConfig/build().
type Config struct {
	extensions map[Extension]bool
	defs       []taggedDef
}

// NewConfig returns a Config with RV32I always present, matching IsaConfig::new().
func NewConfig() *Config {
	c := &Config{extensions: map[Extension]bool{}}
	c.addExtension(ExtRV32I, RV32I)
	return c
}

func (c *Config) addExtension(ext Extension, defs []Def) {
	if c.extensions[ext] {
		return
	}
	c.extensions[ext] = true
	for _, d := range defs {
		c.defs = append(c.defs, taggedDef{ext, d})
	}
}

// WithMExtension enables RV32M. Returns c for chaining.
func (c *Config) WithMExtension() *Config { c.addExtension(ExtRV32M, RV32M); return c }

// WithFExtension enables RV32F. Returns c for chaining.
func (c *Config) WithFExtension() *Config { c.addExtension(ExtRV32F, RV32F); return c }

// WithZicsrExtension enables the CSR instruction table. Returns c for chaining.
func (c *Config) WithZicsrExtension() *Config { c.addExtension(ExtZicsr, Zicsr); return c }

// WithPrivExtension enables MRET/SRET/WFI. Returns c for chaining.
func (c *Config) WithPrivExtension() *Config { c.addExtension(ExtPriv, Priv); return c }

// Enabled reports whether ext has been added to this config.
func (c *Config) Enabled(ext Extension) bool { return c.extensions[ext] }

// ISAString renders the enabled extensions as a short mnemonic, e.g. "RV32IMFZicsr".
func (c *Config) ISAString() string {
	s := "RV32I"
	if c.extensions[ExtRV32M] {
		s += "M"
	}
	if c.extensions[ExtRV32F] {
		s += "F"
	}
	if c.extensions[ExtZicsr] {
		s += "Zicsr"
	}
	if c.extensions[ExtPriv] {
		s += "Priv"
	}
	return s
}

// DetectConflicts checks every cross-extension pair of table entries for an
// overlapping bit pattern, skipping pairs within the same extension (each
// extension's own table is assumed internally consistent), matching
// IsaConfig::detect_conflicts in original_source/src/isa/config.rs.
func (c *Config) DetectConflicts() []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(c.defs); i++ {
		for j := i + 1; j < len(c.defs); j++ {
			a, b := c.defs[i], c.defs[j]
			if a.ext == b.ext {
				continue
			}
			if a.def.Conflicts(b.def) {
				example := (a.def.Match & a.def.Mask) | (b.def.Match & b.def.Mask)
				conflicts = append(conflicts, Conflict{
					Extension1: string(a.ext), Name1: a.def.Name,
					Extension2: string(b.ext), Name2: b.def.Name,
					ExampleRaw: example,
				})
			}
		}
	}
	return conflicts
}

// Build checks for conflicts and, if none are found, assembles a Registry
// with one Decoder per enabled extension.
func (c *Config) Build() (*Registry, error) {
	if conflicts := c.DetectConflicts(); len(conflicts) > 0 {
		return nil, conflicts[0]
	}

	reg := NewRegistry()
	if err := reg.Register(NewRV32IDecoder()); err != nil {
		return nil, err
	}
	if c.extensions[ExtRV32M] {
		if err := reg.Register(NewRV32MDecoder()); err != nil {
			return nil, err
		}
	}
	if c.extensions[ExtRV32F] {
		if err := reg.Register(NewRV32FDecoder()); err != nil {
			return nil, err
		}
	}
	if c.extensions[ExtZicsr] {
		if err := reg.Register(NewZicsrDecoder()); err != nil {
			return nil, err
		}
	}
	if c.extensions[ExtPriv] {
		if err := reg.Register(NewPrivDecoder()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
