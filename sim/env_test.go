package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionsFromString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Extensions
	}{
		{"base only", "rv32i", Extensions{}},
		{"multiply extension", "rv32im", Extensions{M: true}},
		{"m+f+zicsr", "rv32imfzicsr", Extensions{M: true, F: true, Zicsr: true}},
		{"g shorthand", "rv32g", Extensions{M: true, F: true, D: true, Zicsr: true, Priv: true}},
		{"vector scaffolding", "rv32imv", Extensions{M: true, V: true}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionsFromString(tt.in))
		})
	}
}

func TestFromConfigRawBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bin")

	// addi x1, x0, 42
	raw := []byte{0x93, 0x00, 0xA0, 0x02}
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg := DefaultConfig()
	cfg.MemorySize = 4096
	cfg.BinPath = path
	cfg.BinLoadAddr = 0x100

	env, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x100), env.CPU.PC, "entry pc should default to the raw binary's load address")

	require.NoError(t, env.Step())
	assert.Equal(t, uint32(42), env.CPU.Status.ReadInt(1))
}

func TestRunISATestPassAndFail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemorySize = 4096
	env, err := FromConfig(cfg)
	require.NoError(t, err)

	env.tohostAddr = 0x100
	env.hasTohost = true
	env.fromhostAddr = 0x104
	env.hasFromhost = true

	require.NoError(t, env.Memory.Write32(env.tohostAddr, 1))
	result, err := env.RunISATest(10)
	require.NoError(t, err)
	assert.Equal(t, TestPass, result.Kind)

	env.ClearHTIFMailboxes()
	failCode := uint32(3)
	require.NoError(t, env.Memory.Write32(env.tohostAddr, (failCode<<1)|1))
	result, err = env.RunISATest(10)
	require.NoError(t, err)
	assert.Equal(t, TestFail, result.Kind)
	assert.Equal(t, failCode, result.Code)
}

func TestRunISATestTimeoutWithoutTohost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemorySize = 4096
	env, err := FromConfig(cfg)
	require.NoError(t, err)

	result, err := env.RunISATest(5)
	require.NoError(t, err)
	assert.Equal(t, TestTimeout, result.Kind)
}
