package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// No config flag, no dinoprep.hcl in cwd of the test binary.
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "symlink", cfg.LinkMode)
	assert.False(t, cfg.Merge)
	assert.Equal(t, "agnostic", cfg.Generator.Preprocess)
	assert.Equal(t, ".", cfg.Generator.OutDir)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinoprep.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
link_mode = "copy"
merge     = true

generator {
  preprocess = "informed"
}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "copy", cfg.LinkMode)
	assert.True(t, cfg.Merge)
	assert.Equal(t, "informed", cfg.Generator.Preprocess)
	// Unset block attribute falls back to the default.
	assert.Equal(t, ".", cfg.Generator.OutDir)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`link_mode = `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
