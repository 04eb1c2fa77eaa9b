// Package config loads operator defaults from an optional HCL file.
// Command-line flags always win over file values.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultPath is probed when no --config flag is given.
const DefaultPath = "dinoprep.hcl"

// Generator holds defaults for the register command.
type Generator struct {
	Preprocess string `hcl:"preprocess,optional"`
	OutDir     string `hcl:"out_dir,optional"`
}

// Config is the top-level tool configuration.
//
//	link_mode = "symlink"
//	merge     = false
//
//	generator {
//	  preprocess = "agnostic"
//	  out_dir    = "."
//	}
type Config struct {
	LinkMode string `hcl:"link_mode,optional"`
	Merge    bool   `hcl:"merge,optional"`

	Generator *Generator `hcl:"generator,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LinkMode: "symlink",
		Generator: &Generator{
			Preprocess: "agnostic",
			OutDir:     ".",
		},
	}
}

// Load reads the HCL file at path and overlays it on the defaults. An
// empty path probes DefaultPath; if that does not exist the defaults
// are returned as-is. An explicitly given path must exist, and any
// parse or decode error is fatal.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	cfg := Default()
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}
	if cfg.Generator == nil {
		cfg.Generator = Default().Generator
	}
	if cfg.Generator.Preprocess == "" {
		cfg.Generator.Preprocess = "agnostic"
	}
	if cfg.Generator.OutDir == "" {
		cfg.Generator.OutDir = "."
	}
	if cfg.LinkMode == "" {
		cfg.LinkMode = "symlink"
	}
	return cfg, nil
}
