// Package config loads the chisel.toml project file and turns it into the
// option structs the engine consumes. The engine itself never reads files
// or flags; everything arrives through this package.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"chisel/internal/ast"
	"chisel/internal/sema"
	"chisel/internal/target"
)

// Config mirrors the chisel.toml layout.
type Config struct {
	Target   TargetSection   `toml:"target"`
	Language LanguageSection `toml:"language"`
	Checks   ChecksSection   `toml:"checks"`
	Output   OutputSection   `toml:"output"`
}

// TargetSection selects the compilation target the applicability checker
// gates against.
type TargetSection struct {
	Triple string `toml:"triple"`
	// Aux is the device triple of an offload compilation, empty otherwise.
	Aux string `toml:"aux"`
	// Features force-enables capability gates beyond what the architecture
	// prefix implies.
	Features []string `toml:"features"`
}

// LanguageSection selects the language mode and the geometry dimension
// ordering convention.
type LanguageSection struct {
	Mode string `toml:"mode"` // c|cxx|objc|opencl|sycl
	// FastestVaryingFirst lists launch-geometry dimensions fastest-varying
	// first (OpenCL style) instead of last (SYCL style).
	FastestVaryingFirst bool `toml:"fastest_varying_first"`
}

// ChecksSection switches whole check groups off and caps diagnostics.
type ChecksSection struct {
	Disabled       []string `toml:"disabled"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

// OutputSection holds rendering preferences the CLI reads.
type OutputSection struct {
	Format string `toml:"format"` // pretty|json
	Color  string `toml:"color"`  // auto|on|off
}

const defaultMaxDiagnostics = 100

// Default returns the configuration used when no chisel.toml exists.
func Default() *Config {
	return &Config{
		Target:   TargetSection{Triple: "x86_64-unknown-linux-gnu"},
		Language: LanguageSection{Mode: "c"},
		Checks:   ChecksSection{MaxDiagnostics: defaultMaxDiagnostics},
		Output:   OutputSection{Format: "pretty", Color: "auto"},
	}
}

// Load parses a chisel.toml. Absent keys keep their defaults; unknown
// language modes and output formats are rejected here so the rest of the
// program never sees them.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("checks", "max_diagnostics") && cfg.Checks.MaxDiagnostics <= 0 {
		return nil, fmt.Errorf("%s: checks.max_diagnostics must be positive", path)
	}
	if _, err := langMode(cfg.Language.Mode); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch cfg.Output.Format {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("%s: unknown output.format %q (must be pretty or json)", path, cfg.Output.Format)
	}
	switch cfg.Output.Color {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("%s: unknown output.color %q (must be auto, on or off)", path, cfg.Output.Color)
	}
	return cfg, nil
}

func langMode(mode string) (ast.LangMask, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "c":
		return ast.LangC, nil
	case "cxx", "c++":
		return ast.LangCXX, nil
	case "objc":
		return ast.LangObjC, nil
	case "opencl":
		return ast.LangOpenCL, nil
	case "sycl":
		return ast.LangSYCL, nil
	}
	return 0, fmt.Errorf("unknown language.mode %q (must be c, cxx, objc, opencl or sycl)", mode)
}

// LangOpts converts the language section into the engine's form.
func (c *Config) LangOpts() sema.LangOpts {
	lang, err := langMode(c.Language.Mode)
	if err != nil {
		lang = ast.LangC
	}
	return sema.LangOpts{
		Lang:                lang,
		FastestVaryingFirst: c.Language.FastestVaryingFirst,
	}
}

// Options converts the checks section into the engine's form.
func (c *Config) Options() sema.Options {
	max := c.Checks.MaxDiagnostics
	if max <= 0 {
		max = defaultMaxDiagnostics
	}
	opts := sema.Options{MaxDiagnostics: max}
	if len(c.Checks.Disabled) > 0 {
		opts.DisabledGroups = make(map[string]bool, len(c.Checks.Disabled))
		for _, g := range c.Checks.Disabled {
			opts.DisabledGroups[strings.ToLower(strings.TrimSpace(g))] = true
		}
	}
	return opts
}

// TargetInfo builds the target the applicability checker gates against.
func (c *Config) TargetInfo() *target.Info {
	tgt := target.New(c.Target.Triple)
	if c.Target.Aux != "" {
		tgt.WithAux(target.New(c.Target.Aux))
	}
	for _, f := range c.Target.Features {
		tgt.WithFeature(strings.ToLower(strings.TrimSpace(f)))
	}
	return tgt
}
