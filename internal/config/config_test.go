package config

import (
	"os"
	"path/filepath"
	"testing"

	"chisel/internal/ast"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chisel.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
[target]
triple = "x86_64-unknown-linux-gnu"
aux = "spir64_fpga-unknown-unknown"
features = ["offload"]

[language]
mode = "sycl"
fastest_varying_first = false

[checks]
disabled = ["multiversion", "Capability"]
max_diagnostics = 25

[output]
format = "json"
color = "off"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lang := cfg.LangOpts()
	if lang.Lang != ast.LangSYCL || lang.FastestVaryingFirst {
		t.Fatalf("unexpected lang opts: %+v", lang)
	}

	opts := cfg.Options()
	if opts.MaxDiagnostics != 25 {
		t.Fatalf("want max 25, got %d", opts.MaxDiagnostics)
	}
	if !opts.DisabledGroups["multiversion"] || !opts.DisabledGroups["capability"] {
		t.Fatalf("disabled groups not normalized: %v", opts.DisabledGroups)
	}

	tgt := cfg.TargetInfo()
	if !tgt.Has("fpga") {
		t.Fatal("aux fpga target not wired")
	}
	if !tgt.Has("offload") {
		t.Fatal("forced feature not wired")
	}
	if !tgt.Has("multiversion") {
		t.Fatal("host x86_64 must keep multiversion")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Checks.MaxDiagnostics != defaultMaxDiagnostics {
		t.Fatalf("default max diagnostics: %d", cfg.Checks.MaxDiagnostics)
	}
	if cfg.LangOpts().Lang != ast.LangC {
		t.Fatal("default language must be C")
	}
	if cfg.Output.Format != "pretty" || cfg.Output.Color != "auto" {
		t.Fatalf("default output: %+v", cfg.Output)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []string{
		"[language]\nmode = \"fortran\"\n",
		"[output]\nformat = \"xml\"\n",
		"[output]\ncolor = \"sometimes\"\n",
		"[checks]\nmax_diagnostics = 0\n",
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc)); err == nil {
			t.Errorf("config accepted: %q", tc)
		}
	}
}
