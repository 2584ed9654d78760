// Package sema implements declaration-attribute validation and semantic
// attachment: given parsed attributes on a declaration, it checks subject,
// language and target applicability, validates and constant-folds
// arguments, resolves conflicts with co-resident attributes and prior
// declarations, and attaches immutable semantic attribute records.
package sema

import (
	"fmt"

	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/source"
	"chisel/internal/target"
)

// LangOpts captures the language-mode switches the engine consults.
type LangOpts struct {
	// Lang is the active language mode, exactly one bit of ast.LangMask.
	Lang ast.LangMask
	// FastestVaryingFirst selects the launch-geometry dimension-ordering
	// convention: OpenCL-style sources list the fastest-varying dimension
	// first, SYCL-style sources list it last. Handlers must never assume
	// one convention.
	FastestVaryingFirst bool
}

// Options is the opaque check configuration the applicability checker reads
// once; the CLI/config layer fills it in.
type Options struct {
	// DisabledGroups suppresses whole check groups by catalog feature name
	// ("fpga", "multiversion", "offload") or the pseudo-group "capability".
	DisabledGroups map[string]bool
	// MaxDiagnostics caps the bag when the checker owns it.
	MaxDiagnostics int
}

// Checker validates and attaches attributes for one translation unit.
// It is strictly single-threaded; nested declarator parses push and pop
// delayed-diagnostic pools in stack order.
type Checker struct {
	reporter diag.Reporter
	target   *target.Info
	lang     LangOpts
	opts     Options

	// pool is the innermost delayed-diagnostic pool, nil outside any
	// declaration parse.
	pool *diag.DelayedPool

	unit *Unit
}

// NewChecker builds a Checker. A nil unit gets a fresh one; a nil target
// defaults to the host-style x86_64 target.
func NewChecker(reporter diag.Reporter, tgt *target.Info, lang LangOpts, opts Options) *Checker {
	if tgt == nil {
		tgt = target.New("x86_64-unknown-linux-gnu")
	}
	if lang.Lang == 0 {
		lang.Lang = ast.LangC
	}
	return &Checker{
		reporter: reporter,
		target:   tgt,
		lang:     lang,
		opts:     opts,
		unit:     NewUnit(),
	}
}

// Unit returns the per-compilation state (pragma-weak tables, multiversion
// bookkeeping).
func (c *Checker) Unit() *Unit {
	return c.unit
}

func (c *Checker) report(code diag.Code, span source.Span, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(c.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (c *Checker) warn(code diag.Code, span source.Span, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportWarning(c.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

// reportNote emits an error with one secondary location attached.
func (c *Checker) reportNote(code diag.Code, span source.Span, noteSpan source.Span, note string, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(c.reporter, code, span, msg); b != nil {
		b.WithNote(noteSpan, note).Emit()
	}
}

// warnNote emits a warning with one secondary location attached.
func (c *Checker) warnNote(code diag.Code, span source.Span, noteSpan source.Span, note string, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportWarning(c.reporter, code, span, msg); b != nil {
		b.WithNote(noteSpan, note).Emit()
	}
}

// groupDisabled reports whether configuration switched off a check group.
func (c *Checker) groupDisabled(group string) bool {
	return group != "" && c.opts.DisabledGroups[group]
}
