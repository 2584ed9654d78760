package sema

import (
	"fmt"

	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/source"
)

// PushParsingDecl opens a delayed-diagnostic pool for a nested declarator
// parse. declSpec marks the outermost pool of one declaration; draining
// stops there.
func (c *Checker) PushParsingDecl(declSpec bool) {
	c.pool = diag.NewDelayedPool(c.pool, declSpec)
}

// PopParsingDecl closes the innermost pool. A committed declaration emits
// the buffered diagnostics; an abandoned parse discards them. Returns the
// number of diagnostics emitted.
func (c *Checker) PopParsingDecl(committed bool) int {
	if c.pool == nil {
		return 0
	}
	pool := c.pool
	c.pool = pool.Parent()
	if !committed {
		pool.Discard()
		return 0
	}
	return pool.Drain(c.reporter)
}

// delay buffers a diagnostic in the innermost pool; with no pool open it
// reports immediately.
func (c *Checker) delay(kind diag.DelayedKind, code diag.Code, sev diag.Severity, span source.Span, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c.pool == nil {
		if c.reporter != nil {
			c.reporter.Report(code, sev, span, msg, nil, nil)
		}
		return
	}
	c.pool.Add(kind, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  span,
	})
}

// DiagnoseUse records the consequences of referring to target at useSpan:
// deprecation warnings and unavailability errors, buffered while a
// declaration parse is open so abandoned parses never leak them.
func (c *Checker) DiagnoseUse(target *ast.Decl, useSpan source.Span) {
	if target == nil {
		return
	}
	if a := target.Attrs.Get(ast.AttrDeprecated); a != nil {
		if a.Str != "" {
			c.delay(diag.DelayedDeprecation, diag.SemDeprecatedUsage, diag.SevWarning, useSpan,
				"'%s' is deprecated: %s", target.Name, a.Str)
		} else {
			c.delay(diag.DelayedDeprecation, diag.SemDeprecatedUsage, diag.SevWarning, useSpan,
				"'%s' is deprecated", target.Name)
		}
	}
	for _, a := range target.Attrs.All(ast.AttrAvailability) {
		if a.Unavailable {
			c.delay(diag.DelayedUnavailable, diag.SemUnavailableUsage, diag.SevError, useSpan,
				"'%s' is unavailable on %s", target.Name, a.Platform)
			break
		}
		if !a.DeprecatedV.Empty() {
			c.delay(diag.DelayedDeprecation, diag.SemDeprecatedUsage, diag.SevWarning, useSpan,
				"'%s' is deprecated on %s since version %s", target.Name, a.Platform, a.DeprecatedV)
		}
	}
}

// SuppressDelayed marks buffered diagnostics of one kind and code as
// superseded by a more specific check that already reported.
func (c *Checker) SuppressDelayed(kind diag.DelayedKind, code diag.Code) {
	if c.pool != nil {
		c.pool.MarkTriggered(kind, code)
	}
}
