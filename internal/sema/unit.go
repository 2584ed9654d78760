package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/source"
)

type aliasRecord struct {
	decl   *ast.Decl
	target string
	span   source.Span
}

// Unit is the per-translation-unit state that outlives individual
// declarations: pragma-weak requests waiting for their declaration,
// definitions seen so far for alias resolution, and the multiversion
// variant registry used for duplicate-target detection across sibling
// declarations of the same function.
type Unit struct {
	pendingWeak map[string]source.Span
	defined     map[string]*ast.Decl
	aliases     []aliasRecord

	// variants maps a function name to the canonical target strings of its
	// multiversion variants seen so far.
	variants map[string]map[string]source.Span
}

func NewUnit() *Unit {
	return &Unit{
		pendingWeak: map[string]source.Span{},
		defined:     map[string]*ast.Decl{},
		variants:    map[string]map[string]source.Span{},
	}
}

// AddPragmaWeak records a `#pragma weak name` request. When a declaration of
// that name is later processed, an implicit weak attribute is synthesized.
func (u *Unit) AddPragmaWeak(name string, span source.Span) {
	if u == nil || name == "" {
		return
	}
	u.pendingWeak[name] = span
}

// applyPendingWeak runs after a declaration's attribute list is processed,
// attaching the implicit weak attribute a prior pragma requested. A later
// explicit weak on the same declaration is a silent duplicate.
func (u *Unit) applyPendingWeak(c *Checker, d *ast.Decl) {
	if u == nil || d == nil {
		return
	}
	span, ok := u.pendingWeak[d.Name]
	if !ok {
		return
	}
	if d.Kind != ast.DeclFunction && d.Kind != ast.DeclVar {
		return
	}
	delete(u.pendingWeak, d.Name)
	c.attach(d, &ast.Attr{Kind: ast.AttrWeak, Span: span, Implicit: true})
}

// NoteDefinition records a defined entity; alias targets resolve against
// this set at end of unit.
func (u *Unit) NoteDefinition(d *ast.Decl) {
	if u == nil || d == nil || d.Name == "" || !d.IsDefinition {
		return
	}
	u.defined[d.Name] = d
}

func (u *Unit) addAlias(d *ast.Decl, target string, span source.Span) {
	u.aliases = append(u.aliases, aliasRecord{decl: d, target: target, span: span})
}

// checkVariant reports whether one canonical multiversion target string
// collides with a sibling variant already recorded for the function.
func (u *Unit) checkVariant(c *Checker, fn, canon string, span source.Span) bool {
	if u == nil || fn == "" {
		return true
	}
	if prev, dup := u.variants[fn][canon]; dup {
		c.reportNote(diag.CflDuplicateTarget, span, prev,
			"previous variant with the same target is here",
			"multiversioning target '%s' duplicates a previous variant of '%s'", canon, fn)
		return false
	}
	return true
}

// recordVariant registers one canonical target string. Called only once the
// attribute actually attached, so a variant dropped by a conflict never
// occupies a slot.
func (u *Unit) recordVariant(fn, canon string, span source.Span) {
	if u == nil || fn == "" {
		return
	}
	set := u.variants[fn]
	if set == nil {
		set = map[string]source.Span{}
		u.variants[fn] = set
	}
	set[canon] = span
}

// Finish runs the end-of-unit checks: every alias target must name an
// entity defined somewhere in the unit.
func (c *Checker) Finish() {
	u := c.unit
	if u == nil {
		return
	}
	for _, ar := range u.aliases {
		if _, ok := u.defined[ar.target]; !ok {
			c.report(diag.SemAliasUndefined, ar.span,
				"alias target '%s' is not defined in this translation unit", ar.target)
		}
	}
}
