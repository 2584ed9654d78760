package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/source"
)

// mergeShape is the canonical merge algebra an attribute kind follows, both
// for same-declaration restatement and for redeclaration merging.
//
// The source system is not uniform here: some families drop the new
// attribute on conflict, others drop the old one. The per-kind table below
// preserves that behavior per family instead of unifying it; see DESIGN.md
// before "fixing" an entry.
type mergeShape uint8

const (
	// mergeMarker: payloadless; any restatement is a silent no-op.
	mergeMarker mergeShape = iota
	// mergeIdempotent: identical payload is a silent no-op, differing
	// payload diagnoses at the first attribute with a note at the new one,
	// and the new attribute is dropped (first-wins).
	mergeIdempotent
	// mergeExplicitWins: an explicit attribute replaces an implicit or
	// inherited one; between two explicit ones, first-wins with a warning.
	mergeExplicitWins
	// mergeAccumulate: set-valued payloads union across restatements; the
	// handler performs the union itself.
	mergeAccumulate
	// mergePointwise: availability-style field-by-field merging done by the
	// handler.
	mergePointwise
)

func mergeShapeOf(k ast.AttrKind) mergeShape {
	switch k {
	case ast.AttrNoReturn, ast.AttrCold, ast.AttrHot, ast.AttrUnused,
		ast.AttrUsed, ast.AttrPacked, ast.AttrNoInline, ast.AttrAlwaysInline,
		ast.AttrWeak, ast.AttrScopedLockable, ast.AttrRegister, ast.AttrKernel:
		return mergeMarker
	case ast.AttrVisibility, ast.AttrMemory:
		return mergeExplicitWins
	case ast.AttrNoBuiltin:
		return mergeAccumulate
	case ast.AttrAvailability:
		return mergePointwise
	}
	return mergeIdempotent
}

// attach applies same-declaration duplicate policy and appends the record
// on success. It returns whether a new record was attached; a silent
// duplicate no-op returns false without diagnostics, tolerating header
// re-inclusion and macro expansion.
func (c *Checker) attach(d *ast.Decl, a *ast.Attr) bool {
	existing := d.Attrs.Get(a.Kind)
	if existing == nil {
		d.Attrs.Add(a)
		return true
	}
	switch mergeShapeOf(a.Kind) {
	case mergeMarker:
		return false
	case mergeIdempotent:
		if existing.SameValue(a) {
			return false
		}
		c.reportNote(diag.CflDuplicateMismatch, existing.Span, a.Span,
			"conflicting restatement is here",
			"attribute '%s' restated with different arguments; first one wins", a.Kind)
		return false
	case mergeExplicitWins:
		if existing.Implicit || existing.Inherited {
			d.Attrs.Replace(a)
			return true
		}
		if existing.SameValue(a) {
			return false
		}
		c.warnNote(diag.CflDuplicateMismatch, existing.Span, a.Span,
			"conflicting restatement is here",
			"attribute '%s' restated with different arguments; first one wins", a.Kind)
		return false
	case mergeAccumulate, mergePointwise:
		// Handlers for these shapes merge before calling attach and never
		// leave two records of the kind behind.
		d.Attrs.Replace(a)
		return true
	}
	return false
}

// checkMutualExclusion reports a conflict when any of the listed kinds is
// already attached; the incoming attribute loses.
func (c *Checker) checkMutualExclusion(d *ast.Decl, span source.Span, incoming ast.AttrKind, others ...ast.AttrKind) bool {
	for _, other := range others {
		if prior := d.Attrs.Get(other); prior != nil {
			c.reportNote(diag.CflMutualExclusion, span, prior.Span,
				"conflicting attribute is here",
				"attribute '%s' cannot be combined with '%s'", incoming, other)
			return false
		}
	}
	return true
}

// inheritableKinds lists the kinds the redeclaration merge engine carries
// forward from a previous declaration of the same entity.
var inheritableKinds = map[ast.AttrKind]bool{
	ast.AttrNoReturn: true, ast.AttrCold: true, ast.AttrHot: true,
	ast.AttrUsed: true, ast.AttrNoInline: true, ast.AttrAlwaysInline: true,
	ast.AttrWeak: true, ast.AttrDeprecated: true, ast.AttrAligned: true,
	ast.AttrNonNull: true, ast.AttrAllocSize: true, ast.AttrAllocAlign: true,
	ast.AttrFormat: true, ast.AttrSection: true, ast.AttrCodeSeg: true,
	ast.AttrVisibility: true, ast.AttrCallConv: true,
	ast.AttrAvailability: true, ast.AttrNoBuiltin: true,
	ast.AttrRequiresCapability: true, ast.AttrAcquireCapability: true,
	ast.AttrReleaseCapability: true, ast.AttrTryAcquireCapability: true,
	ast.AttrExcludes: true, ast.AttrLockReturned: true,
	ast.AttrTarget: true, ast.AttrTargetClones: true,
	ast.AttrCPUDispatch: true, ast.AttrCPUSpecific: true,
}

// MergeDeclAttrs reconciles the attribute sets when next is semantically
// connected to a previous declaration prev of the same entity. Each
// redeclaration keeps its own records: propagation clones, never shares.
func (c *Checker) MergeDeclAttrs(prev, next *ast.Decl) {
	if prev == nil || next == nil {
		return
	}
	next.Prev = prev
	if prev.Multiversioned {
		next.Multiversioned = true
	}
	for _, pa := range prev.Attrs.Items() {
		if !inheritableKinds[pa.Kind] {
			continue
		}
		existing := next.Attrs.Get(pa.Kind)
		if existing == nil {
			next.Attrs.Add(pa.CloneInherited())
			continue
		}
		switch mergeShapeOf(pa.Kind) {
		case mergeMarker:
			// Restating a marker across declarations is always fine.
		case mergeIdempotent:
			if existing.SameValue(pa) {
				continue
			}
			// First-declaration-wins: anchor at the first declaration's
			// attribute, note the new one, and drop the new one.
			c.reportNote(diag.CflRedeclMismatch, pa.Span, existing.Span,
				"conflicting redeclaration is here",
				"attribute '%s' conflicts with a previous declaration of '%s'",
				pa.Kind, next.Name)
			next.Attrs.Remove(pa.Kind)
			next.Attrs.Add(pa.CloneInherited())
		case mergeExplicitWins:
			if existing.Inherited || existing.Implicit {
				next.Attrs.Replace(pa.CloneInherited())
			}
			// An explicit attribute on the new declaration beats the
			// propagated one; nothing to do.
		case mergeAccumulate:
			merged := unionNames(existing, pa)
			next.Attrs.Replace(merged)
		case mergePointwise:
			// Availability records are keyed by platform; the first-record
			// lookup above is not platform-aware, so search again.
			if prior := findAvailability(next, pa.Platform); prior != nil {
				next.Attrs.Update(prior, mergeAvailabilityPair(prior, pa))
			} else {
				next.Attrs.Add(pa.CloneInherited())
			}
		}
	}
}

// unionNames merges two set-valued attributes, preserving first-seen order.
func unionNames(a, b *ast.Attr) *ast.Attr {
	cp := *a
	seen := make(map[string]bool, len(a.Names)+len(b.Names))
	names := make([]string, 0, len(a.Names)+len(b.Names))
	for _, n := range a.Names {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range b.Names {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	cp.Names = names
	return &cp
}
