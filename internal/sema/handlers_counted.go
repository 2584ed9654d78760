package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/types"
)

// handleCountedBy validates the count relationship between two sibling
// fields and rewrites the annotated field's type to carry it. The annotated
// field must be flexible-array-like; the named count field must exist in the
// enclosing aggregate (anonymous members are looked through) and have
// non-boolean integer type.
func (c *Checker) handleCountedBy(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	countName, ok := c.argIdent(pa, 0)
	if !ok {
		return
	}

	if d.Type == nil || !d.Type.IsFlexibleArrayLike() {
		c.report(diag.SemCountedByNotFlexible, pa.Span,
			"'%s' only applies to flexible array members; '%s' is not one",
			spec.Name, d.Name)
		return
	}

	rec := d.EnclosingRecord()
	if rec == nil {
		c.report(diag.SemCountedByNoField, pa.ArgSpan(0),
			"'%s' has no enclosing aggregate to look up '%s' in", d.Name, countName)
		return
	}
	field, found := rec.LookupField(countName)
	if !found {
		c.report(diag.SemCountedByNoField, pa.ArgSpan(0),
			"count field '%s' does not exist in '%s'", countName, rec.Name)
		return
	}
	ft := field.Type.Desugar()
	if ft == nil || !ft.IsInteger() || ft.IsBool() {
		c.report(diag.SemCountedByBadFieldType, pa.ArgSpan(0),
			"count field '%s' must have non-boolean integer type", countName)
		return
	}

	if !c.attach(d, &ast.Attr{Kind: ast.AttrCountedBy, Span: pa.Span, Str: countName}) {
		return
	}
	// The count relationship lives in the type system from here on: the
	// field's element type is wrapped so later layers see it without
	// consulting the attribute list.
	d.Type = types.CountAttributed(d.Type, countName)
}
