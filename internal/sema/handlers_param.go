package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/types"
)

// resolveParamIdx folds an attribute argument into a normalized parameter
// position. Source numbering is 1-based; when the declaration has an
// implicit object parameter it occupies source index 1 and shifts every
// explicit parameter by one. allowThis admits the implicit object parameter
// itself as a valid referent.
func (c *Checker) resolveParamIdx(d *ast.Decl, e *ast.Expr, name string, argNo int, allowThis bool) (ast.ParamIdx, bool) {
	if e == nil || e.IsValueDependent() {
		return ast.ParamIdx{}, false
	}
	mag, neg, ok := foldInt(e)
	if !ok {
		c.report(diag.ValNotConstant, e.Span,
			"argument %d of '%s' is not an integer constant", argNo, name)
		return ast.ParamIdx{}, false
	}
	hasThis := d.HasImplicitThis()
	total := uint64(d.ParamCount())
	if hasThis {
		total++
	}
	if neg || mag < 1 || mag > total {
		c.report(diag.ValBadParamIndex, e.Span,
			"argument %d of '%s' must name a parameter of '%s' (1..%d)",
			argNo, name, d.Name, total)
		return ast.ParamIdx{}, false
	}
	idx := ast.ParamIdx{Source: uint32(mag), HasThis: hasThis}
	if idx.IsThis() && !allowThis {
		c.report(diag.ValParamIndexThis, e.Span,
			"argument %d of '%s' may not name the implicit object parameter", argNo, name)
		return ast.ParamIdx{}, false
	}
	return idx, true
}

// paramType returns the declared type of the referenced explicit parameter.
func paramType(d *ast.Decl, idx ast.ParamIdx) *types.Type {
	i := idx.ASTIndex()
	if i >= len(d.Params) {
		return nil
	}
	return d.Params[i].Type
}

func (c *Checker) handleNonNull(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	indices := make([]ast.ParamIdx, 0, pa.NumArgs())
	for i := 0; i < pa.NumArgs(); i++ {
		e, ok := c.argExpr(pa, i)
		if !ok {
			continue
		}
		idx, ok := c.resolveParamIdx(d, e, spec.Name, i+1, false)
		if !ok {
			continue
		}
		if t := paramType(d, idx); t != nil && !t.IsPointer() {
			c.warn(diag.ValParamNotPointer, e.Span,
				"parameter %d of '%s' is not a pointer; '%s' entry ignored",
				idx.Source, d.Name, spec.Name)
			continue
		}
		indices = append(indices, idx)
	}
	if pa.NumArgs() > 0 && len(indices) == 0 {
		return
	}
	// The bare form applies to every pointer parameter; Indices stays empty.
	c.attach(d, &ast.Attr{Kind: ast.AttrNonNull, Span: pa.Span, Indices: indices})
}

// checkPointerReturn enforces that the function yields a pointer, which the
// allocation attributes describe.
func (c *Checker) checkPointerReturn(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) bool {
	if d.Return != nil && !d.Return.IsPointer() {
		c.report(diag.ValReturnNotPointer, pa.Span,
			"'%s' requires '%s' to return a pointer", spec.Name, d.Name)
		return false
	}
	return true
}

func (c *Checker) handleAllocSize(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkPointerReturn(d, pa, spec) {
		return
	}
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	elem, ok := c.resolveParamIdx(d, e, spec.Name, 1, false)
	if !ok {
		return
	}
	if t := paramType(d, elem); t != nil && !t.IsInteger() {
		c.report(diag.ValParamNotInteger, e.Span,
			"parameter %d of '%s' must have integer type", elem.Source, d.Name)
		return
	}
	a := &ast.Attr{Kind: ast.AttrAllocSize, Span: pa.Span, Idx: elem}
	if pa.NumArgs() == 2 {
		e2, ok := c.argExpr(pa, 1)
		if !ok {
			return
		}
		count, ok := c.resolveParamIdx(d, e2, spec.Name, 2, false)
		if !ok {
			return
		}
		if t := paramType(d, count); t != nil && !t.IsInteger() {
			c.report(diag.ValParamNotInteger, e2.Span,
				"parameter %d of '%s' must have integer type", count.Source, d.Name)
			return
		}
		a.Idx2 = count
		a.HasIdx2 = true
	}
	c.attach(d, a)
}

func (c *Checker) handleAllocAlign(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkPointerReturn(d, pa, spec) {
		return
	}
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	idx, ok := c.resolveParamIdx(d, e, spec.Name, 1, false)
	if !ok {
		return
	}
	if t := paramType(d, idx); t != nil && !t.IsInteger() {
		c.report(diag.ValParamNotInteger, e.Span,
			"parameter %d of '%s' must have integer type", idx.Source, d.Name)
		return
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrAllocAlign, Span: pa.Span, Idx: idx})
}

// formatArchetypes are the recognized format-string families.
var formatArchetypes = map[string]bool{
	"printf": true, "scanf": true, "strftime": true, "strfmon": true,
}

func (c *Checker) handleFormat(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	archetype, ok := c.argIdent(pa, 0)
	if !ok {
		return
	}
	if !formatArchetypes[archetype] {
		c.warn(diag.SemFormatArchetype, pa.ArgSpan(0),
			"unknown format archetype '%s'; attribute ignored", archetype)
		return
	}

	e1, ok := c.argExpr(pa, 1)
	if !ok {
		return
	}
	strIdx, ok := c.resolveParamIdx(d, e1, spec.Name, 2, false)
	if !ok {
		return
	}
	if t := paramType(d, strIdx); t != nil && !t.IsPointer() {
		c.report(diag.ValParamNotPointer, e1.Span,
			"parameter %d of '%s' must be a format string pointer", strIdx.Source, d.Name)
		return
	}

	// The first-to-check index may be 0, meaning the variadic arguments are
	// unavailable for checking (vprintf-style wrappers); strftime requires
	// exactly that form.
	e2, ok := c.argExpr(pa, 2)
	if !ok {
		return
	}
	hasThis := d.HasImplicitThis()
	total := int64(d.ParamCount())
	if hasThis {
		total++
	}
	// One past the named parameters points at the first variadic argument.
	first, ok := c.evalIntegerInRange(e2, spec.Name, 3, 0, total+1)
	if !ok {
		return
	}
	if archetype == "strftime" && first != 0 {
		c.report(diag.ValOutOfRange, e2.Span,
			"strftime formats take no variadic arguments; argument 3 of '%s' must be 0", spec.Name)
		return
	}

	a := &ast.Attr{
		Kind: ast.AttrFormat,
		Span: pa.Span,
		Str:  archetype,
		Idx:  strIdx,
	}
	if first != 0 {
		a.Idx2 = ast.ParamIdx{Source: uint32(first), HasThis: hasThis}
		a.HasIdx2 = true
	}
	c.attach(d, a)
}
