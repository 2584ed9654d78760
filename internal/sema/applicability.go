package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
)

// subjectOf maps a declaration to its applicability category. Function-like
// variables (function-pointer typed) count as functions so calling
// convention and friends apply to them.
func subjectOf(d *ast.Decl) ast.SubjectMask {
	if d == nil {
		return ast.SubjNone
	}
	switch d.Kind {
	case ast.DeclFunction:
		return ast.SubjFunction
	case ast.DeclVar:
		if d.FunctionLike() {
			return ast.SubjFunction | ast.SubjVariable
		}
		return ast.SubjVariable
	case ast.DeclParam:
		return ast.SubjParam
	case ast.DeclField:
		return ast.SubjField
	case ast.DeclRecord:
		return ast.SubjRecord | ast.SubjType
	case ast.DeclTypedef:
		return ast.SubjType
	case ast.DeclEnum:
		return ast.SubjEnum | ast.SubjType
	case ast.DeclNamespace:
		return ast.SubjNamespace
	case ast.DeclUsing:
		return ast.SubjUsing
	}
	return ast.SubjNone
}

// checkApplicability gates one parsed attribute by subject, language mode
// and target. It reports and returns false when processing of this one
// attribute must stop; the rest of the declaration's list continues.
func (c *Checker) checkApplicability(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) bool {
	// Target gate first: an attribute that does not exist for the active
	// target (host and auxiliary both) is treated like an unrecognized
	// attribute, not an error. Shared headers in multi-target compiles
	// legitimately carry a foreign target's attributes.
	if !c.target.Has(spec.Feature) {
		c.warn(diag.AplUnsupportedTarget, pa.Span,
			"'%s' is not supported on target '%s'; attribute ignored",
			spec.Name, c.target.Triple)
		return false
	}
	if c.groupDisabled(spec.Feature) {
		c.warn(diag.AplCheckDisabled, pa.Span,
			"'%s' checks are disabled by configuration; attribute ignored", spec.Name)
		return false
	}

	if !spec.AllowsLang(c.lang.Lang) {
		if pa.Syntax == ast.SyntaxKeyword {
			c.report(diag.AplUnsupportedLanguage, pa.Span,
				"'%s' is not available in this language mode", spec.Name)
		} else {
			c.warn(diag.AplUnsupportedLanguage, pa.Span,
				"'%s' is not available in this language mode; attribute ignored", spec.Name)
		}
		return false
	}

	if !spec.Allows(subjectOf(d)) {
		// Keyword-syntax attributes carry a stricter contract.
		if pa.Syntax == ast.SyntaxKeyword {
			c.report(diag.AplWrongSubject, pa.Span,
				"'%s' cannot be applied to a %s; it applies to %s",
				spec.Name, d.Kind, spec.Subjects.Describe())
		} else {
			c.warn(diag.AplWrongSubject, pa.Span,
				"'%s' does not apply to a %s (allowed: %s); attribute ignored",
				spec.Name, d.Kind, spec.Subjects.Describe())
		}
		return false
	}
	return true
}
