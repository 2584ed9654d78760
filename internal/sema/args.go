package sema

import (
	"fmt"

	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/types"
)

// checkArity verifies the supplied argument count against the catalog
// schema. Violations report, mark the attribute invalid, and stop further
// processing of that attribute.
func (c *Checker) checkArity(pa *ast.ParsedAttr, spec ast.AttrSpec) bool {
	n := pa.NumArgs()
	if n < spec.MinArgs {
		c.report(diag.ArgCountTooFew, pa.Span,
			"'%s' requires at least %d argument%s, %d given",
			spec.Name, spec.MinArgs, plural(spec.MinArgs), n)
		pa.SetInvalid()
		return false
	}
	if !spec.Variadic() && n > spec.MaxArgs {
		c.report(diag.ArgCountTooMany, pa.ArgSpan(spec.MaxArgs),
			"'%s' takes at most %d argument%s, %d given",
			spec.Name, spec.MaxArgs, plural(spec.MaxArgs), n)
		pa.SetInvalid()
		return false
	}
	return true
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// argIdent reads argument i as a bare identifier.
func (c *Checker) argIdent(pa *ast.ParsedAttr, i int) (string, bool) {
	arg := pa.Arg(i)
	if arg == nil {
		c.report(diag.ArgCountTooFew, pa.Span, "'%s' is missing argument %d", pa.NormalizedName(), i+1)
		return "", false
	}
	switch arg.Kind {
	case ast.ArgIdent:
		return normalizeIdent(arg.Ident), true
	case ast.ArgExpr:
		// The parser delivers plain identifiers in expression position for
		// some spellings; accept the unambiguous case.
		if arg.Expr != nil && arg.Expr.Kind == ast.ExprIdent {
			return normalizeIdent(arg.Expr.Str), true
		}
	}
	c.report(diag.ArgNotIdentifier, arg.Span,
		"argument %d of '%s' must be an identifier", i+1, pa.NormalizedName())
	return "", false
}

// argString reads argument i as a validated ASCII string literal. When the
// source supplied a bare identifier instead, the diagnostic carries a
// quote-it fix-it.
func (c *Checker) argString(pa *ast.ParsedAttr, i int) (string, bool) {
	arg := pa.Arg(i)
	if arg == nil {
		c.report(diag.ArgCountTooFew, pa.Span, "'%s' is missing argument %d", pa.NormalizedName(), i+1)
		return "", false
	}
	var s string
	switch {
	case arg.Kind == ast.ArgString:
		s = arg.Str
	case arg.Kind == ast.ArgExpr && arg.Expr != nil && arg.Expr.Kind == ast.ExprStringLit:
		s = arg.Expr.Str
	case arg.Kind == ast.ArgIdent:
		if c.reporter != nil {
			diag.ReportError(c.reporter, diag.ArgIdentifierQuoted, arg.Span,
				fmt.Sprintf("argument %d of '%s' must be a string literal", i+1, pa.NormalizedName())).
				WithFix("quote the identifier", diag.FixEdit{Span: arg.Span, NewText: `"` + arg.Ident + `"`}).
				Emit()
		}
		return "", false
	default:
		c.report(diag.ArgNotString, arg.Span,
			"argument %d of '%s' must be a string literal", i+1, pa.NormalizedName())
		return "", false
	}
	if !asciiOnly(s) {
		c.report(diag.ArgStringNotASCII, arg.Span,
			"argument %d of '%s' must be an ASCII string", i+1, pa.NormalizedName())
		return "", false
	}
	return s, true
}

// argExpr reads argument i as an expression.
func (c *Checker) argExpr(pa *ast.ParsedAttr, i int) (*ast.Expr, bool) {
	arg := pa.Arg(i)
	if arg == nil {
		c.report(diag.ArgCountTooFew, pa.Span, "'%s' is missing argument %d", pa.NormalizedName(), i+1)
		return nil, false
	}
	switch arg.Kind {
	case ast.ArgExpr:
		if arg.Expr != nil {
			return arg.Expr, true
		}
	case ast.ArgIdent:
		// Identifiers are expressions in capability position.
		return &ast.Expr{Kind: ast.ExprIdent, Str: arg.Ident, Span: arg.Span}, true
	case ast.ArgString:
		return ast.StringLit(arg.Str, arg.Span), true
	}
	c.report(diag.ArgNotExpression, arg.Span,
		"argument %d of '%s' must be an expression", i+1, pa.NormalizedName())
	return nil, false
}

// argType reads argument i as a parsed type.
func (c *Checker) argType(pa *ast.ParsedAttr, i int) (*types.Type, bool) {
	arg := pa.Arg(i)
	if arg == nil {
		c.report(diag.ArgCountTooFew, pa.Span, "'%s' is missing argument %d", pa.NormalizedName(), i+1)
		return nil, false
	}
	if arg.Kind != ast.ArgType || arg.Type == nil {
		c.report(diag.ArgNotType, arg.Span,
			"argument %d of '%s' must be a type", i+1, pa.NormalizedName())
		return nil, false
	}
	return arg.Type, true
}

// normalizeIdent strips the alternate-token decoration from identifier
// arguments, mirroring attribute-name normalization (`__open__` → `open`).
func normalizeIdent(name string) string {
	if len(name) >= 4 && name[0] == '_' && name[1] == '_' &&
		name[len(name)-1] == '_' && name[len(name)-2] == '_' {
		return name[2 : len(name)-2]
	}
	return name
}

func asciiOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
