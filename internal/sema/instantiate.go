package sema

import (
	"chisel/internal/ast"
)

// InstantiateDeclAttrs replays the attributes deferred on a template
// pattern onto one instantiation. subst maps value-dependent expressions to
// their instantiated forms; nil leaves expressions untouched (useful when
// the front end substituted in place). Deferred attributes validate exactly
// once, here; the parse-time pass only checked applicability and arity.
func (c *Checker) InstantiateDeclAttrs(pattern, inst *ast.Decl, subst func(*ast.Expr) *ast.Expr) {
	if pattern == nil || inst == nil {
		return
	}
	for _, pa := range pattern.Pending {
		if pa.IsInvalid() {
			continue
		}
		spec, known := ast.LookupAttr(pa.NormalizedName())
		if !known {
			continue
		}
		replay := substitutedCopy(pa, subst)
		c.route(inst, replay, spec)
	}
	c.postPassChecks(inst)
}

// substitutedCopy clones a parsed attribute with its expression arguments
// run through subst. The pattern's copy stays untouched so further
// instantiations replay from the original.
func substitutedCopy(pa *ast.ParsedAttr, subst func(*ast.Expr) *ast.Expr) *ast.ParsedAttr {
	if subst == nil {
		return pa
	}
	cp := &ast.ParsedAttr{
		Scope:  pa.Scope,
		Name:   pa.Name,
		Syntax: pa.Syntax,
		Span:   pa.Span,
		Args:   make([]ast.AttrArg, pa.NumArgs()),
	}
	for i := 0; i < pa.NumArgs(); i++ {
		arg := *pa.Arg(i)
		if arg.Kind == ast.ArgExpr && arg.Expr != nil && arg.Expr.IsValueDependent() {
			arg.Expr = subst(arg.Expr)
		}
		cp.Args[i] = arg
	}
	return cp
}
