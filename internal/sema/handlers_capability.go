package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
)

// defaultCapabilityRole is the role attached when `capability` names none.
const defaultCapabilityRole = "mutex"

// checkCapabilityExpr validates one capability argument. The grammar is
// closed: identifiers, member accesses and `this` denoting capability-typed
// entities; `!`, `&&`, `||` combining them; `&` and `*` adjusting
// pointer-ness; parentheses and casts as transparent wrappers. The string
// sentinels "" and "*" name the unspecified and the universal capability.
// Value-dependent sub-expressions validate at instantiation, not here.
func (c *Checker) checkCapabilityExpr(e *ast.Expr) bool {
	if e == nil {
		return false
	}
	if e.IsValueDependent() {
		return true
	}
	switch e.Kind {
	case ast.ExprStringLit:
		if e.Str == "" || e.Str == "*" {
			return true
		}
		c.warn(diag.SemCapabilityExprInvalid, e.Span,
			"string '%s' is not a capability; only \"\" and \"*\" are recognized", e.Str)
		return false
	case ast.ExprIdent, ast.ExprMember, ast.ExprThis:
		if e.Type != nil && !e.Type.ReferencesCapability() {
			c.warn(diag.SemCapabilityTypeMissing, e.Span,
				"'%s' does not name a capability type", exprLabel(e))
			return false
		}
		return true
	case ast.ExprParen, ast.ExprCast:
		return c.checkCapabilityExpr(e.X)
	case ast.ExprUnary:
		switch e.UOp {
		case ast.UnaryNot, ast.UnaryDeref, ast.UnaryAddrOf:
			return c.checkCapabilityExpr(e.X)
		}
	case ast.ExprBinary:
		switch e.BOp {
		case ast.BinaryLAnd, ast.BinaryLOr:
			return c.checkCapabilityExpr(e.X) && c.checkCapabilityExpr(e.Y)
		}
	}
	c.warn(diag.SemCapabilityExprInvalid, e.Span,
		"expression is not a valid capability expression")
	return false
}

func exprLabel(e *ast.Expr) string {
	if e.Str != "" {
		return e.Str
	}
	return "expression"
}

// capabilityArgs validates every argument as a capability expression and
// collects the valid ones; invalid entries are dropped individually.
func (c *Checker) capabilityArgs(pa *ast.ParsedAttr, from int) []*ast.Expr {
	exprs := make([]*ast.Expr, 0, pa.NumArgs())
	for i := from; i < pa.NumArgs(); i++ {
		e, ok := c.argExpr(pa, i)
		if !ok {
			continue
		}
		if !c.checkCapabilityExpr(e) {
			continue
		}
		exprs = append(exprs, e)
	}
	return exprs
}

// handleCapability marks a record type as a capability, with an optional
// role name for diagnostics ("mutex", "role", ...).
func (c *Checker) handleCapability(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	role := defaultCapabilityRole
	if pa.NumArgs() == 1 {
		arg := pa.Arg(0)
		switch {
		case arg.Kind == ast.ArgString:
			role = arg.Str
		case arg.Kind == ast.ArgIdent:
			role = normalizeIdent(arg.Ident)
		default:
			c.report(diag.ArgNotIdentifier, arg.Span,
				"argument 1 of '%s' must be a role name", spec.Name)
			return
		}
	}
	if c.attach(d, &ast.Attr{Kind: ast.AttrCapability, Span: pa.Span, Str: role}) {
		if d.Record != nil {
			d.Record.CapabilityMarker = role
		}
	}
}

func (c *Checker) handleScopedLockable(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if c.attach(d, &ast.Attr{Kind: ast.AttrScopedLockable, Span: pa.Span}) {
		if d.Record != nil {
			d.Record.ScopedLockable = true
		}
	}
}

// handleGuardedBy covers guarded_by and pt_guarded_by: one capability
// expression naming what protects the annotated field.
func (c *Checker) handleGuardedBy(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	if !c.checkCapabilityExpr(e) {
		return
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Exprs: []*ast.Expr{e}})
}

// handleCapabilityList covers requires/acquire/release/excludes and the
// acquisition-ordering attributes: zero or more capability expressions. The
// zero-argument acquire/release forms default to the enclosing object, which
// must itself be a capability type.
func (c *Checker) handleCapabilityList(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if pa.NumArgs() == 0 {
		rec := d.EnclosingRecord()
		if rec == nil || !rec.IsCapability() {
			c.warn(diag.SemNoEnclosingCapability, pa.Span,
				"'%s' without arguments requires the enclosing type to be a capability", spec.Name)
			return
		}
		c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span})
		return
	}
	exprs := c.capabilityArgs(pa, 0)
	if len(exprs) == 0 {
		return
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Exprs: exprs})
}

// handleTryAcquire validates the leading success value, then the trailing
// capability list. The success-value-only form defaults to the enclosing
// object, which must itself be a capability type.
func (c *Checker) handleTryAcquire(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	success, ok := c.evalIntegerInRange(e, spec.Name, 1, 0, 1)
	if !ok {
		return
	}
	if pa.NumArgs() == 1 {
		rec := d.EnclosingRecord()
		if rec == nil || !rec.IsCapability() {
			c.warn(diag.SemNoEnclosingCapability, pa.Span,
				"'%s' without capability arguments requires the enclosing type to be a capability", spec.Name)
			return
		}
	}
	exprs := c.capabilityArgs(pa, 1)
	if pa.NumArgs() > 1 && len(exprs) == 0 {
		return
	}
	c.attach(d, &ast.Attr{
		Kind:  ast.AttrTryAcquireCapability,
		Span:  pa.Span,
		Val:   uint64(success),
		Exprs: exprs,
	})
}

func (c *Checker) handleLockReturned(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	if !c.checkCapabilityExpr(e) {
		return
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrLockReturned, Span: pa.Span, Exprs: []*ast.Expr{e}})
}
