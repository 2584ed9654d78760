package ast

import (
	"chisel/internal/source"
	"chisel/internal/types"
)

// ExprKind discriminates the small expression sum-type attribute arguments
// are made of. This is deliberately not the front end's full expression
// grammar: only the shapes the engine validates (integer constants and the
// capability-expression grammar) are representable.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntLit
	ExprStringLit
	ExprIdent
	ExprMember
	ExprParen
	ExprCast
	ExprUnary
	ExprBinary
	ExprThis
	// ExprDependent is an opaque value-dependent expression inside a
	// not-yet-instantiated template. It cannot be evaluated, only stored.
	ExprDependent
)

type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota
	UnaryMinus
	UnaryPlus
	UnaryDeref
	UnaryAddrOf
)

type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryShl
	BinaryShr
	BinaryLAnd
	BinaryLOr
)

// Expr is one node of an attribute argument expression.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type *types.Type // static type when the front end resolved one

	Val  uint64 // ExprIntLit payload
	Neg  bool   // ExprIntLit: literal was spelled negative
	Str  string // ExprStringLit payload, ExprIdent/ExprMember name
	X    *Expr  // operand / member base / cast operand / paren inner
	Y    *Expr  // right operand
	UOp  UnaryOp
	BOp  BinaryOp
	Ref  *Decl // resolved declaration for ExprIdent/ExprMember, when bound
}

// IsValueDependent reports whether any part of the expression is
// template-dependent and therefore not evaluable yet.
func (e *Expr) IsValueDependent() bool {
	if e == nil {
		return false
	}
	if e.Kind == ExprDependent {
		return true
	}
	return e.X.IsValueDependent() || e.Y.IsValueDependent()
}

func IntLit(v uint64, span source.Span) *Expr {
	return &Expr{Kind: ExprIntLit, Val: v, Span: span}
}

func NegIntLit(v uint64, span source.Span) *Expr {
	return &Expr{Kind: ExprIntLit, Val: v, Neg: true, Span: span}
}

func StringLit(s string, span source.Span) *Expr {
	return &Expr{Kind: ExprStringLit, Str: s, Span: span}
}

func Ident(name string, ty *types.Type, span source.Span) *Expr {
	return &Expr{Kind: ExprIdent, Str: name, Type: ty, Span: span}
}

func Dependent(span source.Span) *Expr {
	return &Expr{Kind: ExprDependent, Span: span}
}
