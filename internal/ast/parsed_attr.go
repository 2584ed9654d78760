package ast

import (
	"strings"

	"chisel/internal/source"
	"chisel/internal/types"
)

// AttrSyntax records which surface syntax produced a parsed attribute.
// Keyword-syntax attributes carry a stricter contract: applicability
// failures escalate from warnings to errors.
type AttrSyntax uint8

const (
	SyntaxGNU AttrSyntax = iota
	SyntaxCXX11
	SyntaxDeclspec
	SyntaxKeyword
)

// ArgKind discriminates the shapes a positional attribute argument can take.
type ArgKind uint8

const (
	ArgIdent ArgKind = iota
	ArgString
	ArgExpr
	ArgType
)

// AttrArg is one positional argument as the parser delivered it.
type AttrArg struct {
	Kind  ArgKind
	Ident string
	Str   string
	Expr  *Expr
	Type  *types.Type
	Span  source.Span
}

// ParsedAttr is the parser's attribute representation: a name plus a
// syntactically parsed argument list. Read-only to the engine except for
// the invalid flag and the one-shot processing cache.
type ParsedAttr struct {
	Scope  string // namespace qualifier: "gnu", "clang", "intel", ""
	Name   string // spelling as written, decoration included
	Syntax AttrSyntax
	Span   source.Span
	Args   []AttrArg

	invalid  bool
	memo     uint32
	memoSet  bool
}

// NormalizedName strips the alternate-token decoration (`__name__` → `name`).
func (p *ParsedAttr) NormalizedName() string {
	name := p.Name
	if len(name) >= 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		name = name[2 : len(name)-2]
	}
	return name
}

// NumArgs returns the number of arguments the source supplied.
func (p *ParsedAttr) NumArgs() int {
	return len(p.Args)
}

// Arg returns the zero-based argument, or nil when out of range.
func (p *ParsedAttr) Arg(i int) *AttrArg {
	if i < 0 || i >= len(p.Args) {
		return nil
	}
	return &p.Args[i]
}

// ArgSpan returns the precise span of argument i, falling back to the
// attribute span when the argument does not exist.
func (p *ParsedAttr) ArgSpan(i int) source.Span {
	if arg := p.Arg(i); arg != nil && !arg.Span.Empty() {
		return arg.Span
	}
	return p.Span
}

// SetInvalid marks the attribute as structurally broken; the dispatch
// driver skips invalid attributes.
func (p *ParsedAttr) SetInvalid() {
	p.invalid = true
}

func (p *ParsedAttr) IsInvalid() bool {
	return p.invalid
}

// SetMemo stores the one-shot processing cache (e.g. a resolved calling
// convention) so a handler invoked twice does not recompute it. The first
// write wins.
func (p *ParsedAttr) SetMemo(v uint32) {
	if p.memoSet {
		return
	}
	p.memo = v
	p.memoSet = true
}

// Memo reads the processing cache.
func (p *ParsedAttr) Memo() (uint32, bool) {
	return p.memo, p.memoSet
}

// IsValueDependent reports whether any expression argument is template
// value-dependent.
func (p *ParsedAttr) IsValueDependent() bool {
	for i := range p.Args {
		if p.Args[i].Kind == ArgExpr && p.Args[i].Expr.IsValueDependent() {
			return true
		}
	}
	return false
}
