package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
)

// defaultAlignment is the alignment attached when `aligned` has no argument:
// the largest alignment any scalar type requires.
const defaultAlignment = 16

// defaultCtorPriority is the priority used when constructor/destructor omit
// theirs; user priorities below it run earlier.
const defaultCtorPriority = 65535

// ctorPriorityMin is the lowest user priority; lower values are reserved for
// the implementation.
const ctorPriorityMin = 101

func (c *Checker) handleSimpleMarker(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	switch spec.Kind {
	case ast.AttrHot:
		if !c.checkMutualExclusion(d, pa.Span, spec.Kind, ast.AttrCold) {
			return
		}
	case ast.AttrCold:
		if !c.checkMutualExclusion(d, pa.Span, spec.Kind, ast.AttrHot) {
			return
		}
	case ast.AttrNoInline:
		if !c.checkMutualExclusion(d, pa.Span, spec.Kind, ast.AttrAlwaysInline) {
			return
		}
	case ast.AttrAlwaysInline:
		if !c.checkMutualExclusion(d, pa.Span, spec.Kind, ast.AttrNoInline) {
			return
		}
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span})
}

func (c *Checker) handleWeak(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	c.attach(d, &ast.Attr{Kind: ast.AttrWeak, Span: pa.Span})
}

func (c *Checker) handleDeprecated(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	var msg string
	if pa.NumArgs() == 1 {
		s, ok := c.argString(pa, 0)
		if !ok {
			return
		}
		msg = s
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrDeprecated, Span: pa.Span, Str: msg})
}

func (c *Checker) handleAligned(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	val := uint32(defaultAlignment)
	if pa.NumArgs() == 1 {
		e, ok := c.argExpr(pa, 0)
		if !ok {
			return
		}
		v, ok := c.evalInt32(e, spec.Name, 1, evalPowerOfTwo)
		if !ok {
			return
		}
		val = v
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrAligned, Span: pa.Span, Val: uint64(val)})
}

func (c *Checker) handleCtorDtor(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	prio := uint64(defaultCtorPriority)
	if pa.NumArgs() == 1 {
		e, ok := c.argExpr(pa, 0)
		if !ok {
			return
		}
		v, ok := c.evalIntegerInRange(e, spec.Name, 1, ctorPriorityMin, defaultCtorPriority)
		if !ok {
			return
		}
		prio = uint64(v)
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Val: prio})
}

func (c *Checker) handleEnumExtensibility(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	name, ok := c.argIdent(pa, 0)
	if !ok {
		return
	}
	var open bool
	switch name {
	case "open":
		open = true
	case "closed":
		open = false
	default:
		c.report(diag.ValBadEnumerator, pa.ArgSpan(0),
			"'%s' must be 'open' or 'closed'; got '%s'", spec.Name, name)
		return
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrEnumExtensibility, Span: pa.Span, Open: open})
}

// handleSection covers section and code_seg; both carry a single section
// name and merge first-wins.
func (c *Checker) handleSection(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	name, ok := c.argString(pa, 0)
	if !ok {
		return
	}
	if name == "" {
		c.report(diag.ArgNotString, pa.ArgSpan(0),
			"'%s' requires a non-empty section name", spec.Name)
		return
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Str: name})
}

func (c *Checker) handleVisibility(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	// Both visibility("hidden") and visibility(hidden) occur in the wild.
	arg := pa.Arg(0)
	var name string
	switch {
	case arg == nil:
		return
	case arg.Kind == ast.ArgIdent:
		name = normalizeIdent(arg.Ident)
	case arg.Kind == ast.ArgString:
		name = arg.Str
	case arg.Kind == ast.ArgExpr && arg.Expr != nil && arg.Expr.Kind == ast.ExprStringLit:
		name = arg.Expr.Str
	default:
		c.report(diag.ArgNotIdentifier, arg.Span,
			"argument 1 of '%s' must be an identifier or string literal", spec.Name)
		return
	}
	var vis ast.Visibility
	switch name {
	case "default":
		vis = ast.VisDefault
	case "hidden", "internal":
		vis = ast.VisHidden
	case "protected":
		vis = ast.VisProtected
	default:
		c.report(diag.ValBadEnumerator, pa.ArgSpan(0),
			"'%s' must be 'default', 'hidden', 'internal' or 'protected'; got '%s'",
			spec.Name, name)
		return
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrVisibility, Span: pa.Span, Vis: vis})
}

// handleCallConv resolves the spelling-derived convention once; a replayed
// attribute reuses the cached resolution.
func (c *Checker) handleCallConv(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	cc := spec.CC
	if m, ok := pa.Memo(); ok {
		cc = ast.CallConv(m)
	} else {
		pa.SetMemo(uint32(cc))
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrCallConv, Span: pa.Span, CC: cc})
}

// knownBuiltins is the library-builtin namespace no_builtin may suppress.
var knownBuiltins = map[string]bool{
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
	"strlen": true, "strcpy": true, "strncpy": true, "strcmp": true,
	"strncmp": true, "strcat": true, "malloc": true, "calloc": true,
	"realloc": true, "free": true, "printf": true, "fprintf": true,
	"sprintf": true, "snprintf": true, "scanf": true, "sscanf": true,
	"abs": true, "labs": true, "fabs": true, "sqrt": true, "sin": true,
	"cos": true, "exp": true, "log": true, "pow": true, "bzero": true,
}

// noBuiltinWildcard suppresses every builtin at once.
const noBuiltinWildcard = "*"

func (c *Checker) handleNoBuiltin(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	names := make([]string, 0, pa.NumArgs())
	for i := 0; i < pa.NumArgs(); i++ {
		var name string
		if arg := pa.Arg(i); arg != nil && arg.Kind == ast.ArgString {
			name = arg.Str
		} else {
			n, ok := c.argIdent(pa, i)
			if !ok {
				continue
			}
			name = n
		}
		if name != noBuiltinWildcard && !knownBuiltins[name] {
			c.warn(diag.SemNoBuiltinUnknown, pa.ArgSpan(i),
				"'%s' names unknown builtin '%s'; entry ignored", spec.Name, name)
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	incoming := &ast.Attr{Kind: ast.AttrNoBuiltin, Span: pa.Span, Names: names}
	if existing := d.Attrs.Get(ast.AttrNoBuiltin); existing != nil {
		incoming = unionNames(existing, incoming)
	}
	// The wildcard must stand alone in the accumulated set, not just within
	// one restatement; a union can violate this after each statement passed.
	if len(incoming.Names) > 1 {
		for _, n := range incoming.Names {
			if n == noBuiltinWildcard {
				c.report(diag.CflWildcardNotAlone, pa.Span,
					"the '%s' wildcard of '%s' must be the only name in the set", noBuiltinWildcard, spec.Name)
				return
			}
		}
	}
	c.attach(d, incoming)
}

func (c *Checker) handleAlias(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	tgt, ok := c.argString(pa, 0)
	if !ok {
		return
	}
	if tgt == d.Name {
		c.report(diag.SemAliasSelf, pa.Span,
			"'%s' cannot be an alias for itself", d.Name)
		return
	}
	if c.attach(d, &ast.Attr{Kind: ast.AttrAlias, Span: pa.Span, Str: tgt}) {
		c.unit.addAlias(d, tgt, pa.Span)
	}
}

func (c *Checker) handleWeakRef(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	var tgt string
	if pa.NumArgs() == 1 {
		s, ok := c.argString(pa, 0)
		if !ok {
			return
		}
		tgt = s
		if tgt == d.Name {
			c.report(diag.SemAliasSelf, pa.Span,
				"'%s' cannot be an alias for itself", d.Name)
			return
		}
	}
	// The bare form relies on a separate alias attribute; the post-pass
	// enforces its presence once the whole list is routed.
	if c.attach(d, &ast.Attr{Kind: ast.AttrWeakRef, Span: pa.Span, Str: tgt}) && tgt != "" {
		c.unit.addAlias(d, tgt, pa.Span)
	}
}
