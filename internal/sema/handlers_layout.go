package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
)

// bankingKinds are the memory-banking attributes that conflict with
// register placement and imply a default memory kind.
var bankingKinds = []ast.AttrKind{
	ast.AttrMemory, ast.AttrBankWidth, ast.AttrNumBanks, ast.AttrMaxReplicates,
}

// checkRegisterConflict enforces the register/banking exclusion from either
// direction.
func (c *Checker) checkRegisterConflict(d *ast.Decl, pa *ast.ParsedAttr, incoming ast.AttrKind) bool {
	if incoming == ast.AttrRegister {
		for _, other := range bankingKinds {
			if prior := d.Attrs.Get(other); prior != nil {
				c.reportNote(diag.CflRegisterBanking, pa.Span, prior.Span,
					"conflicting memory attribute is here",
					"register placement of '%s' conflicts with '%s'", d.Name, other)
				return false
			}
		}
		return true
	}
	if prior := d.Attrs.Get(ast.AttrRegister); prior != nil {
		c.reportNote(diag.CflRegisterBanking, pa.Span, prior.Span,
			"register placement is here",
			"'%s' conflicts with register placement of '%s'", incoming, d.Name)
		return false
	}
	return true
}

func (c *Checker) handleRegister(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkRegisterConflict(d, pa, ast.AttrRegister) {
		return
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrRegister, Span: pa.Span})
}

func (c *Checker) handleMemory(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkRegisterConflict(d, pa, ast.AttrMemory) {
		return
	}
	kind := ast.MemDefault
	if pa.NumArgs() == 1 {
		name, ok := c.argIdent(pa, 0)
		if !ok {
			return
		}
		switch name {
		case "block_ram":
			kind = ast.MemBlockRAM
		case "mlab":
			kind = ast.MemMLAB
		case "default":
			kind = ast.MemDefault
		default:
			c.report(diag.ValBadEnumerator, pa.ArgSpan(0),
				"'%s' must be 'block_ram', 'mlab' or 'default'; got '%s'", spec.Name, name)
			return
		}
	}
	c.attach(d, &ast.Attr{Kind: ast.AttrMemory, Span: pa.Span, Mem: kind})
}

// handleBanking covers bank_width, numbanks and max_replicates. The banked
// kinds require a power-of-two value; a replicate count only needs to be
// positive. Any of them implies an unconstrained memory placement when no
// memory attribute is stated.
func (c *Checker) handleBanking(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkRegisterConflict(d, pa, spec.Kind) {
		return
	}
	e, ok := c.argExpr(pa, 0)
	if !ok {
		return
	}
	flags := evalPowerOfTwo
	if spec.Kind == ast.AttrMaxReplicates {
		flags = evalPositive
	}
	v, ok := c.evalInt32(e, spec.Name, 1, flags)
	if !ok {
		return
	}
	if !c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Val: uint64(v)}) {
		return
	}
	// Banking presupposes a memory placement. The synthesized record is
	// implicit: a later explicit memory attribute replaces it.
	if !d.Attrs.Has(ast.AttrMemory) {
		d.Attrs.Add(&ast.Attr{Kind: ast.AttrMemory, Span: pa.Span, Mem: ast.MemDefault, Implicit: true})
	}
}

func (c *Checker) handleKernel(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	c.attach(d, &ast.Attr{Kind: ast.AttrKernel, Span: pa.Span})
}

// handleWorkGroupSize covers the three launch-geometry attributes. Each
// dimension must fold to a strictly positive constant; omitted trailing
// dimensions of the required-size form default to 1.
func (c *Checker) handleWorkGroupSize(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	var dims [3]uint64
	n := pa.NumArgs()
	for i := 0; i < n; i++ {
		e, ok := c.argExpr(pa, i)
		if !ok {
			return
		}
		v, ok := c.evalInt32(e, spec.Name, i+1, evalPositive)
		if !ok {
			return
		}
		dims[i] = uint64(v)
	}
	for i := n; i < 3; i++ {
		dims[i] = 1
	}
	c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Dims: dims, NDims: uint8(n)})
}

// logicalDims returns the geometry in fastest-varying-first order regardless
// of the source convention, so cross-attribute comparison never depends on
// language mode.
func (c *Checker) logicalDims(a *ast.Attr) [3]uint64 {
	if c.lang.FastestVaryingFirst {
		return a.Dims
	}
	return [3]uint64{a.Dims[2], a.Dims[1], a.Dims[0]}
}

// crossCheckWorkGroupSizes verifies that a required geometry fits under a
// declared maximum, dimension by dimension.
func (c *Checker) crossCheckWorkGroupSizes(d *ast.Decl) {
	req := d.Attrs.Get(ast.AttrReqdWorkGroupSize)
	max := d.Attrs.Get(ast.AttrMaxWorkGroupSize)
	if req == nil || max == nil {
		return
	}
	rd := c.logicalDims(req)
	md := c.logicalDims(max)
	for i := 0; i < 3; i++ {
		if rd[i] > md[i] {
			c.reportNote(diag.SemGeometryReqExceedsMax, req.Span, max.Span,
				"maximum size is declared here",
				"required work-group size %dx%dx%d exceeds maximum %dx%dx%d for '%s'",
				req.Dims[0], req.Dims[1], req.Dims[2],
				max.Dims[0], max.Dims[1], max.Dims[2], d.Name)
			d.Attrs.Remove(ast.AttrReqdWorkGroupSize)
			d.Invalid = true
			return
		}
	}
}
