package sema

import (
	"chisel/internal/ast"
	"chisel/internal/diag"
)

// ProcessDeclAttrs is the top-level entry: it routes every parsed attribute
// on one declaration in source order, then runs the post-pass checks that
// depend on attribute combinations. A failing attribute aborts only its own
// validation; the rest of the list continues.
func (c *Checker) ProcessDeclAttrs(d *ast.Decl, parsed []*ast.ParsedAttr) {
	if d == nil {
		return
	}
	for _, pa := range parsed {
		c.processOne(d, pa)
	}
	c.postPassChecks(d)
	c.unit.applyPendingWeak(c, d)
}

func (c *Checker) processOne(d *ast.Decl, pa *ast.ParsedAttr) {
	if pa == nil || pa.IsInvalid() {
		return
	}

	spec, known := ast.LookupAttr(pa.NormalizedName())
	if !known {
		c.warn(diag.AplIgnoredUnknown, pa.Span,
			"unknown attribute '%s' ignored", pa.Name)
		return
	}

	if !c.checkApplicability(d, pa, spec) {
		return
	}
	if !c.checkArity(pa, spec) {
		return
	}

	// Dependent arguments inside an uninstantiated template defer the whole
	// attribute: it is recorded for replay at instantiation time instead of
	// being routed now, so generic declarations still carry a (not yet
	// validated) attribute.
	if d.TemplateDepth > 0 && mustDefer(pa, spec) {
		d.Pending = append(d.Pending, pa)
		return
	}

	c.route(d, pa, spec)
}

// mustDefer reports whether a value-dependent argument sits outside the
// trailing expression-pack position and therefore forces deferral.
func mustDefer(pa *ast.ParsedAttr, spec ast.AttrSpec) bool {
	for i := 0; i < pa.NumArgs(); i++ {
		arg := pa.Arg(i)
		if arg.Kind != ast.ArgExpr || !arg.Expr.IsValueDependent() {
			continue
		}
		if !spec.Variadic() || i < spec.MinArgs {
			return true
		}
	}
	return false
}

// route is the closed dispatch table: one arm per attribute kind. The
// switch is exhaustive over the enum so a new kind without a handler is a
// compile-review-visible hole, not a silent fallthrough.
func (c *Checker) route(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	switch spec.Kind {
	case ast.AttrNoReturn, ast.AttrCold, ast.AttrHot, ast.AttrUnused,
		ast.AttrUsed, ast.AttrPacked, ast.AttrNoInline, ast.AttrAlwaysInline:
		c.handleSimpleMarker(d, pa, spec)
	case ast.AttrWeak:
		c.handleWeak(d, pa, spec)
	case ast.AttrDeprecated:
		c.handleDeprecated(d, pa, spec)
	case ast.AttrAligned:
		c.handleAligned(d, pa, spec)
	case ast.AttrConstructor, ast.AttrDestructor:
		c.handleCtorDtor(d, pa, spec)
	case ast.AttrEnumExtensibility:
		c.handleEnumExtensibility(d, pa, spec)

	case ast.AttrNonNull:
		c.handleNonNull(d, pa, spec)
	case ast.AttrAllocSize:
		c.handleAllocSize(d, pa, spec)
	case ast.AttrAllocAlign:
		c.handleAllocAlign(d, pa, spec)
	case ast.AttrFormat:
		c.handleFormat(d, pa, spec)

	case ast.AttrCapability:
		c.handleCapability(d, pa, spec)
	case ast.AttrScopedLockable:
		c.handleScopedLockable(d, pa, spec)
	case ast.AttrGuardedBy, ast.AttrPtGuardedBy:
		c.handleGuardedBy(d, pa, spec)
	case ast.AttrRequiresCapability, ast.AttrAcquireCapability,
		ast.AttrReleaseCapability, ast.AttrExcludes,
		ast.AttrAcquiredBefore, ast.AttrAcquiredAfter:
		c.handleCapabilityList(d, pa, spec)
	case ast.AttrTryAcquireCapability:
		c.handleTryAcquire(d, pa, spec)
	case ast.AttrLockReturned:
		c.handleLockReturned(d, pa, spec)

	case ast.AttrReqdWorkGroupSize, ast.AttrWorkGroupSizeHint,
		ast.AttrMaxWorkGroupSize:
		c.handleWorkGroupSize(d, pa, spec)

	case ast.AttrAvailability:
		c.handleAvailability(d, pa, spec)

	case ast.AttrTarget:
		c.handleTarget(d, pa, spec)
	case ast.AttrTargetClones:
		c.handleTargetClones(d, pa, spec)
	case ast.AttrCPUDispatch, ast.AttrCPUSpecific:
		c.handleCPUDispatch(d, pa, spec)

	case ast.AttrSection, ast.AttrCodeSeg:
		c.handleSection(d, pa, spec)
	case ast.AttrVisibility:
		c.handleVisibility(d, pa, spec)
	case ast.AttrCallConv:
		c.handleCallConv(d, pa, spec)

	case ast.AttrRegister:
		c.handleRegister(d, pa, spec)
	case ast.AttrMemory:
		c.handleMemory(d, pa, spec)
	case ast.AttrBankWidth, ast.AttrNumBanks, ast.AttrMaxReplicates:
		c.handleBanking(d, pa, spec)
	case ast.AttrKernel:
		c.handleKernel(d, pa, spec)

	case ast.AttrCountedBy:
		c.handleCountedBy(d, pa, spec)
	case ast.AttrNoBuiltin:
		c.handleNoBuiltin(d, pa, spec)

	case ast.AttrAlias:
		c.handleAlias(d, pa, spec)
	case ast.AttrWeakRef:
		c.handleWeakRef(d, pa, spec)
	}
}

// postPassChecks run after every attribute of the list routed, because they
// depend on combinations whose parts may appear in any order.
func (c *Checker) postPassChecks(d *ast.Decl) {
	// weakref without an alias payload needs a separate alias attribute on
	// the same declaration.
	if wr := d.Attrs.Get(ast.AttrWeakRef); wr != nil && wr.Str == "" {
		if !d.Attrs.Has(ast.AttrAlias) {
			c.report(diag.SemWeakrefWithoutAlias, wr.Span,
				"weakref declaration of '%s' must also have an alias attribute", d.Name)
			d.Attrs.Remove(ast.AttrWeakRef)
		}
	}

	// Launch geometry on hardware-synthesis targets is only meaningful on
	// kernel entry points.
	if c.target.Has("fpga") && !d.Attrs.Has(ast.AttrKernel) {
		for _, kind := range []ast.AttrKind{ast.AttrReqdWorkGroupSize, ast.AttrMaxWorkGroupSize} {
			if a := d.Attrs.Get(kind); a != nil {
				c.report(diag.SemKernelOnlyAttr, a.Span,
					"'%s' requires a kernel declaration", kind)
				d.Attrs.Remove(kind)
				d.Invalid = true
			}
		}
	}

	c.crossCheckWorkGroupSizes(d)
	c.checkMultiversionDefault(d)
}
