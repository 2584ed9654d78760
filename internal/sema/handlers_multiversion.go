package sema

import (
	"strings"

	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/target"
)

// multiversionKinds are the mutually exclusive multiversioning mechanisms.
var multiversionKinds = []ast.AttrKind{
	ast.AttrTarget, ast.AttrTargetClones, ast.AttrCPUDispatch, ast.AttrCPUSpecific,
}

// checkMultiversionMix rejects mixing mechanisms on one declaration or
// across connected redeclarations.
func (c *Checker) checkMultiversionMix(d *ast.Decl, pa *ast.ParsedAttr, incoming ast.AttrKind) bool {
	for dd := d; dd != nil; dd = dd.Prev {
		for _, other := range multiversionKinds {
			if other == incoming {
				continue
			}
			if prior := dd.Attrs.Get(other); prior != nil {
				c.reportNote(diag.CflMultiversionMix, pa.Span, prior.Span,
					"conflicting multiversioning attribute is here",
					"'%s' cannot be combined with '%s' on '%s'", incoming, other, d.Name)
				return false
			}
		}
	}
	return true
}

// validateTargetSpec checks the CPU and feature names of one target string.
// Invalid names warn; the spec still canonicalizes so duplicate detection
// stays stable.
func (c *Checker) validateTargetSpec(spec string, pa *ast.ParsedAttr, argNo int) {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" || part == "default" {
			continue
		}
		if cpu, ok := strings.CutPrefix(part, "arch="); ok {
			if !c.target.ValidCPUName(cpu) {
				c.warn(diag.SemUnknownCPU, pa.ArgSpan(argNo),
					"unknown CPU '%s' for target '%s'", cpu, c.target.Triple)
			}
			continue
		}
		feat := strings.TrimPrefix(strings.TrimPrefix(part, "+"), "no-")
		if !c.target.ValidFeatureName(feat) {
			c.warn(diag.SemUnknownFeature, pa.ArgSpan(argNo),
				"unknown target feature '%s' for target '%s'", feat, c.target.Triple)
		}
	}
}

func (c *Checker) handleTarget(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkMultiversionMix(d, pa, ast.AttrTarget) {
		return
	}
	s, ok := c.argString(pa, 0)
	if !ok {
		return
	}
	c.validateTargetSpec(s, pa, 0)
	canon := target.CanonicalTargetString(s)
	if !c.unit.checkVariant(c, d.Name, canon, pa.Span) {
		return
	}
	if c.attach(d, &ast.Attr{Kind: ast.AttrTarget, Span: pa.Span, Str: canon}) {
		c.unit.recordVariant(d.Name, canon, pa.Span)
		// A bare default target does not by itself make the function
		// multiversioned; a non-default variant somewhere in the set does.
		if canon != "" && canon != "default" {
			d.Multiversioned = true
		}
	}
}

func (c *Checker) handleTargetClones(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkMultiversionMix(d, pa, ast.AttrTargetClones) {
		return
	}
	seen := make(map[string]int, pa.NumArgs())
	variants := make([]string, 0, pa.NumArgs())
	for i := 0; i < pa.NumArgs(); i++ {
		s, ok := c.argString(pa, i)
		if !ok {
			return
		}
		c.validateTargetSpec(s, pa, i)
		canon := target.CanonicalTargetString(s)
		if prev, dup := seen[canon]; dup {
			c.reportNote(diag.CflDuplicateTarget, pa.ArgSpan(i), pa.ArgSpan(prev),
				"previous entry with the same target is here",
				"'%s' entry '%s' duplicates an earlier one", spec.Name, s)
			return
		}
		seen[canon] = i
		variants = append(variants, canon)
	}
	if c.attach(d, &ast.Attr{Kind: ast.AttrTargetClones, Span: pa.Span, Names: variants}) {
		d.Multiversioned = true
	}
}

// handleCPUDispatch covers cpu_dispatch and cpu_specific: a list of CPU
// names, each valid for the target and none repeated.
func (c *Checker) handleCPUDispatch(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	if !c.checkMultiversionMix(d, pa, spec.Kind) {
		return
	}
	seen := make(map[string]int, pa.NumArgs())
	cpus := make([]string, 0, pa.NumArgs())
	for i := 0; i < pa.NumArgs(); i++ {
		name, ok := c.argIdent(pa, i)
		if !ok {
			return
		}
		name = strings.ToLower(name)
		if !c.target.ValidCPUName(name) && name != "generic" {
			c.report(diag.SemUnknownCPU, pa.ArgSpan(i),
				"unknown CPU '%s' for target '%s'", name, c.target.Triple)
			return
		}
		if prev, dup := seen[name]; dup {
			c.reportNote(diag.CflDuplicateTarget, pa.ArgSpan(i), pa.ArgSpan(prev),
				"previous entry with the same CPU is here",
				"'%s' entry '%s' duplicates an earlier one", spec.Name, name)
			return
		}
		seen[name] = i
		cpus = append(cpus, name)
	}
	if c.attach(d, &ast.Attr{Kind: spec.Kind, Span: pa.Span, Names: cpus}) {
		d.Multiversioned = true
	}
}

// checkMultiversionDefault warns when a clone set never names the default
// variant, which the dispatcher needs as the fallback.
func (c *Checker) checkMultiversionDefault(d *ast.Decl) {
	a := d.Attrs.Get(ast.AttrTargetClones)
	if a == nil {
		return
	}
	for _, v := range a.Names {
		if v == "default" {
			return
		}
	}
	c.warn(diag.SemMultiversionNoDefault, a.Span,
		"'%s' is multiversioned but no variant is 'default'", d.Name)
}
