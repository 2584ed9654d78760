package sema

import (
	"strconv"
	"strings"

	"chisel/internal/ast"
	"chisel/internal/diag"
)

// knownPlatforms is the availability platform namespace.
var knownPlatforms = map[string]bool{
	"macos": true, "macosx": true, "ios": true, "tvos": true,
	"watchos": true, "maccatalyst": true, "driverkit": true,
	"android": true, "zos": true, "swift": true,
}

// versionPair anchors one source-platform version to its derived-platform
// equivalent.
type versionPair struct {
	src, dst ast.Version
}

// availabilityRemap derives one platform's availability records from
// another's. Versions translate through the latest anchor at or below the
// stated version, keeping the anchor's major offset while the minor and
// patch components follow the source. Versions before the first anchor
// clamp to its destination: the derived platform did not exist earlier.
type availabilityRemap struct {
	from, to string
	anchors  []versionPair
}

// availabilityRemaps is the static derived-platform table. Inference
// attaches an implicit record for the derived platform; an explicit user
// record for that platform always suppresses it. The desktop-hosted variant
// tracks the phone version numbering directly; the wearable platform runs
// seven majors behind.
var availabilityRemaps = []availabilityRemap{
	{from: "ios", to: "maccatalyst", anchors: []versionPair{
		{src: ast.MakeVersion(13, 1, 0), dst: ast.MakeVersion(13, 1, 0)},
	}},
	{from: "ios", to: "watchos", anchors: []versionPair{
		{src: ast.MakeVersion(9, 0, 0), dst: ast.MakeVersion(2, 0, 0)},
	}},
}

// remapVersion translates one stated version; absent versions stay absent.
func (rm *availabilityRemap) remapVersion(v ast.Version) ast.Version {
	if v.Empty() {
		return v
	}
	anchor := rm.anchors[0]
	for _, p := range rm.anchors {
		if p.src.Compare(v) <= 0 {
			anchor = p
		}
	}
	if v.Compare(anchor.src) < 0 {
		return anchor.dst
	}
	return ast.MakeVersion(anchor.dst.Major+(v.Major-anchor.src.Major), v.Minor, v.Patch)
}

// parseAvailVersion parses a dotted version literal of one to three
// components.
func parseAvailVersion(s string) (ast.Version, bool) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return ast.Version{}, false
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return ast.Version{}, false
		}
		nums[i] = uint32(n)
	}
	return ast.MakeVersion(nums[0], nums[1], nums[2]), true
}

// handleAvailability parses the clause list after the leading platform
// identifier. The parser flattens `clause=version` pairs into single
// identifier tokens and delivers the message clause as a string literal.
func (c *Checker) handleAvailability(d *ast.Decl, pa *ast.ParsedAttr, spec ast.AttrSpec) {
	platform, ok := c.argIdent(pa, 0)
	if !ok {
		return
	}
	if !knownPlatforms[platform] {
		c.warn(diag.SemAvailabilityBadPlatform, pa.ArgSpan(0),
			"unknown availability platform '%s'; attribute ignored", platform)
		return
	}

	a := &ast.Attr{Kind: ast.AttrAvailability, Span: pa.Span, Platform: platform}
	for i := 1; i < pa.NumArgs(); i++ {
		arg := pa.Arg(i)
		if arg == nil {
			continue
		}
		if arg.Kind == ast.ArgString {
			a.Message = arg.Str
			continue
		}
		clause, ok := c.argIdent(pa, i)
		if !ok {
			return
		}
		if clause == "unavailable" {
			a.Unavailable = true
			continue
		}
		key, val, found := strings.Cut(clause, "=")
		if !found {
			c.report(diag.ValBadEnumerator, arg.Span,
				"unknown availability clause '%s'", clause)
			return
		}
		v, ok := parseAvailVersion(val)
		if !ok {
			c.report(diag.ValBadVersion, arg.Span,
				"malformed version '%s' in '%s' clause", val, key)
			return
		}
		switch key {
		case "introduced":
			a.Introduced = v
		case "deprecated":
			a.DeprecatedV = v
		case "obsoleted":
			a.Obsoleted = v
		default:
			c.report(diag.ValBadEnumerator, arg.Span,
				"unknown availability clause '%s'", key)
			return
		}
	}

	if !c.checkAvailabilityOrder(a) {
		return
	}
	c.attachAvailability(d, a)

	for i := range availabilityRemaps {
		rm := &availabilityRemaps[i]
		if rm.from != platform || findAvailability(d, rm.to) != nil {
			continue
		}
		cp := *a
		cp.Platform = rm.to
		cp.Implicit = true
		cp.Introduced = rm.remapVersion(a.Introduced)
		cp.DeprecatedV = rm.remapVersion(a.DeprecatedV)
		cp.Obsoleted = rm.remapVersion(a.Obsoleted)
		d.Attrs.Add(&cp)
	}
}

// checkAvailabilityOrder enforces introduced <= deprecated <= obsoleted for
// the clauses that are present.
func (c *Checker) checkAvailabilityOrder(a *ast.Attr) bool {
	pairs := []struct {
		lo, hi   ast.Version
		loN, hiN string
	}{
		{a.Introduced, a.DeprecatedV, "introduced", "deprecated"},
		{a.Introduced, a.Obsoleted, "introduced", "obsoleted"},
		{a.DeprecatedV, a.Obsoleted, "deprecated", "obsoleted"},
	}
	for _, p := range pairs {
		if !p.lo.Empty() && !p.hi.Empty() && p.lo.Compare(p.hi) > 0 {
			c.report(diag.SemAvailabilityVersionOrder, a.Span,
				"availability for '%s': %s version %s is after %s version %s",
				a.Platform, p.loN, p.lo, p.hiN, p.hi)
			return false
		}
	}
	return true
}

// findAvailability returns the record for one platform, if any.
func findAvailability(d *ast.Decl, platform string) *ast.Attr {
	for _, a := range d.Attrs.Items() {
		if a.Kind == ast.AttrAvailability && a.Platform == platform {
			return a
		}
	}
	return nil
}

// attachAvailability merges per platform: restating availability for a
// platform combines with the existing record pointwise; an explicit record
// replaces an implicit (inferred) one outright.
func (c *Checker) attachAvailability(d *ast.Decl, a *ast.Attr) {
	existing := findAvailability(d, a.Platform)
	if existing == nil {
		d.Attrs.Add(a)
		return
	}
	if existing.Implicit && !a.Implicit {
		d.Attrs.Update(existing, a)
		return
	}
	d.Attrs.Update(existing, mergeAvailabilityPair(existing, a))
}

// mergeAvailabilityPair combines two records for the same platform into the
// most restrictive view: the later introduction, the earlier deprecation and
// obsoletion, unavailability if either says so, the first message stated.
func mergeAvailabilityPair(a, b *ast.Attr) *ast.Attr {
	merged := *a
	if b.Introduced.Compare(a.Introduced) > 0 {
		merged.Introduced = b.Introduced
	}
	merged.DeprecatedV = earlierVersion(a.DeprecatedV, b.DeprecatedV)
	merged.Obsoleted = earlierVersion(a.Obsoleted, b.Obsoleted)
	merged.Unavailable = a.Unavailable || b.Unavailable
	if merged.Message == "" {
		merged.Message = b.Message
	}
	merged.Implicit = a.Implicit && b.Implicit
	return &merged
}

// earlierVersion returns the earlier of two versions, treating an absent one
// as "never".
func earlierVersion(a, b ast.Version) ast.Version {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	if b.Compare(a) < 0 {
		return b
	}
	return a
}
