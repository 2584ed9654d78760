package ast

import (
	"fmt"

	"chisel/internal/source"
)

// ParamIdx is a normalized parameter position. Source numbering is 1-based
// and counts an implicit object parameter ("this") at index 1 when the
// declaration has one; the AST index is 0-based over explicit parameters.
type ParamIdx struct {
	Source  uint32
	HasThis bool
}

// IsThis reports whether the source index names the implicit object
// parameter itself.
func (p ParamIdx) IsThis() bool {
	return p.HasThis && p.Source == 1
}

// ASTIndex converts to the 0-based explicit parameter index. Calling it for
// the implicit object parameter is a bug in the caller.
func (p ParamIdx) ASTIndex() int {
	idx := int(p.Source) - 1
	if p.HasThis {
		idx--
	}
	if idx < 0 {
		panic("ParamIdx.ASTIndex on implicit object parameter")
	}
	return idx
}

func (p ParamIdx) String() string {
	return fmt.Sprintf("%d", p.Source)
}

// Version is an availability version triple. The zero value means "not
// stated"; a stated version has Valid set even for 0.0.0.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
	Valid bool
}

func MakeVersion(major, minor, patch uint32) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Valid: true}
}

func (v Version) Empty() bool {
	return !v.Valid
}

// Compare returns -1, 0 or 1. Empty versions compare before any stated one.
func (v Version) Compare(o Version) int {
	if v.Valid != o.Valid {
		if !v.Valid {
			return -1
		}
		return 1
	}
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor != o.Minor:
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	case v.Patch != o.Patch:
		if v.Patch < o.Patch {
			return -1
		}
		return 1
	}
	return 0
}

func (v Version) String() string {
	if !v.Valid {
		return "-"
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CallConv is the resolved calling convention payload of AttrCallConv.
type CallConv uint8

const (
	CCDefault CallConv = iota
	CCCdecl
	CCStdcall
	CCFastcall
	CCVectorcall
	CCRegcall
	CCPreserveMost
)

func (c CallConv) String() string {
	switch c {
	case CCCdecl:
		return "cdecl"
	case CCStdcall:
		return "stdcall"
	case CCFastcall:
		return "fastcall"
	case CCVectorcall:
		return "vectorcall"
	case CCRegcall:
		return "regcall"
	case CCPreserveMost:
		return "preserve_most"
	}
	return "default"
}

// Visibility is the payload of AttrVisibility.
type Visibility uint8

const (
	VisDefault Visibility = iota
	VisHidden
	VisProtected
)

func (v Visibility) String() string {
	switch v {
	case VisHidden:
		return "hidden"
	case VisProtected:
		return "protected"
	}
	return "default"
}

// MemoryKind is the payload of AttrMemory on hardware-synthesis targets.
type MemoryKind uint8

const (
	MemDefault MemoryKind = iota
	MemBlockRAM
	MemMLAB
)

func (m MemoryKind) String() string {
	switch m {
	case MemBlockRAM:
		return "block_ram"
	case MemMLAB:
		return "mlab"
	}
	return "default"
}

// Attr is one immutable semantic attribute record. Which payload fields are
// meaningful depends on Kind; everything else stays zero. Once attached to a
// declaration an Attr is never mutated — replacement is remove-then-append
// with a fresh record.
type Attr struct {
	Kind AttrKind
	Span source.Span

	// Implicit marks records synthesized as a prerequisite of another
	// attribute (e.g. the default memory kind implied by banking
	// attributes). An explicit user attribute of the same kind replaces,
	// never merges with, an implicit one.
	Implicit bool
	// Inherited marks copies propagated from a previous declaration by the
	// redeclaration merge engine.
	Inherited bool

	Str   string     // section/code_seg name, capability role, alias target, deprecation message, target spec, format archetype, counted_by field
	Val   uint64     // aligned value, ctor/dtor priority, bank width, numbanks, max replicates
	CC    CallConv   // AttrCallConv
	Vis   Visibility // AttrVisibility
	Mem   MemoryKind // AttrMemory
	Open  bool       // AttrEnumExtensibility: open vs closed

	Indices []ParamIdx // AttrNonNull
	Idx     ParamIdx   // alloc_size element index, alloc_align, format string index
	Idx2    ParamIdx   // alloc_size count index, format first-checked index
	HasIdx2 bool

	Exprs []*Expr // capability expressions, stored validated (or dependent)

	Dims  [3]uint64 // launch geometry, source order
	NDims uint8

	Platform    string // AttrAvailability
	Introduced  Version
	DeprecatedV Version
	Obsoleted   Version
	Unavailable bool
	Message     string

	Names []string // no_builtin set, target_clones variants, cpu_dispatch/cpu_specific CPUs
}

// SameValue reports payload equality for exact-duplicate detection. Spans
// and implicit/inherited bookkeeping are ignored.
func (a *Attr) SameValue(b *Attr) bool {
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	if a.Str != b.Str || a.Val != b.Val || a.CC != b.CC || a.Vis != b.Vis ||
		a.Mem != b.Mem || a.Open != b.Open || a.HasIdx2 != b.HasIdx2 ||
		a.Idx != b.Idx || a.Idx2 != b.Idx2 || a.NDims != b.NDims ||
		a.Dims != b.Dims || a.Platform != b.Platform ||
		a.Introduced != b.Introduced || a.DeprecatedV != b.DeprecatedV ||
		a.Obsoleted != b.Obsoleted || a.Unavailable != b.Unavailable ||
		a.Message != b.Message {
		return false
	}
	if len(a.Indices) != len(b.Indices) || len(a.Names) != len(b.Names) {
		return false
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			return false
		}
	}
	for i := range a.Names {
		if a.Names[i] != b.Names[i] {
			return false
		}
	}
	// Expression payloads are compared structurally only as far as both
	// being absent; attributes carrying expressions use per-kind merge
	// policies instead of exact-duplicate detection.
	return len(a.Exprs) == len(b.Exprs)
}

// CloneInherited returns a copy flagged as propagated from a prior
// declaration. Slice payloads are shared: records are immutable.
func (a *Attr) CloneInherited() *Attr {
	cp := *a
	cp.Inherited = true
	return &cp
}
