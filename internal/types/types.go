// Package types holds the slice of the front end's type model the attribute
// engine reads. The engine never constructs program types of its own; the one
// exception is the count-attributed wrapper produced by the counted_by
// handler, which decorates an existing field type.
package types

// Kind discriminates the closed set of type shapes the engine cares about.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindRecord
	KindEnum
	KindArray
	// KindIncompleteArray is a trailing array of unknown bound, the
	// flexible-array-like shape counted_by applies to.
	KindIncompleteArray
	KindFunction
	KindTypedef
	// KindCountAttributed wraps a flexible array member whose element count
	// lives in a sibling field. Produced only by the counted_by handler.
	KindCountAttributed
)

// Type is one node of the collaborator's type graph.
type Type struct {
	Kind   Kind
	Name   string // spelling for diagnostics; empty for derived types
	Signed bool   // meaningful for KindInt
	Elem   *Type  // pointee / element / typedef underlying / wrapped type
	Record *Record

	// CountField names the sibling carrying the element count.
	// Only set on KindCountAttributed.
	CountField string
}

// Record is the engine's view of a struct/class/union definition.
type Record struct {
	Name   string
	Fields []RecordField
	Bases  []*Record

	// Capability marking, set by the capability/scoped_lockable handlers.
	CapabilityMarker string // capability role name, empty when unmarked
	ScopedLockable   bool

	// Operator-overload presence used by the smart-pointer heuristic.
	HasDerefOverload bool
	HasArrowOverload bool
}

// RecordField is a field as seen from type-system queries. Anonymous
// struct/union members hoist their fields into the enclosing aggregate.
type RecordField struct {
	Name      string
	Type      *Type
	Anonymous bool
}

// Desugar strips typedef sugar.
func (t *Type) Desugar() *Type {
	for t != nil && t.Kind == KindTypedef {
		t = t.Elem
	}
	return t
}

func (t *Type) Is(kind Kind) bool {
	d := t.Desugar()
	return d != nil && d.Kind == kind
}

// IsInteger reports whether the type is an integer type (enums excluded).
func (t *Type) IsInteger() bool {
	return t.Is(KindInt)
}

func (t *Type) IsBool() bool {
	return t.Is(KindBool)
}

func (t *Type) IsPointer() bool {
	return t.Is(KindPointer)
}

// IsFlexibleArrayLike reports whether the type is an incomplete (unsized)
// trailing array, the only shape a count relationship may annotate.
func (t *Type) IsFlexibleArrayLike() bool {
	return t.Is(KindIncompleteArray)
}

// RecordOf returns the record definition behind the (possibly sugared,
// possibly pointer) type, or nil.
func (t *Type) RecordOf() *Record {
	d := t.Desugar()
	if d == nil {
		return nil
	}
	if d.Kind == KindPointer {
		d = d.Elem.Desugar()
	}
	if d == nil || d.Kind != KindRecord {
		return nil
	}
	return d.Record
}

// CountAttributed wraps elem with a count dependency on the named sibling
// field. The original type is preserved as Elem.
func CountAttributed(elem *Type, countField string) *Type {
	return &Type{Kind: KindCountAttributed, Elem: elem, CountField: countField}
}
