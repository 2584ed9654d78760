package ast

import (
	"chisel/internal/source"
	"chisel/internal/types"
)

// DeclKind is the closed set of declaration categories the engine checks
// attributes against. Applicability uses these categories, never nominal
// node identity, so adding a declaration kind means extending this enum and
// the category predicates, not touching every handler.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclFunction
	DeclVar
	DeclParam
	DeclField
	DeclRecord
	DeclTypedef
	DeclEnum
	DeclNamespace
	DeclUsing
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclVar:
		return "variable"
	case DeclParam:
		return "parameter"
	case DeclField:
		return "field"
	case DeclRecord:
		return "record"
	case DeclTypedef:
		return "typedef"
	case DeclEnum:
		return "enum"
	case DeclNamespace:
		return "namespace"
	case DeclUsing:
		return "using declaration"
	}
	return "declaration"
}

// Decl is the engine's view of one declaration node. The surrounding front
// end owns construction; the engine only appends to Attrs, sets the Invalid
// and Multiversioned flags, and rewrites a field type for count
// relationships.
type Decl struct {
	Kind DeclKind
	Name string
	Span source.Span

	// Type is the declared type for variables, parameters and fields.
	Type *types.Type
	// Return and Params describe function-like declarations.
	Return *types.Type
	Params []*Decl

	IsMethod     bool
	IsStatic     bool
	IsDefinition bool

	// Record is the defined record for DeclRecord nodes.
	Record *types.Record
	// Enclosing is the record declaration a field or method belongs to.
	Enclosing *Decl

	// TemplateDepth is non-zero inside an uninstantiated template; value-
	// dependent attribute arguments are deferred while it is set.
	TemplateDepth int

	// Prev links to the previous declaration of the same entity, set by the
	// front end when a redeclaration is semantically connected.
	Prev *Decl

	// Attrs is the ordered semantic attribute list this engine produces.
	Attrs AttrSet
	// Pending holds parsed attributes whose evaluation was deferred until
	// template instantiation.
	Pending []*ParsedAttr

	Invalid        bool
	Multiversioned bool
}

// FunctionLike reports whether the declaration is callable: an ordinary
// function, a method, or a variable of function-pointer type.
func (d *Decl) FunctionLike() bool {
	if d == nil {
		return false
	}
	if d.Kind == DeclFunction {
		return true
	}
	if d.Kind == DeclVar && d.Type != nil {
		t := d.Type.Desugar()
		if t != nil && t.Kind == types.KindPointer && t.Elem.Is(types.KindFunction) {
			return true
		}
	}
	return false
}

// HasImplicitThis reports whether parameter numbering for this declaration
// counts an implicit object parameter at index 1.
func (d *Decl) HasImplicitThis() bool {
	return d != nil && d.IsMethod && !d.IsStatic
}

// ParamCount returns the number of explicit parameters.
func (d *Decl) ParamCount() int {
	if d == nil {
		return 0
	}
	return len(d.Params)
}

// EnclosingRecord returns the record a field/method lives in, or nil.
func (d *Decl) EnclosingRecord() *types.Record {
	if d == nil || d.Enclosing == nil {
		return nil
	}
	return d.Enclosing.Record
}
