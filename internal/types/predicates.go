package types

// LookupField finds a field by name, descending into anonymous aggregate
// members, which merge into their named enclosing aggregate.
func (r *Record) LookupField(name string) (RecordField, bool) {
	if r == nil {
		return RecordField{}, false
	}
	for _, f := range r.Fields {
		if f.Anonymous {
			if inner := f.Type.RecordOf(); inner != nil {
				if found, ok := inner.LookupField(name); ok {
					return found, true
				}
			}
			continue
		}
		if f.Name == name {
			return f, true
		}
	}
	return RecordField{}, false
}

// IsCapability reports whether the record carries a capability marker,
// directly or through any base class.
func (r *Record) IsCapability() bool {
	if r == nil {
		return false
	}
	if r.CapabilityMarker != "" {
		return true
	}
	for _, base := range r.Bases {
		if base.IsCapability() {
			return true
		}
	}
	return false
}

// IsScopedLockable reports whether the record (or a base) is marked as a
// scoped-lockable type.
func (r *Record) IsScopedLockable() bool {
	if r == nil {
		return false
	}
	if r.ScopedLockable {
		return true
	}
	for _, base := range r.Bases {
		if base.IsScopedLockable() {
			return true
		}
	}
	return false
}

// IsSmartPointerLike detects capability wrappers structurally: a type with
// both dereference and member-access operator overloads is treated as a
// pointer to whatever its pointee capability is.
func (r *Record) IsSmartPointerLike() bool {
	return r != nil && r.HasDerefOverload && r.HasArrowOverload
}

// ReferencesCapability reports whether an expression of this type may
// legally denote a capability: the type is a capability record, a pointer
// to one, or a smart-pointer-like wrapper.
func (t *Type) ReferencesCapability() bool {
	d := t.Desugar()
	if d == nil {
		return false
	}
	if d.Kind == KindPointer {
		return d.Elem.ReferencesCapability()
	}
	rec := d.RecordOf()
	if rec == nil {
		return false
	}
	return rec.IsCapability() || rec.IsSmartPointerLike()
}
