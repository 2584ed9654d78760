package ast

// AttrSet is the ordered, append-only-during-parse attribute list attached
// to one declaration. Removal exists only to implement the
// drop-then-insert replacement rule for implicit attributes.
type AttrSet struct {
	items []*Attr
}

// Add appends a record. The caller is responsible for having run duplicate
// and conflict policy first.
func (s *AttrSet) Add(a *Attr) {
	if a == nil {
		return
	}
	s.items = append(s.items, a)
}

// Has reports whether any record of the kind is attached.
func (s *AttrSet) Has(k AttrKind) bool {
	return s.Get(k) != nil
}

// Get returns the first record of the kind, or nil.
func (s *AttrSet) Get(k AttrKind) *Attr {
	for _, a := range s.items {
		if a.Kind == k {
			return a
		}
	}
	return nil
}

// All returns every record of the kind, in attachment order.
func (s *AttrSet) All(k AttrKind) []*Attr {
	var out []*Attr
	for _, a := range s.items {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// Remove drops every record of the kind and reports how many were dropped.
func (s *AttrSet) Remove(k AttrKind) int {
	kept := s.items[:0]
	removed := 0
	for _, a := range s.items {
		if a.Kind == k {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.items = kept
	return removed
}

// Replace implements drop-then-insert: any existing records of a.Kind are
// removed, then a is appended.
func (s *AttrSet) Replace(a *Attr) {
	if a == nil {
		return
	}
	s.Remove(a.Kind)
	s.Add(a)
}

// Update swaps one specific record for a replacement in place. Needed for
// kinds that may legitimately appear more than once (availability per
// platform), where Replace would drop siblings.
func (s *AttrSet) Update(old, replacement *Attr) bool {
	if old == nil || replacement == nil {
		return false
	}
	for i, a := range s.items {
		if a == old {
			s.items[i] = replacement
			return true
		}
	}
	return false
}

func (s *AttrSet) Len() int {
	return len(s.items)
}

// Items returns the underlying ordered list. Do not mutate.
func (s *AttrSet) Items() []*Attr {
	return s.items
}
