package types

import (
	"testing"
)

func TestDesugarAndPredicates(t *testing.T) {
	intType := &Type{Kind: KindInt, Name: "int", Signed: true}
	alias := &Type{Kind: KindTypedef, Name: "my_int", Elem: intType}
	if !alias.IsInteger() {
		t.Fatalf("typedef of int must be integer")
	}
	ptr := &Type{Kind: KindPointer, Elem: intType}
	if !ptr.IsPointer() || ptr.IsInteger() {
		t.Fatalf("pointer predicates wrong")
	}
}

func TestLookupFieldAnonymousHoisting(t *testing.T) {
	inner := &Record{
		Name:   "",
		Fields: []RecordField{{Name: "count", Type: &Type{Kind: KindInt, Signed: true}}},
	}
	outer := &Record{
		Name: "buf",
		Fields: []RecordField{
			{Name: "", Type: &Type{Kind: KindRecord, Record: inner}, Anonymous: true},
			{Name: "data", Type: &Type{Kind: KindIncompleteArray, Elem: &Type{Kind: KindInt}}},
		},
	}
	f, ok := outer.LookupField("count")
	if !ok {
		t.Fatalf("expected anonymous member hoisting to find 'count'")
	}
	if !f.Type.IsInteger() {
		t.Fatalf("hoisted field has wrong type")
	}
	if _, ok := outer.LookupField("missing"); ok {
		t.Fatalf("unexpected field hit")
	}
}

func TestCapabilityThroughBase(t *testing.T) {
	base := &Record{Name: "mutex", CapabilityMarker: "mutex"}
	derived := &Record{Name: "fancy_mutex", Bases: []*Record{base}}
	if !derived.IsCapability() {
		t.Fatalf("capability must be inherited through bases")
	}
	smart := &Record{Name: "unique_lock_ptr", HasDerefOverload: true, HasArrowOverload: true}
	wrapped := &Type{Kind: KindRecord, Record: smart}
	if !wrapped.ReferencesCapability() {
		t.Fatalf("smart-pointer-like wrapper must qualify structurally")
	}
	plain := &Record{Name: "plain"}
	if (&Type{Kind: KindRecord, Record: plain}).ReferencesCapability() {
		t.Fatalf("unmarked record must not qualify")
	}
}

func TestCountAttributedWrap(t *testing.T) {
	arr := &Type{Kind: KindIncompleteArray, Elem: &Type{Kind: KindInt}}
	wrapped := CountAttributed(arr, "len")
	if wrapped.Kind != KindCountAttributed || wrapped.CountField != "len" || wrapped.Elem != arr {
		t.Fatalf("count-attributed wrapper malformed: %+v", wrapped)
	}
}
