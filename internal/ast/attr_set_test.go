package ast

import (
	"testing"

	"chisel/internal/source"
)

func TestAttrSetReplaceDropsImplicit(t *testing.T) {
	var set AttrSet
	implicit := &Attr{Kind: AttrMemory, Mem: MemDefault, Implicit: true}
	set.Add(implicit)
	if !set.Has(AttrMemory) {
		t.Fatalf("implicit attribute not attached")
	}

	explicit := &Attr{Kind: AttrMemory, Mem: MemBlockRAM}
	set.Replace(explicit)

	all := set.All(AttrMemory)
	if len(all) != 1 {
		t.Fatalf("expected replacement, got %d records", len(all))
	}
	if all[0].Implicit || all[0].Mem != MemBlockRAM {
		t.Fatalf("explicit attribute did not replace the implicit one: %+v", all[0])
	}
}

func TestAttrSetOrderPreserved(t *testing.T) {
	var set AttrSet
	set.Add(&Attr{Kind: AttrCold})
	set.Add(&Attr{Kind: AttrSection, Str: "a"})
	set.Add(&Attr{Kind: AttrSection, Str: "b"})
	items := set.Items()
	if len(items) != 3 || items[1].Str != "a" || items[2].Str != "b" {
		t.Fatalf("attachment order not preserved")
	}
	if got := len(set.All(AttrSection)); got != 2 {
		t.Fatalf("All returned %d records", got)
	}
}

func TestParamIdxNormalization(t *testing.T) {
	// Method numbering: this=1, first explicit=2.
	idx := ParamIdx{Source: 2, HasThis: true}
	if idx.IsThis() {
		t.Fatalf("index 2 is not the implicit object parameter")
	}
	if got := idx.ASTIndex(); got != 0 {
		t.Fatalf("source index 2 with this must resolve to AST index 0, got %d", got)
	}
	this := ParamIdx{Source: 1, HasThis: true}
	if !this.IsThis() {
		t.Fatalf("source index 1 with this must be the implicit object parameter")
	}
	free := ParamIdx{Source: 1}
	if free.IsThis() || free.ASTIndex() != 0 {
		t.Fatalf("free function index 1 must resolve to AST index 0")
	}
}

func TestVersionCompareAndString(t *testing.T) {
	a := MakeVersion(10, 1, 0)
	b := MakeVersion(10, 2, 0)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("version ordering broken")
	}
	var empty Version
	if empty.Compare(a) != -1 {
		t.Fatalf("empty version must order before stated versions")
	}
	if a.String() != "10.1" || MakeVersion(1, 2, 3).String() != "1.2.3" {
		t.Fatalf("version formatting: %q %q", a.String(), MakeVersion(1, 2, 3).String())
	}
}

func TestParsedAttrMemoWriteOnce(t *testing.T) {
	p := &ParsedAttr{Name: "stdcall", Span: source.Span{}}
	if _, ok := p.Memo(); ok {
		t.Fatalf("memo must start unset")
	}
	p.SetMemo(uint32(CCStdcall))
	p.SetMemo(uint32(CCCdecl)) // second write ignored
	v, ok := p.Memo()
	if !ok || v != uint32(CCStdcall) {
		t.Fatalf("memo not write-once: %d %v", v, ok)
	}
}

func TestSameValueIgnoresBookkeeping(t *testing.T) {
	a := &Attr{Kind: AttrSection, Str: ".text.hot", Span: source.Span{Start: 1, End: 2}}
	b := &Attr{Kind: AttrSection, Str: ".text.hot", Span: source.Span{Start: 9, End: 12}, Inherited: true}
	if !a.SameValue(b) {
		t.Fatalf("span/inherited must not affect payload equality")
	}
	c := &Attr{Kind: AttrSection, Str: ".data"}
	if a.SameValue(c) {
		t.Fatalf("different payloads must not compare equal")
	}
}
