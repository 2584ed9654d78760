package diag

import (
	"testing"

	"chisel/internal/source"
)

func TestBagCapAndErrors(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(ValNotPositive, source.Span{}, "first")) {
		t.Fatalf("expected first add to succeed")
	}
	if !bag.Add(New(SevWarning, AplIgnoredUnknown, source.Span{}, "second")) {
		t.Fatalf("expected second add to succeed")
	}
	if bag.Add(NewError(ValNotPositive, source.Span{}, "third")) {
		t.Fatalf("expected cap to reject third diagnostic")
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("severity accounting broken")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevWarning, AplIgnoredUnknown, source.Span{File: 1, Start: 20, End: 21}, "b"))
	bag.Add(NewError(ValNotPositive, source.Span{File: 1, Start: 5, End: 6}, "a"))
	bag.Add(NewError(ValNotPositive, source.Span{File: 0, Start: 50, End: 51}, "c"))
	bag.Sort()
	items := bag.Items()
	if items[0].Message != "c" || items[1].Message != "a" || items[2].Message != "b" {
		t.Fatalf("unexpected order: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{ArgCountTooFew, "ARG1001"},
		{ValNotPowerOfTwo, "VAL2003"},
		{AplWrongSubject, "APL3001"},
		{CflMutualExclusion, "CFL4001"},
		{SemWeakrefWithoutAlias, "SEM5005"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Errorf("ID(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestDelayedPoolDrainAndDiscard(t *testing.T) {
	bag := NewBag(10)
	rep := BagReporter{Bag: bag}

	declSpec := NewDelayedPool(nil, true)
	declarator := NewDelayedPool(declSpec, false)

	declSpec.Add(DelayedDeprecation, New(SevWarning, SemDeprecatedUsage, source.Span{Start: 1, End: 2}, "spec-level"))
	declarator.Add(DelayedUnavailable, New(SevWarning, SemUnavailableUsage, source.Span{Start: 3, End: 4}, "declarator-level"))

	if n := declarator.Drain(rep); n != 2 {
		t.Fatalf("expected 2 emitted, got %d", n)
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics in bag, got %d", bag.Len())
	}
	// Pools are now empty; a second drain emits nothing.
	if n := declarator.Drain(rep); n != 0 {
		t.Fatalf("expected drained pools to stay empty, got %d", n)
	}
}

func TestDelayedPoolDiscardDropsEverything(t *testing.T) {
	bag := NewBag(10)
	rep := BagReporter{Bag: bag}

	pool := NewDelayedPool(nil, true)
	pool.Add(DelayedForbiddenType, New(SevWarning, SemForbiddenType, source.Span{}, "never seen"))
	pool.Discard()
	if n := pool.Drain(rep); n != 0 || bag.Len() != 0 {
		t.Fatalf("discarded pool leaked diagnostics: emitted=%d bag=%d", n, bag.Len())
	}
}

func TestDelayedPoolMarkTriggered(t *testing.T) {
	bag := NewBag(10)
	rep := BagReporter{Bag: bag}

	pool := NewDelayedPool(nil, true)
	pool.Add(DelayedDeprecation, New(SevWarning, SemDeprecatedUsage, source.Span{}, "superseded"))
	pool.Add(DelayedAccess, New(SevWarning, SemForbiddenType, source.Span{}, "kept"))
	pool.MarkTriggered(DelayedDeprecation, SemDeprecatedUsage)

	if n := pool.Drain(rep); n != 1 {
		t.Fatalf("expected 1 emitted after suppression, got %d", n)
	}
	if bag.Items()[0].Message != "kept" {
		t.Fatalf("wrong survivor: %q", bag.Items()[0].Message)
	}
}
