package sema

import (
	"testing"

	"chisel/internal/ast"
	"chisel/internal/diag"
	"chisel/internal/source"
	"chisel/internal/target"
	"chisel/internal/types"
)

func newTestChecker(tgt *target.Info, lang LangOpts) (*Checker, *diag.Bag) {
	bag := diag.NewBag(64)
	c := NewChecker(diag.BagReporter{Bag: bag}, tgt, lang, Options{})
	return c, bag
}

func hostChecker() (*Checker, *diag.Bag) {
	return newTestChecker(nil, LangOpts{Lang: ast.LangCXX})
}

func sp(n uint32) source.Span {
	return source.Span{Start: n, End: n + 1}
}

func gnu(name string, args ...ast.AttrArg) *ast.ParsedAttr {
	return &ast.ParsedAttr{Name: name, Syntax: ast.SyntaxGNU, Span: sp(1), Args: args}
}

func identArg(s string) ast.AttrArg {
	return ast.AttrArg{Kind: ast.ArgIdent, Ident: s, Span: sp(2)}
}

func stringArg(s string) ast.AttrArg {
	return ast.AttrArg{Kind: ast.ArgString, Str: s, Span: sp(2)}
}

func exprArg(e *ast.Expr) ast.AttrArg {
	return ast.AttrArg{Kind: ast.ArgExpr, Expr: e, Span: e.Span}
}

func intArg(v uint64) ast.AttrArg {
	return exprArg(ast.IntLit(v, sp(3)))
}

func negIntArg(v uint64) ast.AttrArg {
	return exprArg(ast.NegIntLit(v, sp(3)))
}

var (
	intType  = &types.Type{Kind: types.KindInt, Signed: true, Name: "int"}
	boolType = &types.Type{Kind: types.KindBool, Name: "bool"}
	voidPtr  = &types.Type{Kind: types.KindPointer, Elem: &types.Type{Kind: types.KindVoid}}
	charPtr  = &types.Type{Kind: types.KindPointer, Elem: &types.Type{Kind: types.KindInt, Name: "char"}}
)

func fn(name string, ret *types.Type, params ...*types.Type) *ast.Decl {
	d := &ast.Decl{Kind: ast.DeclFunction, Name: name, Span: sp(0), Return: ret}
	for i, p := range params {
		d.Params = append(d.Params, &ast.Decl{
			Kind: ast.DeclParam,
			Name: "p",
			Span: sp(uint32(10 + i)),
			Type: p,
		})
	}
	return d
}

func hasCode(t *testing.T, bag *diag.Bag, code diag.Code) bool {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func wantOnly(t *testing.T, bag *diag.Bag, codes ...diag.Code) {
	t.Helper()
	if bag.Len() != len(codes) {
		t.Fatalf("got %d diagnostics, want %d: %v", bag.Len(), len(codes), bag.Items())
	}
	for i, d := range bag.Items() {
		if d.Code != codes[i] {
			t.Fatalf("diagnostic %d has code %v, want %v", i, d.Code, codes[i])
		}
	}
}

func TestMarkerRestatementIsSilent(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", voidPtr)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("noreturn"), gnu("noreturn")})
	if bag.Len() != 0 {
		t.Fatalf("restating a marker produced diagnostics: %v", bag.Items())
	}
	if len(d.Attrs.All(ast.AttrNoReturn)) != 1 {
		t.Fatalf("want exactly one noreturn record, got %d", len(d.Attrs.All(ast.AttrNoReturn)))
	}
}

func TestHotColdExclusion(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("hot"), gnu("cold")})
	if !hasCode(t, bag, diag.CflMutualExclusion) {
		t.Fatal("hot+cold did not report a mutual exclusion")
	}
	if d.Attrs.Has(ast.AttrCold) {
		t.Fatal("the losing attribute was still attached")
	}
	if !d.Attrs.Has(ast.AttrHot) {
		t.Fatal("the first attribute should survive")
	}
}

func TestUnknownAttributeIgnored(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("totally_unknown")})
	wantOnly(t, bag, diag.AplIgnoredUnknown)
	if d.Attrs.Len() != 0 {
		t.Fatal("unknown attribute must not attach anything")
	}
}

func TestDecoratedSpellingNormalizes(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("__noreturn__")})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if !d.Attrs.Has(ast.AttrNoReturn) {
		t.Fatal("__noreturn__ did not attach noreturn")
	}
}

func TestArityTooFew(t *testing.T) {
	c, bag := hostChecker()
	d := &ast.Decl{Kind: ast.DeclEnum, Name: "E", Span: sp(0)}
	pa := gnu("enum_extensibility")
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{pa})
	wantOnly(t, bag, diag.ArgCountTooFew)
	if !pa.IsInvalid() {
		t.Fatal("arity failure must mark the parsed attribute invalid")
	}
}

func TestWrongSubjectWarnsAndEscalatesForKeyword(t *testing.T) {
	c, bag := hostChecker()
	v := &ast.Decl{Kind: ast.DeclVar, Name: "x", Span: sp(0), Type: intType}

	c.ProcessDeclAttrs(v, []*ast.ParsedAttr{gnu("noreturn")})
	wantOnly(t, bag, diag.AplWrongSubject)
	if bag.Items()[0].Severity != diag.SevWarning {
		t.Fatal("declaration-syntax subject failure should be a warning")
	}

	c2, bag2 := hostChecker()
	kw := gnu("noreturn")
	kw.Syntax = ast.SyntaxKeyword
	c2.ProcessDeclAttrs(v, []*ast.ParsedAttr{kw})
	wantOnly(t, bag2, diag.AplWrongSubject)
	if bag2.Items()[0].Severity != diag.SevError {
		t.Fatal("keyword-syntax subject failure should be an error")
	}
}

func TestFunctionPointerVariableCountsAsFunction(t *testing.T) {
	c, bag := hostChecker()
	fp := &types.Type{Kind: types.KindPointer, Elem: &types.Type{Kind: types.KindFunction}}
	v := &ast.Decl{Kind: ast.DeclVar, Name: "cb", Span: sp(0), Type: fp}
	c.ProcessDeclAttrs(v, []*ast.ParsedAttr{gnu("noreturn")})
	if bag.Len() != 0 {
		t.Fatalf("function-pointer variable rejected: %v", bag.Items())
	}
	if !v.Attrs.Has(ast.AttrNoReturn) {
		t.Fatal("attribute not attached")
	}
}

func TestSectionDuplicateMismatch(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{
		gnu("section", stringArg(".fast")),
		gnu("section", stringArg(".fast")),
		gnu("section", stringArg(".slow")),
	})
	wantOnly(t, bag, diag.CflDuplicateMismatch)
	a := d.Attrs.Get(ast.AttrSection)
	if a == nil || a.Str != ".fast" {
		t.Fatalf("first section must win, got %+v", a)
	}
}

func TestCallConvConflict(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("stdcall"), gnu("cdecl")})
	if !hasCode(t, bag, diag.CflDuplicateMismatch) {
		t.Fatal("conflicting calling conventions not reported")
	}
	a := d.Attrs.Get(ast.AttrCallConv)
	if a == nil || a.CC != ast.CCStdcall {
		t.Fatalf("first convention must win, got %+v", a)
	}
}

func TestRedeclMergePropagatesAndConflicts(t *testing.T) {
	c, bag := hostChecker()
	prev := fn("f", intType)
	c.ProcessDeclAttrs(prev, []*ast.ParsedAttr{gnu("noreturn"), gnu("section", stringArg(".a"))})
	next := fn("f", intType)
	c.ProcessDeclAttrs(next, []*ast.ParsedAttr{gnu("section", stringArg(".b"))})
	if bag.Len() != 0 {
		t.Fatalf("setup produced diagnostics: %v", bag.Items())
	}

	c.MergeDeclAttrs(prev, next)
	if !hasCode(t, bag, diag.CflRedeclMismatch) {
		t.Fatal("conflicting section across redeclarations not reported")
	}
	sec := next.Attrs.Get(ast.AttrSection)
	if sec == nil || sec.Str != ".a" || !sec.Inherited {
		t.Fatalf("first declaration's section must win via inheritance, got %+v", sec)
	}
	nr := next.Attrs.Get(ast.AttrNoReturn)
	if nr == nil || !nr.Inherited {
		t.Fatalf("noreturn must propagate as inherited, got %+v", nr)
	}
	if prevAttr := prev.Attrs.Get(ast.AttrNoReturn); prevAttr == nr {
		t.Fatal("propagation must clone, not share, records")
	}
}

func TestRedeclMergeIdenticalIsSilent(t *testing.T) {
	c, bag := hostChecker()
	prev := fn("f", intType)
	next := fn("f", intType)
	c.ProcessDeclAttrs(prev, []*ast.ParsedAttr{gnu("section", stringArg(".a"))})
	c.ProcessDeclAttrs(next, []*ast.ParsedAttr{gnu("section", stringArg(".a"))})
	c.MergeDeclAttrs(prev, next)
	if bag.Len() != 0 {
		t.Fatalf("identical restatement across redeclarations diagnosed: %v", bag.Items())
	}
}

func TestVisibilityExplicitReplacesInherited(t *testing.T) {
	c, bag := hostChecker()
	prev := fn("f", intType)
	c.ProcessDeclAttrs(prev, []*ast.ParsedAttr{gnu("visibility", stringArg("default"))})
	next := fn("f", intType)
	c.ProcessDeclAttrs(next, []*ast.ParsedAttr{gnu("visibility", stringArg("hidden"))})
	c.MergeDeclAttrs(prev, next)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	a := next.Attrs.Get(ast.AttrVisibility)
	if a == nil || a.Vis != ast.VisHidden || a.Inherited {
		t.Fatalf("explicit visibility must beat the propagated one, got %+v", a)
	}
}

func TestVisibilityBadEnumerator(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("visibility", stringArg("shiny"))})
	wantOnly(t, bag, diag.ValBadEnumerator)
}

func TestDeprecatedMessage(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("deprecated", stringArg("use g instead"))})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	a := d.Attrs.Get(ast.AttrDeprecated)
	if a == nil || a.Str != "use g instead" {
		t.Fatalf("message not stored, got %+v", a)
	}
}

func TestStringArgumentIdentifierGetsFixIt(t *testing.T) {
	c, bag := hostChecker()
	d := fn("f", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("section", identArg("fast"))})
	wantOnly(t, bag, diag.ArgIdentifierQuoted)
	fixes := bag.Items()[0].Fixes
	if len(fixes) != 1 || len(fixes[0].Edits) != 1 || fixes[0].Edits[0].NewText != `"fast"` {
		t.Fatalf("expected a quote-it fix, got %+v", fixes)
	}
}

func TestEnumExtensibility(t *testing.T) {
	c, bag := hostChecker()
	e := &ast.Decl{Kind: ast.DeclEnum, Name: "E", Span: sp(0)}
	c.ProcessDeclAttrs(e, []*ast.ParsedAttr{gnu("enum_extensibility", identArg("open"))})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	a := e.Attrs.Get(ast.AttrEnumExtensibility)
	if a == nil || !a.Open {
		t.Fatalf("open extensibility not recorded, got %+v", a)
	}

	c2, bag2 := hostChecker()
	c2.ProcessDeclAttrs(e, []*ast.ParsedAttr{gnu("enum_extensibility", identArg("ajar"))})
	wantOnly(t, bag2, diag.ValBadEnumerator)
}

func TestAlignedValues(t *testing.T) {
	cases := []struct {
		arg  ast.AttrArg
		ok   bool
		code diag.Code
	}{
		{intArg(1), true, 0},
		{intArg(2), true, 0},
		{intArg(4), true, 0},
		{intArg(1024), true, 0},
		{intArg(0), false, diag.ValNotPowerOfTwo},
		{intArg(3), false, diag.ValNotPowerOfTwo},
		{intArg(5), false, diag.ValNotPowerOfTwo},
		{negIntArg(1), false, diag.ValNotPowerOfTwo},
	}
	for _, tc := range cases {
		c, bag := hostChecker()
		v := &ast.Decl{Kind: ast.DeclVar, Name: "x", Span: sp(0), Type: intType}
		c.ProcessDeclAttrs(v, []*ast.ParsedAttr{gnu("aligned", tc.arg)})
		if tc.ok {
			if bag.Len() != 0 {
				t.Errorf("aligned(%v): unexpected diagnostics %v", tc.arg.Expr.Val, bag.Items())
			}
			if !v.Attrs.Has(ast.AttrAligned) {
				t.Errorf("aligned(%v): not attached", tc.arg.Expr.Val)
			}
			continue
		}
		if !hasCode(t, bag, tc.code) {
			t.Errorf("aligned(%v): want %v, got %v", tc.arg.Expr.Val, tc.code, bag.Items())
		}
		if v.Attrs.Has(ast.AttrAligned) {
			t.Errorf("aligned(%v): rejected value still attached", tc.arg.Expr.Val)
		}
	}
}

func TestAlignedDefault(t *testing.T) {
	c, bag := hostChecker()
	v := &ast.Decl{Kind: ast.DeclVar, Name: "x", Span: sp(0), Type: intType}
	c.ProcessDeclAttrs(v, []*ast.ParsedAttr{gnu("aligned")})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	a := v.Attrs.Get(ast.AttrAligned)
	if a == nil || a.Val != defaultAlignment {
		t.Fatalf("bare aligned must use the default alignment, got %+v", a)
	}
}

func TestAlignedFoldsArithmetic(t *testing.T) {
	c, bag := hostChecker()
	v := &ast.Decl{Kind: ast.DeclVar, Name: "x", Span: sp(0), Type: intType}
	// 1 << 4
	e := &ast.Expr{
		Kind: ast.ExprBinary, BOp: ast.BinaryShl, Span: sp(3),
		X: ast.IntLit(1, sp(3)), Y: ast.IntLit(4, sp(4)),
	}
	c.ProcessDeclAttrs(v, []*ast.ParsedAttr{gnu("aligned", exprArg(e))})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	a := v.Attrs.Get(ast.AttrAligned)
	if a == nil || a.Val != 16 {
		t.Fatalf("1<<4 should fold to 16, got %+v", a)
	}
}

func TestConstructorPriorityRange(t *testing.T) {
	c, bag := hostChecker()
	d := fn("init", intType)
	c.ProcessDeclAttrs(d, []*ast.ParsedAttr{gnu("constructor", intArg(50))})
	wantOnly(t, bag, diag.ValOutOfRange)

	c2, bag2 := hostChecker()
	d2 := fn("init", intType)
	c2.ProcessDeclAttrs(d2, []*ast.ParsedAttr{gnu("constructor", intArg(200))})
	if bag2.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag2.Items())
	}
	if a := d2.Attrs.Get(ast.AttrConstructor); a == nil || a.Val != 200 {
		t.Fatalf("priority not stored, got %+v", a)
	}
}
