package driver

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"chisel/internal/ast"
	"chisel/internal/config"
	"chisel/internal/diag"
	"chisel/internal/sema"
	"chisel/internal/source"
	"chisel/internal/types"
)

// A scenario file is the CLI's check input: a TOML description of
// declarations and the attributes written on them, replayed through the
// engine in file order. It stands in for the front end this engine is
// normally embedded in.
type scenarioFile struct {
	PragmaWeak []pragmaWeakEntry `toml:"pragma_weak"`
	Decls      []declEntry       `toml:"decl"`
}

type pragmaWeakEntry struct {
	Name string `toml:"name"`
}

type fieldEntry struct {
	Name      string `toml:"name"`
	Type      string `toml:"type"`
	Anonymous bool   `toml:"anonymous"`
}

type declEntry struct {
	Kind       string       `toml:"kind"`
	Name       string       `toml:"name"`
	Returns    string       `toml:"returns"`
	Params     []string     `toml:"params"`
	Type       string       `toml:"type"`
	Method     bool         `toml:"method"`
	Static     bool         `toml:"static"`
	Definition bool         `toml:"definition"`
	Template   bool         `toml:"template"`
	Redeclares string       `toml:"redeclares"`
	Enclosing  string       `toml:"enclosing"`
	Fields     []fieldEntry `toml:"fields"`
	Attrs      []attrEntry  `toml:"attr"`
}

type attrEntry struct {
	Name   string   `toml:"name"`
	Scope  string   `toml:"scope"`
	Syntax string   `toml:"syntax"`
	Args   []string `toml:"args"`
}

// spanFinder synthesizes spans by locating substrings in the scenario file,
// scanning forward so repeated names bind in declaration order.
type spanFinder struct {
	file   *source.File
	cursor int
}

func (sf *spanFinder) find(needle string) source.Span {
	if needle == "" {
		return source.Span{File: sf.file.ID}
	}
	content := sf.file.Content
	if idx := bytes.Index(content[sf.cursor:], []byte(needle)); idx >= 0 {
		start := sf.cursor + idx
		sf.cursor = start + len(needle)
		return source.Span{File: sf.file.ID, Start: uint32(start), End: uint32(start + len(needle))}
	}
	// Out-of-order reference; bind to the first occurrence without moving
	// the cursor.
	if idx := bytes.Index(content, []byte(needle)); idx >= 0 {
		return source.Span{File: sf.file.ID, Start: uint32(idx), End: uint32(idx + len(needle))}
	}
	return source.Span{File: sf.file.ID}
}

// unitRunner replays one scenario file through a fresh checker.
type unitRunner struct {
	checker *sema.Checker
	bag     *diag.Bag
	sf      *spanFinder

	records map[string]*types.Record
	byName  map[string]*ast.Decl
}

// RunUnit checks one already-loaded scenario file and returns its bag,
// sorted. Malformed scenarios produce IOBadScenario diagnostics instead of
// Go errors so a broken file renders like any other finding.
func RunUnit(fs *source.FileSet, fileID source.FileID, cfg *config.Config) *diag.Bag {
	file := fs.Get(fileID)
	bag := diag.NewBag(cfg.Options().MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	r := &unitRunner{
		checker: sema.NewChecker(reporter, cfg.TargetInfo(), cfg.LangOpts(), cfg.Options()),
		bag:     bag,
		sf:      &spanFinder{file: file},
		records: map[string]*types.Record{},
		byName:  map[string]*ast.Decl{},
	}

	var sc scenarioFile
	if _, err := toml.Decode(string(file.Content), &sc); err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOBadScenario,
			Message:  "malformed scenario: " + err.Error(),
			Primary:  source.Span{File: fileID},
		})
		return bag
	}

	for _, pw := range sc.PragmaWeak {
		r.checker.Unit().AddPragmaWeak(pw.Name, r.sf.find(pw.Name))
	}
	for i := range sc.Decls {
		r.runDecl(&sc.Decls[i])
	}
	r.checker.Finish()

	bag.Sort()
	return bag
}

func (r *unitRunner) badScenario(span source.Span, format string, args ...interface{}) {
	r.bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOBadScenario,
		Message:  fmt.Sprintf(format, args...),
		Primary:  span,
	})
}

func (r *unitRunner) runDecl(e *declEntry) {
	span := r.sf.find(e.Name)

	kind, ok := declKind(e.Kind)
	if !ok {
		r.badScenario(span, "declaration '%s': unknown kind %q", e.Name, e.Kind)
		return
	}

	d := &ast.Decl{
		Kind:         kind,
		Name:         e.Name,
		Span:         span,
		IsMethod:     e.Method,
		IsStatic:     e.Static,
		IsDefinition: e.Definition,
	}
	if e.Template {
		d.TemplateDepth = 1
	}

	if e.Enclosing != "" {
		enc, ok := r.byName[e.Enclosing]
		if !ok || enc.Kind != ast.DeclRecord {
			r.badScenario(span, "declaration '%s': enclosing record %q is not declared", e.Name, e.Enclosing)
			return
		}
		d.Enclosing = enc
	}

	switch kind {
	case ast.DeclRecord:
		rec := &types.Record{Name: e.Name}
		r.records[e.Name] = rec
		for _, f := range e.Fields {
			ft, err := r.parseType(f.Type)
			if err != nil {
				r.badScenario(span, "record '%s' field '%s': %v", e.Name, f.Name, err)
				return
			}
			rec.Fields = append(rec.Fields, types.RecordField{Name: f.Name, Type: ft, Anonymous: f.Anonymous})
		}
		d.Record = rec
	case ast.DeclFunction:
		ret := voidType
		if e.Returns != "" {
			t, err := r.parseType(e.Returns)
			if err != nil {
				r.badScenario(span, "function '%s': %v", e.Name, err)
				return
			}
			ret = t
		}
		d.Return = ret
		for i, spell := range e.Params {
			t, err := r.parseType(spell)
			if err != nil {
				r.badScenario(span, "function '%s' parameter %d: %v", e.Name, i+1, err)
				return
			}
			d.Params = append(d.Params, &ast.Decl{
				Kind: ast.DeclParam,
				Name: fmt.Sprintf("arg%d", i+1),
				Type: t,
				Span: span,
			})
		}
	default:
		if e.Type != "" {
			t, err := r.parseType(e.Type)
			if err != nil {
				r.badScenario(span, "declaration '%s': %v", e.Name, err)
				return
			}
			d.Type = t
		}
	}

	var prev *ast.Decl
	if e.Redeclares != "" {
		p, ok := r.byName[e.Redeclares]
		if !ok {
			r.badScenario(span, "declaration '%s' redeclares unknown '%s'", e.Name, e.Redeclares)
			return
		}
		prev = p
		// The previous-declaration link is visible to in-list checks; the
		// attribute merge itself runs after the list routes.
		d.Prev = prev
	}

	parsed := make([]*ast.ParsedAttr, 0, len(e.Attrs))
	for i := range e.Attrs {
		parsed = append(parsed, r.parseAttr(d, &e.Attrs[i]))
	}

	r.checker.ProcessDeclAttrs(d, parsed)
	if prev != nil {
		r.checker.MergeDeclAttrs(prev, d)
	}
	r.checker.Unit().NoteDefinition(d)
	r.byName[e.Name] = d
}

func (r *unitRunner) parseAttr(d *ast.Decl, e *attrEntry) *ast.ParsedAttr {
	pa := &ast.ParsedAttr{
		Scope:  e.Scope,
		Name:   e.Name,
		Syntax: attrSyntax(e.Syntax),
		Span:   r.sf.find(e.Name),
	}
	for _, raw := range e.Args {
		pa.Args = append(pa.Args, r.attrArg(d, raw))
	}
	return pa
}

// attrArg classifies one literal argument: integers become expressions,
// quoted text becomes a string literal, `dependent` becomes an opaque
// value-dependent expression, and everything else is an identifier. An
// identifier that resolves against the enclosing record or an earlier
// declaration carries its referent's type, which the capability checks read.
func (r *unitRunner) attrArg(d *ast.Decl, raw string) ast.AttrArg {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		inner := raw[1 : len(raw)-1]
		return ast.AttrArg{Kind: ast.ArgString, Str: inner, Span: r.sf.find(inner)}
	}
	if isInteger(raw) {
		span := r.sf.find(raw)
		neg := raw[0] == '-'
		mag, err := strconv.ParseUint(strings.TrimPrefix(raw, "-"), 10, 64)
		if err == nil {
			e := ast.IntLit(mag, span)
			if neg {
				e = ast.NegIntLit(mag, span)
			}
			return ast.AttrArg{Kind: ast.ArgExpr, Expr: e, Span: span}
		}
	}
	span := r.sf.find(raw)
	if raw == "dependent" {
		return ast.AttrArg{Kind: ast.ArgExpr, Expr: ast.Dependent(span), Span: span}
	}
	if ref := r.resolveName(d, raw); ref != nil {
		return ast.AttrArg{
			Kind: ast.ArgExpr,
			Expr: &ast.Expr{Kind: ast.ExprIdent, Str: raw, Type: ref.Type, Ref: ref, Span: span},
			Span: span,
		}
	}
	return ast.AttrArg{Kind: ast.ArgIdent, Ident: raw, Span: span}
}

// resolveName binds an identifier to a field of the enclosing record or to
// an earlier declaration, most local first.
func (r *unitRunner) resolveName(d *ast.Decl, name string) *ast.Decl {
	if rec := d.EnclosingRecord(); rec != nil {
		if f, ok := rec.LookupField(name); ok {
			return &ast.Decl{Kind: ast.DeclField, Name: name, Type: f.Type, Enclosing: d.Enclosing}
		}
	}
	if prev, ok := r.byName[name]; ok && prev.Type != nil {
		return prev
	}
	return nil
}

func isInteger(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '-' && i == 0 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func declKind(s string) (ast.DeclKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "fn":
		return ast.DeclFunction, true
	case "var", "variable":
		return ast.DeclVar, true
	case "param", "parameter":
		return ast.DeclParam, true
	case "field":
		return ast.DeclField, true
	case "record", "struct", "class":
		return ast.DeclRecord, true
	case "typedef":
		return ast.DeclTypedef, true
	case "enum":
		return ast.DeclEnum, true
	case "namespace":
		return ast.DeclNamespace, true
	case "using":
		return ast.DeclUsing, true
	}
	return ast.DeclInvalid, false
}

func attrSyntax(s string) ast.AttrSyntax {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cxx11", "cxx":
		return ast.SyntaxCXX11
	case "declspec":
		return ast.SyntaxDeclspec
	case "keyword":
		return ast.SyntaxKeyword
	}
	return ast.SyntaxGNU
}

var (
	voidType   = &types.Type{Kind: types.KindVoid, Name: "void"}
	boolType   = &types.Type{Kind: types.KindBool, Name: "bool"}
	intType    = &types.Type{Kind: types.KindInt, Name: "int", Signed: true}
	uintType   = &types.Type{Kind: types.KindInt, Name: "unsigned"}
	charType   = &types.Type{Kind: types.KindInt, Name: "char", Signed: true}
	floatType  = &types.Type{Kind: types.KindFloat, Name: "float"}
	doubleType = &types.Type{Kind: types.KindFloat, Name: "double"}
)

// parseType turns a C-ish type spelling into the engine's type model. The
// grammar covers what scenarios need: the scalar names, `*` pointers, `[]`
// flexible arrays, `(*)()` function pointers, and declared record names.
func (r *unitRunner) parseType(spell string) (*types.Type, error) {
	s := strings.TrimSpace(spell)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type spelling")
	case strings.HasSuffix(s, "[]"):
		elem, err := r.parseType(s[:len(s)-2])
		if err != nil {
			return nil, err
		}
		return &types.Type{Kind: types.KindIncompleteArray, Elem: elem}, nil
	case strings.HasSuffix(s, "(*)()"):
		ret, err := r.parseType(s[:len(s)-5])
		if err != nil {
			return nil, err
		}
		return &types.Type{
			Kind: types.KindPointer,
			Elem: &types.Type{Kind: types.KindFunction, Elem: ret},
		}, nil
	case strings.HasSuffix(s, "*"):
		elem, err := r.parseType(s[:len(s)-1])
		if err != nil {
			return nil, err
		}
		return &types.Type{Kind: types.KindPointer, Elem: elem}, nil
	}
	switch s {
	case "void":
		return voidType, nil
	case "bool":
		return boolType, nil
	case "int", "long", "short":
		return intType, nil
	case "unsigned", "size_t":
		return uintType, nil
	case "char":
		return charType, nil
	case "float":
		return floatType, nil
	case "double":
		return doubleType, nil
	}
	if rec, ok := r.records[s]; ok {
		return &types.Type{Kind: types.KindRecord, Name: s, Record: rec}, nil
	}
	return nil, fmt.Errorf("unknown type spelling %q", s)
}
