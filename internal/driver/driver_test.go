package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chisel/internal/config"
	"chisel/internal/diag"
	"chisel/internal/source"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func loadScenario(t *testing.T, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("scenario.toml", []byte(content))
}

func bagCodes(bag *diag.Bag) []diag.Code {
	codes := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	return codes
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestRunUnitConflictAndFolding(t *testing.T) {
	fs, id := loadScenario(t, `
[[decl]]
kind = "function"
name = "handler"
returns = "void"

[[decl.attr]]
name = "hot"

[[decl.attr]]
name = "cold"

[[decl]]
kind = "var"
name = "buffer"
type = "int"

[[decl.attr]]
name = "aligned"
args = ["3"]
`)
	bag := RunUnit(fs, id, config.Default())
	if !hasCode(bag, diag.CflMutualExclusion) {
		t.Fatalf("hot/cold conflict not reported: %v", bagCodes(bag))
	}
	if !hasCode(bag, diag.ValNotPowerOfTwo) {
		t.Fatalf("aligned(3) not rejected: %v", bagCodes(bag))
	}
	// Diagnostics carry real spans into the scenario text.
	for _, d := range bag.Items() {
		if d.Primary.Empty() {
			t.Fatalf("diagnostic without a span: %+v", d)
		}
	}
}

func TestRunUnitRedeclarationMerge(t *testing.T) {
	fs, id := loadScenario(t, `
[[decl]]
kind = "function"
name = "init"

[[decl.attr]]
name = "section"
args = ["\".boot\""]

[[decl]]
kind = "function"
name = "init2"
redeclares = "init"

[[decl.attr]]
name = "section"
args = ["\".main\""]
`)
	bag := RunUnit(fs, id, config.Default())
	if !hasCode(bag, diag.CflRedeclMismatch) {
		t.Fatalf("redeclaration section mismatch not reported: %v", bagCodes(bag))
	}
}

func TestRunUnitCountedByAndCapability(t *testing.T) {
	fs, id := loadScenario(t, `
[[decl]]
kind = "record"
name = "Mutex"

[[decl.attr]]
name = "capability"
args = ["\"mutex\""]

[[decl]]
kind = "record"
name = "Counter"
fields = [ { name = "mu", type = "Mutex" }, { name = "len", type = "int" }, { name = "data", type = "char[]" } ]

[[decl]]
kind = "field"
name = "value"
type = "int"
enclosing = "Counter"

[[decl.attr]]
name = "guarded_by"
args = ["mu"]

[[decl]]
kind = "field"
name = "data"
type = "char[]"
enclosing = "Counter"

[[decl.attr]]
name = "counted_by"
args = ["len"]
`)
	bag := RunUnit(fs, id, config.Default())
	if bag.Len() != 0 {
		t.Fatalf("clean scenario produced diagnostics: %v", bag.Items())
	}
}

func TestRunUnitBadScenario(t *testing.T) {
	fs, id := loadScenario(t, "not [valid toml")
	bag := RunUnit(fs, id, config.Default())
	if !hasCode(bag, diag.IOBadScenario) {
		t.Fatalf("malformed TOML not reported: %v", bagCodes(bag))
	}

	fs2, id2 := loadScenario(t, `
[[decl]]
kind = "widget"
name = "w"
`)
	bag2 := RunUnit(fs2, id2, config.Default())
	if !hasCode(bag2, diag.IOBadScenario) {
		t.Fatalf("unknown decl kind not reported: %v", bagCodes(bag2))
	}
}

func TestCheckPathsFanOut(t *testing.T) {
	good := writeScenario(t, "good.toml", `
[[decl]]
kind = "function"
name = "f"

[[decl.attr]]
name = "noreturn"
`)
	bad := writeScenario(t, "bad.toml", `
[[decl]]
kind = "var"
name = "x"
type = "int"

[[decl.attr]]
name = "aligned"
args = ["0"]
`)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	_, results, err := CheckPaths(context.Background(), []string{good, bad, missing}, config.Default(), 2, nil)
	if err != nil {
		t.Fatalf("CheckPaths: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	if results[0].Path != good || results[0].Bag.Len() != 0 {
		t.Fatalf("clean unit: %+v", results[0])
	}
	if !hasCode(results[1].Bag, diag.ValNotPowerOfTwo) {
		t.Fatalf("aligned(0) not rejected: %v", bagCodes(results[1].Bag))
	}
	if !hasCode(results[2].Bag, diag.IOLoadFileError) {
		t.Fatalf("missing file not reported: %v", bagCodes(results[2].Bag))
	}
}

func TestCheckPathsDiskCache(t *testing.T) {
	path := writeScenario(t, "unit.toml", `
[[decl]]
kind = "var"
name = "x"
type = "int"

[[decl.attr]]
name = "aligned"
args = ["3"]
`)
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	_, first, err := CheckPaths(context.Background(), []string{path}, config.Default(), 1, cache)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatal("first run must be a cache miss")
	}

	_, second, err := CheckPaths(context.Background(), []string{path}, config.Default(), 1, cache)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached {
		t.Fatal("second run must hit the cache")
	}
	if got, want := bagCodes(second[0].Bag), bagCodes(first[0].Bag); len(got) != len(want) {
		t.Fatalf("cached bag differs: %v vs %v", got, want)
	}
	if !hasCode(second[0].Bag, diag.ValNotPowerOfTwo) {
		t.Fatalf("cached diagnostics lost the finding: %v", bagCodes(second[0].Bag))
	}

	// A configuration change must miss.
	cfg := config.Default()
	cfg.Target.Triple = "aarch64-unknown-linux-gnu"
	_, third, err := CheckPaths(context.Background(), []string{path}, cfg, 1, cache)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].Cached {
		t.Fatal("changed configuration must invalidate the cache entry")
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.toml", "a.toml", "chisel.toml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	files, err := ExpandPaths([]string{dir})
	if err != nil {
		t.Fatalf("ExpandPaths: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.toml" || filepath.Base(files[1]) != "b.toml" {
		t.Fatalf("unexpected expansion: %v", files)
	}
}

func TestCacheRebindsSpans(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.AplIgnoredUnknown,
		Message:  "x",
		Primary:  source.Span{File: 7, Start: 3, End: 9},
		Notes:    []diag.Note{{Span: source.Span{File: 7, Start: 1, End: 2}, Msg: "n"}},
	})
	round := fromCachedUnit(toCachedUnit(bag), 2, 10)
	if round.Len() != 1 {
		t.Fatalf("want 1 diagnostic, got %d", round.Len())
	}
	d := round.Items()[0]
	if d.Primary.File != 2 || d.Primary.Start != 3 || d.Primary.End != 9 {
		t.Fatalf("primary span not rebound: %+v", d.Primary)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.File != 2 {
		t.Fatalf("note span not rebound: %+v", d.Notes)
	}
}
