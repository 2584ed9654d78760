package diagfmt

import (
	"strings"
	"testing"

	"chisel/internal/diag"
	"chisel/internal/source"
)

func testBag() (*diag.Bag, *source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("case.toml", []byte("alpha beta\ngamma\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.ValNotPowerOfTwo,
		Message:  "must be a power of two",
		Primary:  source.Span{File: id, Start: 6, End: 10},
		Notes: []diag.Note{
			{Span: source.Span{File: id, Start: 11, End: 16}, Msg: "declared here"},
		},
		Fixes: []diag.Fix{
			{Title: "quote it", Edits: []diag.FixEdit{
				{Span: source.Span{File: id, Start: 6, End: 10}, NewText: `"beta"`},
			}},
		},
	})
	return bag, fs, id
}

func TestPrettyLayout(t *testing.T) {
	bag, fs, _ := testBag()
	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true})
	out := sb.String()

	if !strings.Contains(out, "case.toml:1:7: ERROR[VAL2003]: must be a power of two") {
		t.Fatalf("heading missing:\n%s", out)
	}
	if !strings.Contains(out, "    alpha beta\n          ^~~~\n") {
		t.Fatalf("caret underline misaligned:\n%s", out)
	}
	if !strings.Contains(out, "case.toml:2:1: note: declared here") {
		t.Fatalf("note missing:\n%s", out)
	}
	if !strings.Contains(out, `fix: quote it`) || !strings.Contains(out, `"beta"`) {
		t.Fatalf("fix missing:\n%s", out)
	}
}

func TestPrettyNotesAndFixesHidden(t *testing.T) {
	bag, fs, _ := testBag()
	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})
	out := sb.String()
	if strings.Contains(out, "note:") || strings.Contains(out, "fix:") {
		t.Fatalf("notes/fixes shown without opt-in:\n%s", out)
	}
}

func TestPrettyBasenamePath(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("some/dir/case.toml", []byte("x\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.AplIgnoredUnknown,
		Message:  "m",
		Primary:  source.Span{File: id, Start: 0, End: 1},
	})
	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if !strings.HasPrefix(sb.String(), "case.toml:1:1:") {
		t.Fatalf("basename mode not honoured:\n%s", sb.String())
	}
}
