// Package diagfmt renders diagnostic bags for humans (pretty) and tools
// (JSON). It only reads; sorting and deduplication are the producer's job.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"chisel/internal/diag"
	"chisel/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// Pretty formats diagnostics one per block:
//
//	<path>:<line>:<col>: <SEV>[<CODE>]: <message>
//	    <source line>
//	    ^~~~~~
//
// followed by notes and fixes when the options ask for them. The caller is
// expected to have sorted the bag.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printHeading(w, fs, d.Primary, severityLabel(d.Severity, opts.Color), d.Code, d.Message, opts)
		printSourceLine(w, fs, d.Primary, opts)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				label := "note"
				if opts.Color {
					label = noteColor.Sprint(label)
				}
				fmt.Fprintf(w, "%s: %s: %s\n", location(fs, n.Span, opts.PathMode), label, n.Msg)
				printSourceLine(w, fs, n.Span, opts)
			}
		}
		if opts.ShowFixes {
			for _, fx := range d.Fixes {
				fmt.Fprintf(w, "  fix: %s\n", fx.Title)
				for _, e := range fx.Edits {
					fmt.Fprintf(w, "    %s -> %q\n", location(fs, e.Span, opts.PathMode), e.NewText)
				}
			}
		}
	}
}

func printHeading(w io.Writer, fs *source.FileSet, span source.Span, sev string, code diag.Code, msg string, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s[%s]: %s\n", location(fs, span, opts.PathMode), sev, code.ID(), msg)
}

func severityLabel(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", displayPath(f.Path, mode), start.Line, start.Col)
}

func displayPath(path string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// printSourceLine shows the first line the span touches with a caret
// underline. Widths are rune-aware so the carets line up under wide
// characters too.
func printSourceLine(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	if span.Empty() {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}

	fmt.Fprintf(w, "    %s\n", line)

	startCol := int(start.Col)
	endCol := len(line) + 1
	if end.Line == start.Line {
		endCol = int(end.Col)
	}
	if startCol > len(line) {
		startCol = len(line)
	}
	if endCol <= startCol {
		endCol = startCol + 1
	}

	pad := runewidth.StringWidth(line[:startCol-1])
	width := runewidth.StringWidth(line[startCol-1 : min(endCol-1, len(line))])
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = caretColor.Sprint(marker)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), marker)
}
