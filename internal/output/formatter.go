// Package output renders analysis results: terminal diagnostics with
// span underlining and a per-kind summary table.
package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/source"
)

// Format is an output format.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatSVG      Format = "svg"
	FormatDOT      Format = "dot"
	FormatGraphML  Format = "graphml"
)

// ParseFormat converts a string to Format, defaulting to terminal.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "svg":
		return FormatSVG
	case "dot", "graphviz":
		return FormatDOT
	case "graphml":
		return FormatGraphML
	default:
		return FormatTerminal
	}
}

// IsGraph reports whether the format renders the dependency graph
// rather than terminal diagnostics.
func (f Format) IsGraph() bool {
	return f == FormatSVG || f == FormatDOT || f == FormatGraphML
}

// DiagnosticRenderer writes diagnostics with source spans.
type DiagnosticRenderer struct {
	writer      io.Writer
	colored     bool
	interactive bool
	input       *bufio.Reader
}

// NewDiagnosticRenderer creates a renderer. In interactive mode it
// waits for Enter on `in` between diagnostics.
func NewDiagnosticRenderer(w io.Writer, colored, interactive bool, in io.Reader) *DiagnosticRenderer {
	r := &DiagnosticRenderer{writer: w, colored: colored, interactive: interactive}
	if in != nil {
		r.input = bufio.NewReader(in)
	}
	return r
}

// Render writes every diagnostic with its underlined source span,
// followed by a summary table. The file set provides source text for
// span extraction.
func (r *DiagnosticRenderer) Render(diags []*ast.Diagnostic, files source.FileSet) error {
	for i, d := range diags {
		r.renderOne(d, files[d.Path])
		if r.interactive && r.input != nil && i < len(diags)-1 {
			fmt.Fprint(r.writer, "-- press enter for next diagnostic --")
			if _, err := r.input.ReadString('\n'); err != nil {
				return nil
			}
		}
	}

	if len(diags) > 0 {
		r.renderSummary(diags)
	}
	return nil
}

func (r *DiagnosticRenderer) renderOne(d *ast.Diagnostic, content string) {
	header := fmt.Sprintf("error: %s", d.Message())
	if r.colored {
		header = color.RedString("error") + ": " + d.Message()
	}
	fmt.Fprintln(r.writer, header)

	line, col := locate(content, int(d.Range.Start))
	fmt.Fprintf(r.writer, "  --> %s:%d:%d\n", d.Path, line, col)

	if snippet, underline, ok := span(content, d.Range); ok {
		fmt.Fprintf(r.writer, "   | %s\n", snippet)
		marker := underline
		if r.colored {
			marker = color.RedString(underline)
		}
		fmt.Fprintf(r.writer, "   | %s\n", marker)
	}
	fmt.Fprintln(r.writer)
}

func (r *DiagnosticRenderer) renderSummary(diags []*ast.Diagnostic) {
	counts := make(map[ast.ErrorKind]int)
	for _, d := range diags {
		counts[d.Kind]++
	}

	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	table := tablewriter.NewTable(r.writer,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"Rule", "Count"})
	for _, kind := range kinds {
		table.Append([]string{kind, fmt.Sprintf("%d", counts[ast.ErrorKind(kind)])})
	}
	table.Render()
	fmt.Fprintf(r.writer, "\n%d problem(s) found\n", len(diags))
}

// locate converts a byte offset into 1-based line and column numbers.
func locate(content string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(content) {
		offset = len(content)
	}
	for _, b := range []byte(content[:offset]) {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// span extracts the first source line of a range together with an
// underline marker aligned beneath the flagged bytes.
func span(content string, rng ast.Range) (snippet, underline string, ok bool) {
	start, end := int(rng.Start), int(rng.End)
	if content == "" || start >= len(content) || start > end {
		return "", "", false
	}
	if end > len(content) {
		end = len(content)
	}

	lineStart := strings.LastIndexByte(content[:start], '\n') + 1
	lineEnd := len(content)
	if idx := strings.IndexByte(content[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}

	snippet = content[lineStart:lineEnd]
	markEnd := end
	if markEnd > lineEnd {
		markEnd = lineEnd
	}

	underline = strings.Repeat(" ", start-lineStart) + strings.Repeat("^", maxInt(1, markEnd-start))
	return snippet, underline, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
