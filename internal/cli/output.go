package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// maxCellWidth bounds a table cell before it is truncated with "...".
const maxCellWidth = 60

// Printer renders command results in the format selected by --output.
type Printer struct {
	out       io.Writer
	format    string
	noHeaders bool
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, flags CommandFlags) *Printer {
	format := flags.OutputFormat
	if format == "" {
		format = OutputTable
	}
	return &Printer{out: out, format: format, noHeaders: flags.NoHeaders}
}

// Structured reports whether the printer emits machine-readable output.
func (p *Printer) Structured() bool {
	return p.format == OutputJSON || p.format == OutputYAML
}

// Object writes v as JSON or YAML. Table formats fall back to JSON for
// values that have no tabular representation.
func (p *Printer) Object(v any) error {
	if p.format == OutputYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = p.out.Write(data)
		return err
	}

	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// Table renders rows under headers. For json and yaml, raw is written
// instead so scripts get the full server objects.
func (p *Printer) Table(headers []string, rows [][]string, raw any) error {
	switch p.format {
	case OutputJSON, OutputYAML:
		return p.Object(raw)
	case OutputPlain:
		return p.plain(headers, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintf(p.out, "%s\n", text.FgYellow.Sprint("No items found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	if !p.noHeaders {
		header := make(table.Row, len(headers))
		for i, h := range headers {
			header[i] = text.FgHiCyan.Sprint(strings.ToUpper(h))
		}
		t.AppendHeader(header)
	}
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = truncate(cell, maxCellWidth)
		}
		t.AppendRow(r)
	}
	t.Render()
	return nil
}

// plain writes whitespace-aligned columns without box drawing or colours,
// for piping into grep, awk or cut.
func (p *Printer) plain(headers []string, rows [][]string) error {
	all := rows
	if !p.noHeaders {
		upper := make([]string, len(headers))
		for i, h := range headers {
			upper[i] = strings.ToUpper(h)
		}
		all = append([][]string{upper}, rows...)
	}

	widths := make([]int, len(headers))
	for _, row := range all {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], text.RuneWidthWithoutEscSequences(cell))
			}
		}
	}

	for _, row := range all {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(cell)
			pad := widths[i] - text.RuneWidthWithoutEscSequences(cell) + 3
			b.WriteString(strings.Repeat(" ", pad))
		}
		if _, err := fmt.Fprintln(p.out, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if text.RuneWidthWithoutEscSequences(s) <= width {
		return s
	}
	return text.Trim(s, width-3) + "..."
}
