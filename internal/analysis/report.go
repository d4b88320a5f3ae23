// Package analysis holds the numeric helpers shared by the reports (Pearson
// correlation, ranking, summaries) and the renderable Report model.
package analysis

import (
	"fmt"
	"strings"
)

// Point is one bar of a chart.
type Point struct {
	Label string
	Value float64
}

// BarChart is a labeled series.
type BarChart struct {
	XLabel string
	YLabel string
	Points []Point
}

// Table is a titled grid of preformatted cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Report is what every renderer consumes.
type Report struct {
	Title   string
	Bars    *BarChart
	Heatmap *CorrMatrix
	Tables  []Table
	Notes   []string
}

// Empty reports whether the report carries no chart, heatmap or table rows.
func (r *Report) Empty() bool {
	if r.Bars != nil && len(r.Bars.Points) > 0 {
		return false
	}
	if r.Heatmap != nil && len(r.Heatmap.Columns) > 0 {
		return false
	}
	for _, t := range r.Tables {
		if len(t.Rows) > 0 {
			return false
		}
	}
	return true
}

// Markdown renders the report as bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[REPORT]\n")
	if r.Title != "" {
		b.WriteString(fmt.Sprintf("Title: %s\n", safeVal(r.Title)))
	}

	if r.Bars != nil {
		b.WriteString("\n[BAR CHART]\n")
		if r.Bars.XLabel != "" || r.Bars.YLabel != "" {
			b.WriteString(fmt.Sprintf("Axes: %s / %s\n", safeName(r.Bars.XLabel), safeName(r.Bars.YLabel)))
		}
		if len(r.Bars.Points) == 0 {
			b.WriteString("(no data)\n")
		}
		for _, p := range r.Bars.Points {
			b.WriteString(fmt.Sprintf("- %s: %.4g\n", safeVal(p.Label), p.Value))
		}
	}

	if m := r.Heatmap; m != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		if len(m.Columns) < 2 {
			b.WriteString("(no data)\n")
		} else {
			writeMarkdownRow(&b, append([]string{""}, m.Columns...))
			writeMarkdownRule(&b, len(m.Columns)+1)
			for i, c := range m.Columns {
				cells := []string{c}
				for j := range m.Columns {
					cells = append(cells, fmt.Sprintf("%.3f", m.Values[i][j]))
				}
				writeMarkdownRow(&b, cells)
			}
			pairs := m.Pairs()
			if len(pairs) > 10 {
				pairs = pairs[:10]
			}
			b.WriteString("\nStrongest pairs:\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
			}
		}
	}

	for _, t := range r.Tables {
		b.WriteString(fmt.Sprintf("\n[TABLE: %s]\n", safeName(t.Name)))
		if len(t.Rows) == 0 {
			b.WriteString("(no data)\n")
			continue
		}
		writeMarkdownRow(&b, t.Header)
		writeMarkdownRule(&b, len(t.Header))
		for _, row := range t.Rows {
			cells := make([]string, len(t.Header))
			for i := range t.Header {
				if i < len(row) {
					val := row[i]
					if len(val) > 80 {
						val = val[:77] + "..."
					}
					cells[i] = val
				}
			}
			writeMarkdownRow(&b, cells)
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n")
}

func writeMarkdownRule(b *strings.Builder, n int) {
	b.WriteString("|")
	for i := 0; i < n; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
