// Package render draws analysis reports to a terminal or an XLSX workbook.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
)

// TerminalOptions controls terminal output.
type TerminalOptions struct {
	Color bool
	Width int // total line width; 0 means 80
}

var eighths = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

type palette struct {
	title, heading, dim *color.Color
	pos, weak, neg      *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.Bold, color.FgCyan),
		heading: color.New(color.FgYellow),
		dim:     color.New(color.Faint),
		pos:     color.New(color.FgGreen, color.Bold),
		weak:    color.New(color.FgWhite),
		neg:     color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.heading, p.dim, p.pos, p.weak, p.neg} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Terminal writes rep to w as bar charts, a heatmap and tables.
func Terminal(w io.Writer, rep *analysis.Report, opts TerminalOptions) error {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	p := newPalette(opts.Color)

	if rep.Title != "" {
		p.title.Fprintln(w, rep.Title)
	}
	if rep.Bars != nil {
		fmt.Fprintln(w)
		drawBars(w, rep.Bars, width, p)
	}
	if rep.Heatmap != nil {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, "Correlations")
		drawHeatmap(w, rep.Heatmap, p)
	}
	for _, t := range rep.Tables {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, t.Name)
		if len(t.Rows) == 0 {
			p.dim.Fprintln(w, "(no data)")
			continue
		}
		tw := tablewriter.NewWriter(w)
		tw.SetHeader(t.Header)
		tw.SetAutoWrapText(false)
		tw.SetAutoFormatHeaders(false)
		tw.AppendBulk(t.Rows)
		tw.Render()
	}
	if len(rep.Notes) > 0 {
		fmt.Fprintln(w)
		for _, n := range rep.Notes {
			p.dim.Fprintln(w, "⚠ "+n)
		}
	}
	return nil
}

func drawBars(w io.Writer, c *analysis.BarChart, width int, p palette) {
	if c.YLabel != "" {
		p.heading.Fprintf(w, "%s by %s\n", c.YLabel, c.XLabel)
	}
	if len(c.Points) == 0 {
		p.dim.Fprintln(w, "(no data)")
		return
	}
	labelW := 0
	maxV := 0.0
	for _, pt := range c.Points {
		if n := utf8.RuneCountInString(pt.Label); n > labelW {
			labelW = n
		}
		if pt.Value > maxV {
			maxV = pt.Value
		}
	}
	if labelW > 24 {
		labelW = 24
	}
	barW := width - labelW - 12
	if barW < 10 {
		barW = 10
	}
	for _, pt := range c.Points {
		label := truncate(pt.Label, labelW)
		fmt.Fprintf(w, "%-*s │%s %.2f\n", labelW, label, bar(pt.Value, maxV, barW), pt.Value)
	}
}

// bar scales v against top into at most width cells with eighth-block precision.
func bar(v, top float64, width int) string {
	if top <= 0 || v <= 0 || math.IsNaN(v) {
		return ""
	}
	cells := v / top * float64(width)
	full := int(cells)
	rem := int((cells - float64(full)) * 8)
	if full >= width {
		return strings.Repeat("█", width)
	}
	return strings.Repeat("█", full) + eighths[rem]
}

func drawHeatmap(w io.Writer, m *analysis.CorrMatrix, p palette) {
	if len(m.Columns) == 0 {
		p.dim.Fprintln(w, "(no data)")
		return
	}
	labelW := 0
	for _, c := range m.Columns {
		if n := utf8.RuneCountInString(c); n > labelW {
			labelW = n
		}
	}
	fmt.Fprintf(w, "%-*s", labelW, "")
	for _, c := range m.Columns {
		fmt.Fprintf(w, " %7s", truncate(c, 7))
	}
	fmt.Fprintln(w)
	for i, c := range m.Columns {
		fmt.Fprintf(w, "%-*s", labelW, c)
		for j := range m.Columns {
			r := m.Values[i][j]
			cell := fmt.Sprintf(" %7.2f", r)
			switch {
			case r >= 0.5:
				p.pos.Fprint(w, cell)
			case r <= -0.5:
				p.neg.Fprint(w, cell)
			default:
				p.weak.Fprint(w, cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
