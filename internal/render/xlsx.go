package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
)

const maxSheetName = 31

// WriteXLSX saves rep as a workbook: a summary sheet, a chart sheet with a
// native column chart, a correlation sheet with a color scale and one sheet
// per table.
func WriteXLSX(path string, rep *analysis.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	names := map[string]bool{}
	summary := uniqueSheet(names, "Report")
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(summary, "A1", &[]any{"Title", rep.Title}); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	for i, n := range rep.Notes {
		if err := setRow(f, summary, i+3, []any{"Note", n}); err != nil {
			return err
		}
	}

	if rep.Bars != nil && len(rep.Bars.Points) > 0 {
		if err := writeBars(f, uniqueSheet(names, "Chart"), rep); err != nil {
			return err
		}
	}
	if rep.Heatmap != nil && len(rep.Heatmap.Columns) > 0 {
		if err := writeHeatmap(f, uniqueSheet(names, "Correlations"), rep.Heatmap); err != nil {
			return err
		}
	}
	for _, t := range rep.Tables {
		sheet := uniqueSheet(names, t.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := setRow(f, sheet, 1, toCells(t.Header)); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := setRow(f, sheet, i+2, toCells(row)); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeBars(f *excelize.File, sheet string, rep *analysis.Report) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	c := rep.Bars
	if err := setRow(f, sheet, 1, []any{c.XLabel, c.YLabel}); err != nil {
		return err
	}
	for i, p := range c.Points {
		if err := setRow(f, sheet, i+2, []any{p.Label, p.Value}); err != nil {
			return err
		}
	}
	last := len(c.Points) + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title: []excelize.RichTextRun{{Text: rep.Title}},
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return fmt.Errorf("xlsx chart: %w", err)
	}
	return nil
}

func writeHeatmap(f *excelize.File, sheet string, m *analysis.CorrMatrix) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	header := []any{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, c := range m.Columns {
		row := []any{c}
		for j := range m.Columns {
			row = append(row, m.Values[i][j])
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	n := len(m.Columns)
	from, _ := excelize.CoordinatesToCellName(2, 2)
	to, _ := excelize.CoordinatesToCellName(n+1, n+1)
	scale := []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: "-1",
		MidType:  "num",
		MidValue: "0",
		MaxType:  "num",
		MaxValue: "1",
		MinColor: "#F8696B",
		MidColor: "#FFFFFF",
		MaxColor: "#63BE7B",
	}}
	if err := f.SetConditionalFormat(sheet, from+":"+to, scale); err != nil {
		return fmt.Errorf("xlsx color scale: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}

// toCells writes numeric-looking strings as numbers.
func toCells(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			out[i] = n
		} else {
			out[i] = v
		}
	}
	return out
}

// uniqueSheet returns a valid, unused sheet name derived from name.
func uniqueSheet(used map[string]bool, name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Sheet"
	}
	if r := []rune(clean); len(r) > maxSheetName {
		clean = string(r[:maxSheetName])
	}
	candidate := clean
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(clean)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
