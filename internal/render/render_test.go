package render

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Title: "Average points per season",
		Bars: &analysis.BarChart{XLabel: "season", YLabel: "avg_points", Points: []analysis.Point{
			{Label: "2021", Value: 50},
			{Label: "2022", Value: 100},
		}},
		Heatmap: analysis.Pearson([]string{"points", "outcome"}, [][]float64{{100, 1}, {90, 0}, {104, 1}}),
		Tables: []analysis.Table{
			{Name: "season trend", Header: []string{"season", "avg_points"}, Rows: [][]string{{"2021", "50.00"}, {"2022", "100.00"}}},
			{Name: "empty", Header: []string{"x"}},
		},
		Notes: []string{"two seasons"},
	}
}

func TestTerminal_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, sampleReport(), TerminalOptions{Width: 40}))
	out := buf.String()

	assert.Contains(t, out, "Average points per season")
	assert.Contains(t, out, "avg_points by season")
	assert.Contains(t, out, "Correlations")
	assert.Contains(t, out, "season trend")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "(no data)")
	assert.Contains(t, out, "⚠ two seasons")
	assert.NotContains(t, out, "\x1b[", "color disabled")

	var full, half string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "2022 │") {
			full = line
		}
		if strings.HasPrefix(line, "2021 │") {
			half = line
		}
	}
	require.NotEmpty(t, full)
	require.NotEmpty(t, half)
	assert.Equal(t, 24, strings.Count(full, "█"))
	assert.Equal(t, 12, strings.Count(half, "█"))
}

func TestTerminal_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, sampleReport(), TerminalOptions{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10, 10))
	assert.Equal(t, "", bar(5, 0, 10))
	assert.Equal(t, strings.Repeat("█", 10), bar(10, 10, 10))
	assert.Equal(t, "█████▌", bar(5.5, 10, 10))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report", "Chart", "Correlations", "season trend", "empty"}, f.GetSheetList())

	title, err := f.GetCellValue("Report", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Average points per season", title)

	rows, err := f.GetRows("Chart")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"season", "avg_points"}, rows[0])
	assert.Equal(t, "100", rows[2][1])

	diag, err := f.GetCellValue("Correlations", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", diag)

	trend, err := f.GetRows("season trend")
	require.NoError(t, err)
	assert.Equal(t, []string{"2022", "100"}, trend[2])
}

func TestUniqueSheet(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "top pts", uniqueSheet(used, "top pts"))
	assert.Equal(t, "Top Pts (2)", uniqueSheet(used, "Top Pts"))
	assert.Equal(t, "a_b_c", uniqueSheet(used, "a/b:c"))
	long := uniqueSheet(used, strings.Repeat("x", 40))
	assert.Len(t, long, 31)
	assert.Len(t, uniqueSheet(used, strings.Repeat("x", 40)), 31)
}
