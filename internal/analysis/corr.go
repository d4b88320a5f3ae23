package analysis

import (
	"math"
	"sort"
)

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
	N       int         // rows accumulated
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// At returns r for two named columns.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := m.index(a), m.index(b)
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

func (m *CorrMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Pairs lists the upper-triangle pairs ordered by |r| descending.
func (m *CorrMatrix) Pairs() []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	return pairs
}

// Exact pairwise correlation accumulator; NaN cells skip the pair.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n += 1
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

func (pa *pairAcc) r() float64 {
	if pa == nil || pa.n < 2 {
		return 0
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	var r float64
	if denom != 0 {
		r = (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		r = 0
	}
	return r
}

// Pearson computes the correlation matrix of the given columns over rows.
// Each row holds one value per column; NaN marks a missing cell. The diagonal
// is 1. Pairs with fewer than two samples or zero variance are 0.
func Pearson(columns []string, rows [][]float64) *CorrMatrix {
	ncol := len(columns)
	pair := make([]pairAcc, ncol*ncol) // index i*ncol + j with i>j
	for _, row := range rows {
		for j := 1; j < ncol && j < len(row); j++ {
			x := row[j]
			if math.IsNaN(x) {
				continue
			}
			for k := 0; k < j; k++ {
				y := row[k]
				if math.IsNaN(y) {
					continue
				}
				pair[j*ncol+k].add(x, y)
			}
		}
	}

	mat := make([][]float64, ncol)
	for i := range mat {
		mat[i] = make([]float64, ncol)
	}
	for a := 0; a < ncol; a++ {
		for b := 0; b < ncol; b++ {
			if a == b {
				mat[a][b] = 1
				continue
			}
			mat[a][b] = pair[max(a, b)*ncol+min(a, b)].r()
		}
	}
	cols := make([]string, ncol)
	copy(cols, columns)
	return &CorrMatrix{Columns: cols, Values: mat, N: len(rows)}
}
