package repository

import (
	"context"
	"sort"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const seasonalTable = "seasonal_performance"

var (
	seasonalColumns = "season, team_id, avg_points, avg_rebounds, avg_assists, avg_opponent_points"
	insertSeasonal  = store.InsertStatement(seasonalTable, "season", "team_id", "avg_points", "avg_rebounds", "avg_assists", "avg_opponent_points")
)

// SeasonalRepository reads and writes seasonal_performance.
type SeasonalRepository struct {
	s store.Session
}

// NewSeasonalRepository binds a SeasonalRepository to s.
func NewSeasonalRepository(s store.Session) *SeasonalRepository {
	return &SeasonalRepository{s: s}
}

// Reset truncates the table.
func (r *SeasonalRepository) Reset(ctx context.Context) error {
	return truncate(ctx, r.s, seasonalTable)
}

// WriteAll inserts rows through store.WriteRows.
func (r *SeasonalRepository) WriteAll(ctx context.Context, rows []store.SeasonalPerformance) (store.WriteResult, error) {
	return store.WriteRows(ctx, r.s, seasonalTable, insertSeasonal, rows, func(p store.SeasonalPerformance) []any {
		return []any{p.Season, p.TeamID, p.AvgPoints, p.AvgRebounds, p.AvgAssists, p.AvgOpponentPoints}
	})
}

// All returns every row ordered by season, then team.
func (r *SeasonalRepository) All(ctx context.Context) ([]store.SeasonalPerformance, error) {
	rows, err := query(ctx, r.s, "seasonal performance", "SELECT "+seasonalColumns+" FROM "+seasonalTable)
	if err != nil {
		return nil, err
	}
	return scanSeasonal(rows), nil
}

// BySeason returns one season's rows ordered by team.
func (r *SeasonalRepository) BySeason(ctx context.Context, season int) ([]store.SeasonalPerformance, error) {
	rows, err := query(ctx, r.s, "seasonal performance",
		"SELECT "+seasonalColumns+" FROM "+seasonalTable+" WHERE season = ?", season)
	if err != nil {
		return nil, err
	}
	return scanSeasonal(rows), nil
}

func scanSeasonal(rows []store.Record) []store.SeasonalPerformance {
	out := make([]store.SeasonalPerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.SeasonalPerformance{
			Season:            row.Int("season"),
			TeamID:            row.Int64("team_id"),
			AvgPoints:         row.Float("avg_points"),
			AvgRebounds:       row.Float("avg_rebounds"),
			AvgAssists:        row.Float("avg_assists"),
			AvgOpponentPoints: row.Float("avg_opponent_points"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}
