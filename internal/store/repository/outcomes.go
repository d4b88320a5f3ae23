package repository

import (
	"context"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const outcomeTable = "game_outcome_performance"

var insertOutcome = store.InsertStatement(outcomeTable,
	"season", "outcome", "team_id", "game_id", "points", "assists", "rebounds", "fg_pct", "ft_pct", "fg3_pct")

// OutcomeRepository reads and writes game_outcome_performance.
type OutcomeRepository struct {
	s store.Session
}

// NewOutcomeRepository binds a OutcomeRepository to s.
func NewOutcomeRepository(s store.Session) *OutcomeRepository {
	return &OutcomeRepository{s: s}
}

// Reset truncates the table.
func (r *OutcomeRepository) Reset(ctx context.Context) error {
	return truncate(ctx, r.s, outcomeTable)
}

// WriteAll inserts rows through store.WriteRows.
func (r *OutcomeRepository) WriteAll(ctx context.Context, rows []store.GameOutcomePerformance) (store.WriteResult, error) {
	return store.WriteRows(ctx, r.s, outcomeTable, insertOutcome, rows, func(g store.GameOutcomePerformance) []any {
		return []any{g.Season, string(g.Outcome), g.TeamID, g.GameID, g.Points, g.Assists, g.Rebounds, g.FGPct, g.FTPct, g.FG3Pct}
	})
}

// BySeasonOutcome returns the rows of one (season, outcome) partition.
func (r *OutcomeRepository) BySeasonOutcome(ctx context.Context, season int, outcome store.Outcome) ([]store.GameOutcomePerformance, error) {
	rows, err := query(ctx, r.s, "outcome performance",
		"SELECT team_id, game_id, points, assists, rebounds, fg_pct, ft_pct, fg3_pct FROM "+outcomeTable+
			" WHERE season = ? AND outcome = ?", season, string(outcome))
	if err != nil {
		return nil, err
	}
	out := make([]store.GameOutcomePerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.GameOutcomePerformance{
			Season:   season,
			Outcome:  outcome,
			TeamID:   row.Int64("team_id"),
			GameID:   row.Int64("game_id"),
			Points:   row.Int("points"),
			Assists:  row.Int("assists"),
			Rebounds: row.Int("rebounds"),
			FGPct:    row.Float("fg_pct"),
			FTPct:    row.Float("ft_pct"),
			FG3Pct:   row.Float("fg3_pct"),
		})
	}
	return out, nil
}
