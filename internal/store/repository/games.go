package repository

import (
	"context"
	"sort"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const gameTable = "games"

var gameColumns = []string{
	"team_id", "season", "game_id", "game_type", "rival_team_id",
	"team_pts", "team_fg_pct", "team_ft_pct", "team_fg3_pct", "team_ast", "team_reb",
	"rival_pts", "rival_fg_pct", "rival_ft_pct", "rival_fg3_pct", "rival_ast", "rival_reb",
}

var insertGame = store.InsertStatement(gameTable, gameColumns...)

// GameRepository reads and writes the per-perspective games table.
type GameRepository struct {
	s store.Session
}

// NewGameRepository binds a GameRepository to s.
func NewGameRepository(s store.Session) *GameRepository {
	return &GameRepository{s: s}
}

// Reset truncates the table.
func (r *GameRepository) Reset(ctx context.Context) error { return truncate(ctx, r.s, gameTable) }

// WriteAll inserts rows through store.WriteRows.
func (r *GameRepository) WriteAll(ctx context.Context, rows []store.TeamGame) (store.WriteResult, error) {
	return store.WriteRows(ctx, r.s, gameTable, insertGame, rows, func(g store.TeamGame) []any {
		return []any{
			g.TeamID, g.Season, g.GameID, string(g.GameType), g.RivalTeamID,
			g.TeamPts, g.TeamFGPct, g.TeamFTPct, g.TeamFG3Pct, g.TeamAst, g.TeamReb,
			g.RivalPts, g.RivalFGPct, g.RivalFTPct, g.RivalFG3Pct, g.RivalAst, g.RivalReb,
		}
	})
}

// ByTeamSeason returns one team's games in a season ordered by game id.
func (r *GameRepository) ByTeamSeason(ctx context.Context, teamID int64, season int) ([]store.TeamGame, error) {
	rows, err := query(ctx, r.s, "games", "SELECT * FROM "+gameTable+" WHERE team_id = ? AND season = ?", teamID, season)
	if err != nil {
		return nil, err
	}
	out := make([]store.TeamGame, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.TeamGame{
			TeamID:      row.Int64("team_id"),
			Season:      row.Int("season"),
			GameID:      row.Int64("game_id"),
			GameType:    store.GameType(row.String("game_type")),
			RivalTeamID: row.Int64("rival_team_id"),
			TeamPts:     row.Int("team_pts"),
			TeamFGPct:   row.Float("team_fg_pct"),
			TeamFTPct:   row.Float("team_ft_pct"),
			TeamFG3Pct:  row.Float("team_fg3_pct"),
			TeamAst:     row.Int("team_ast"),
			TeamReb:     row.Int("team_reb"),
			RivalPts:    row.Int("rival_pts"),
			RivalFGPct:  row.Float("rival_fg_pct"),
			RivalFTPct:  row.Float("rival_ft_pct"),
			RivalFG3Pct: row.Float("rival_fg3_pct"),
			RivalAst:    row.Int("rival_ast"),
			RivalReb:    row.Int("rival_reb"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out, nil
}
