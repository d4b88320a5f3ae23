package repository

import (
	"context"
	"sort"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const playerTable = "player_stats"

var (
	playerColumns = "player_name, season, games_played, pts, reb, ast"
	insertPlayer  = store.InsertStatement(playerTable, "player_name", "season", "games_played", "pts", "reb", "ast")
)

// PlayerStatsRepository reads and writes player_stats.
type PlayerStatsRepository struct {
	s store.Session
}

// NewPlayerStatsRepository binds a PlayerStatsRepository to s.
func NewPlayerStatsRepository(s store.Session) *PlayerStatsRepository {
	return &PlayerStatsRepository{s: s}
}

// Reset truncates the table.
func (r *PlayerStatsRepository) Reset(ctx context.Context) error {
	return truncate(ctx, r.s, playerTable)
}

// WriteAll inserts rows through store.WriteRows.
func (r *PlayerStatsRepository) WriteAll(ctx context.Context, rows []store.PlayerStats) (store.WriteResult, error) {
	return store.WriteRows(ctx, r.s, playerTable, insertPlayer, rows, func(p store.PlayerStats) []any {
		return []any{p.PlayerName, p.Season, p.GamesPlayed, p.Pts, p.Reb, p.Ast}
	})
}

// BySeason returns every player's row for one season in storage order.
// season is a clustering column, so this is a filtering query.
func (r *PlayerStatsRepository) BySeason(ctx context.Context, season int) ([]store.PlayerStats, error) {
	rows, err := query(ctx, r.s, "player stats",
		"SELECT "+playerColumns+" FROM "+playerTable+" WHERE season = ? ALLOW FILTERING", season)
	if err != nil {
		return nil, err
	}
	return scanPlayers(rows), nil
}

// ByPlayer returns one player's rows ordered by season.
func (r *PlayerStatsRepository) ByPlayer(ctx context.Context, name string) ([]store.PlayerStats, error) {
	rows, err := query(ctx, r.s, "player stats",
		"SELECT "+playerColumns+" FROM "+playerTable+" WHERE player_name = ?", name)
	if err != nil {
		return nil, err
	}
	out := scanPlayers(rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out, nil
}

func scanPlayers(rows []store.Record) []store.PlayerStats {
	out := make([]store.PlayerStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.PlayerStats{
			PlayerName:  row.String("player_name"),
			Season:      row.Int("season"),
			GamesPlayed: row.Int("games_played"),
			Pts:         row.Float("pts"),
			Reb:         row.Float("reb"),
			Ast:         row.Float("ast"),
		})
	}
	return out
}
