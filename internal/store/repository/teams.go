package repository

import (
	"context"
	"sort"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const teamTable = "team_map"

var insertTeam = store.InsertStatement(teamTable, "team_id", "team_name")

// TeamRepository reads and writes team_map.
type TeamRepository struct {
	s store.Session
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(s store.Session) *TeamRepository {
	return &TeamRepository{s: s}
}

// Reset truncates the table.
func (r *TeamRepository) Reset(ctx context.Context) error { return truncate(ctx, r.s, teamTable) }

// WriteAll inserts rows through store.WriteRows.
func (r *TeamRepository) WriteAll(ctx context.Context, teams []store.Team) (store.WriteResult, error) {
	return store.WriteRows(ctx, r.s, teamTable, insertTeam, teams, func(t store.Team) []any {
		return []any{t.TeamID, t.TeamName}
	})
}

// All returns every team ordered by id.
func (r *TeamRepository) All(ctx context.Context) ([]store.Team, error) {
	rows, err := query(ctx, r.s, "teams", "SELECT team_id, team_name FROM "+teamTable)
	if err != nil {
		return nil, err
	}
	out := make([]store.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.Team{TeamID: row.Int64("team_id"), TeamName: row.String("team_name")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

// Names returns team_id -> team_name.
func (r *TeamRepository) Names(ctx context.Context) (map[int64]string, error) {
	teams, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(teams))
	for _, t := range teams {
		names[t.TeamID] = t.TeamName
	}
	return names, nil
}
