package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
	"github.com/KaramelBytes/nbastat-cli/internal/store/storetest"
)

const (
	gamesFixture = "GAME_DATE_EST,GAME_ID,HOME_TEAM_ID,VISITOR_TEAM_ID,SEASON,PTS_home,FG_PCT_home,FT_PCT_home,FG3_PCT_home,AST_home,REB_home,PTS_away,FG_PCT_away,FT_PCT_away,FG3_PCT_away,AST_away,REB_away,HOME_TEAM_WINS\n" +
		"2022-12-22,100,1,2,2022,100,0.5,0.8,0.4,25,45,90,0.45,0.7,0.3,20,40,1\n" +
		"2022-12-23,101,2,1,2022,95,0.48,0.75,0.33,22,41,99,0.47,0.8,0.36,24,44,0\n" +
		"2022-12-24,102,1,2,2022,,,,,,,,,,,,,\n"
	detailsFixture = "GAME_ID,TEAM_ID,PLAYER_ID,PLAYER_NAME,COMMENT,PTS,REB,AST\n" +
		"100,1,11,Ann Archer,,30,5,7\n" +
		"101,1,11,Ann Archer,,20,3,5\n" +
		"100,2,22,Bo Baker,DNP,,,\n"
	teamsFixture = "TEAM_ID,ABBREVIATION,NICKNAME,CITY\n1,AAA,Aces,Austin\n2,BBB,Bears,Boise\n"
)

func fixtures(t *testing.T) Files {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	return Files{
		Games:       write("games.csv", gamesFixture),
		GameDetails: write("games_details.csv", detailsFixture),
		Teams:       write("teams.csv", teamsFixture),
	}
}

func newTestIngester(t *testing.T) (*Ingester, *storetest.Memory) {
	t.Helper()
	mem := storetest.New()
	for _, stmt := range store.SplitStatements(store.DefaultSchema()) {
		require.NoError(t, mem.Exec(context.Background(), stmt))
	}
	in := NewIngester(mem, slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	in.newID = func() string { return "run-1" }
	return in, mem
}

func TestIngester_RunWritesEveryTable(t *testing.T) {
	in, mem := newTestIngester(t)
	sum, err := in.Run(context.Background(), fixtures(t), Options{Truncate: true, Weighting: WeightGame})
	require.NoError(t, err)

	assert.Equal(t, "run-1", sum.RunID)
	require.Len(t, sum.Results, len(AllTables))
	assert.Zero(t, sum.Rejected())

	assert.Len(t, mem.Rows("team_map"), 2)
	assert.Len(t, mem.Rows("games"), 4)
	assert.Len(t, mem.Rows("seasonal_performance"), 2)
	assert.Len(t, mem.Rows("game_outcome_performance"), 4)
	players := mem.Rows("player_stats")
	require.Len(t, players, 1)
	assert.Equal(t, "Ann Archer", players[0]["player_name"])
	assert.Equal(t, 2, players[0]["games_played"])
	assert.Equal(t, 25.0, players[0]["pts"])

	runs := mem.Rows("ingest_runs")
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0]["run_id"])
	assert.Equal(t, sum.Written(), runs[0]["written"])
	assert.Equal(t, 4+2+2+4+1, sum.Written())
}

func TestIngester_RerunOverwrites(t *testing.T) {
	in, mem := newTestIngester(t)
	files := fixtures(t)
	for i := 0; i < 2; i++ {
		_, err := in.Run(context.Background(), files, Options{Truncate: true})
		require.NoError(t, err)
	}
	assert.Len(t, mem.Rows("game_outcome_performance"), 4)
	truncates := 0
	for _, q := range mem.Queries() {
		if strings.HasPrefix(q, "TRUNCATE") {
			truncates++
		}
	}
	assert.Equal(t, 2*len(AllTables), truncates)
}

func TestIngester_DryRunSendsNothing(t *testing.T) {
	in, mem := newTestIngester(t)
	before := len(mem.Queries())
	sum, err := in.Run(context.Background(), fixtures(t), Options{DryRun: true, Tables: []string{"outcomes", "teams"}})
	require.NoError(t, err)
	assert.True(t, sum.DryRun)
	require.Len(t, sum.Results, 2)
	assert.Equal(t, "team_map", sum.Results[0].Table)
	assert.Equal(t, 4, sum.Results[1].Attempted)
	assert.Zero(t, sum.Written())
	assert.Equal(t, before, len(mem.Queries()))
}

func TestIngester_RejectedRowsAreReported(t *testing.T) {
	in, mem := newTestIngester(t)
	mem.Fail = func(stmt string, values []any) error {
		if strings.HasPrefix(stmt, "INSERT INTO team_map") && values[0] == int64(2) {
			return errors.New("write timeout")
		}
		return nil
	}
	sum, err := in.Run(context.Background(), fixtures(t), Options{Tables: []string{"teams"}, Truncate: true})
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, 1, sum.Results[0].Written)
	assert.Equal(t, 1, sum.Rejected())
	assert.Equal(t, 1, mem.Rows("ingest_runs")[0]["rejected"])
}

func TestIngester_MissingFile(t *testing.T) {
	in, _ := newTestIngester(t)
	files := fixtures(t)
	files.Teams = filepath.Join(t.TempDir(), "absent.csv")
	_, err := in.Run(context.Background(), files, Options{Tables: []string{"teams"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestParseTables(t *testing.T) {
	got, err := ParseTables([]string{"players", " Teams "})
	require.NoError(t, err)
	assert.Equal(t, []string{TableTeams, TablePlayers}, got)

	all, err := ParseTables(nil)
	require.NoError(t, err)
	assert.Equal(t, AllTables, all)

	_, err = ParseTables([]string{"box_scores"})
	assert.Error(t, err)
}
