package store_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
	"github.com/KaramelBytes/nbastat-cli/internal/store/storetest"
)

func open(t *testing.T, mem *storetest.Memory) *store.Connector {
	t.Helper()
	c, err := store.Open(store.Options{Hosts: []string{"cass-1"}, Port: 9042, Consistency: "ONE", Dialer: mem.Dialer()})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestSplitStatements_SkipsCommentsAndBlanks(t *testing.T) {
	script := "-- header; with a semicolon\n" +
		"CREATE TABLE a (id int PRIMARY KEY);\n" +
		"\n;  ;\n" +
		"// another comment\n" +
		"CREATE TABLE b (\n  id int PRIMARY KEY\n);\n" +
		"   "
	got := store.SplitStatements(script)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (id int PRIMARY KEY)", got[0])
	assert.True(t, strings.HasPrefix(got[1], "CREATE TABLE b ("))
	assert.Empty(t, store.SplitStatements("-- only\n\n;;"))
}

func TestOpen_DialErrorUnmodified(t *testing.T) {
	mem := storetest.New()
	boom := errors.New("no hosts available")
	mem.DialErr = boom
	_, err := store.Open(store.Options{Dialer: mem.Dialer()})
	assert.Same(t, boom, err)
}

func TestOpen_RejectsBadConsistency(t *testing.T) {
	_, err := store.Open(store.Options{Consistency: "MOSTLY", Dialer: storetest.New().Dialer()})
	assert.Error(t, err)
}

func TestEnsureKeyspace_CreatesAndBinds(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	ctx := context.Background()

	require.NoError(t, c.EnsureKeyspace(ctx, "nba_data", store.Replication{Class: "SimpleStrategy", Factor: 3}))
	require.NoError(t, c.EnsureKeyspace(ctx, "nba_data", store.Replication{Class: "SimpleStrategy", Factor: 3}))

	q := mem.Queries()
	require.Len(t, q, 2)
	assert.Equal(t, "CREATE KEYSPACE IF NOT EXISTS nba_data WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 3}", q[0])
	assert.Equal(t, []string{"", "nba_data"}, mem.Dials)
	assert.Equal(t, "nba_data", c.Keyspace())
}

func TestEnsureKeyspace_InvalidName(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	err := c.EnsureKeyspace(context.Background(), "nba-data; DROP", store.Replication{})
	require.Error(t, err)
	assert.Empty(t, mem.Queries())
}

func TestReplicationCQL_Topology(t *testing.T) {
	s, err := store.Replication{Class: "NetworkTopologyStrategy", Datacenters: map[string]int{"dc2": 2, "dc1": 3}}.CQL()
	require.NoError(t, err)
	assert.Equal(t, "{'class': 'NetworkTopologyStrategy', 'dc1': 3, 'dc2': 2}", s)

	_, err = store.Replication{Class: "NetworkTopologyStrategy"}.CQL()
	assert.Error(t, err)
}

func TestApplySchema_Default(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	n, err := c.ApplySchema(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	for _, q := range mem.Queries() {
		assert.True(t, strings.HasPrefix(q, "CREATE TABLE IF NOT EXISTS"), q)
	}
}

func TestApplySchema_UseRebindsKeyspace(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	p := filepath.Join(t.TempDir(), "schema.cql")
	body := "USE league;\nCREATE TABLE IF NOT EXISTS t (id int PRIMARY KEY);\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	n, err := c.ApplySchema(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "league", c.Keyspace())
	for _, q := range mem.Queries() {
		assert.False(t, strings.HasPrefix(strings.ToUpper(q), "USE"), "USE must not be sent")
	}
}

func TestApplySchema_StopsOnFailure(t *testing.T) {
	mem := storetest.New()
	mem.Fail = func(stmt string, _ []any) error {
		if strings.Contains(stmt, "player_stats") {
			return errors.New("syntax error")
		}
		return nil
	}
	c := open(t, mem)
	n, err := c.ApplySchema(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteRows_RejectsInvalidWithoutSending(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	stmt := store.InsertStatement("player_stats", "player_name", "season", "games_played", "pts", "reb", "ast")
	rows := []store.PlayerStats{
		{PlayerName: "A", Season: 2022, GamesPlayed: 10, Pts: 20, Reb: 5, Ast: 3},
		{PlayerName: "B", Season: 2022, GamesPlayed: 4, Pts: -1, Reb: 5, Ast: 3},
		{PlayerName: "", Season: 2022, GamesPlayed: 2, Pts: 1, Reb: 1, Ast: 1},
		{PlayerName: "C", Season: 2022, GamesPlayed: 1, Pts: math.NaN(), Reb: 0, Ast: 0},
		{PlayerName: "D", Season: 2021, GamesPlayed: 60, Pts: 12.5, Reb: 8, Ast: 1},
	}
	bind := func(p store.PlayerStats) []any {
		return []any{p.PlayerName, p.Season, p.GamesPlayed, p.Pts, p.Reb, p.Ast}
	}
	res, err := store.WriteRows(context.Background(), c.Session(), "player_stats", stmt, rows, bind)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Attempted)
	assert.Equal(t, 2, res.Written)
	require.Len(t, res.Rejected, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{res.Rejected[0].Index, res.Rejected[1].Index, res.Rejected[2].Index})
	assert.Equal(t, "B/2022", res.Rejected[0].Key)
	assert.Contains(t, res.Rejected[0].Reason, "pts")

	stored := mem.Rows("player_stats")
	require.Len(t, stored, 2)
	assert.Equal(t, "A", stored[0]["player_name"])
	assert.Equal(t, "D", stored[1]["player_name"])
}

func TestWriteRows_ExecFailureContinues(t *testing.T) {
	mem := storetest.New()
	mem.Fail = func(_ string, values []any) error {
		if values[1] == "bad" {
			return errors.New("write timeout")
		}
		return nil
	}
	c := open(t, mem)
	rows := []store.Team{{TeamID: 1, TeamName: "ok"}, {TeamID: 2, TeamName: "bad"}, {TeamID: 3, TeamName: "fine"}}
	res, err := store.WriteRows(context.Background(), c.Session(), "team_map",
		store.InsertStatement("team_map", "team_id", "team_name"), rows,
		func(t store.Team) []any { return []any{t.TeamID, t.TeamName} })
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "2", res.Rejected[0].Key)
	assert.Equal(t, "write timeout", res.Rejected[0].Reason)
}

func TestWriteRows_CancelledContext(t *testing.T) {
	mem := storetest.New()
	c := open(t, mem)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := store.WriteRows(ctx, c.Session(), "team_map",
		store.InsertStatement("team_map", "team_id", "team_name"),
		[]store.Team{{TeamID: 1, TeamName: "x"}},
		func(t store.Team) []any { return []any{t.TeamID, t.TeamName} })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Written)
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t, "INSERT INTO team_map (team_id, team_name) VALUES (?, ?)", store.InsertStatement("team_map", "team_id", "team_name"))
}

func TestValidate_Fractions(t *testing.T) {
	g := store.GameOutcomePerformance{Season: 2022, Outcome: store.OutcomeWin, Points: 100, FGPct: 0.5, FTPct: 1, FG3Pct: 0}
	require.NoError(t, g.Validate())
	g.FG3Pct = 1.2
	assert.ErrorIs(t, g.Validate(), store.ErrInvalidRow)
	g.FG3Pct = 0.3
	g.Outcome = "draw"
	assert.ErrorIs(t, g.Validate(), store.ErrInvalidRow)
}

func TestRecord_MixedNumericKinds(t *testing.T) {
	r := store.Record{"a": int64(7), "b": 7, "c": 7.5, "d": "x", "e": int32(3)}
	assert.Equal(t, int64(7), r.Int64("a"))
	assert.Equal(t, int64(7), r.Int64("b"))
	assert.Equal(t, 7.5, r.Float("c"))
	assert.Equal(t, 7.0, r.Float("b"))
	assert.Equal(t, 3, r.Int("e"))
	assert.Equal(t, "x", r.String("d"))
	assert.Equal(t, "", r.String("missing"))
	assert.Zero(t, r.Float("missing"))
}
