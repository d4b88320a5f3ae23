package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/nbastat-cli/internal/reporter"
	"github.com/KaramelBytes/nbastat-cli/internal/store/storetest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	gamesCSV = "GAME_DATE_EST,GAME_ID,HOME_TEAM_ID,VISITOR_TEAM_ID,SEASON,PTS_home,FG_PCT_home,FT_PCT_home,FG3_PCT_home,AST_home,REB_home,PTS_away,FG_PCT_away,FT_PCT_away,FG3_PCT_away,AST_away,REB_away,HOME_TEAM_WINS\n" +
		"2022-12-22,100,1,2,2022,100,0.5,0.8,0.4,25,45,90,0.45,0.7,0.3,20,40,1\n" +
		"2022-12-23,101,2,1,2022,95,0.48,0.75,0.33,22,41,99,0.47,0.8,0.36,24,44,0\n"
	detailsCSV = "GAME_ID,TEAM_ID,PLAYER_ID,PLAYER_NAME,COMMENT,PTS,REB,AST\n" +
		"100,1,11,Ann Archer,,30,5,7\n" +
		"101,1,11,Ann Archer,,20,3,5\n" +
		"100,2,22,Bo Baker,DNP,,,\n"
	teamsCSV = "TEAM_ID,ABBREVIATION,NICKNAME,CITY\n1,AAA,Aces,Austin\n2,BBB,Bears,Boise\n"
)

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// isolate points HOME at a temp dir, writes the input files and a config that
// references them, and routes store sessions to mem.
func isolate(t *testing.T, mem *storetest.Memory) (home, cfgPath string) {
	t.Helper()
	home = t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)

	oldDialer := dialer
	t.Cleanup(func() { dialer = oldDialer })
	dialer = mem.Dialer()

	write := func(name, body string) string {
		p := filepath.Join(home, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	games := write("games.csv", gamesCSV)
	details := write("games_details.csv", detailsCSV)
	teams := write("teams.csv", teamsCSV)
	cfgPath = write("config.yaml", "keyspace: nba_test\nconsistency: ONE\n"+
		"games_path: "+games+"\n"+
		"game_details_path: "+details+"\n"+
		"teams_path: "+teams+"\n")
	return home, cfgPath
}

func TestCLI_SchemaIngestReport(t *testing.T) {
	mem := storetest.New()
	home, cfgPath := isolate(t, mem)

	out := runCmd(t, "--config", cfgPath, "schema", "apply")
	if !strings.Contains(out, "✓ Applied 6 statements") || !strings.Contains(out, "'nba_test'") {
		t.Fatalf("unexpected schema output: %q", out)
	}

	out = runCmd(t, "--config", cfgPath, "ingest")
	for _, want := range []string{"✓ team_map: 2 written", "✓ player_stats: 1 written", "13 written, 0 rejected"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ingest output missing %q:\n%s", want, out)
		}
	}
	if n := len(mem.Rows("ingest_runs")); n != 1 {
		t.Fatalf("expected one recorded run, got %d", n)
	}

	// re-ingest truncates instead of duplicating
	runCmd(t, "--config", cfgPath, "ingest", "--tables", "outcomes")
	if n := len(mem.Rows("game_outcome_performance")); n != 4 {
		t.Fatalf("expected 4 outcome rows after re-ingest, got %d", n)
	}

	md := filepath.Join(home, "trend.md")
	runCmd(t, "--config", cfgPath, "report", "trend", "--output", md)
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "[REPORT]") || !strings.Contains(string(b), "- 2022: 96") {
		t.Fatalf("unexpected trend markdown:\n%s", b)
	}

	out = runCmd(t, "--config", cfgPath, "report", "correlation", "--season", "2022", "--no-color")
	if !strings.Contains(out, "Correlations") || !strings.Contains(out, "4 team-games sampled") {
		t.Fatalf("unexpected correlation output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("--no-color output contains escape codes")
	}

	out = runCmd(t, "--config", cfgPath, "report", "ranking", "--season", "2022")
	if !strings.Contains(out, "Aces") || !strings.Contains(out, "Bears") {
		t.Fatalf("ranking should name teams:\n%s", out)
	}

	xlsx := filepath.Join(home, "top.xlsx")
	runCmd(t, "--config", cfgPath, "report", "top-players", "--season", "2022", "--n", "3", "-o", xlsx)
	if _, err := os.Stat(xlsx); err != nil {
		t.Fatalf("expected workbook: %v", err)
	}

	out = runCmd(t, "--config", cfgPath, "report", "player", "Ann Archer")
	if !strings.Contains(out, "Ann Archer by season") {
		t.Fatalf("unexpected player output:\n%s", out)
	}

	out = runCmd(t, "--config", cfgPath, "report", "games", "--team", "1", "--season", "2022", "--no-color")
	if !strings.Contains(out, "Austin Aces games, season 2022") || !strings.Contains(out, "record 2-0") || !strings.Contains(out, "Boise Bears") {
		t.Fatalf("unexpected games output:\n%s", out)
	}

	out = runCmd(t, "--config", cfgPath, "report", "player", "Nobody", "--no-color")
	if !strings.Contains(out, "(no data)") || strings.Contains(out, "seasons") {
		t.Fatalf("empty report should collapse to one no-data line:\n%s", out)
	}

	out = runCmd(t, "--config", cfgPath, "runs", "--json")
	if !strings.Contains(out, `"written": 13`) || !strings.Contains(out, `"written": 4`) {
		t.Fatalf("unexpected runs output:\n%s", out)
	}
}

func TestCLI_IngestDryRunWritesNothing(t *testing.T) {
	mem := storetest.New()
	_, cfgPath := isolate(t, mem)

	out := runCmd(t, "--config", cfgPath, "ingest", "--dry-run")
	if !strings.Contains(out, "✓ games: 4 valid") || !strings.Contains(out, "nothing written") {
		t.Fatalf("unexpected dry-run output:\n%s", out)
	}
	for _, q := range mem.Queries() {
		if strings.HasPrefix(q, "INSERT") || strings.HasPrefix(q, "TRUNCATE") {
			t.Fatalf("dry run sent %q", q)
		}
	}
}

func TestCLI_ConnectionFailureIsReturned(t *testing.T) {
	mem := storetest.New()
	boom := errors.New("gocql: no hosts available in the pool")
	mem.DialErr = boom
	_, cfgPath := isolate(t, mem)

	_, err := execCmd("--config", cfgPath, "report", "trend")
	if !errors.Is(err, boom) {
		t.Fatalf("expected dial error, got %v", err)
	}
}

func TestCLI_ReportArgumentErrors(t *testing.T) {
	mem := storetest.New()
	_, cfgPath := isolate(t, mem)

	if _, err := execCmd("--config", cfgPath, "report", "ranking"); err == nil || !strings.Contains(err.Error(), "--season") {
		t.Fatalf("expected --season error, got %v", err)
	}
	_, err := execCmd("--config", cfgPath, "report", "ranking", "--season", "2022", "--metric", "avg_steals")
	if !errors.Is(err, reporter.ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
	if _, err := execCmd("--config", cfgPath, "report", "trend", "-o", "out.pdf"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	mem := storetest.New()
	home, _ := isolate(t, mem)

	runCmd(t, "config", "set", "port", "9043")
	runCmd(t, "config", "set", "seasonal_weighting", "side")
	if _, err := os.Stat(filepath.Join(home, ".nbastat", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "port: 9043") || !strings.Contains(out, "seasonal_weighting: side") {
		t.Fatalf("unexpected config show:\n%s", out)
	}

	if _, err := execCmd("config", "set", "port", "abc"); err == nil {
		t.Fatalf("expected invalid int error")
	}
	if _, err := execCmd("config", "set", "seasonal_weighting", "possession"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd("config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	out = runCmd(t, "--port", "9999", "config", "show")
	if !strings.Contains(out, "port: 9999") {
		t.Fatalf("--port should override config:\n%s", out)
	}
}
