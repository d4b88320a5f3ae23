package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/nbastat-cli/internal/dataset"
	"github.com/KaramelBytes/nbastat-cli/internal/store"
	"github.com/KaramelBytes/nbastat-cli/internal/store/repository"
)

// Table selectors accepted by Options.Tables.
const (
	TableTeams    = "teams"
	TableGames    = "games"
	TableSeasonal = "seasonal"
	TableOutcomes = "outcomes"
	TablePlayers  = "players"
)

// AllTables lists every selector in write order.
var AllTables = []string{TableTeams, TableGames, TableSeasonal, TableOutcomes, TablePlayers}

// ParseTables normalizes a selector list; empty means all.
func ParseTables(names []string) ([]string, error) {
	if len(names) == 0 {
		return append([]string(nil), AllTables...), nil
	}
	want := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if n == "all" {
			return append([]string(nil), AllTables...), nil
		}
		known := false
		for _, t := range AllTables {
			if t == n {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown table %q (want one of %s)", n, strings.Join(AllTables, ", "))
		}
		want[n] = true
	}
	var out []string
	for _, t := range AllTables {
		if want[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

// Files locates the raw inputs.
type Files struct {
	Games       string
	GameDetails string
	Teams       string
}

// Options controls one ingest run.
type Options struct {
	Tables    []string
	DryRun    bool
	Truncate  bool
	Weighting Weighting
}

// Summary reports what a run did.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	DryRun   bool
	Results  []store.WriteResult
}

// Written totals written rows across tables.
func (s *Summary) Written() int {
	n := 0
	for _, r := range s.Results {
		n += r.Written
	}
	return n
}

// Rejected totals rejected rows across tables.
func (s *Summary) Rejected() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Rejected)
	}
	return n
}

// Ingester reads the raw files, derives the tables and writes them.
type Ingester struct {
	teams    *repository.TeamRepository
	games    *repository.GameRepository
	seasonal *repository.SeasonalRepository
	outcomes *repository.OutcomeRepository
	players  *repository.PlayerStatsRepository
	runs     *repository.RunRepository
	log      *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewIngester wires the repositories over one session.
func NewIngester(s store.Session, log *slog.Logger) *Ingester {
	if log == nil {
		log = slog.Default()
	}
	return &Ingester{
		teams:    repository.NewTeamRepository(s),
		games:    repository.NewGameRepository(s),
		seasonal: repository.NewSeasonalRepository(s),
		outcomes: repository.NewOutcomeRepository(s),
		players:  repository.NewPlayerStatsRepository(s),
		runs:     repository.NewRunRepository(s),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run executes one ingest pass. Each selected table is truncated (when
// opts.Truncate) and rewritten; rejected rows never abort the run.
func (in *Ingester) Run(ctx context.Context, files Files, opts Options) (*Summary, error) {
	tables, err := ParseTables(opts.Tables)
	if err != nil {
		return nil, err
	}
	sum := &Summary{RunID: in.newID(), Started: in.now(), DryRun: opts.DryRun}
	log := in.log.With("run_id", sum.RunID)
	log.Info("ingest started", "tables", strings.Join(tables, ","), "dry_run", opts.DryRun)

	selected := map[string]bool{}
	for _, t := range tables {
		selected[t] = true
	}

	var games []dataset.Game
	if selected[TableGames] || selected[TableSeasonal] || selected[TableOutcomes] || selected[TablePlayers] {
		if games, err = dataset.ReadGames(files.Games); err != nil {
			return nil, err
		}
		complete := 0
		for _, g := range games {
			if g.Complete() {
				complete++
			}
		}
		log.Info("games loaded", "rows", len(games), "complete", complete)
	}

	var details []dataset.GameDetail
	if selected[TablePlayers] {
		if details, err = dataset.ReadGameDetails(files.GameDetails); err != nil {
			return nil, err
		}
		log.Info("game details loaded", "rows", len(details))
	}

	for _, t := range tables {
		var res store.WriteResult
		switch t {
		case TableTeams:
			records, rerr := dataset.ReadTeams(files.Teams)
			if rerr != nil {
				return nil, rerr
			}
			res, err = persist(ctx, in.teams, "team_map", TeamMap(records), opts)
		case TableGames:
			res, err = persist(ctx, in.games, "games", GamePerspectives(games), opts)
		case TableSeasonal:
			rows, terr := SeasonalPerformance(games, opts.Weighting)
			if terr != nil {
				return nil, terr
			}
			res, err = persist(ctx, in.seasonal, "seasonal_performance", rows, opts)
		case TableOutcomes:
			res, err = persist(ctx, in.outcomes, "game_outcome_performance", OutcomePerformance(games), opts)
		case TablePlayers:
			rows, terr := PlayerSeasonStats(details, games)
			if terr != nil {
				return nil, terr
			}
			res, err = persist(ctx, in.players, "player_stats", rows, opts)
		}
		sum.Results = append(sum.Results, res)
		if err != nil {
			sum.Finished = in.now()
			return sum, err
		}
		attrs := []any{"table", res.Table, "attempted", res.Attempted, "written", res.Written, "rejected", len(res.Rejected)}
		if len(res.Rejected) > 0 {
			log.Warn("rows rejected", append(attrs, "first_reason", res.Rejected[0].Reason)...)
		} else {
			log.Info("table written", attrs...)
		}
	}

	sum.Finished = in.now()
	if !opts.DryRun {
		run := store.IngestRun{
			RunID:      sum.RunID,
			StartedAt:  sum.Started,
			FinishedAt: sum.Finished,
			Written:    sum.Written(),
			Rejected:   sum.Rejected(),
		}
		if err := in.runs.Record(ctx, run); err != nil {
			return sum, err
		}
	}
	log.Info("ingest finished", "written", sum.Written(), "rejected", sum.Rejected(), "elapsed", sum.Finished.Sub(sum.Started))
	return sum, nil
}

type tableWriter[T store.Row] interface {
	Reset(ctx context.Context) error
	WriteAll(ctx context.Context, rows []T) (store.WriteResult, error)
}

// persist truncates and rewrites one table. A dry run only validates.
func persist[T store.Row](ctx context.Context, w tableWriter[T], table string, rows []T, opts Options) (store.WriteResult, error) {
	if opts.DryRun {
		res := store.WriteResult{Table: table, Attempted: len(rows)}
		for i, r := range rows {
			if err := r.Validate(); err != nil {
				res.Rejected = append(res.Rejected, store.Rejected{Index: i, Key: r.Key(), Reason: err.Error()})
			}
		}
		return res, nil
	}
	if opts.Truncate {
		if err := w.Reset(ctx); err != nil {
			return store.WriteResult{Table: table}, err
		}
	}
	return w.WriteAll(ctx, rows)
}
