// Package reporter answers the read-side questions: season trends, team
// rankings, outcome correlations and player leaderboards.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
	"github.com/KaramelBytes/nbastat-cli/internal/store"
	"github.com/KaramelBytes/nbastat-cli/internal/store/repository"
)

// ErrUnknownMetric is returned for a metric name a query does not support.
var ErrUnknownMetric = errors.New("unknown metric")

// TeamMetrics are the seasonal_performance columns TeamRanking accepts.
var TeamMetrics = []string{"avg_points", "avg_rebounds", "avg_assists", "avg_opponent_points"}

// OutcomeColumns are the correlation matrix columns, outcome last.
var OutcomeColumns = []string{"points", "assists", "rebounds", "fg_pct", "ft_pct", "fg3_pct", "outcome"}

// Metric is a player_stats column.
type Metric string

const (
	MetricPts Metric = "pts"
	MetricReb Metric = "reb"
	MetricAst Metric = "ast"
)

// PlayerMetrics lists the leaderboard metrics in display order.
var PlayerMetrics = []Metric{MetricPts, MetricReb, MetricAst}

// Value returns the metric of p.
func (m Metric) Value(p store.PlayerStats) float64 {
	switch m {
	case MetricPts:
		return p.Pts
	case MetricReb:
		return p.Reb
	case MetricAst:
		return p.Ast
	}
	return 0
}

// TeamReader resolves team names.
type TeamReader interface {
	Names(ctx context.Context) (map[int64]string, error)
}

// SeasonalReader reads seasonal_performance.
type SeasonalReader interface {
	All(ctx context.Context) ([]store.SeasonalPerformance, error)
	BySeason(ctx context.Context, season int) ([]store.SeasonalPerformance, error)
}

// OutcomeReader reads game_outcome_performance.
type OutcomeReader interface {
	BySeasonOutcome(ctx context.Context, season int, outcome store.Outcome) ([]store.GameOutcomePerformance, error)
}

// PlayerReader reads player_stats.
type PlayerReader interface {
	BySeason(ctx context.Context, season int) ([]store.PlayerStats, error)
	ByPlayer(ctx context.Context, name string) ([]store.PlayerStats, error)
}

// GameReader reads the per-team games table.
type GameReader interface {
	ByTeamSeason(ctx context.Context, teamID int64, season int) ([]store.TeamGame, error)
}

// Reporter runs read-only queries. It keeps no state between calls.
type Reporter struct {
	teams    TeamReader
	seasonal SeasonalReader
	outcomes OutcomeReader
	players  PlayerReader
	games    GameReader
}

// New builds a Reporter from explicit readers.
func New(teams TeamReader, seasonal SeasonalReader, outcomes OutcomeReader, players PlayerReader, games GameReader) *Reporter {
	return &Reporter{teams: teams, seasonal: seasonal, outcomes: outcomes, players: players, games: games}
}

// NewFromSession wires the table repositories over s.
func NewFromSession(s store.Session) *Reporter {
	return New(
		repository.NewTeamRepository(s),
		repository.NewSeasonalRepository(s),
		repository.NewOutcomeRepository(s),
		repository.NewPlayerStatsRepository(s),
		repository.NewGameRepository(s),
	)
}

// SeasonPoint is the league-wide average of team avg_points for one season.
type SeasonPoint struct {
	Season    int
	AvgPoints float64
	Teams     int
}

// SeasonTrend averages avg_points across teams per season, ordered by season.
func (r *Reporter) SeasonTrend(ctx context.Context) ([]SeasonPoint, error) {
	rows, err := r.seasonal.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	seasons := make([]int, len(rows))
	points := make([]float64, len(rows))
	for i, p := range rows {
		seasons[i], points[i] = p.Season, p.AvgPoints
	}
	df := dataframe.New(
		series.New(seasons, series.Int, "season"),
		series.New(points, series.Float, "avg_points"),
	)
	groups := df.GroupBy("season")
	if groups.Err != nil {
		return nil, fmt.Errorf("season trend: %w", groups.Err)
	}
	agg := groups.Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN, dataframe.Aggregation_COUNT},
		[]string{"avg_points", "season"},
	)
	if agg.Err != nil {
		return nil, fmt.Errorf("season trend: %w", agg.Err)
	}
	ss := agg.Col("season").Float()
	means := agg.Col(fmt.Sprintf("%s_%s", "avg_points", dataframe.Aggregation_MEAN)).Float()
	counts := agg.Col(fmt.Sprintf("%s_%s", "season", dataframe.Aggregation_COUNT)).Float()
	out := make([]SeasonPoint, len(ss))
	for i := range ss {
		out[i] = SeasonPoint{Season: int(ss[i]), AvgPoints: means[i], Teams: int(counts[i])}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out, nil
}

// TeamValue is one team's metric in a ranking.
type TeamValue struct {
	TeamID   int64
	TeamName string
	Value    float64
}

// TeamRanking returns every team's metric for one season, ascending. Teams
// missing from team_map are named by id.
func (r *Reporter) TeamRanking(ctx context.Context, season int, metric string) ([]TeamValue, error) {
	if !validTeamMetric(metric) {
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownMetric, metric, TeamMetrics)
	}
	rows, err := r.seasonal.BySeason(ctx, season)
	if err != nil {
		return nil, err
	}
	names, err := r.teams.Names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeamValue, 0, len(rows))
	for _, p := range rows {
		v, _ := p.Metric(metric)
		out = append(out, TeamValue{TeamID: p.TeamID, TeamName: teamName(names, p.TeamID), Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

func validTeamMetric(m string) bool {
	for _, t := range TeamMetrics {
		if t == m {
			return true
		}
	}
	return false
}

// OutcomeSample fetches a season's win and loss rows as OutcomeColumns vectors.
func (r *Reporter) OutcomeSample(ctx context.Context, season int) ([][]float64, error) {
	var rows [][]float64
	for _, o := range []store.Outcome{store.OutcomeWin, store.OutcomeLoss} {
		games, err := r.outcomes.BySeasonOutcome(ctx, season, o)
		if err != nil {
			return nil, err
		}
		for _, g := range games {
			rows = append(rows, []float64{
				float64(g.Points), float64(g.Assists), float64(g.Rebounds),
				g.FGPct, g.FTPct, g.FG3Pct, g.Outcome.Binary(),
			})
		}
	}
	return rows, nil
}

// OutcomeCorrelation is the Pearson matrix over OutcomeColumns for one season,
// with outcome encoded as win=1, loss=0.
func (r *Reporter) OutcomeCorrelation(ctx context.Context, season int) (*analysis.CorrMatrix, error) {
	rows, err := r.OutcomeSample(ctx, season)
	if err != nil {
		return nil, err
	}
	return analysis.Pearson(OutcomeColumns, rows), nil
}

// TopOptions bounds a leaderboard.
type TopOptions struct {
	N        int
	MinGames int // players with fewer games are skipped
}

// TopPlayers returns, per metric, at most N players of the season sorted by
// the metric descending. Ties keep storage order.
func (r *Reporter) TopPlayers(ctx context.Context, season int, opts TopOptions) (map[Metric][]store.PlayerStats, error) {
	rows, err := r.players.BySeason(ctx, season)
	if err != nil {
		return nil, err
	}
	var eligible []store.PlayerStats
	for _, p := range rows {
		if p.GamesPlayed >= opts.MinGames {
			eligible = append(eligible, p)
		}
	}
	out := make(map[Metric][]store.PlayerStats, len(PlayerMetrics))
	for _, m := range PlayerMetrics {
		out[m] = analysis.TopN(eligible, opts.N, m.Value)
	}
	return out, nil
}

// PlayerTrend returns one player's seasons in order.
func (r *Reporter) PlayerTrend(ctx context.Context, name string) ([]store.PlayerStats, error) {
	rows, err := r.players.ByPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Season < rows[j].Season })
	return rows, nil
}

// TeamGames returns one team's games of a season ordered by game id.
func (r *Reporter) TeamGames(ctx context.Context, teamID int64, season int) ([]store.TeamGame, error) {
	if r.games == nil {
		return nil, errors.New("reporter: no games reader")
	}
	return r.games.ByTeamSeason(ctx, teamID, season)
}

// teamName looks id up in names, falling back to the id itself.
func teamName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
