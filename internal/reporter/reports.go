package reporter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
)

// TrendReport charts league average points per season.
func (r *Reporter) TrendReport(ctx context.Context) (*analysis.Report, error) {
	points, err := r.SeasonTrend(ctx)
	if err != nil {
		return nil, err
	}
	rep := &analysis.Report{
		Title: "Average points per season",
		Bars:  &analysis.BarChart{XLabel: "season", YLabel: "avg_points"},
	}
	tbl := analysis.Table{Name: "season trend", Header: []string{"season", "avg_points", "teams"}}
	for _, p := range points {
		label := strconv.Itoa(p.Season)
		rep.Bars.Points = append(rep.Bars.Points, analysis.Point{Label: label, Value: p.AvgPoints})
		tbl.Rows = append(tbl.Rows, []string{label, fmtFloat(p.AvgPoints), strconv.Itoa(p.Teams)})
	}
	rep.Tables = append(rep.Tables, tbl)
	if len(points) == 0 {
		rep.Notes = append(rep.Notes, "no seasonal performance rows; run `nbastat ingest` first")
	}
	return rep, nil
}

// RankingReport charts one season's teams by metric, ascending.
func (r *Reporter) RankingReport(ctx context.Context, season int, metric string) (*analysis.Report, error) {
	ranked, err := r.TeamRanking(ctx, season, metric)
	if err != nil {
		return nil, err
	}
	rep := &analysis.Report{
		Title: fmt.Sprintf("%s by team, season %d", metric, season),
		Bars:  &analysis.BarChart{XLabel: "team", YLabel: metric},
	}
	tbl := analysis.Table{Name: "ranking", Header: []string{"rank", "team", metric}}
	for i, tv := range ranked {
		rep.Bars.Points = append(rep.Bars.Points, analysis.Point{Label: tv.TeamName, Value: tv.Value})
		tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(i + 1), tv.TeamName, fmtFloat(tv.Value)})
	}
	rep.Tables = append(rep.Tables, tbl)
	if len(ranked) == 0 {
		rep.Notes = append(rep.Notes, fmt.Sprintf("no teams recorded for season %d", season))
	}
	return rep, nil
}

// CorrelationReport shows the outcome correlation heatmap and, per stat, its
// correlation with winning next to the win and loss means.
func (r *Reporter) CorrelationReport(ctx context.Context, season int) (*analysis.Report, error) {
	rows, err := r.OutcomeSample(ctx, season)
	if err != nil {
		return nil, err
	}
	m := analysis.Pearson(OutcomeColumns, rows)
	rep := &analysis.Report{
		Title:   fmt.Sprintf("Box-score correlation with outcome, season %d", season),
		Heatmap: m,
	}
	outcomeIdx := len(OutcomeColumns) - 1
	tbl := analysis.Table{Name: "stats vs outcome", Header: []string{"stat", "r(outcome)", "win mean", "loss mean", "std", "outliers"}}
	for j, col := range OutcomeColumns[:outcomeIdx] {
		var wins, losses, all []float64
		for _, row := range rows {
			all = append(all, row[j])
			if row[outcomeIdx] == 1 {
				wins = append(wins, row[j])
			} else {
				losses = append(losses, row[j])
			}
		}
		s := analysis.Summarize(all, 0)
		rv, _ := m.At(col, "outcome")
		tbl.Rows = append(tbl.Rows, []string{
			col, fmt.Sprintf("%.3f", rv), fmtFloat(analysis.Mean(wins)), fmtFloat(analysis.Mean(losses)),
			fmtFloat(s.Std), strconv.Itoa(s.Outliers),
		})
	}
	rep.Tables = append(rep.Tables, tbl)
	rep.Notes = append(rep.Notes, fmt.Sprintf("%d team-games sampled", len(rows)))
	if len(rows) < 2 {
		rep.Notes = append(rep.Notes, "fewer than two rows; correlations are reported as 0")
	}
	return rep, nil
}

// TopPlayersReport tabulates the leaders of each metric.
func (r *Reporter) TopPlayersReport(ctx context.Context, season int, opts TopOptions) (*analysis.Report, error) {
	top, err := r.TopPlayers(ctx, season, opts)
	if err != nil {
		return nil, err
	}
	rep := &analysis.Report{Title: fmt.Sprintf("Top %d players, season %d", opts.N, season)}
	for _, m := range PlayerMetrics {
		tbl := analysis.Table{Name: "top " + string(m), Header: []string{"rank", "player", string(m), "games"}}
		for i, p := range top[m] {
			tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(i + 1), p.PlayerName, fmtFloat(m.Value(p)), strconv.Itoa(p.GamesPlayed)})
		}
		rep.Tables = append(rep.Tables, tbl)
	}
	if pts := top[MetricPts]; len(pts) > 0 {
		rep.Bars = &analysis.BarChart{XLabel: "player", YLabel: "pts"}
		for _, p := range pts {
			rep.Bars.Points = append(rep.Bars.Points, analysis.Point{Label: p.PlayerName, Value: p.Pts})
		}
	}
	if opts.MinGames > 0 {
		rep.Notes = append(rep.Notes, fmt.Sprintf("players with fewer than %d games are excluded", opts.MinGames))
	}
	return rep, nil
}

// PlayerReport charts one player's points per season.
func (r *Reporter) PlayerReport(ctx context.Context, name string) (*analysis.Report, error) {
	seasons, err := r.PlayerTrend(ctx, name)
	if err != nil {
		return nil, err
	}
	rep := &analysis.Report{
		Title: name + " by season",
		Bars:  &analysis.BarChart{XLabel: "season", YLabel: "pts"},
	}
	tbl := analysis.Table{Name: "seasons", Header: []string{"season", "games", "pts", "reb", "ast"}}
	for _, p := range seasons {
		label := strconv.Itoa(p.Season)
		rep.Bars.Points = append(rep.Bars.Points, analysis.Point{Label: label, Value: p.Pts})
		tbl.Rows = append(tbl.Rows, []string{label, strconv.Itoa(p.GamesPlayed), fmtFloat(p.Pts), fmtFloat(p.Reb), fmtFloat(p.Ast)})
	}
	rep.Tables = append(rep.Tables, tbl)
	if len(seasons) == 0 {
		rep.Notes = append(rep.Notes, fmt.Sprintf("no rows for player %q", name))
	}
	return rep, nil
}

// GamesReport lists one team's games of a season with its record.
func (r *Reporter) GamesReport(ctx context.Context, teamID int64, season int) (*analysis.Report, error) {
	games, err := r.TeamGames(ctx, teamID, season)
	if err != nil {
		return nil, err
	}
	names, err := r.teams.Names(ctx)
	if err != nil {
		return nil, err
	}
	rep := &analysis.Report{
		Title: fmt.Sprintf("%s games, season %d", teamName(names, teamID), season),
		Bars:  &analysis.BarChart{XLabel: "game", YLabel: "pts"},
	}
	tbl := analysis.Table{Name: "games", Header: []string{"game_id", "side", "rival", "pts", "rival_pts", "result", "fg_pct", "ast", "reb"}}
	wins := 0
	pts := make([]float64, 0, len(games))
	for _, g := range games {
		result := "L"
		if g.TeamPts > g.RivalPts {
			result = "W"
			wins++
		}
		id := strconv.FormatInt(g.GameID, 10)
		pts = append(pts, float64(g.TeamPts))
		rep.Bars.Points = append(rep.Bars.Points, analysis.Point{Label: id, Value: float64(g.TeamPts)})
		tbl.Rows = append(tbl.Rows, []string{
			id, string(g.GameType), teamName(names, g.RivalTeamID),
			strconv.Itoa(g.TeamPts), strconv.Itoa(g.RivalPts), result,
			fmt.Sprintf("%.3f", g.TeamFGPct), strconv.Itoa(g.TeamAst), strconv.Itoa(g.TeamReb),
		})
	}
	rep.Tables = append(rep.Tables, tbl)
	if len(games) == 0 {
		rep.Notes = append(rep.Notes, fmt.Sprintf("no games for team %d in season %d", teamID, season))
	} else {
		rep.Notes = append(rep.Notes, fmt.Sprintf("record %d-%d, %s points per game", wins, len(games)-wins, fmtFloat(analysis.Mean(pts))))
	}
	return rep, nil
}
