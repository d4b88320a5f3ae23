// Package loader turns the raw dataset into the derived row sets and persists
// them. The transforms are pure; Ingester does the I/O.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/nbastat-cli/internal/dataset"
	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

// Weighting selects how a team's home and away games combine into a season average.
type Weighting string

const (
	// WeightGame averages every game equally.
	WeightGame Weighting = "game"
	// WeightSide averages the home mean and the away mean with equal weight.
	WeightSide Weighting = "side"
)

// perspective is one team's line in one game.
type perspective struct {
	side     store.GameType
	teamID   int64
	season   int
	points   float64
	rebounds float64
	assists  float64
	opponent float64
}

func perspectives(games []dataset.Game) []perspective {
	out := make([]perspective, 0, 2*len(games))
	for _, g := range games {
		if !g.Complete() {
			continue
		}
		out = append(out,
			perspective{
				side: store.GameHome, teamID: g.HomeTeamID, season: g.Season,
				points: g.PtsHome.Value, rebounds: g.RebHome.Value, assists: g.AstHome.Value, opponent: g.PtsAway.Value,
			},
			perspective{
				side: store.GameAway, teamID: g.VisitorTeamID, season: g.Season,
				points: g.PtsAway.Value, rebounds: g.RebAway.Value, assists: g.AstAway.Value, opponent: g.PtsHome.Value,
			},
		)
	}
	return out
}

// GamePerspectives returns a HOME and an AWAY row for every complete game.
func GamePerspectives(games []dataset.Game) []store.TeamGame {
	out := make([]store.TeamGame, 0, 2*len(games))
	for _, g := range games {
		if !g.Complete() {
			continue
		}
		home := store.TeamGame{
			TeamID: g.HomeTeamID, GameType: store.GameHome, Season: g.Season, RivalTeamID: g.VisitorTeamID, GameID: g.GameID,
			TeamPts: int(g.PtsHome.Value), TeamFGPct: g.FGPctHome.Value, TeamFTPct: g.FTPctHome.Value, TeamFG3Pct: g.FG3PctHome.Value,
			TeamAst: int(g.AstHome.Value), TeamReb: int(g.RebHome.Value),
			RivalPts: int(g.PtsAway.Value), RivalFGPct: g.FGPctAway.Value, RivalFTPct: g.FTPctAway.Value, RivalFG3Pct: g.FG3PctAway.Value,
			RivalAst: int(g.AstAway.Value), RivalReb: int(g.RebAway.Value),
		}
		away := store.TeamGame{
			TeamID: g.VisitorTeamID, GameType: store.GameAway, Season: g.Season, RivalTeamID: g.HomeTeamID, GameID: g.GameID,
			TeamPts: home.RivalPts, TeamFGPct: home.RivalFGPct, TeamFTPct: home.RivalFTPct, TeamFG3Pct: home.RivalFG3Pct,
			TeamAst: home.RivalAst, TeamReb: home.RivalReb,
			RivalPts: home.TeamPts, RivalFGPct: home.TeamFGPct, RivalFTPct: home.TeamFTPct, RivalFG3Pct: home.TeamFG3Pct,
			RivalAst: home.TeamAst, RivalReb: home.TeamReb,
		}
		out = append(out, home, away)
	}
	return out
}

// SeasonalPerformance averages each team's points, rebounds, assists and
// opponent points per season. Only complete games count: a game missing any
// box-score stat of either side is skipped, not just one missing the home score.
func SeasonalPerformance(games []dataset.Game, w Weighting) ([]store.SeasonalPerformance, error) {
	recs := perspectives(games)
	switch w {
	case WeightGame, "":
		return seasonMeans(recs)
	case WeightSide:
		var home, away []perspective
		for _, p := range recs {
			if p.side == store.GameHome {
				home = append(home, p)
			} else {
				away = append(away, p)
			}
		}
		hm, err := seasonMeans(home)
		if err != nil {
			return nil, err
		}
		am, err := seasonMeans(away)
		if err != nil {
			return nil, err
		}
		return combineSides(hm, am), nil
	}
	return nil, fmt.Errorf("unknown seasonal weighting %q", w)
}

func seasonMeans(recs []perspective) ([]store.SeasonalPerformance, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	n := len(recs)
	teamIDs, seasons := make([]int, n), make([]int, n)
	points, rebounds, assists, opponent := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range recs {
		teamIDs[i], seasons[i] = int(p.teamID), p.season
		points[i], rebounds[i], assists[i], opponent[i] = p.points, p.rebounds, p.assists, p.opponent
	}
	df := dataframe.New(
		series.New(teamIDs, series.Int, "team_id"),
		series.New(seasons, series.Int, "season"),
		series.New(points, series.Float, "points"),
		series.New(rebounds, series.Float, "rebounds"),
		series.New(assists, series.Float, "assists"),
		series.New(opponent, series.Float, "opponent_points"),
	)
	metrics := []string{"points", "rebounds", "assists", "opponent_points"}
	agg, err := groupMean(df, []string{"team_id", "season"}, metrics, "")
	if err != nil {
		return nil, fmt.Errorf("seasonal performance: %w", err)
	}

	cols, err := floatCols(agg, "team_id", "season", meanCol("points"), meanCol("rebounds"), meanCol("assists"), meanCol("opponent_points"))
	if err != nil {
		return nil, fmt.Errorf("seasonal performance: %w", err)
	}
	out := make([]store.SeasonalPerformance, agg.Nrow())
	for i := range out {
		out[i] = store.SeasonalPerformance{
			TeamID:            int64(cols[0][i]),
			Season:            int(cols[1][i]),
			AvgPoints:         cols[2][i],
			AvgRebounds:       cols[3][i],
			AvgAssists:        cols[4][i],
			AvgOpponentPoints: cols[5][i],
		}
	}
	sortSeasonal(out)
	return out, nil
}

// combineSides averages the home and away means of each team-season; a team
// seen on one side only keeps that side's mean.
func combineSides(home, away []store.SeasonalPerformance) []store.SeasonalPerformance {
	type key struct {
		team   int64
		season int
	}
	type acc struct {
		sum store.SeasonalPerformance
		n   float64
	}
	groups := map[key]*acc{}
	for _, p := range append(append([]store.SeasonalPerformance{}, home...), away...) {
		k := key{p.TeamID, p.Season}
		a := groups[k]
		if a == nil {
			a = &acc{sum: store.SeasonalPerformance{TeamID: p.TeamID, Season: p.Season}}
			groups[k] = a
		}
		a.sum.AvgPoints += p.AvgPoints
		a.sum.AvgRebounds += p.AvgRebounds
		a.sum.AvgAssists += p.AvgAssists
		a.sum.AvgOpponentPoints += p.AvgOpponentPoints
		a.n++
	}
	out := make([]store.SeasonalPerformance, 0, len(groups))
	for _, a := range groups {
		s := a.sum
		s.AvgPoints /= a.n
		s.AvgRebounds /= a.n
		s.AvgAssists /= a.n
		s.AvgOpponentPoints /= a.n
		out = append(out, s)
	}
	sortSeasonal(out)
	return out
}

func sortSeasonal(rows []store.SeasonalPerformance) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Season != rows[j].Season {
			return rows[i].Season < rows[j].Season
		}
		return rows[i].TeamID < rows[j].TeamID
	})
}

// OutcomePerformance labels both sides of each complete game with its result.
// Exactly one side of a game is a win. As in SeasonalPerformance, a game
// missing any box-score stat is skipped, not only one missing the home score.
func OutcomePerformance(games []dataset.Game) []store.GameOutcomePerformance {
	out := make([]store.GameOutcomePerformance, 0, 2*len(games))
	for _, g := range games {
		if !g.Complete() {
			continue
		}
		homeOutcome, awayOutcome := store.OutcomeLoss, store.OutcomeWin
		if g.HomeWon() {
			homeOutcome, awayOutcome = store.OutcomeWin, store.OutcomeLoss
		}
		out = append(out,
			store.GameOutcomePerformance{
				Season: g.Season, Outcome: homeOutcome, TeamID: g.HomeTeamID, GameID: g.GameID,
				Points: int(g.PtsHome.Value), Assists: int(g.AstHome.Value), Rebounds: int(g.RebHome.Value),
				FGPct: g.FGPctHome.Value, FTPct: g.FTPctHome.Value, FG3Pct: g.FG3PctHome.Value,
			},
			store.GameOutcomePerformance{
				Season: g.Season, Outcome: awayOutcome, TeamID: g.VisitorTeamID, GameID: g.GameID,
				Points: int(g.PtsAway.Value), Assists: int(g.AstAway.Value), Rebounds: int(g.RebAway.Value),
				FGPct: g.FGPctAway.Value, FTPct: g.FTPctAway.Value, FG3Pct: g.FG3PctAway.Value,
			},
		)
	}
	return out
}

// PlayerSeasonStats joins player lines to their game's season and averages
// points, rebounds and assists per player and season. Lines missing a name or
// any of the three stats, or whose game is unknown, are dropped.
func PlayerSeasonStats(details []dataset.GameDetail, games []dataset.Game) ([]store.PlayerStats, error) {
	seasonOf := make(map[int64]int, len(games))
	for _, g := range games {
		seasonOf[g.GameID] = g.Season
	}
	var names []string
	var seasons []int
	var pts, reb, ast []float64
	for _, d := range details {
		name := strings.TrimSpace(d.PlayerName)
		season, ok := seasonOf[d.GameID]
		if name == "" || !ok || !d.Pts.Valid || !d.Reb.Valid || !d.Ast.Valid {
			continue
		}
		names = append(names, name)
		seasons = append(seasons, season)
		pts = append(pts, d.Pts.Value)
		reb = append(reb, d.Reb.Value)
		ast = append(ast, d.Ast.Value)
	}
	if len(names) == 0 {
		return nil, nil
	}
	df := dataframe.New(
		series.New(names, series.String, "player_name"),
		series.New(seasons, series.Int, "season"),
		series.New(pts, series.Float, "pts"),
		series.New(reb, series.Float, "reb"),
		series.New(ast, series.Float, "ast"),
	)
	agg, err := groupMean(df, []string{"player_name", "season"}, []string{"pts", "reb", "ast"}, "pts")
	if err != nil {
		return nil, fmt.Errorf("player season stats: %w", err)
	}
	cols, err := floatCols(agg, "season", meanCol("pts"), meanCol("reb"), meanCol("ast"), countCol("pts"))
	if err != nil {
		return nil, fmt.Errorf("player season stats: %w", err)
	}
	playerNames := agg.Col("player_name").Records()
	out := make([]store.PlayerStats, agg.Nrow())
	for i := range out {
		out[i] = store.PlayerStats{
			PlayerName:  playerNames[i],
			Season:      int(cols[0][i]),
			Pts:         cols[1][i],
			Reb:         cols[2][i],
			Ast:         cols[3][i],
			GamesPlayed: int(cols[4][i]),
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].Season < out[j].Season
	})
	return out, nil
}

// TeamMap names each team "<city> <nickname>". The first record of a
// duplicated id wins.
func TeamMap(teams []dataset.TeamRecord) []store.Team {
	seen := make(map[int64]bool, len(teams))
	out := make([]store.Team, 0, len(teams))
	for _, t := range teams {
		if seen[t.TeamID] {
			continue
		}
		seen[t.TeamID] = true
		name := strings.TrimSpace(strings.TrimSpace(t.City) + " " + strings.TrimSpace(t.Nickname))
		out = append(out, store.Team{TeamID: t.TeamID, TeamName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

// groupMean groups df by keys and takes the mean of each metric, plus the
// group size from countOf when it is set.
func groupMean(df dataframe.DataFrame, keys, metrics []string, countOf string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	groups := df.GroupBy(keys...)
	if groups.Err != nil {
		return dataframe.DataFrame{}, groups.Err
	}
	typs := make([]dataframe.AggregationType, 0, len(metrics)+1)
	cols := make([]string, 0, len(metrics)+1)
	for _, m := range metrics {
		typs = append(typs, dataframe.Aggregation_MEAN)
		cols = append(cols, m)
	}
	if countOf != "" {
		typs = append(typs, dataframe.Aggregation_COUNT)
		cols = append(cols, countOf)
	}
	agg := groups.Aggregation(typs, cols)
	return agg, agg.Err
}

// meanCol and countCol name the columns gota's Aggregation produces.
func meanCol(c string) string  { return fmt.Sprintf("%s_%s", c, dataframe.Aggregation_MEAN) }
func countCol(c string) string { return fmt.Sprintf("%s_%s", c, dataframe.Aggregation_COUNT) }

func floatCols(df dataframe.DataFrame, names ...string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, n := range names {
		col := df.Col(n)
		if col.Err != nil {
			return nil, col.Err
		}
		out[i] = col.Float()
	}
	return out, nil
}
