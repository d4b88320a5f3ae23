package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalidRow is wrapped by every Validate failure.
var ErrInvalidRow = errors.New("invalid row")

// Outcome labels one side of a game.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Binary encodes win as 1 and anything else as 0.
func (o Outcome) Binary() float64 {
	if o == OutcomeWin {
		return 1
	}
	return 0
}

// GameType is the perspective of a raw games row.
type GameType string

const (
	GameHome GameType = "HOME"
	GameAway GameType = "AWAY"
)

// Team maps a franchise id to its display name (team_map table).
type Team struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}

// Key identifies the row in rejection reports.
func (t Team) Key() string { return strconv.FormatInt(t.TeamID, 10) }

// Validate requires a team name.
func (t Team) Validate() error {
	if t.TeamName == "" {
		return fmt.Errorf("%w: team %d has no name", ErrInvalidRow, t.TeamID)
	}
	return nil
}

// SeasonalPerformance holds a team's per-season averages (seasonal_performance table).
type SeasonalPerformance struct {
	TeamID            int64   `json:"team_id"`
	Season            int     `json:"season"`
	AvgPoints         float64 `json:"avg_points"`
	AvgRebounds       float64 `json:"avg_rebounds"`
	AvgAssists        float64 `json:"avg_assists"`
	AvgOpponentPoints float64 `json:"avg_opponent_points"`
}

// Key is the primary key as text.
func (s SeasonalPerformance) Key() string { return fmt.Sprintf("%d/%d", s.TeamID, s.Season) }

// Validate requires finite, non-negative averages.
func (s SeasonalPerformance) Validate() error {
	return firstErr(
		nonNegative("avg_points", s.AvgPoints),
		nonNegative("avg_rebounds", s.AvgRebounds),
		nonNegative("avg_assists", s.AvgAssists),
		nonNegative("avg_opponent_points", s.AvgOpponentPoints),
	)
}

// Metric returns the named average, or false for an unknown name.
func (s SeasonalPerformance) Metric(name string) (float64, bool) {
	switch name {
	case "avg_points":
		return s.AvgPoints, true
	case "avg_rebounds":
		return s.AvgRebounds, true
	case "avg_assists":
		return s.AvgAssists, true
	case "avg_opponent_points":
		return s.AvgOpponentPoints, true
	}
	return 0, false
}

// GameOutcomePerformance is one team's stat line in one game, labeled with the
// result (game_outcome_performance table).
type GameOutcomePerformance struct {
	Season   int     `json:"season"`
	Outcome  Outcome `json:"outcome"`
	TeamID   int64   `json:"team_id"`
	GameID   int64   `json:"game_id"`
	Points   int     `json:"points"`
	Assists  int     `json:"assists"`
	Rebounds int     `json:"rebounds"`
	FGPct    float64 `json:"fg_pct"`
	FTPct    float64 `json:"ft_pct"`
	FG3Pct   float64 `json:"fg3_pct"`
}

// Key is the primary key as text.
func (g GameOutcomePerformance) Key() string {
	return fmt.Sprintf("%d/%s/%d/%d", g.Season, g.Outcome, g.TeamID, g.GameID)
}

// Validate checks the outcome label, the counts and the shooting fractions.
func (g GameOutcomePerformance) Validate() error {
	if g.Outcome != OutcomeWin && g.Outcome != OutcomeLoss {
		return fmt.Errorf("%w: outcome %q", ErrInvalidRow, g.Outcome)
	}
	return firstErr(
		nonNegative("points", float64(g.Points)),
		nonNegative("assists", float64(g.Assists)),
		nonNegative("rebounds", float64(g.Rebounds)),
		fraction("fg_pct", g.FGPct),
		fraction("ft_pct", g.FTPct),
		fraction("fg3_pct", g.FG3Pct),
	)
}

// PlayerStats is a player's per-season aggregate (player_stats table).
type PlayerStats struct {
	PlayerName  string  `json:"player_name"`
	Season      int     `json:"season"`
	GamesPlayed int     `json:"games_played"`
	Pts         float64 `json:"pts"`
	Reb         float64 `json:"reb"`
	Ast         float64 `json:"ast"`
}

// Key is the primary key as text.
func (p PlayerStats) Key() string { return fmt.Sprintf("%s/%d", p.PlayerName, p.Season) }

// Validate requires a player name, at least one game and non-negative means.
func (p PlayerStats) Validate() error {
	if p.PlayerName == "" {
		return fmt.Errorf("%w: empty player_name", ErrInvalidRow)
	}
	if p.GamesPlayed < 1 {
		return fmt.Errorf("%w: games_played %d", ErrInvalidRow, p.GamesPlayed)
	}
	return firstErr(
		nonNegative("pts", p.Pts),
		nonNegative("reb", p.Reb),
		nonNegative("ast", p.Ast),
	)
}

// TeamGame is one game seen from one team's side (games table).
type TeamGame struct {
	TeamID      int64    `json:"team_id"`
	GameType    GameType `json:"game_type"`
	Season      int      `json:"season"`
	RivalTeamID int64    `json:"rival_team_id"`
	GameID      int64    `json:"game_id"`
	TeamPts     int      `json:"team_pts"`
	TeamFGPct   float64  `json:"team_fg_pct"`
	TeamFTPct   float64  `json:"team_ft_pct"`
	TeamFG3Pct  float64  `json:"team_fg3_pct"`
	TeamAst     int      `json:"team_ast"`
	TeamReb     int      `json:"team_reb"`
	RivalPts    int      `json:"rival_pts"`
	RivalFGPct  float64  `json:"rival_fg_pct"`
	RivalFTPct  float64  `json:"rival_ft_pct"`
	RivalFG3Pct float64  `json:"rival_fg3_pct"`
	RivalAst    int      `json:"rival_ast"`
	RivalReb    int      `json:"rival_reb"`
}

// Key is the primary key as text.
func (g TeamGame) Key() string { return fmt.Sprintf("%d/%d/%d", g.TeamID, g.Season, g.GameID) }

// Validate checks the side, both teams' counts and their shooting fractions.
func (g TeamGame) Validate() error {
	if g.GameType != GameHome && g.GameType != GameAway {
		return fmt.Errorf("%w: game_type %q", ErrInvalidRow, g.GameType)
	}
	return firstErr(
		nonNegative("team_pts", float64(g.TeamPts)),
		nonNegative("team_ast", float64(g.TeamAst)),
		nonNegative("team_reb", float64(g.TeamReb)),
		nonNegative("rival_pts", float64(g.RivalPts)),
		nonNegative("rival_ast", float64(g.RivalAst)),
		nonNegative("rival_reb", float64(g.RivalReb)),
		fraction("team_fg_pct", g.TeamFGPct),
		fraction("team_ft_pct", g.TeamFTPct),
		fraction("team_fg3_pct", g.TeamFG3Pct),
		fraction("rival_fg_pct", g.RivalFGPct),
		fraction("rival_ft_pct", g.RivalFTPct),
		fraction("rival_fg3_pct", g.RivalFG3Pct),
	)
}

// IngestRun records one ingest invocation (ingest_runs table).
type IngestRun struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Written    int       `json:"written"`
	Rejected   int       `json:"rejected"`
}

// Key is the primary key as text.
func (r IngestRun) Key() string { return r.RunID }

// Validate requires a run id.
func (r IngestRun) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("%w: empty run_id", ErrInvalidRow)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s=%v must be finite and non-negative", ErrInvalidRow, name, v)
	}
	return nil
}

func fraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s=%v must be in [0,1]", ErrInvalidRow, name, v)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
