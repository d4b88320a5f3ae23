// Package dataset decodes the raw NBA CSV exports (games, game details, teams)
// into typed records. Stat cells keep track of missingness so transforms can
// drop incomplete rows instead of treating blanks as zero.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Number is a numeric CSV cell that may be missing.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number.
func Num(v float64) Number { return Number{Value: v, Valid: true} }

// UnmarshalCSV implements gocsv.TypeUnmarshaller. Empty, NaN and unparseable
// cells decode as missing.
func (n *Number) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	*n = Number{}
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "none":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (n Number) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64), nil
}

// Game is one row of games.csv.
type Game struct {
	GameDate      string `csv:"GAME_DATE_EST"`
	GameID        int64  `csv:"GAME_ID"`
	HomeTeamID    int64  `csv:"HOME_TEAM_ID"`
	VisitorTeamID int64  `csv:"VISITOR_TEAM_ID"`
	Season        int    `csv:"SEASON"`

	PtsHome    Number `csv:"PTS_home"`
	FGPctHome  Number `csv:"FG_PCT_home"`
	FTPctHome  Number `csv:"FT_PCT_home"`
	FG3PctHome Number `csv:"FG3_PCT_home"`
	AstHome    Number `csv:"AST_home"`
	RebHome    Number `csv:"REB_home"`

	PtsAway    Number `csv:"PTS_away"`
	FGPctAway  Number `csv:"FG_PCT_away"`
	FTPctAway  Number `csv:"FT_PCT_away"`
	FG3PctAway Number `csv:"FG3_PCT_away"`
	AstAway    Number `csv:"AST_away"`
	RebAway    Number `csv:"REB_away"`

	HomeTeamWins Number `csv:"HOME_TEAM_WINS"`
}

// Complete reports whether every box-score stat of both sides is present.
func (g Game) Complete() bool {
	for _, n := range []Number{
		g.PtsHome, g.FGPctHome, g.FTPctHome, g.FG3PctHome, g.AstHome, g.RebHome,
		g.PtsAway, g.FGPctAway, g.FTPctAway, g.FG3PctAway, g.AstAway, g.RebAway,
	} {
		if !n.Valid {
			return false
		}
	}
	return true
}

// HomeWon reports the HOME_TEAM_WINS flag; a missing flag falls back to the score.
func (g Game) HomeWon() bool {
	if g.HomeTeamWins.Valid {
		return g.HomeTeamWins.Value != 0
	}
	return g.PtsHome.Value > g.PtsAway.Value
}

// GameDetail is one row of games_details.csv (one player in one game).
type GameDetail struct {
	GameID     int64  `csv:"GAME_ID"`
	TeamID     int64  `csv:"TEAM_ID"`
	PlayerID   int64  `csv:"PLAYER_ID"`
	PlayerName string `csv:"PLAYER_NAME"`
	Comment    string `csv:"COMMENT"`
	Pts        Number `csv:"PTS"`
	Reb        Number `csv:"REB"`
	Ast        Number `csv:"AST"`
}

// TeamRecord is one row of teams.csv.
type TeamRecord struct {
	TeamID       int64  `csv:"TEAM_ID"`
	Abbreviation string `csv:"ABBREVIATION"`
	Nickname     string `csv:"NICKNAME"`
	City         string `csv:"CITY"`
}

var (
	gameColumns   = []string{"GAME_ID", "SEASON", "HOME_TEAM_ID", "VISITOR_TEAM_ID", "PTS_home", "PTS_away", "HOME_TEAM_WINS"}
	detailColumns = []string{"GAME_ID", "PLAYER_NAME", "PTS", "REB", "AST"}
	teamColumns   = []string{"TEAM_ID", "CITY", "NICKNAME"}
)

// ErrMissingColumn is wrapped when an input header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ReadGames decodes games.csv.
func ReadGames(path string) ([]Game, error) {
	var out []Game
	if err := readTable(path, gameColumns, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadGameDetails decodes games_details.csv.
func ReadGameDetails(path string) ([]GameDetail, error) {
	var out []GameDetail
	if err := readTable(path, detailColumns, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadTeams decodes teams.csv.
func ReadTeams(path string) ([]TeamRecord, error) {
	var out []TeamRecord
	if err := readTable(path, teamColumns, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readTable(path string, required []string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	delim := sniffDelimiter(path, data)

	header, err := newReader(bytes.NewReader(data), delim).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header of %s: %w", filepath.Base(path), err)
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	for _, col := range required {
		if !have[col] {
			return fmt.Errorf("%s: %w %s", filepath.Base(path), ErrMissingColumn, col)
		}
	}

	if err := gocsv.UnmarshalCSV(newReader(bytes.NewReader(data), delim), out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func newReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	// a tab counts as leading space, so trimming would swallow empty cells
	cr.TrimLeadingSpace = delim != '\t'
	cr.LazyQuotes = true
	return cr
}

// sniffDelimiter picks tab for .tsv files, otherwise whichever of ',', ';', '\t'
// occurs most in the header line.
func sniffDelimiter(path string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(line, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
