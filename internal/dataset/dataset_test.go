package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesCSV = "GAME_DATE_EST,GAME_ID,GAME_STATUS_TEXT,HOME_TEAM_ID,VISITOR_TEAM_ID,SEASON,TEAM_ID_home,PTS_home,FG_PCT_home,FT_PCT_home,FG3_PCT_home,AST_home,REB_home,TEAM_ID_away,PTS_away,FG_PCT_away,FT_PCT_away,FG3_PCT_away,AST_away,REB_away,HOME_TEAM_WINS\n" +
	"2022-12-22,22200477,Final,1610612740,1610612759,2022,1610612740,126.0,0.484,0.926,0.382,25.0,46.0,1610612759,117.0,0.478,0.815,0.321,23.0,44.0,1\n" +
	"2003-10-05,10300001,Final,1610612762,1610612742,2003,1610612762,,,,,,,1610612742,,,,,,,0\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestReadGames_TracksMissingStats(t *testing.T) {
	games, err := ReadGames(writeFile(t, "games.csv", gamesCSV))
	require.NoError(t, err)
	require.Len(t, games, 2)

	g := games[0]
	assert.Equal(t, int64(22200477), g.GameID)
	assert.Equal(t, 2022, g.Season)
	assert.Equal(t, int64(1610612740), g.HomeTeamID)
	assert.Equal(t, Num(126), g.PtsHome)
	assert.InDelta(t, 0.382, g.FG3PctHome.Value, 1e-9)
	assert.True(t, g.Complete())
	assert.True(t, g.HomeWon())

	blank := games[1]
	assert.False(t, blank.PtsHome.Valid)
	assert.False(t, blank.Complete())
	assert.False(t, blank.HomeWon())
}

func TestReadGameDetails_TabSeparated(t *testing.T) {
	body := "GAME_ID\tTEAM_ID\tPLAYER_ID\tPLAYER_NAME\tCOMMENT\tPTS\tREB\tAST\n" +
		"22200477\t1610612759\t1629641\tRomeo Langford\t\t8.0\t2.0\t1.0\n" +
		"22200477\t1610612759\t1630170\tDeni Avdija\tDNP - Coach's Decision\t\t\t\n"
	details, err := ReadGameDetails(writeFile(t, "games_details.tsv", body))
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "Romeo Langford", details[0].PlayerName)
	assert.Empty(t, details[0].Comment)
	assert.Equal(t, Num(8), details[0].Pts)
	assert.Equal(t, Num(2), details[0].Reb)
	assert.Equal(t, Num(1), details[0].Ast)
	assert.Equal(t, "DNP - Coach's Decision", details[1].Comment)
	assert.False(t, details[1].Pts.Valid)

	// tab sniffed from the header of a non-.tsv file
	sniffed, err := ReadGameDetails(writeFile(t, "games_details.csv", body))
	require.NoError(t, err)
	require.Len(t, sniffed, 2)
	assert.Equal(t, details, sniffed)
}

func TestReadTeams(t *testing.T) {
	body := "LEAGUE_ID,TEAM_ID,MIN_YEAR,MAX_YEAR,ABBREVIATION,NICKNAME,YEARFOUNDED,CITY\n" +
		"0,1610612737,1949,2019,ATL,Hawks,1949,Atlanta\n"
	teams, err := ReadTeams(writeFile(t, "teams.csv", body))
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, TeamRecord{TeamID: 1610612737, Abbreviation: "ATL", Nickname: "Hawks", City: "Atlanta"}, teams[0])
}

func TestReadTeams_MissingColumn(t *testing.T) {
	_, err := ReadTeams(writeFile(t, "teams.csv", "TEAM_ID,CITY\n1,Atlanta\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "NICKNAME")
}

func TestReadGames_EmptyFile(t *testing.T) {
	games, err := ReadGames(writeFile(t, "games.csv", ""))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestNumber_UnmarshalCSV(t *testing.T) {
	cases := map[string]Number{
		"12":    Num(12),
		" 0.5 ": Num(0.5),
		"":      {},
		"NaN":   {},
		"abc":   {},
	}
	for in, want := range cases {
		var n Number
		require.NoError(t, n.UnmarshalCSV(in))
		assert.Equal(t, want, n, "input %q", in)
	}
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, '\t', sniffDelimiter("x.tsv", []byte("a,b,c")))
	assert.Equal(t, ';', sniffDelimiter("x.csv", []byte("a;b;c\n1,2;3")))
	assert.Equal(t, ',', sniffDelimiter("x.csv", []byte("a,b\n")))
}
