package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/nbastat-cli/internal/analysis"
	"github.com/KaramelBytes/nbastat-cli/internal/render"
	"github.com/KaramelBytes/nbastat-cli/internal/reporter"
	"github.com/KaramelBytes/nbastat-cli/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	repOutputPath string
	repNoColor    bool
	repWidth      int
	repSeason     int
	repMetric     string
	repTopN       int
	repMinGames   int
	repTeamID     int64
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Answer questions from the stored tables",
}

var reportTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "League average points per season",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.TrendReport(ctx)
		})
	},
}

var reportRankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Teams of one season ranked by a seasonal metric",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := needSeason(cmd); err != nil {
			return err
		}
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.RankingReport(ctx, repSeason, repMetric)
		})
	},
}

var reportCorrelationCmd = &cobra.Command{
	Use:   "correlation",
	Short: "Correlation of game stats with winning for one season",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := needSeason(cmd); err != nil {
			return err
		}
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.CorrelationReport(ctx, repSeason)
		})
	},
}

var reportTopPlayersCmd = &cobra.Command{
	Use:   "top-players",
	Short: "Season leaders in points, rebounds and assists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := needSeason(cmd); err != nil {
			return err
		}
		if repTopN <= 0 {
			return fmt.Errorf("--n must be positive")
		}
		opts := reporter.TopOptions{N: repTopN, MinGames: repMinGames}
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.TopPlayersReport(ctx, repSeason, opts)
		})
	},
}

var reportPlayerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "One player's averages across seasons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("player name is required")
		}
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.PlayerReport(ctx, name)
		})
	},
}

var reportGamesCmd = &cobra.Command{
	Use:   "games",
	Short: "One team's games of a season",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := needSeason(cmd); err != nil {
			return err
		}
		if !cmd.Flags().Changed("team") || repTeamID <= 0 {
			return fmt.Errorf("--team is required")
		}
		return runReport(cmd, func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error) {
			return r.GamesReport(ctx, repTeamID, repSeason)
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.PersistentFlags().StringVarP(&repOutputPath, "output", "o", "", "write the report to a .md or .xlsx file instead of the terminal")
	reportCmd.PersistentFlags().BoolVar(&repNoColor, "no-color", false, "disable colored terminal output")
	reportCmd.PersistentFlags().IntVar(&repWidth, "width", 80, "terminal width for bar charts")

	for _, c := range []*cobra.Command{reportRankingCmd, reportCorrelationCmd, reportTopPlayersCmd, reportGamesCmd} {
		c.Flags().IntVar(&repSeason, "season", 0, "season (start year, e.g. 2022)")
	}
	reportRankingCmd.Flags().StringVar(&repMetric, "metric", "avg_points", "metric: "+strings.Join(reporter.TeamMetrics, "|"))
	reportTopPlayersCmd.Flags().IntVar(&repTopN, "n", 10, "players per metric")
	reportTopPlayersCmd.Flags().IntVar(&repMinGames, "min-games", 0, "skip players with fewer games")
	reportGamesCmd.Flags().Int64Var(&repTeamID, "team", 0, "team id")

	reportCmd.AddCommand(reportTrendCmd, reportRankingCmd, reportCorrelationCmd, reportTopPlayersCmd, reportPlayerCmd, reportGamesCmd)
}

func needSeason(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("season") || repSeason <= 0 {
		return fmt.Errorf("--season is required")
	}
	return nil
}

type buildFunc func(ctx context.Context, r *reporter.Reporter) (*analysis.Report, error)

// runReport connects, builds the report and emits it.
func runReport(cmd *cobra.Command, build buildFunc) error {
	conn, err := openStore(true)
	if err != nil {
		return err
	}
	defer conn.Close()

	rep, err := build(cmd.Context(), reporter.NewFromSession(conn.Session()))
	if err != nil {
		return err
	}
	return emit(cmd, rep)
}

// emit picks the renderer from --output: Markdown, XLSX, or the terminal.
func emit(cmd *cobra.Command, rep *analysis.Report) error {
	out := cmd.OutOrStdout()
	if repOutputPath == "" {
		if rep.Empty() {
			fmt.Fprintln(out, rep.Title)
			fmt.Fprintln(out, "(no data)")
			for _, n := range rep.Notes {
				fmt.Fprintln(out, "⚠ "+n)
			}
			return nil
		}
		return render.Terminal(out, rep, render.TerminalOptions{
			Color: !repNoColor && !color.NoColor,
			Width: repWidth,
		})
	}
	switch strings.ToLower(filepath.Ext(repOutputPath)) {
	case ".md", ".markdown", ".txt":
		if err := utils.SafeWriteFile(repOutputPath, []byte(rep.Markdown())); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	case ".xlsx":
		if err := render.WriteXLSX(repOutputPath, rep); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	default:
		return fmt.Errorf("unsupported --output extension %q (use .md or .xlsx)", filepath.Ext(repOutputPath))
	}
	fmt.Fprintf(out, "✓ Wrote report to %s\n", repOutputPath)
	return nil
}
