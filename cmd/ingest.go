package cmd

import (
	"fmt"

	"github.com/KaramelBytes/nbastat-cli/internal/loader"
	"github.com/spf13/cobra"
)

var (
	ingTables     []string
	ingDryRun     bool
	ingNoTruncate bool
	ingGames      string
	ingDetails    string
	ingTeams      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the CSV files, derive the tables and write them to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		tables, err := loader.ParseTables(ingTables)
		if err != nil {
			return err
		}
		files := loader.Files{Games: c.GamesPath, GameDetails: c.GameDetailsPath, Teams: c.TeamsPath}
		if ingGames != "" {
			files.Games = ingGames
		}
		if ingDetails != "" {
			files.GameDetails = ingDetails
		}
		if ingTeams != "" {
			files.Teams = ingTeams
		}
		opts := loader.Options{
			Tables:    tables,
			DryRun:    ingDryRun,
			Truncate:  c.TruncateOnIngest && !ingNoTruncate,
			Weighting: loader.Weighting(c.SeasonalWeighting),
		}

		conn, err := openStore(true)
		if err != nil {
			return err
		}
		defer conn.Close()

		sum, err := loader.NewIngester(conn.Session(), logger).Run(cmd.Context(), files, opts)
		out := cmd.OutOrStdout()
		if sum != nil {
			for _, res := range sum.Results {
				verb := "written"
				n := res.Written
				if sum.DryRun {
					verb, n = "valid", res.Attempted-len(res.Rejected)
				}
				if len(res.Rejected) == 0 {
					fmt.Fprintf(out, "✓ %s: %d %s\n", res.Table, n, verb)
					continue
				}
				fmt.Fprintf(out, "⚠ %s: %d %s, %d rejected\n", res.Table, n, verb, len(res.Rejected))
				for i, rj := range res.Rejected {
					if i == 3 {
						fmt.Fprintf(out, "    ... %d more\n", len(res.Rejected)-i)
						break
					}
					fmt.Fprintf(out, "    - %s: %s\n", rj.Key, rj.Reason)
				}
			}
		}
		if err != nil {
			return err
		}
		if sum.DryRun {
			fmt.Fprintf(out, "✓ Dry run %s: nothing written\n", sum.RunID)
			return nil
		}
		fmt.Fprintf(out, "✓ Ingest run %s: %d written, %d rejected\n", sum.RunID, sum.Written(), sum.Rejected())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringSliceVar(&ingTables, "tables", nil, "tables to load: teams,games,seasonal,outcomes,players (default all)")
	ingestCmd.Flags().BoolVar(&ingDryRun, "dry-run", false, "read and validate without writing")
	ingestCmd.Flags().BoolVar(&ingNoTruncate, "no-truncate", false, "keep existing rows (upsert over them)")
	ingestCmd.Flags().StringVar(&ingGames, "games", "", "games CSV (overrides games_path)")
	ingestCmd.Flags().StringVar(&ingDetails, "details", "", "game details CSV (overrides game_details_path)")
	ingestCmd.Flags().StringVar(&ingTeams, "teams", "", "teams CSV (overrides teams_path)")
}
