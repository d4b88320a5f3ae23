package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/KaramelBytes/nbastat-cli/internal/store/repository"
	"github.com/KaramelBytes/nbastat-cli/internal/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingest runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openStore(true)
		if err != nil {
			return err
		}
		defer conn.Close()

		runs, err := repository.NewRunRepository(conn.Session()).Recent(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if runsJSON {
			b, err := utils.PrettyJSON(runs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		tw := tablewriter.NewWriter(out)
		tw.SetHeader([]string{"run_id", "started", "elapsed", "written", "rejected"})
		tw.SetAutoFormatHeaders(false)
		for _, r := range runs {
			tw.Append([]string{
				r.RunID,
				r.StartedAt.Local().Format(time.DateTime),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
				strconv.Itoa(r.Written),
				strconv.Itoa(r.Rejected),
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to show (0 = all)")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "print runs as JSON")
}
