package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaPath string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the keyspace and tables",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the keyspace if needed and execute the schema script",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		conn, err := openStore(false)
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx := cmd.Context()
		if err := conn.EnsureKeyspace(ctx, c.Keyspace, replication(c)); err != nil {
			return err
		}
		path := c.SchemaPath
		if schemaPath != "" {
			path = schemaPath
		}
		n, err := conn.ApplySchema(ctx, path)
		if err != nil {
			return err
		}
		src := path
		if src == "" {
			src = "embedded schema"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Applied %d statements from %s to keyspace '%s'\n", n, src, conn.Keyspace())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaApplyCmd)
	schemaApplyCmd.Flags().StringVarP(&schemaPath, "file", "f", "", "schema script (overrides schema_path; default is the embedded schema)")
}
