package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/nbastat-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set nbastat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "host: %s\n", cfg.Host)
		fmt.Fprintf(out, "port: %d\n", cfg.Port)
		fmt.Fprintf(out, "keyspace: %s\n", cfg.Keyspace)
		fmt.Fprintf(out, "replication_class: %s\n", cfg.ReplicationClass)
		fmt.Fprintf(out, "replication_factor: %d\n", cfg.ReplicationFactor)
		if cfg.Datacenter != "" {
			fmt.Fprintf(out, "datacenter: %s\n", cfg.Datacenter)
		}
		fmt.Fprintf(out, "consistency: %s\n", cfg.Consistency)
		fmt.Fprintf(out, "timeout_sec: %d\n", cfg.TimeoutSec)
		fmt.Fprintf(out, "connect_timeout_sec: %d\n", cfg.ConnectTimeoutSec)
		if cfg.SchemaPath != "" {
			fmt.Fprintf(out, "schema_path: %s\n", cfg.SchemaPath)
		}
		fmt.Fprintf(out, "games_path: %s\n", cfg.GamesPath)
		fmt.Fprintf(out, "game_details_path: %s\n", cfg.GameDetailsPath)
		fmt.Fprintf(out, "teams_path: %s\n", cfg.TeamsPath)
		fmt.Fprintf(out, "seasonal_weighting: %s\n", cfg.SeasonalWeighting)
		fmt.Fprintf(out, "truncate_on_ingest: %t\n", cfg.TruncateOnIngest)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "⚠ %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		if err := setKey(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "host":
		c.Host = val
	case "port":
		c.Port, err = atoi()
	case "keyspace":
		c.Keyspace = val
	case "replication_class":
		switch strings.ToLower(val) {
		case "simple", "simplestrategy":
			c.ReplicationClass = "SimpleStrategy"
		case "networktopology", "networktopologystrategy":
			c.ReplicationClass = "NetworkTopologyStrategy"
		default:
			return fmt.Errorf("invalid replication_class: %s (use SimpleStrategy or NetworkTopologyStrategy)", val)
		}
	case "replication_factor":
		c.ReplicationFactor, err = atoi()
	case "datacenter":
		c.Datacenter = val
	case "consistency":
		c.Consistency = strings.ToUpper(val)
	case "timeout_sec":
		c.TimeoutSec, err = atoi()
	case "connect_timeout_sec":
		c.ConnectTimeoutSec, err = atoi()
	case "schema_path":
		c.SchemaPath = val
	case "games_path":
		c.GamesPath = val
	case "game_details_path":
		c.GameDetailsPath = val
	case "teams_path":
		c.TeamsPath = val
	case "seasonal_weighting":
		c.SeasonalWeighting = strings.ToLower(val)
	case "truncate_on_ingest":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for truncate_on_ingest: %v", val)
		}
		c.TruncateOnIngest = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}
