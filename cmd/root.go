package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	cfgpkg "github.com/KaramelBytes/nbastat-cli/internal/config"
	"github.com/KaramelBytes/nbastat-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Connection flags (override config if set)
	flagHost     string
	flagPort     int
	flagKeyspace string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	// dialer opens store sessions; nil uses the CQL driver. Tests swap it.
	dialer store.Dialer
)

var rootCmd = &cobra.Command{
	Use:           "nbastat",
	Short:         "nbastat: load NBA game data into Cassandra and report on it",
	Long:          `nbastat ingests the NBA games, game details and teams CSV files into a Cassandra keyspace and answers season, team, outcome and player questions from the stored tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.nbastat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "store contact point (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "store native protocol port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagKeyspace, "keyspace", "", "keyspace name (overrides config)")
}

func loadConfig() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config fail later with a clearer message
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("host") && flagHost != "" {
		cfg.Host = flagHost
	}
	if f.Changed("port") && flagPort > 0 {
		cfg.Port = flagPort
	}
	if f.Changed("keyspace") && flagKeyspace != "" {
		cfg.Keyspace = flagKeyspace
	}
}

// requireConfig returns the validated configuration.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore connects with the effective configuration. bindKeyspace selects
// the configured keyspace on connect; schema apply creates it first instead.
func openStore(bindKeyspace bool) (*store.Connector, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	opts := store.Options{
		Hosts:          []string{c.Host},
		Port:           c.Port,
		Consistency:    c.Consistency,
		Timeout:        time.Duration(c.TimeoutSec) * time.Second,
		ConnectTimeout: time.Duration(c.ConnectTimeoutSec) * time.Second,
		Dialer:         dialer,
		Logger:         logger,
	}
	if bindKeyspace {
		opts.Keyspace = c.Keyspace
	}
	return store.Open(opts)
}

// replication maps the configured strategy onto the store's form.
func replication(c *cfgpkg.Global) store.Replication {
	r := store.Replication{Class: c.ReplicationClass, Factor: c.ReplicationFactor}
	if c.ReplicationClass == "NetworkTopologyStrategy" {
		r.Datacenters = map[string]int{c.Datacenter: c.ReplicationFactor}
	}
	return r
}
