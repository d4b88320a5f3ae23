// Package store connects to a CQL column-family store, manages the keyspace
// and schema, and writes validated rows.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// Options configures Open.
type Options struct {
	Hosts          []string
	Port           int
	Keyspace       string // bound on connect when set
	Consistency    string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	ProtoVersion   int
	Dialer         Dialer
	Logger         *slog.Logger
}

// Replication describes a keyspace replication strategy.
type Replication struct {
	Class       string         // SimpleStrategy or NetworkTopologyStrategy
	Factor      int            // SimpleStrategy replication_factor
	Datacenters map[string]int // NetworkTopologyStrategy factors
}

// CQL renders the replication map literal.
func (r Replication) CQL() (string, error) {
	switch r.Class {
	case "", "SimpleStrategy":
		f := r.Factor
		if f < 1 {
			f = 1
		}
		return fmt.Sprintf("{'class': 'SimpleStrategy', 'replication_factor': %d}", f), nil
	case "NetworkTopologyStrategy":
		if len(r.Datacenters) == 0 {
			return "", fmt.Errorf("NetworkTopologyStrategy needs at least one datacenter")
		}
		names := make([]string, 0, len(r.Datacenters))
		for dc := range r.Datacenters {
			names = append(names, dc)
		}
		sort.Strings(names)
		parts := []string{"'class': 'NetworkTopologyStrategy'"}
		for _, dc := range names {
			parts = append(parts, fmt.Sprintf("'%s': %d", strings.ReplaceAll(dc, "'", "''"), r.Datacenters[dc]))
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	return "", fmt.Errorf("unknown replication class %q", r.Class)
}

// Connector owns the cluster configuration and the current session.
type Connector struct {
	cluster *gocql.ClusterConfig
	dial    Dialer
	session Session
	log     *slog.Logger
}

// Open connects to the cluster. Driver errors are returned unmodified.
func Open(opts Options) (*Connector, error) {
	hosts := opts.Hosts
	if len(hosts) == 0 {
		hosts = []string{"127.0.0.1"}
	}
	cluster := gocql.NewCluster(hosts...)
	if opts.Port > 0 {
		cluster.Port = opts.Port
	}
	if opts.Consistency != "" {
		cons, err := gocql.ParseConsistencyWrapper(opts.Consistency)
		if err != nil {
			return nil, fmt.Errorf("consistency: %w", err)
		}
		cluster.Consistency = cons
	}
	if opts.Timeout > 0 {
		cluster.Timeout = opts.Timeout
	}
	if opts.ConnectTimeout > 0 {
		cluster.ConnectTimeout = opts.ConnectTimeout
	}
	if opts.ProtoVersion > 0 {
		cluster.ProtoVersion = opts.ProtoVersion
	}
	if opts.Keyspace != "" {
		if !ValidIdentifier(opts.Keyspace) {
			return nil, fmt.Errorf("invalid keyspace name %q", opts.Keyspace)
		}
		cluster.Keyspace = opts.Keyspace
	}

	c := &Connector{cluster: cluster, dial: opts.Dialer, log: opts.Logger}
	if c.dial == nil {
		c.dial = DialCQL
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	s, err := c.dial(cluster)
	if err != nil {
		return nil, err
	}
	c.session = s
	c.log.Debug("connected", "hosts", strings.Join(hosts, ","), "port", cluster.Port, "keyspace", cluster.Keyspace)
	return c, nil
}

// Session returns the current session handle.
func (c *Connector) Session() Session { return c.session }

// Keyspace returns the keyspace the session is bound to, if any.
func (c *Connector) Keyspace() string { return c.cluster.Keyspace }

// EnsureKeyspace creates the keyspace if it does not exist and binds the
// session to it.
func (c *Connector) EnsureKeyspace(ctx context.Context, name string, r Replication) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("invalid keyspace name %q", name)
	}
	repl, err := r.CQL()
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH replication = %s", name, repl)
	if err := c.session.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create keyspace %s: %w", name, err)
	}
	c.log.Info("keyspace ready", "keyspace", name)
	return c.UseKeyspace(name)
}

// UseKeyspace re-dials with the keyspace bound. Pooled CQL sessions do not
// accept USE statements.
func (c *Connector) UseKeyspace(name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("invalid keyspace name %q", name)
	}
	if c.cluster.Keyspace == name && c.session != nil {
		return nil
	}
	prev := c.cluster.Keyspace
	c.cluster.Keyspace = name
	s, err := c.dial(c.cluster)
	if err != nil {
		c.cluster.Keyspace = prev
		return fmt.Errorf("bind keyspace %s: %w", name, err)
	}
	if c.session != nil {
		c.session.Close()
	}
	c.session = s
	return nil
}

// ApplySchema executes every statement of the script at path in order, or of
// the embedded default schema when path is empty.
func (c *Connector) ApplySchema(ctx context.Context, path string) (int, error) {
	script := defaultSchema
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read schema: %w", err)
		}
		script = string(b)
	}
	n := 0
	for _, stmt := range SplitStatements(script) {
		if ks, ok := useKeyspace(stmt); ok {
			if err := c.UseKeyspace(ks); err != nil {
				return n, err
			}
			continue
		}
		if err := c.session.Exec(ctx, stmt); err != nil {
			return n, fmt.Errorf("schema statement %d: %w", n+1, err)
		}
		n++
	}
	c.log.Info("schema applied", "statements", n, "keyspace", c.cluster.Keyspace)
	return n, nil
}

// Close releases the session. It is safe to call more than once.
func (c *Connector) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}
