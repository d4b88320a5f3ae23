package store

import (
	"context"

	"github.com/gocql/gocql"
)

// Session is the request/response handle the repositories talk to.
type Session interface {
	// Exec runs a statement that returns no rows. Bound values are sent as a
	// prepared statement.
	Exec(ctx context.Context, stmt string, values ...any) error
	// Select runs a query and returns every row keyed by column name.
	Select(ctx context.Context, stmt string, values ...any) ([]map[string]any, error)
	Close()
}

// Dialer opens a Session for a cluster configuration.
type Dialer func(cluster *gocql.ClusterConfig) (Session, error)

// DialCQL is the default Dialer backed by gocql.
func DialCQL(cluster *gocql.ClusterConfig) (Session, error) {
	s, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}
	return &cqlSession{s: s}, nil
}

type cqlSession struct {
	s *gocql.Session
}

func (c *cqlSession) Exec(ctx context.Context, stmt string, values ...any) error {
	return c.s.Query(stmt, values...).WithContext(ctx).Exec()
}

func (c *cqlSession) Select(ctx context.Context, stmt string, values ...any) ([]map[string]any, error) {
	iter := c.s.Query(stmt, values...).WithContext(ctx).Iter()
	rows, err := iter.SliceMap()
	if err != nil {
		_ = iter.Close()
		return nil, err
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *cqlSession) Close() { c.s.Close() }
