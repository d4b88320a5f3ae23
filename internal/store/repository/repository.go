// Package repository holds one repository per table. Each owns the insert
// template and the read queries for its table.
package repository

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

func truncate(ctx context.Context, s store.Session, table string) error {
	if err := s.Exec(ctx, "TRUNCATE "+table); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

func query(ctx context.Context, s store.Session, what, stmt string, values ...any) ([]store.Record, error) {
	rows, err := s.Select(ctx, stmt, values...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", what, err)
	}
	out := make([]store.Record, len(rows))
	for i, r := range rows {
		out[i] = store.Record(r)
	}
	return out, nil
}
