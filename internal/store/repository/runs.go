package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

const runTable = "ingest_runs"

var insertRun = store.InsertStatement(runTable, "run_id", "started_at", "finished_at", "written", "rejected")

// RunRepository records ingest runs.
type RunRepository struct {
	s store.Session
}

// NewRunRepository binds a RunRepository to s.
func NewRunRepository(s store.Session) *RunRepository {
	return &RunRepository{s: s}
}

// Record stores one run.
func (r *RunRepository) Record(ctx context.Context, run store.IngestRun) error {
	res, err := store.WriteRows(ctx, r.s, runTable, insertRun, []store.IngestRun{run}, func(x store.IngestRun) []any {
		return []any{x.RunID, x.StartedAt, x.FinishedAt, x.Written, x.Rejected}
	})
	if err != nil {
		return err
	}
	if len(res.Rejected) > 0 {
		return fmt.Errorf("record run %s: %s", run.RunID, res.Rejected[0].Reason)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]store.IngestRun, error) {
	rows, err := query(ctx, r.s, "ingest runs", "SELECT run_id, started_at, finished_at, written, rejected FROM "+runTable)
	if err != nil {
		return nil, err
	}
	out := make([]store.IngestRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.IngestRun{
			RunID:      row.String("run_id"),
			StartedAt:  row.Time("started_at"),
			FinishedAt: row.Time("finished_at"),
			Written:    row.Int("written"),
			Rejected:   row.Int("rejected"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
