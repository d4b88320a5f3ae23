package store

import (
	"context"
	"strings"
)

// Row is a value the batch writer can validate and identify.
type Row interface {
	Key() string
	Validate() error
}

// Rejected describes one row that was not inserted.
type Rejected struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// WriteResult is the outcome of one WriteRows call.
type WriteResult struct {
	Table     string     `json:"table"`
	Attempted int        `json:"attempted"`
	Written   int        `json:"written"`
	Rejected  []Rejected `json:"rejected,omitempty"`
}

// WriteRows validates each row and executes stmt with bind(row) for the valid
// ones. Invalid rows and failed executions are collected in Rejected and the
// remaining rows are still written. Only a done context stops the loop early;
// its error is returned with the partial result.
func WriteRows[T Row](ctx context.Context, s Session, table, stmt string, rows []T, bind func(T) []any) (WriteResult, error) {
	res := WriteResult{Table: table}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++
		if err := row.Validate(); err != nil {
			res.Rejected = append(res.Rejected, Rejected{Index: i, Key: row.Key(), Reason: err.Error()})
			continue
		}
		if err := s.Exec(ctx, stmt, bind(row)...); err != nil {
			res.Rejected = append(res.Rejected, Rejected{Index: i, Key: row.Key(), Reason: err.Error()})
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		res.Written++
	}
	return res, nil
}

// InsertStatement builds a parameterized INSERT for the given columns.
func InsertStatement(table string, columns ...string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}
