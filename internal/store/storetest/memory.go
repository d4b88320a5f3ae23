// Package storetest provides an in-memory store.Session that understands the
// statement shapes emitted by the repositories, so ingest and report flows can
// run without a cluster.
package storetest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gocql/gocql"

	"github.com/KaramelBytes/nbastat-cli/internal/store"
)

// Statement is one statement received by the session.
type Statement struct {
	Query  string
	Values []any
}

// Memory is a tiny table engine. Tables are keyed by bare name; the keyspace is
// only recorded.
type Memory struct {
	mu     sync.Mutex
	tables map[string]*table

	// Statements holds every Exec and Select in arrival order.
	Statements []Statement
	// Dials holds the keyspace bound on each dial ("" when none).
	Dials []string
	// DialErr makes the dialer fail.
	DialErr error
	// Fail, when set, is consulted before each Exec; a non-nil result is
	// returned instead of executing.
	Fail func(stmt string, values []any) error
	// Closed counts Close calls.
	Closed int
}

type table struct {
	key  []string
	rows []map[string]any
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{tables: map[string]*table{}}
}

// Dialer returns a store.Dialer that hands out m.
func (m *Memory) Dialer() store.Dialer {
	return func(c *gocql.ClusterConfig) (store.Session, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.Dials = append(m.Dials, c.Keyspace)
		if m.DialErr != nil {
			return nil, m.DialErr
		}
		return m, nil
	}
}

// Rows returns a copy of every row in name.
func (m *Memory) Rows(name string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tables[strings.ToLower(name)]
	if t == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, copyRow(r))
	}
	return out
}

// Queries returns the query text of every statement received.
func (m *Memory) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Statements))
	for i, s := range m.Statements {
		out[i] = s.Query
	}
	return out
}

var (
	createTableRe = regexp.MustCompile(`(?is)^CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:\w+\.)?(\w+)\s*\((.*)\)\s*(?:WITH\s+.*)?$`)
	insertRe      = regexp.MustCompile(`(?is)^INSERT\s+INTO\s+(?:\w+\.)?(\w+)\s*\(([^)]*)\)\s*VALUES\s*\(([^)]*)\)\s*$`)
	selectRe      = regexp.MustCompile(`(?is)^SELECT\s+(.+?)\s+FROM\s+(?:\w+\.)?(\w+)(?:\s+WHERE\s+(.+?))?(?:\s+LIMIT\s+(\d+|\?))?(?:\s+ALLOW\s+FILTERING)?\s*$`)
	truncateRe    = regexp.MustCompile(`(?is)^TRUNCATE\s+(?:TABLE\s+)?(?:\w+\.)?(\w+)\s*$`)
	condRe        = regexp.MustCompile(`(?i)^\s*(\w+)\s*=\s*\?\s*$`)
	andRe         = regexp.MustCompile(`(?i)\s+AND\s+`)
	passthroughRe = regexp.MustCompile(`(?is)^(CREATE|ALTER|DROP|USE)\s`)
)

func (m *Memory) Exec(ctx context.Context, stmt string, values ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = append(m.Statements, Statement{Query: stmt, Values: values})
	if m.Fail != nil {
		if err := m.Fail(stmt, values); err != nil {
			return err
		}
	}
	stmt = strings.TrimSpace(stmt)

	if mt := createTableRe.FindStringSubmatch(stmt); mt != nil {
		name := strings.ToLower(mt[1])
		if _, ok := m.tables[name]; !ok {
			m.tables[name] = &table{key: primaryKey(mt[2])}
		}
		return nil
	}
	if mt := insertRe.FindStringSubmatch(stmt); mt != nil {
		cols := splitList(mt[2])
		if len(cols) != len(values) {
			return fmt.Errorf("insert into %s: %d columns, %d values", mt[1], len(cols), len(values))
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		m.table(mt[1]).upsert(row)
		return nil
	}
	if mt := truncateRe.FindStringSubmatch(stmt); mt != nil {
		m.table(mt[1]).rows = nil
		return nil
	}
	if passthroughRe.MatchString(stmt) {
		return nil
	}
	return fmt.Errorf("storetest: unsupported statement: %s", stmt)
}

func (m *Memory) Select(ctx context.Context, stmt string, values ...any) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = append(m.Statements, Statement{Query: stmt, Values: values})

	mt := selectRe.FindStringSubmatch(strings.TrimSpace(stmt))
	if mt == nil {
		return nil, fmt.Errorf("storetest: unsupported query: %s", stmt)
	}
	var conds []string
	if mt[3] != "" {
		for _, part := range andRe.Split(mt[3], -1) {
			c := condRe.FindStringSubmatch(part)
			if c == nil {
				return nil, fmt.Errorf("storetest: unsupported condition %q", part)
			}
			conds = append(conds, strings.ToLower(c[1]))
		}
	}
	if len(values) < len(conds) {
		return nil, fmt.Errorf("storetest: %d conditions, %d values", len(conds), len(values))
	}
	limit := -1
	switch lim := mt[4]; {
	case lim == "?":
		if len(values) <= len(conds) {
			return nil, fmt.Errorf("storetest: missing LIMIT value")
		}
		n, err := strconv.Atoi(fmt.Sprint(values[len(conds)]))
		if err != nil {
			return nil, fmt.Errorf("storetest: LIMIT: %w", err)
		}
		limit = n
	case lim != "":
		limit, _ = strconv.Atoi(lim)
	}

	cols := splitList(mt[1])
	star := len(cols) == 1 && cols[0] == "*"
	var out []map[string]any
	t := m.tables[strings.ToLower(mt[2])]
	if t == nil {
		return nil, nil
	}
	for _, r := range t.rows {
		if limit >= 0 && len(out) >= limit {
			break
		}
		match := true
		for i, c := range conds {
			if fmt.Sprint(r[c]) != fmt.Sprint(values[i]) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if star {
			out = append(out, copyRow(r))
			continue
		}
		sel := make(map[string]any, len(cols))
		for _, c := range cols {
			sel[c] = r[c]
		}
		out = append(out, sel)
	}
	return out, nil
}

func (m *Memory) Close() {
	m.mu.Lock()
	m.Closed++
	m.mu.Unlock()
}

func (m *Memory) table(name string) *table {
	name = strings.ToLower(name)
	t := m.tables[name]
	if t == nil {
		t = &table{}
		m.tables[name] = t
	}
	return t
}

// upsert replaces the row with the same primary key, or appends.
func (t *table) upsert(row map[string]any) {
	if len(t.key) > 0 {
		for i, r := range t.rows {
			same := true
			for _, k := range t.key {
				if fmt.Sprint(r[k]) != fmt.Sprint(row[k]) {
					same = false
					break
				}
			}
			if same {
				t.rows[i] = row
				return
			}
		}
	}
	t.rows = append(t.rows, row)
}

// primaryKey extracts the key columns of a CREATE TABLE body, handling both the
// inline "col type PRIMARY KEY" and the trailing "PRIMARY KEY ((a, b), c)" forms.
func primaryKey(body string) []string {
	upper := strings.ToUpper(body)
	i := strings.Index(upper, "PRIMARY KEY")
	if i < 0 {
		return nil
	}
	rest := strings.TrimSpace(body[i+len("PRIMARY KEY"):])
	if !strings.HasPrefix(rest, "(") {
		before := body[:i]
		if j := strings.LastIndexAny(before, ",("); j >= 0 {
			before = before[j+1:]
		}
		f := strings.Fields(before)
		if len(f) == 0 {
			return nil
		}
		return []string{strings.ToLower(f[0])}
	}
	depth := 0
	end := -1
	for k, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			end = k
			break
		}
	}
	if end < 0 {
		return nil
	}
	inner := strings.NewReplacer("(", "", ")", "").Replace(rest[:end+1])
	return splitList(inner)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func copyRow(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
