package store

import (
	_ "embed"
	"regexp"
	"strings"
)

//go:embed schema.cql
var defaultSchema string

// DefaultSchema returns the schema script compiled into the binary.
func DefaultSchema() string { return defaultSchema }

// SplitStatements splits a CQL script on ';'. Whole-line comments starting with
// "--" or "//" are removed first and blank segments are skipped.
func SplitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "--") || strings.HasPrefix(t, "//") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, seg := range strings.Split(b.String(), ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

var (
	useRe   = regexp.MustCompile(`(?is)^USE\s+"?([A-Za-z][A-Za-z0-9_]*)"?$`)
	identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)
)

// useKeyspace reports the keyspace named by a USE statement.
func useKeyspace(stmt string) (string, bool) {
	m := useRe.FindStringSubmatch(strings.TrimSpace(stmt))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ValidIdentifier reports whether s is a valid unquoted CQL identifier.
func ValidIdentifier(s string) bool { return identRe.MatchString(s) }
