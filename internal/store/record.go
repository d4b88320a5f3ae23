package store

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one result row keyed by column name. The driver decodes bigint as
// int64, int as int and double as float64; the accessors accept any numeric
// kind so callers do not depend on that mapping.
type Record map[string]any

// Int64 returns col as an int64; missing or non-numeric values are 0.
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Int returns col as an int.
func (r Record) Int(col string) int { return int(r.Int64(col)) }

// Float returns col as a float64; missing or non-numeric values are 0.
func (r Record) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// String returns col as text, formatting non-string values; nil is "".
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Time returns col as a timestamp, or the zero time.
func (r Record) Time(col string) time.Time {
	if t, ok := r[col].(time.Time); ok {
		return t
	}
	return time.Time{}
}
