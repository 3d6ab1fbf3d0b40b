package database

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Record is one normalized result row: an ordered mapping from column name,
// case as returned by the engine, to a string, int64, float64, bool or nil.
// It encodes to JSON with its columns in result order.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord returns an empty Record sized for n columns.
func NewRecord(n int) *Record {
	return &Record{columns: make([]string, 0, n), values: make(map[string]any, n)}
}

// Set stores value under column. A column set twice keeps its first
// position and its last value.
func (r *Record) Set(column string, value any) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value stored for column.
func (r *Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in result order.
func (r *Record) Columns() []string { return r.columns }

// Len is the number of distinct columns.
func (r *Record) Len() int { return len(r.columns) }

// MarshalJSON implements json.Marshaler preserving column order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[c])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// coercer is one rung of the value ladder. ok is false when the rung does
// not apply to v.
type coercer func(v any) (out any, ok bool)

// coercions is tried in order for every cell; the first rung that accepts
// the value wins and a value no rung accepts becomes null.
var coercions = []coercer{
	asString,
	asInt64,
	asFloat64,
	asBool,
	asBytes,
	asText,
}

// Normalize converts one driver value into the row value model.
func Normalize(v any) any {
	return normalize(v, 0)
}

func normalize(v any, depth int) any {
	if v == nil || depth > 4 {
		return nil
	}
	for _, c := range coercions {
		if out, ok := c(v); ok {
			return out
		}
	}
	// driver.Valuer unwraps to a more basic value; try the ladder again
	if dv, ok := v.(driver.Valuer); ok {
		inner, err := dv.Value()
		if err != nil {
			return nil
		}
		return normalize(inner, depth+1)
	}
	return nil
}

func asString(v any) (any, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt64(v any) (any, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return nil, false
}

func asFloat64(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint:
		return float64(x), true
	}
	return nil, false
}

func asBool(v any) (any, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asBytes surfaces raw byte columns as text; invalid UTF-8 sequences are
// replaced rather than failing the row.
func asBytes(v any) (any, bool) {
	switch x := v.(type) {
	case []byte:
		if utf8.Valid(x) {
			return string(x), true
		}
		return strings.ToValidUTF8(string(x), "�"), true
	case json.RawMessage:
		return string(x), true
	}
	return nil, false
}

// asText renders native temporal, uuid and composite values as text.
func asText(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case [16]byte:
		return uuid.UUID(x).String(), true
	case uuid.UUID:
		return x.String(), true
	case driver.Valuer:
		return nil, false
	case fmt.Stringer:
		return x.String(), true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(b), true
	}
	return nil, false
}

// ScanRecords drains rows into normalized records and always closes rows.
// The result is never nil.
func ScanRecords(rows Rows) ([]*Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errExecution("failed to read column names", err)
	}

	out := make([]*Record, 0)
	for rows.Next() {
		dest := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errExecution("failed to scan row", err)
		}

		rec := NewRecord(len(columns))
		for i, c := range columns {
			rec.Set(c, Normalize(dest[i]))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errExecution("error during row iteration", err)
	}
	return out, nil
}
