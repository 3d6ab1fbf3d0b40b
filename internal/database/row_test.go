package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "hello", "hello"},
		{"int64", int64(7), int64(7)},
		{"int32", int32(-3), int64(-3)},
		{"uint8", uint8(200), int64(200)},
		{"uint64 in range", uint64(42), int64(42)},
		{"uint64 overflow becomes float", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(1.5), 1.5},
		{"float64", 2.75, 2.75},
		{"bool", true, true},
		{"bytes", []byte("2024-01-01 10:00:00"), "2024-01-01 10:00:00"},
		{"invalid utf8 bytes", []byte{'a', 0xff, 'b'}, "a�b"},
		{"time", ts, "2024-03-01T12:30:00Z"},
		{"uuid array", [16]byte(id), id.String()},
		{"uuid", id, id.String()},
		{"map", map[string]any{"a": 1}, `{"a":1}`},
		{"slice", []string{"x", "y"}, `["x","y"]`},
		{"unsupported", struct{}{}, nil},
		{"channel", make(chan int), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

type valuer struct {
	v   any
	err error
}

func (v valuer) Value() (driver.Value, error) { return v.v, v.err }

func TestNormalize_Valuer(t *testing.T) {
	assert.Equal(t, int64(5), Normalize(valuer{v: int64(5)}))
	assert.Equal(t, "12.50", Normalize(valuer{v: "12.50"}))
	assert.Nil(t, Normalize(valuer{err: errors.New("bad")}))
}

func TestRecord_OrderedJSON(t *testing.T) {
	rec := NewRecord(3)
	rec.Set("zeta", int64(1))
	rec.Set("alpha", "a")
	rec.Set("mid", nil)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":null}`, string(b))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rec.Columns())
}

func TestRecord_DuplicateColumn(t *testing.T) {
	rec := NewRecord(2)
	rec.Set("id", int64(1))
	rec.Set("name", "x")
	rec.Set("id", int64(2))

	assert.Equal(t, 2, rec.Len())
	v, ok := rec.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, []string{"id", "name"}, rec.Columns())
}

// fakeRows is an in-memory Rows for scanner tests.
type fakeRows struct {
	cols   []string
	data   [][]any
	pos    int
	closed bool
	err    error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i := range dest {
		*(dest[i].(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }
func (r *fakeRows) Close()                     { r.closed = true }
func (r *fakeRows) Err() error                 { return r.err }

func TestScanRecords(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"id", "name", "raw"},
		data: [][]any{
			{int64(1), "a", []byte("x")},
			{int64(2), nil, struct{}{}},
		},
	}

	recs, err := ScanRecords(rows)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, rows.closed)

	b, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"a","raw":"x"},{"id":2,"name":null,"raw":null}]`, string(b))
}

func TestScanRecords_EmptyIsNonNil(t *testing.T) {
	recs, err := ScanRecords(&fakeRows{cols: []string{"id"}})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestScanRecords_IterationError(t *testing.T) {
	_, err := ScanRecords(&fakeRows{cols: []string{"id"}, err: errors.New("conn reset")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn reset")
}
