package database

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Binding chooses how row values reach the engine.
type Binding int

const (
	// BindPlaceholders passes values as positional parameters.
	BindPlaceholders Binding = iota

	// InlineLiterals renders every value into the SQL text.
	InlineLiterals
)

// Values is a decoded JSON object body: column name → JSON value.
// Numbers should be decoded with json.Decoder.UseNumber.
type Values map[string]any

// columns returns the body's keys sorted, rejecting the first invalid one.
func (v Values) columns() ([]string, error) {
	if len(v) == 0 {
		return nil, errValidation("Request body must be a non-empty JSON object")
	}
	cols := slices.Sorted(maps.Keys(v))
	for _, c := range cols {
		if !ValidIdentifier(c) {
			return nil, errValidationf("Invalid column name: %s", c)
		}
	}
	return cols, nil
}

// valueWriter accumulates either placeholders+args or inlined literals.
type valueWriter struct {
	dialect Dialect
	binding Binding
	args    []any
}

func (w *valueWriter) write(v any) (string, error) {
	if w.binding == InlineLiterals {
		return InlineValue(w.dialect, v)
	}
	bound, err := BindValue(v)
	if err != nil {
		return "", err
	}
	w.args = append(w.args, bound)
	return w.dialect.Placeholder(len(w.args)), nil
}

// BindValue converts a JSON value into a driver argument.
// Objects and arrays are bound as their JSON text.
func BindValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		if f, err := x.Float64(); err == nil {
			return f, nil
		}
		return x.String(), nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, errValidationf("unsupported value: %v", err)
		}
		return string(b), nil
	default:
		return nil, errValidationf("unsupported value type %T", v)
	}
}

// InlineValue renders a JSON value as a SQL literal for dialect d.
func InlineValue(d Dialect, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return d.Literal(x), nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case json.Number:
		if _, err := x.Float64(); err != nil {
			return "", errValidationf("invalid number: %s", x)
		}
		return x.String(), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return "", errValidationf("unsupported value: %v", err)
		}
		return d.Literal(string(b)), nil
	default:
		return "", errValidationf("unsupported value type %T", v)
	}
}

// Insert builds INSERT INTO table (cols…) VALUES (…).
func Insert(d Dialect, table string, values Values, binding Binding) (Statement, error) {
	if !ValidIdentifier(table) {
		return Statement{}, errValidationf("Invalid table name: %s", table)
	}
	cols, err := values.columns()
	if err != nil {
		return Statement{}, err
	}

	w := &valueWriter{dialect: d, binding: binding}
	quoted := make([]string, len(cols))
	exprs := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
		if exprs[i], err = w.write(values[c]); err != nil {
			return Statement{}, err
		}
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table), strings.Join(quoted, ", "), strings.Join(exprs, ", "))
	return Statement{SQL: sql, Args: w.args}, nil
}

// Update builds UPDATE table SET … WHERE pk = 'id'.
// The row id is always an escaped string literal; the engine casts it to
// the key column's native type.
func Update(d Dialect, table, pk, id string, values Values, binding Binding) (Statement, error) {
	if !ValidIdentifier(table) {
		return Statement{}, errValidationf("Invalid table name: %s", table)
	}
	cols, err := values.columns()
	if err != nil {
		return Statement{}, err
	}

	w := &valueWriter{dialect: d, binding: binding}
	sets := make([]string, len(cols))
	for i, c := range cols {
		expr, err := w.write(values[c])
		if err != nil {
			return Statement{}, err
		}
		sets[i] = d.Quote(c) + " = " + expr
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.Quote(table), strings.Join(sets, ", "), d.Quote(pk), d.Literal(id))
	return Statement{SQL: sql, Args: w.args}, nil
}

// Delete builds DELETE FROM table WHERE pk = 'id'.
func Delete(d Dialect, table, pk, id string) (Statement, error) {
	if !ValidIdentifier(table) {
		return Statement{}, errValidationf("Invalid table name: %s", table)
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", d.Quote(table), d.Quote(pk), d.Literal(id))
	return Statement{SQL: sql}, nil
}
