package schema

import (
	"strconv"
	"strings"
)

// Catalog cells arrive through database.Normalize, so they are one of
// string, int64, float64, bool or nil. These helpers read them leniently.

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func textPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := text(v)
	return &s
}

// flag reads booleans encoded as bool, rank integers (>0 is true),
// "YES"/"NO" strings or numeric strings.
func flag(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x > 0
	case float64:
		return x > 0
	case string:
		s := strings.TrimSpace(x)
		switch strings.ToUpper(s) {
		case "YES", "TRUE", "T", "Y":
			return true
		case "NO", "FALSE", "F", "N", "":
			return false
		}
		n, err := strconv.ParseFloat(s, 64)
		return err == nil && n > 0
	default:
		return false
	}
}

func count(v any) *int64 {
	switch x := v.(type) {
	case int64:
		return &x
	case float64:
		n := int64(x)
		return &n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// tableType maps "BASE TABLE"/"table" to TABLE and "view" to VIEW in any
// case; other engine types are upper-cased.
func tableType(v any) string {
	s := strings.ToUpper(strings.TrimSpace(text(v)))
	switch s {
	case "BASE TABLE", "TABLE":
		return TableTypeTable
	case "VIEW", "SYSTEM VIEW":
		return TableTypeView
	default:
		return s
	}
}

// splitColumns turns an aggregated "a,b" column list into names.
func splitColumns(v any) []string {
	s := text(v)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
