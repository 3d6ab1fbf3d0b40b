package database

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIdentifierLength is the longest table or column name accepted.
const MaxIdentifierLength = 64

// ValidIdentifier reports whether name may be interpolated into SQL text.
// Accepted names are 1–64 characters of letters, digits, '_' and '-',
// not starting with a digit.
//
// This is the only gate for identifiers: they cannot be bound as
// placeholders, so callers must reject the request when it returns false
// and never try to repair the name.
func ValidIdentifier(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxIdentifierLength {
		return false
	}
	for i, r := range name {
		if i == 0 && unicode.IsNumber(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// quoteWith wraps name in q, doubling any q inside it.
func quoteWith(name string, q byte) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2)
	sb.WriteByte(q)
	for i := 0; i < len(name); i++ {
		if name[i] == q {
			sb.WriteByte(q)
		}
		sb.WriteByte(name[i])
	}
	sb.WriteByte(q)
	return sb.String()
}

// ansiQuote is the double-quote style used by Postgres and SQLite.
func ansiQuote(name string) string { return quoteWith(name, '"') }

// backtickQuote is MySQL's identifier style.
func backtickQuote(name string) string { return quoteWith(name, '`') }

// singleQuote doubles single quotes and wraps the value in them.
func singleQuote(value string) string { return quoteWith(value, '\'') }

// QuoteIdentifier quotes name for driver d. It never validates.
func QuoteIdentifier(name string, d Driver) string {
	if d == DriverMySQL {
		return backtickQuote(name)
	}
	return ansiQuote(name)
}

// EscapeStringLiteral renders value as a string literal for driver d.
// Only for values that cannot be bound as placeholders.
func EscapeStringLiteral(value string, d Driver) string {
	if d == DriverMySQL {
		// backslash is an escape character in MySQL's default sql_mode
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return singleQuote(value)
}
