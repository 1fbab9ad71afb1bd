// Package scan holds the position-level string operations the grammar
// elements are built from. Every function works on an immutable string and
// a byte offset and never allocates beyond its return value.
package scan

import (
	"strings"
	"unicode/utf8"
)

// Whitespace is the default whitespace character set.
const Whitespace = " \t\r\n"

// =========================
// Character set scanning
// =========================

// In reports whether c is one of the bytes of charset.
func In(c byte, charset string) bool {
	return strings.IndexByte(charset, c) >= 0
}

// SkipWhile returns the first index >= start whose character is not in
// charset, or len(text) if there is none.
func SkipWhile(text, charset string, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(text); i++ {
		if !In(text[i], charset) {
			return i
		}
	}
	return len(text)
}

// SkipUntilAny returns the first index >= start whose character is in
// charset, or -1.
func SkipUntilAny(text, charset string, start int) int {
	if start < 0 {
		start = 0
	}
	if start >= len(text) {
		return -1
	}
	idx := strings.IndexAny(text[start:], charset)
	if idx < 0 {
		return -1
	}
	return start + idx
}

// MatchLength returns the length of the common prefix of a[startA:] and
// b[startB:].
func MatchLength(a, b string, startA, startB int) int {
	n := 0
	for startA+n < len(a) && startB+n < len(b) && a[startA+n] == b[startB+n] {
		n++
	}
	return n
}

// MatchLengthFold is MatchLength with ASCII case folding.
func MatchLengthFold(a, b string, startA, startB int) int {
	n := 0
	for startA+n < len(a) && startB+n < len(b) && lower(a[startA+n]) == lower(b[startB+n]) {
		n++
	}
	return n
}

// HasPrefixAt reports whether text[offset:] starts with token.
func HasPrefixAt(text string, offset int, token string) bool {
	return offset >= 0 && offset <= len(text) && strings.HasPrefix(text[offset:], token)
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// =========================
// Delimited strings
// =========================

// ScopedStringLength returns the length of the delimited string starting at
// start, including both delimiters. Any character following escape is taken
// literally. It returns -1 when text[start] is not the delimiter or the
// string is unterminated.
func ScopedStringLength(text string, start int, delimiter, escape byte) int {
	if start < 0 || start >= len(text) || text[start] != delimiter {
		return -1
	}
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case escape:
			i++
		case delimiter:
			return i - start + 1
		}
	}
	return -1
}

// =========================
// Positions
// =========================

// LineAndColumn converts a byte offset into a zero based line and column.
// "\r\n" counts as a single line break, as do a lone '\r' or '\n'. Columns
// are counted in runes.
func LineAndColumn(text string, idx int) (line, column int) {
	if idx > len(text) {
		idx = len(text)
	}
	lineStart := 0
	for i := 0; i < idx; i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				if i+1 >= idx {
					// idx sits between '\r' and '\n'
					return line, utf8.RuneCountInString(text[lineStart:idx])
				}
				i++
			}
			line++
			lineStart = i + 1
		case '\n':
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(text[lineStart:idx])
}
