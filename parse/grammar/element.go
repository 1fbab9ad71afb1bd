// Package grammar provides composable recursive-descent grammar elements.
//
// Every element implements Element: a cheap CanStart lookahead used by
// alternations to choose a branch, and Parse which consumes input and
// returns a Result. Elements are assembled once into a graph (cycles are
// allowed, a value may contain a map which contains values) and are not
// modified by parsing, so an assembled graph can be shared by concurrent
// parses as long as its diagnostic sink tolerates it.
//
// Offsets and Result.Read are byte positions in the input string.
package grammar

import (
	"github.com/dzjyyds666/polyprops/parse/scan"
)

// =========================
// Contracts
// =========================

// Element is a grammar element.
type Element interface {
	// CanStart reports whether the element could begin parsing at offset.
	CanStart(text string, offset int) bool
	// Parse consumes input starting at offset.
	Parse(text string, offset int) Result
}

// SkipFunc returns the offset of the first significant character at or
// after offset.
type SkipFunc func(text string, offset int) int

// Matcher returns the length of the token matched at offset, or -1.
type Matcher func(text string, offset int) int

// Result is returned by every Element.
type Result struct {
	// Value is a scalar, []any, map[string]any, Pair, or nil.
	Value any
	// Read is the number of bytes consumed. On failure it marks how far
	// the element got, so callers can resynchronise after it.
	Read    int
	Success bool
}

// Ok builds a successful result.
func Ok(value any, read int) Result {
	return Result{Value: value, Read: read, Success: true}
}

// Fail builds a failed result carrying a partial value.
func Fail(value any, read int) Result {
	if read < 0 {
		read = 0
	}
	return Result{Value: value, Read: read}
}

// Pair is the value produced by KeyValue.
type Pair struct {
	Key   string
	Value any
}

// =========================
// Skipping
// =========================

// NoSkip is a SkipFunc that skips nothing.
func NoSkip(_ string, offset int) int { return offset }

// Skipper builds the shared whitespace and comment skipper. Each comment
// token starts a comment running to the end of the line.
func Skipper(whitespace string, commentTokens ...string) SkipFunc {
	return func(text string, offset int) int {
		for {
			offset = scan.SkipWhile(text, whitespace, offset)
			comment := false
			for _, tok := range commentTokens {
				if tok != "" && scan.HasPrefixAt(text, offset, tok) {
					comment = true
					break
				}
			}
			if !comment {
				return offset
			}
			eol := scan.SkipUntilAny(text, "\r\n", offset)
			if eol < 0 {
				return len(text)
			}
			offset = eol
		}
	}
}

// =========================
// Matchers
// =========================

// Token matches a literal string. An empty token never matches.
func Token(tok string) Matcher {
	return func(text string, offset int) int {
		if tok != "" && scan.HasPrefixAt(text, offset, tok) {
			return len(tok)
		}
		return -1
	}
}

// AnyOf matches a single character from charset.
func AnyOf(charset string) Matcher {
	return func(text string, offset int) int {
		if offset < len(text) && scan.In(text[offset], charset) {
			return 1
		}
		return -1
	}
}

// Either returns the first match among ms.
func Either(ms ...Matcher) Matcher {
	return func(text string, offset int) int {
		for _, m := range ms {
			if m == nil {
				continue
			}
			if n := m(text, offset); n >= 0 {
				return n
			}
		}
		return -1
	}
}

// =========================
// End of input
// =========================

// End matches only at the end of input and yields nil.
type End struct{}

func (End) CanStart(text string, offset int) bool { return offset >= len(text) }

func (End) Parse(text string, offset int) Result {
	if offset >= len(text) {
		return Ok(nil, 0)
	}
	return Fail(nil, 0)
}
