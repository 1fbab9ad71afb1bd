package grammar

import (
	"strings"

	"github.com/dzjyyds666/polyprops/parse/scan"
)

// =========================
// AnyChar
// =========================

// AnyChar reads a bare word: everything up to the next delimiter or stop
// token. A character following Escape is taken literally.
type AnyChar struct {
	Delimiters string
	StopTokens []string
	Escape     byte
	// TrimSpace drops trailing whitespace from the value.
	TrimSpace bool
}

func (a *AnyChar) stopsAt(text string, i int) bool {
	if scan.In(text[i], a.Delimiters) {
		return true
	}
	for _, tok := range a.StopTokens {
		if tok != "" && strings.HasPrefix(text[i:], tok) {
			return true
		}
	}
	return false
}

func (a *AnyChar) CanStart(text string, offset int) bool {
	return offset < len(text) && !a.stopsAt(text, offset)
}

func (a *AnyChar) Parse(text string, offset int) Result {
	var b strings.Builder
	i := offset
	for i < len(text) {
		c := text[i]
		if a.Escape != 0 && c == a.Escape && i+1 < len(text) {
			b.WriteByte(text[i+1])
			i += 2
			continue
		}
		if a.stopsAt(text, i) {
			break
		}
		b.WriteByte(c)
		i++
	}
	if i == offset {
		return Fail(nil, 0)
	}
	v := b.String()
	if a.TrimSpace {
		v = strings.TrimRight(v, scan.Whitespace)
	}
	return Ok(v, i-offset)
}

// =========================
// String
// =========================

// String reads a quoted string and yields its unescaped contents.
type String struct {
	// Delimiters lists the accepted quote characters.
	Delimiters string
	// Escape defaults to backslash.
	Escape byte
	// Raw disables escaping altogether.
	Raw  bool
	Sink Sink
}

func (s *String) escape() byte {
	if s.Raw {
		return 0
	}
	if s.Escape == 0 {
		return '\\'
	}
	return s.Escape
}

func (s *String) CanStart(text string, offset int) bool {
	return offset < len(text) && scan.In(text[offset], s.Delimiters)
}

func (s *String) Parse(text string, offset int) Result {
	if !s.CanStart(text, offset) {
		return Fail(nil, 0)
	}
	n := scan.ScopedStringLength(text, offset, text[offset], s.escape())
	if n < 0 {
		Report(s.Sink, text, offset, "unterminated string")
		return Fail(nil, len(text)-offset)
	}
	inner := text[offset+1 : offset+n-1]
	if s.Raw {
		return Ok(inner, n)
	}
	return Ok(Unescape(inner, s.escape()), n)
}

// Unescape removes escape characters. \n, \t and \r become control
// characters, any other escaped character stands for itself.
func Unescape(s string, escape byte) string {
	if strings.IndexByte(s, escape) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != escape || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// =========================
// Number
// =========================

// Number reads a typed numeric literal, see scan.ParseTypedNumber.
type Number struct {
	// Delimiters end the literal.
	Delimiters string
	// Allowed restricts the accepted number types when non-empty.
	Allowed []scan.NumberType
	Sink    Sink
}

func (n *Number) CanStart(text string, offset int) bool {
	if offset >= len(text) {
		return false
	}
	c := text[offset]
	return c == '-' || ('0' <= c && c <= '9')
}

func (n *Number) Parse(text string, offset int) Result {
	end := scan.SkipUntilAny(text, n.Delimiters, offset)
	if end < 0 {
		end = len(text)
	}
	v, err := scan.ParseTypedNumber(text[offset:end], n.Allowed...)
	if err != nil {
		Report(n.Sink, text, offset, "%v", err)
		return Fail(nil, end-offset)
	}
	return Ok(v, end-offset)
}

// =========================
// Keyword
// =========================

// Keyword matches a literal and yields the result of Value rather than the
// matched text, so "true" can produce a bool and "null" a nil.
type Keyword struct {
	Literal       string
	Value         func() any
	CaseSensitive bool
}

// NewKeyword returns a case-insensitive keyword producing value.
func NewKeyword(literal string, value any) *Keyword {
	return &Keyword{Literal: literal, Value: func() any { return value }}
}

func (k *Keyword) match(text string, offset int) bool {
	if k.Literal == "" || offset >= len(text) {
		return false
	}
	var n int
	if k.CaseSensitive {
		n = scan.MatchLength(k.Literal, text, 0, offset)
	} else {
		n = scan.MatchLengthFold(k.Literal, text, 0, offset)
	}
	if n != len(k.Literal) {
		return false
	}
	// "trueish" is a bare word, not the keyword true.
	end := offset + n
	return !isWordByte(k.Literal[n-1]) || end >= len(text) || !isWordByte(text[end])
}

func (k *Keyword) CanStart(text string, offset int) bool {
	return k.match(text, offset)
}

func (k *Keyword) Parse(text string, offset int) Result {
	if !k.match(text, offset) {
		return Fail(nil, 0)
	}
	var v any = text[offset : offset+len(k.Literal)]
	if k.Value != nil {
		v = k.Value()
	}
	return Ok(v, len(k.Literal))
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
