package grammar

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/dlclark/regexp2"
)

// Regex is a literal matched by a regular expression anchored at the
// current offset. Map turns the matched text into a value; without it the
// value is the matched text.
type Regex struct {
	Name string
	Map  func(match string) (any, error)
	Sink Sink

	re *regexp2.Regexp
}

// NewRegex compiles pattern (.NET syntax, see regexp2).
func NewRegex(name, pattern string, m func(match string) (any, error)) (*Regex, error) {
	re, err := regexp2.Compile(`\G(?:`+pattern+`)`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("grammar: compile %s: %w", name, err)
	}
	return &Regex{Name: name, Map: m, re: re}, nil
}

// MustRegex is NewRegex that panics on a bad pattern.
func MustRegex(name, pattern string, m func(match string) (any, error)) *Regex {
	r, err := NewRegex(name, pattern, m)
	if err != nil {
		panic(err)
	}
	return r
}

// Match returns the length of the match at offset, or -1.
func (r *Regex) Match(text string, offset int) int {
	if r.re == nil {
		panic("grammar: Regex " + r.Name + " used without NewRegex")
	}
	if offset < 0 || offset > len(text) {
		return -1
	}
	rt := decodeRunes(text)
	start, ok := slices.BinarySearch(rt.starts, offset)
	if !ok {
		return -1
	}
	m, err := r.re.FindRunesMatchStartingAt(rt.runes, start)
	if err != nil || m == nil || m.Length == 0 || m.Index != start {
		return -1
	}
	return rt.starts[m.Index+m.Length] - offset
}

// runeText is a text decoded for regexp2, which matches over runes.
// starts holds the byte offset of every rune followed by len(text).
type runeText struct {
	text   string
	runes  []rune
	starts []int
}

// lastText holds the most recently decoded text. Every Regex matching
// inside the same parse shares it.
var lastText atomic.Pointer[runeText]

func decodeRunes(text string) *runeText {
	if rt := lastText.Load(); rt != nil && rt.text == text {
		return rt
	}
	rt := &runeText{
		text:   text,
		runes:  make([]rune, 0, len(text)),
		starts: make([]int, 0, len(text)+1),
	}
	for i, c := range text {
		rt.runes = append(rt.runes, c)
		rt.starts = append(rt.starts, i)
	}
	rt.starts = append(rt.starts, len(text))
	lastText.Store(rt)
	return rt
}

func (r *Regex) CanStart(text string, offset int) bool {
	return r.Match(text, offset) > 0
}

func (r *Regex) Parse(text string, offset int) Result {
	n := r.Match(text, offset)
	if n <= 0 {
		return Fail(nil, 0)
	}
	s := text[offset : offset+n]
	if r.Map == nil {
		return Ok(s, n)
	}
	v, err := r.Map(s)
	if err != nil {
		Report(r.Sink, text, offset, "%s: %v", r.Name, err)
		return Fail(nil, n)
	}
	return Ok(v, n)
}
