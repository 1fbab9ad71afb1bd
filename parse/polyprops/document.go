package polyprops

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dzjyyds666/polyprops/parse/grammar"
)

// =========================
// Public API
// =========================

// Document is the outcome of parsing one text.
type Document struct {
	// Value holds the parsed tree, possibly partial when Success is false.
	Value       any
	Read        int
	Success     bool
	Diagnostics []grammar.Diagnostic
}

// Err returns a *grammar.DiagnosticsError when the parse failed.
func (d *Document) Err() error {
	if d.Success {
		return nil
	}
	return &grammar.DiagnosticsError{Diagnostics: d.Diagnostics}
}

// ParseDocument assembles a grammar from opts, parses text and collects the
// diagnostics. A sink passed through WithSink still receives every
// diagnostic. The error is set for an invalid configuration or an
// abandoned parse.
func ParseDocument(text string, opts ...Option) (*Document, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	col := &grammar.Collector{}
	g, err := New(append(opts[:len(opts):len(opts)], WithSink(grammar.Tee(o.sink, col.Sink())))...)
	if err != nil {
		return nil, err
	}
	r, err := g.Parse(text)
	if err != nil {
		return nil, err
	}
	return &Document{
		Value:       r.Value,
		Read:        r.Read,
		Success:     r.Success,
		Diagnostics: col.Diagnostics(),
	}, nil
}

// Parse parses text and returns its value tree.
func Parse(text string, opts ...Option) (any, error) {
	doc, err := ParseDocument(text, opts...)
	if err != nil {
		return nil, err
	}
	return doc.Value, doc.Err()
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader, opts ...Option) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), opts...)
}

// =========================
// Safe Access Helpers
// =========================

// Get walks root along path. Map levels are indexed by key, list levels by
// decimal index. Empty path elements are ignored.
func Get(root any, path ...string) (any, bool) {
	cur := root
	for _, p := range path {
		if len(p) == 0 {
			continue
		}
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[p]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// GetPath is Get with a dot separated path.
func GetPath(root any, path string) (any, bool) {
	return Get(root, strings.Split(path, ".")...)
}

func MustString(v any) string {
	return v.(string)
}

func MustInt(v any) int {
	return v.(int)
}

func MustBool(v any) bool {
	return v.(bool)
}

// MustFloat accepts any numeric value.
func MustFloat(v any) float64 {
	f, err := ToFloat(v)
	if err != nil {
		panic(fmt.Sprintf("polyprops: %v", err))
	}
	return f
}
