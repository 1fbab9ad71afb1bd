package grammar

import (
	"fmt"

	"github.com/dzjyyds666/polyprops/parse/scan"
)

func skipWith(skip SkipFunc, text string, offset int) int {
	if skip == nil {
		return offset
	}
	return skip(text, offset)
}

func describe(text string, offset int) string {
	if offset >= len(text) {
		return "end of input"
	}
	return fmt.Sprintf("character %q", text[offset])
}

// =========================
// Group
// =========================

// Group is an ordered alternation: the first member whose CanStart holds
// parses, otherwise Default does. Members registered earlier win ties.
type Group struct {
	Name    string
	Members []Element
	Default Element
	Skip    SkipFunc
	Sink    Sink
}

func (g *Group) pick(text string, offset int) Element {
	for _, m := range g.Members {
		if m.CanStart(text, offset) {
			return m
		}
	}
	return g.Default
}

func (g *Group) CanStart(text string, offset int) bool {
	if g.Default != nil {
		return true
	}
	off := skipWith(g.Skip, text, offset)
	for _, m := range g.Members {
		if m.CanStart(text, off) {
			return true
		}
	}
	return false
}

func (g *Group) Parse(text string, offset int) Result {
	off := skipWith(g.Skip, text, offset)
	e := g.pick(text, off)
	if e == nil {
		if g.Name != "" {
			Report(g.Sink, text, off, "%s: unexpected %s", g.Name, describe(text, off))
		} else {
			Report(g.Sink, text, off, "unexpected %s", describe(text, off))
		}
		return Fail(nil, off-offset)
	}
	r := e.Parse(text, off)
	r.Read += off - offset
	return r
}

// =========================
// Concatenation
// =========================

// Concatenation parses its elements in order and yields their values as a
// []any. It stops at the first failure.
type Concatenation struct {
	Elements []Element
	Skip     SkipFunc
}

func (c *Concatenation) CanStart(text string, offset int) bool {
	return len(c.Elements) > 0 && c.Elements[0].CanStart(text, skipWith(c.Skip, text, offset))
}

func (c *Concatenation) Parse(text string, offset int) Result {
	pos := offset
	values := make([]any, 0, len(c.Elements))
	for _, e := range c.Elements {
		pos = skipWith(c.Skip, text, pos)
		r := e.Parse(text, pos)
		if !r.Success {
			return Fail(r.Value, pos-offset+r.Read)
		}
		values = append(values, r.Value)
		pos += r.Read
	}
	return Ok(values, pos-offset)
}

// =========================
// Convert
// =========================

// Convert maps the value of a successful parse.
type Convert struct {
	Name    string
	Element Element
	Fn      func(v any) (any, error)
	Sink    Sink
}

func (c *Convert) CanStart(text string, offset int) bool {
	return c.Element.CanStart(text, offset)
}

func (c *Convert) Parse(text string, offset int) Result {
	r := c.Element.Parse(text, offset)
	if !r.Success || c.Fn == nil {
		return r
	}
	v, err := c.Fn(r.Value)
	if err != nil {
		Report(c.Sink, text, offset, "%s: %v", c.Name, err)
		return Fail(nil, r.Read)
	}
	return Ok(v, r.Read)
}

// =========================
// KeyValue
// =========================

// DefaultKeyValueSeparator separates a key from its value.
const DefaultKeyValueSeparator = ":"

// KeyValue parses key, separator and value into a Pair.
type KeyValue struct {
	Key   Element
	Value Element
	// Separator defaults to ":".
	Separator string
	// AllowMissingValue accepts a key whose value is cut off by the end of
	// input, yielding a nil value and a warning.
	AllowMissingValue bool
	Skip              SkipFunc
	Sink              Sink
}

func (kv *KeyValue) separator() string {
	if kv.Separator == "" {
		return DefaultKeyValueSeparator
	}
	return kv.Separator
}

func (kv *KeyValue) CanStart(text string, offset int) bool {
	return kv.Key.CanStart(text, skipWith(kv.Skip, text, offset))
}

func (kv *KeyValue) Parse(text string, offset int) Result {
	if kv.Key == nil || kv.Value == nil {
		panic("grammar: KeyValue needs both a key and a value element")
	}
	pos := skipWith(kv.Skip, text, offset)
	k := kv.Key.Parse(text, pos)
	if !k.Success {
		return Fail(nil, pos-offset+k.Read)
	}
	key := keyString(k.Value)
	pos = skipWith(kv.Skip, text, pos+k.Read)

	sep := kv.separator()
	if !scan.HasPrefixAt(text, pos, sep) {
		Report(kv.Sink, text, pos, "expected %q after key %q, found %s", sep, key, describe(text, pos))
		return Fail(Pair{Key: key}, pos-offset)
	}
	pos = skipWith(kv.Skip, text, pos+len(sep))

	if pos >= len(text) {
		if kv.AllowMissingValue {
			Report(kv.Sink, text, pos, "key %q has no value", key)
			return Ok(Pair{Key: key}, pos-offset)
		}
		Report(kv.Sink, text, pos, "missing value for key %q", key)
		return Fail(Pair{Key: key}, pos-offset)
	}

	v := kv.Value.Parse(text, pos)
	pair := Pair{Key: key, Value: v.Value}
	if !v.Success {
		if v.Read == 0 {
			Report(kv.Sink, text, pos, "expected value for key %q, found %s", key, describe(text, pos))
		}
		return Fail(pair, pos-offset+v.Read)
	}
	return Ok(pair, pos+v.Read-offset)
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
