package grammar

import (
	"github.com/dzjyyds666/polyprops/parse/scan"
)

// =========================
// Recovery
// =========================

// recovery tracks error recovery for one Repeat or Composite invocation.
//
// The loop moves between scanning for an element, having parsed one,
// awaiting a separator, and finally terminating. A failure either aborts
// the loop or, when recovery is enabled, resynchronises at the next
// separator or terminator. Too many resynchronisations abort the whole
// parse with ErrRecoveryLimit.
type recovery struct {
	name    string
	enabled bool
	limit   int
	count   int
	sep     Matcher
	term    Matcher
	sink    Sink
	failed  bool
}

func (rc *recovery) possible() bool {
	return rc.enabled && rc.sep != nil
}

// resync skips forward from offset to the next separator, which it consumes,
// or the next terminator, which it leaves in place.
func (rc *recovery) resync(text string, offset int) int {
	rc.count++
	limit := rc.limit
	if limit <= 0 {
		limit = DefaultMaxRecoveries
	}
	if rc.count > limit {
		abortRecovery(text, offset, rc.name)
	}
	for i := offset; i < len(text); i++ {
		if rc.term != nil && rc.term(text, i) >= 0 {
			return i
		}
		if n := rc.sep(text, i); n >= 0 {
			return i + n
		}
	}
	return len(text)
}

func (rc *recovery) label() string {
	if rc.name == "" {
		return "collection"
	}
	return rc.name
}

// =========================
// Repeat
// =========================

// Repeat applies Element repeatedly. Terminate, when set, is checked before
// each element and ends the loop without being consumed, which lets a Repeat
// live between delimiters it does not own. Separator, when set, must follow
// every element unless the terminator does.
type Repeat struct {
	Name    string
	Element Element
	// Min and Max bound the number of elements; values <= 0 disable the
	// bound.
	Min, Max           int
	Terminate          Matcher
	Separator          Matcher
	ContinueAfterError bool
	MaxRecoveries      int
	Skip               SkipFunc
	Sink               Sink
}

func (r *Repeat) terminated(text string, pos int) bool {
	return r.Terminate != nil && r.Terminate(text, pos) >= 0
}

func (r *Repeat) CanStart(text string, offset int) bool {
	if r.Min <= 0 {
		return true
	}
	off := skipWith(r.Skip, text, offset)
	return !r.terminated(text, off) && r.Element.CanStart(text, off)
}

func (r *Repeat) Parse(text string, offset int) Result {
	if r.Element == nil {
		panic("grammar: Repeat " + r.Name + " has no element")
	}
	rc := &recovery{
		name:    r.Name,
		enabled: r.ContinueAfterError,
		limit:   r.MaxRecoveries,
		sep:     r.Separator,
		term:    r.Terminate,
		sink:    r.Sink,
	}
	values := make([]any, 0)
	pos := offset
	done := false
	for {
		pos = skipWith(r.Skip, text, pos)
		if r.terminated(text, pos) {
			done = true
			break
		}
		if pos >= len(text) || (r.Max > 0 && len(values) >= r.Max) || !r.Element.CanStart(text, pos) {
			break
		}

		res := r.Element.Parse(text, pos)
		if !res.Success {
			rc.failed = true
			if !rc.possible() {
				return Fail(values, pos-offset+res.Read)
			}
			at := pos + res.Read
			Report(r.Sink, text, at, "%s: skipping malformed element", rc.label())
			pos = rc.resync(text, at)
			continue
		}
		values = append(values, res.Value)
		if res.Read == 0 {
			break
		}
		pos += res.Read

		if r.Separator == nil || (r.Max > 0 && len(values) >= r.Max) {
			continue
		}
		pos = skipWith(r.Skip, text, pos)
		if pos >= len(text) || r.terminated(text, pos) {
			continue
		}
		if n := r.Separator(text, pos); n >= 0 {
			pos += n
			continue
		}
		rc.failed = true
		Report(r.Sink, text, pos, "%s: missing separator before %s", rc.label(), describe(text, pos))
		if !rc.possible() {
			return Fail(values, pos-offset)
		}
		pos = rc.resync(text, pos)
	}

	if r.Min > 0 && len(values) < r.Min {
		Report(r.Sink, text, pos, "%s: expected at least %d elements, found %d", rc.label(), r.Min, len(values))
		rc.failed = true
	}
	if r.Terminate != nil && !done {
		Report(r.Sink, text, pos, "%s: unexpected %s before terminator", rc.label(), describe(text, pos))
		rc.failed = true
	}
	return Result{Value: values, Read: pos - offset, Success: !rc.failed}
}

// =========================
// Composite
// =========================

// Composite is a delimited, separated collection. It backs both maps, whose
// elements are KeyValue pairs, and lists. An empty Start means the
// collection can always start; an empty End means it runs to the end of
// input.
type Composite struct {
	Name       string
	Start, End string
	Element    Element
	// Separators is the set of characters accepted between elements.
	Separators string
	// Collect builds the container from the element values. It defaults to
	// CollectList.
	Collect            func(values []any) any
	ContinueAfterError bool
	MaxRecoveries      int
	Skip               SkipFunc
	Sink               Sink
}

func (c *Composite) CanStart(text string, offset int) bool {
	return c.Start == "" || scan.HasPrefixAt(text, offset, c.Start)
}

func (c *Composite) atEnd(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	return c.End != "" && scan.HasPrefixAt(text, pos, c.End)
}

func (c *Composite) collect(values []any) any {
	if c.Collect == nil {
		return CollectList(values)
	}
	return c.Collect(values)
}

func (c *Composite) Parse(text string, offset int) Result {
	if c.Element == nil {
		panic("grammar: Composite " + c.Name + " has no element")
	}
	if c.Skip == nil {
		panic("grammar: Composite " + c.Name + " has no skip function")
	}
	rc := &recovery{
		name:    c.Name,
		enabled: c.ContinueAfterError,
		limit:   c.MaxRecoveries,
		term:    Token(c.End),
		sink:    c.Sink,
	}
	if c.Separators != "" {
		rc.sep = AnyOf(c.Separators)
	}

	pos := offset
	if c.Start != "" {
		if !scan.HasPrefixAt(text, pos, c.Start) {
			Report(c.Sink, text, pos, "%s: expected %q, found %s", rc.label(), c.Start, describe(text, pos))
			return Fail(nil, 0)
		}
		pos += len(c.Start)
	}

	values := make([]any, 0)
	for {
		pos = c.Skip(text, pos)
		if c.atEnd(text, pos) {
			break
		}

		res := c.Element.Parse(text, pos)
		if !res.Success {
			rc.failed = true
			if !rc.possible() {
				return Fail(c.collect(values), pos-offset+res.Read)
			}
			at := pos + res.Read
			Report(c.Sink, text, at, "%s: skipping malformed element", rc.label())
			pos = rc.resync(text, at)
			continue
		}
		values = append(values, res.Value)
		if res.Read == 0 {
			break
		}
		pos = c.Skip(text, pos+res.Read)

		if c.atEnd(text, pos) || rc.sep == nil {
			continue
		}
		if n := rc.sep(text, pos); n >= 0 {
			pos += n
			continue
		}
		rc.failed = true
		Report(c.Sink, text, pos, "%s: missing separator %q before %s", rc.label(), c.Separators, describe(text, pos))
		if !rc.possible() {
			return Fail(c.collect(values), pos-offset)
		}
		pos = rc.resync(text, pos)
	}

	if c.End != "" {
		if !scan.HasPrefixAt(text, pos, c.End) {
			Report(c.Sink, text, pos, "%s: missing closing %q", rc.label(), c.End)
			return Fail(c.collect(values), pos-offset)
		}
		pos += len(c.End)
	}
	return Result{Value: c.collect(values), Read: pos - offset, Success: !rc.failed}
}

// CollectList returns the element values as a list.
func CollectList(values []any) any {
	return values
}

// CollectMap builds a map from Pair values. Later keys overwrite earlier
// ones and non-pair values are ignored.
func CollectMap(values []any) any {
	m := make(map[string]any, len(values))
	for _, v := range values {
		if p, ok := v.(Pair); ok {
			m[p.Key] = p.Value
		}
	}
	return m
}
