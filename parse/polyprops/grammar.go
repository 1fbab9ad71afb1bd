// Package polyprops assembles the PolyProps property grammar, a lenient
// JSON/HOCON-like format of maps, lists and scalars with line comments and
// pluggable literal extensions, from the grammar package primitives.
//
//	document := map | list | keyvalue ("," keyvalue)*
//	map      := "{" (keyvalue ("," keyvalue)*)? "}"
//	list     := "[" (value ("," value)*)? "]"
//	keyvalue := key ":" value
//	key      := string | bareword
//	value    := "true" | "false" | "null" | number | map | list | string | extension | bareword
//
// Parsed documents are plain Go values: nil, bool, the numeric types of
// scan.ParseTypedNumber, string, []any, map[string]any, or an extension
// type such as Color or Vector.
package polyprops

import (
	"fmt"
	"log/slog"

	"github.com/dzjyyds666/polyprops/parse/grammar"
)

// Grammar is an assembled PolyProps grammar. It is immutable and may be
// shared between goroutines if its sink is safe for concurrent use.
type Grammar struct {
	cfg  Config
	skip grammar.SkipFunc
	sink grammar.Sink

	value    *grammar.Group
	key      *grammar.Group
	keyValue *grammar.KeyValue
	mapping  *grammar.Composite
	list     *grammar.Composite
	body     *grammar.Composite
	document *grammar.Group
}

// New assembles a grammar.
func New(opts ...Option) (*Grammar, error) {
	o := &options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("polyprops: invalid config: %w", err)
	}
	sink := o.sink
	if o.logger != nil {
		sink = grammar.Tee(sink, grammar.LogSink(o.logger))
	}

	var comments []string
	if cfg.CommentToken != "" {
		comments = append(comments, cfg.CommentToken)
	}
	g := &Grammar{
		cfg:  cfg,
		skip: grammar.Skipper(cfg.Whitespace, comments...),
		sink: sink,
	}

	structural := cfg.Separators + first(cfg.MapStart) + first(cfg.MapEnd) +
		first(cfg.ListStart) + first(cfg.ListEnd)
	tokenDelims := cfg.Whitespace + structural + first(cfg.KeyValueSeparator) + first(cfg.CommentToken)

	str := &grammar.String{Delimiters: cfg.StringDelimiters, Sink: sink}
	g.value = &grammar.Group{Name: "value", Skip: g.skip, Sink: sink}
	g.key = &grammar.Group{
		Name:    "key",
		Members: []grammar.Element{str},
		Default: &grammar.AnyChar{
			Delimiters: cfg.Whitespace + structural + first(cfg.KeyValueSeparator),
			StopTokens: comments,
		},
		Skip: g.skip,
		Sink: sink,
	}
	g.keyValue = &grammar.KeyValue{
		Key:               g.key,
		Value:             g.value,
		Separator:         cfg.KeyValueSeparator,
		AllowMissingValue: cfg.AllowTrailingKey,
		Skip:              g.skip,
		Sink:              sink,
	}
	g.mapping = g.composite("map", cfg.MapStart, cfg.MapEnd, g.keyValue, grammar.CollectMap)
	g.list = g.composite("list", cfg.ListStart, cfg.ListEnd, g.value, grammar.CollectList)
	g.body = g.composite("document", "", "", g.keyValue, grammar.CollectMap)

	members := []grammar.Element{
		grammar.NewKeyword(cfg.True, true),
		grammar.NewKeyword(cfg.False, false),
		grammar.NewKeyword(cfg.Null, nil),
		&grammar.Number{Delimiters: tokenDelims, Sink: sink},
		g.mapping,
		g.list,
		str,
	}
	exts, err := g.extensions(o, tokenDelims)
	if err != nil {
		return nil, err
	}
	g.value.Members = append(members, exts...)
	g.value.Default = &grammar.AnyChar{
		Delimiters: cfg.Separators + first(cfg.MapEnd) + first(cfg.ListEnd) + "\r\n",
		StopTokens: comments,
		TrimSpace:  true,
	}

	g.document = &grammar.Group{
		Name:    "document",
		Members: []grammar.Element{grammar.End{}, g.mapping, g.list},
		Default: g.body,
		Skip:    g.skip,
		Sink:    sink,
	}
	if o.logger != nil {
		o.logger.Debug("polyprops grammar assembled", "extensions", len(exts), "comment", cfg.CommentToken)
	}
	return g, nil
}

func (g *Grammar) composite(name, start, end string, element grammar.Element, collect func([]any) any) *grammar.Composite {
	return &grammar.Composite{
		Name:               name,
		Start:              start,
		End:                end,
		Element:            element,
		Separators:         g.cfg.Separators,
		Collect:            collect,
		ContinueAfterError: g.cfg.ContinueAfterError,
		MaxRecoveries:      g.cfg.MaxRecoveries,
		Skip:               g.skip,
		Sink:               g.sink,
	}
}

func (g *Grammar) extensions(o *options, delims string) ([]grammar.Element, error) {
	var out []grammar.Element
	if len(g.cfg.Extensions) > 0 {
		reg := o.registry
		if reg == nil {
			reg = DefaultRegistry()
		}
		env := Env{Config: g.cfg, Skip: g.skip, Sink: g.sink, Delimiters: delims}
		for _, name := range g.cfg.Extensions {
			f, ok := reg.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("polyprops: unknown extension %q", name)
			}
			e, err := f(env)
			if err != nil {
				return nil, fmt.Errorf("polyprops: extension %q: %w", name, err)
			}
			out = append(out, e)
		}
	}
	return append(out, o.extensions...), nil
}

func first(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

// Config returns the configuration the grammar was built from.
func (g *Grammar) Config() Config { return g.cfg }

// Skip returns the whitespace and comment skipper shared by all elements.
func (g *Grammar) Skip() grammar.SkipFunc { return g.skip }

// Value returns the value alternation.
func (g *Grammar) Value() grammar.Element { return g.value }

// Key returns the key alternation.
func (g *Grammar) Key() grammar.Element { return g.key }

// KeyValue returns the key/value pair element.
func (g *Grammar) KeyValue() grammar.Element { return g.keyValue }

// Map returns the map collection.
func (g *Grammar) Map() grammar.Element { return g.mapping }

// List returns the list collection.
func (g *Grammar) List() grammar.Element { return g.list }

// Document returns the top-level alternation.
func (g *Grammar) Document() grammar.Element { return g.document }

// Parse parses a whole document. Content left after the document is an
// error. The returned error is set only when recovery had to be abandoned,
// ordinary failures are reported through Result.Success and the sink.
func (g *Grammar) Parse(text string) (grammar.Result, error) {
	var r grammar.Result
	err := grammar.Recover(func() {
		r = g.document.Parse(text, 0)
		if !r.Success {
			return
		}
		end := g.skip(text, r.Read)
		if end < len(text) {
			grammar.Report(g.sink, text, end, "unexpected content after document")
			r.Success = false
		}
		r.Read = end
	})
	if err != nil {
		slog.Debug("polyprops parse aborted", "error", err)
	}
	return r, err
}
