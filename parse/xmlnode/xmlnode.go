// Package xmlnode parses a small XML subset (elements, attributes, text,
// comments and processing instructions) with the same grammar primitives
// as the PolyProps format.
//
// The expected closing tag depends on the opening tag seen, so every parse
// assembles its own grammar around a fresh stack of closing-tag matchers.
// Nothing is shared between parses.
package xmlnode

import (
	"fmt"
	"html"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/dzjyyds666/polyprops/parse/scan"
)

// =========================
// Tree
// =========================

// Node is an element. Children holds *Node and string values in document
// order.
type Node struct {
	Name       string            `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []any             `json:"children,omitempty" yaml:"children,omitempty"`
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// Text concatenates the direct text children.
func (n *Node) Text() string {
	var b strings.Builder
	for _, c := range n.Children {
		if s, ok := c.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// Elements returns the direct child elements called name, or all of them
// when name is empty.
func (n *Node) Elements(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if e, ok := c.(*Node); ok && (name == "" || e.Name == name) {
			out = append(out, e)
		}
	}
	return out
}

// =========================
// Public API
// =========================

// Parse parses a document holding one root element.
func Parse(text string, sink grammar.Sink) (*Node, error) {
	col := &grammar.Collector{}
	sink = grammar.Tee(sink, col.Sink())
	s := newSession(sink)

	var r grammar.Result
	err := grammar.Recover(func() {
		r = s.document.Parse(text, 0)
		if !r.Success {
			return
		}
		if end := skipMarkup(text, r.Read); end < len(text) {
			grammar.Report(sink, text, end, "unexpected content after root element")
			r.Success = false
		}
	})
	if err != nil {
		return nil, err
	}
	if !r.Success {
		if len(col.Diagnostics()) == 0 {
			grammar.Report(sink, text, r.Read, "malformed element")
		}
		return nil, &grammar.DiagnosticsError{Diagnostics: col.Diagnostics()}
	}
	return r.Value.(*Node), nil
}

// =========================
// Grammar
// =========================

const namePattern = `[A-Za-z_][\w.:\-]*`

// session is the grammar of a single parse together with its closing-tag
// stack.
type session struct {
	sink     grammar.Sink
	closers  []*grammar.Regex
	document grammar.Element
}

func newSession(sink grammar.Sink) *session {
	s := &session{sink: sink}
	skip := grammar.SkipFunc(skipMarkup)

	open := grammar.MustRegex("open tag", "<"+namePattern, func(m string) (any, error) {
		name := m[1:]
		if err := s.push(name); err != nil {
			return nil, err
		}
		return name, nil
	})
	open.Sink = sink

	attribute := &grammar.KeyValue{
		Key:       &grammar.AnyChar{Delimiters: scan.Whitespace + "=/>"},
		Value:     &grammar.Convert{Element: &grammar.String{Delimiters: `"'`, Raw: true, Sink: sink}, Fn: unescape},
		Separator: "=",
		Skip:      skip,
		Sink:      sink,
	}
	attributes := &grammar.Repeat{
		Name:      "attributes",
		Element:   attribute,
		Terminate: grammar.Either(grammar.Token("/>"), grammar.Token(">")),
		Skip:      skip,
		Sink:      sink,
	}

	selfClose := &grammar.Keyword{Literal: "/>", CaseSensitive: true, Value: func() any {
		s.pop()
		return nil
	}}

	content := &grammar.Group{Name: "content", Skip: skip, Sink: sink}
	children := &grammar.Repeat{
		Name:      "content",
		Element:   content,
		Terminate: s.closing,
		Skip:      skip,
		Sink:      sink,
	}
	body := &grammar.Concatenation{
		Elements: []grammar.Element{
			&grammar.Keyword{Literal: ">", CaseSensitive: true},
			children,
			closeTag{s},
		},
		Skip: skip,
	}
	tail := &grammar.Group{Name: "tag", Members: []grammar.Element{selfClose, body}, Skip: skip, Sink: sink}

	element := &grammar.Convert{
		Name:    "element",
		Element: &grammar.Concatenation{Elements: []grammar.Element{open, attributes, tail}, Skip: skip},
		Fn:      toNode,
		Sink:    sink,
	}
	text := &grammar.Convert{Element: &grammar.AnyChar{Delimiters: "<", TrimSpace: true}, Fn: unescape}
	content.Members = []grammar.Element{element, text}

	s.document = &grammar.Group{Name: "document", Members: []grammar.Element{element}, Skip: skip, Sink: sink}
	return s
}

func (s *session) push(name string) error {
	re, err := grammar.NewRegex("close tag", `</`+regexp2.Escape(name)+`\s*>`, nil)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, re)
	return nil
}

func (s *session) pop() {
	if len(s.closers) > 0 {
		s.closers = s.closers[:len(s.closers)-1]
	}
}

func (s *session) top() *grammar.Regex {
	if len(s.closers) == 0 {
		return nil
	}
	return s.closers[len(s.closers)-1]
}

// closing matches the closing tag of the innermost open element.
func (s *session) closing(text string, offset int) int {
	if re := s.top(); re != nil {
		return re.Match(text, offset)
	}
	return -1
}

// closeTag consumes the closing tag of the innermost open element and pops
// it.
type closeTag struct {
	s *session
}

func (c closeTag) CanStart(text string, offset int) bool {
	return c.s.closing(text, offset) > 0
}

func (c closeTag) Parse(text string, offset int) grammar.Result {
	n := c.s.closing(text, offset)
	if n <= 0 {
		grammar.Report(c.s.sink, text, offset, "expected closing tag")
		return grammar.Fail(nil, 0)
	}
	c.s.pop()
	return grammar.Ok(nil, n)
}

// skipMarkup skips whitespace, comments, processing instructions and
// declarations.
func skipMarkup(text string, offset int) int {
	for {
		offset = scan.SkipWhile(text, scan.Whitespace, offset)
		var start, end string
		switch {
		case scan.HasPrefixAt(text, offset, "<!--"):
			start, end = "<!--", "-->"
		case scan.HasPrefixAt(text, offset, "<?"):
			start, end = "<?", "?>"
		case scan.HasPrefixAt(text, offset, "<!"):
			start, end = "<!", ">"
		default:
			return offset
		}
		idx := strings.Index(text[offset+len(start):], end)
		if idx < 0 {
			return len(text)
		}
		offset += len(start) + idx + len(end)
	}
}

func unescape(v any) (any, error) {
	s, _ := v.(string)
	return html.UnescapeString(s), nil
}

// toNode builds a Node from [name, attributes, tail] where tail is nil for
// a self-closing tag and [">", children, nil] otherwise.
func toNode(v any) (any, error) {
	parts, ok := v.([]any)
	if !ok || len(parts) != 3 {
		return nil, fmt.Errorf("unexpected element shape %T", v)
	}
	n := &Node{Name: parts[0].(string)}
	if attrs, _ := parts[1].([]any); len(attrs) > 0 {
		n.Attributes = make(map[string]string, len(attrs))
		for _, a := range attrs {
			p := a.(grammar.Pair)
			n.Attributes[p.Key], _ = p.Value.(string)
		}
	}
	if tail, ok := parts[2].([]any); ok {
		children, _ := tail[1].([]any)
		for _, c := range children {
			if s, ok := c.(string); ok && s == "" {
				continue
			}
			n.Children = append(n.Children, c)
		}
	}
	return n, nil
}
