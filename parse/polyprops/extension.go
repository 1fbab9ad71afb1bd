package polyprops

import (
	"fmt"
	"strconv"

	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/shopspring/decimal"
)

// Names of the built-in extensions.
const (
	ExtensionColor  = "color"
	ExtensionVector = "vector"
)

// extensionPrefix returns the text every literal of a built-in extension
// starts with, or "" for extensions it does not know.
func extensionPrefix(name string, cfg Config) string {
	switch name {
	case ExtensionColor:
		return "#"
	case ExtensionVector:
		return "v" + cfg.ListStart
	}
	return ""
}

// Env is what an extension factory may build on: the grammar's
// configuration, its skip function and sink, and the characters that end a
// scalar token.
type Env struct {
	Config     Config
	Skip       grammar.SkipFunc
	Sink       grammar.Sink
	Delimiters string
}

// Factory builds an extension literal for one grammar.
type Factory func(env Env) (grammar.Element, error)

// Registry maps extension names to factories. The zero value is not usable,
// use NewRegistry or DefaultRegistry.
type Registry struct {
	names     []string
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the color and vector literals.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(ExtensionColor, NewColorLiteral)
	_ = r.Register(ExtensionVector, NewVectorLiteral)
	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("polyprops: invalid extension registration %q", name)
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("polyprops: extension %q already registered", name)
	}
	r.factories[name] = f
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names lists registered extensions in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// =========================
// Color
// =========================

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float32 `json:"r" yaml:"r"`
	G float32 `json:"g" yaml:"g"`
	B float32 `json:"b" yaml:"b"`
	A float32 `json:"a" yaml:"a"`
}

const colorPattern = `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6})(?![0-9A-Za-z_])`

// NewColorLiteral builds the #RRGGBB / #RRGGBBAA literal.
func NewColorLiteral(env Env) (grammar.Element, error) {
	re, err := grammar.NewRegex(ExtensionColor, colorPattern, func(m string) (any, error) {
		return ParseColor(m)
	})
	if err != nil {
		return nil, err
	}
	re.Sink = env.Sink
	return re, nil
}

// ParseColor parses #RRGGBB or #RRGGBBAA. Alpha defaults to opaque.
func ParseColor(s string) (Color, error) {
	if len(s) != 7 && len(s) != 9 || s[0] != '#' {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	var comps [4]float32
	comps[3] = 1
	for i := 0; i*2+1 < len(s); i++ {
		b, err := strconv.ParseUint(s[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		comps[i] = float32(b) / 255
	}
	return Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// =========================
// Vector
// =========================

// Vector is a 2, 3 or 4 component vector.
type Vector []float64

// NewVectorLiteral builds the v[x, y(, z(, w))] literal.
func NewVectorLiteral(env Env) (grammar.Element, error) {
	list := &grammar.Composite{
		Name:       ExtensionVector,
		Start:      "v" + env.Config.ListStart,
		End:        env.Config.ListEnd,
		Element:    &grammar.Number{Delimiters: env.Delimiters, Sink: env.Sink},
		Separators: env.Config.Separators,
		Skip:       env.Skip,
		Sink:       env.Sink,
	}
	return &grammar.Convert{Name: ExtensionVector, Element: list, Fn: toVector, Sink: env.Sink}, nil
}

func toVector(v any) (any, error) {
	items, _ := v.([]any)
	if len(items) < 2 || len(items) > 4 {
		return nil, fmt.Errorf("vector needs 2 to 4 components, got %d", len(items))
	}
	out := make(Vector, len(items))
	for i, item := range items {
		f, err := ToFloat(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// ToFloat converts any numeric value produced by the grammar to float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%v (%T) is not a number", v, v)
}
