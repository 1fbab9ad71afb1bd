package polyprops

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/dzjyyds666/polyprops/parse/scan"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// =========================
// Configuration
// =========================

// Config describes the surface syntax of a PolyProps grammar.
type Config struct {
	Whitespace         string   `toml:"whitespace" yaml:"whitespace" json:"whitespace"`
	CommentToken       string   `toml:"comment_token" yaml:"comment_token" json:"comment_token"`
	MapStart           string   `toml:"map_start" yaml:"map_start" json:"map_start"`
	MapEnd             string   `toml:"map_end" yaml:"map_end" json:"map_end"`
	ListStart          string   `toml:"list_start" yaml:"list_start" json:"list_start"`
	ListEnd            string   `toml:"list_end" yaml:"list_end" json:"list_end"`
	Separators         string   `toml:"separators" yaml:"separators" json:"separators"`
	StringDelimiters   string   `toml:"string_delimiters" yaml:"string_delimiters" json:"string_delimiters"`
	KeyValueSeparator  string   `toml:"key_value_separator" yaml:"key_value_separator" json:"key_value_separator"`
	True               string   `toml:"true_literal" yaml:"true_literal" json:"true_literal"`
	False              string   `toml:"false_literal" yaml:"false_literal" json:"false_literal"`
	Null               string   `toml:"null_literal" yaml:"null_literal" json:"null_literal"`
	ContinueAfterError bool     `toml:"continue_after_error" yaml:"continue_after_error" json:"continue_after_error"`
	AllowTrailingKey   bool     `toml:"allow_trailing_key" yaml:"allow_trailing_key" json:"allow_trailing_key"`
	MaxRecoveries      int      `toml:"max_recoveries" yaml:"max_recoveries" json:"max_recoveries"`
	Extensions         []string `toml:"extensions" yaml:"extensions" json:"extensions"`
}

// DefaultConfig returns the standard PolyProps syntax.
func DefaultConfig() Config {
	return Config{
		Whitespace:         scan.Whitespace,
		CommentToken:       "//",
		MapStart:           "{",
		MapEnd:             "}",
		ListStart:          "[",
		ListEnd:            "]",
		Separators:         ",",
		StringDelimiters:   `"'`,
		KeyValueSeparator:  grammar.DefaultKeyValueSeparator,
		True:               "true",
		False:              "false",
		Null:               "null",
		ContinueAfterError: true,
		AllowTrailingKey:   true,
		MaxRecoveries:      grammar.DefaultMaxRecoveries,
	}
}

// ExtendedConfig is DefaultConfig with backtick strings and the vector and
// color literals.
func ExtendedConfig() Config {
	cfg := DefaultConfig()
	cfg.StringDelimiters += "`"
	cfg.Extensions = []string{ExtensionVector, ExtensionColor}
	return cfg
}

// Validate checks that the grammar can be assembled from c.
func (c Config) Validate() error {
	var errs []error
	for name, tok := range map[string]string{
		"map_start":           c.MapStart,
		"map_end":             c.MapEnd,
		"list_start":          c.ListStart,
		"list_end":            c.ListEnd,
		"key_value_separator": c.KeyValueSeparator,
	} {
		if tok == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}
	if c.Separators == "" {
		errs = append(errs, errors.New("separators must not be empty"))
	}
	if c.MapStart != "" && c.MapStart == c.ListStart {
		errs = append(errs, fmt.Errorf("map and list share the start token %q", c.MapStart))
	}
	if strings.ContainsAny(c.Separators, c.Whitespace) {
		errs = append(errs, errors.New("separators overlap whitespace"))
	}
	if c.CommentToken != "" {
		for _, name := range c.Extensions {
			p := extensionPrefix(name, c)
			if p != "" && (strings.HasPrefix(p, c.CommentToken) || strings.HasPrefix(c.CommentToken, p)) {
				errs = append(errs, fmt.Errorf("comment token %q would swallow %s literals starting with %q", c.CommentToken, name, p))
			}
		}
	}
	return errors.Join(errs...)
}

// LoadConfig reads a grammar configuration from a .toml, .yaml or .yml
// file. Keys absent from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("polyprops: unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("polyprops: load config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// =========================
// Options
// =========================

type options struct {
	cfg        Config
	sink       grammar.Sink
	logger     *slog.Logger
	registry   *Registry
	extensions []grammar.Element
}

// Option configures New.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithSink sets the diagnostic sink.
func WithSink(sink grammar.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithLogger logs every diagnostic through logger in addition to the sink.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry sets the registry that Config.Extensions are resolved in.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithExtension adds literal elements to the value alternation, ahead of
// the bare word fallback and after any named extensions.
func WithExtension(e ...grammar.Element) Option {
	return func(o *options) { o.extensions = append(o.extensions, e...) }
}
