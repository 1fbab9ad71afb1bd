package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/dzjyyds666/polyprops/parse/polyprops"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// encode renders v in the given format.
func encode(v any, format string) ([]byte, error) {
	v = plain(v)
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// plain rewrites values the encoders do not handle the same way. Decimals
// become their exact string form.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plain(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = plain(e)
		}
		return l
	case decimal.Decimal:
		return t.String()
	case polyprops.Vector:
		return []float64(t)
	default:
		return v
	}
}

func writeOutput(path string, data []byte, out io.Writer) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output error: %w", err)
	}
	slog.Debug("output written", "file", path, "bytes", len(data))
	return nil
}

// printDiagnostics writes one file:line:column line per diagnostic. Colors
// are only used when w is a terminal.
func printDiagnostics(w io.Writer, name string, diags []grammar.Diagnostic) {
	out := termenv.NewOutput(w)
	for _, d := range diags {
		pos := out.String(fmt.Sprintf("%s:%d:%d:", name, d.Line, d.Column)).Bold()
		msg := out.String(d.Message).Foreground(out.Color("1"))
		fmt.Fprintf(w, "%s %s\n", pos, msg)
	}
}

// watchFile calls onChange every time path is written or replaced, until
// ctx is done. The parent directory is watched since editors often save by
// renaming a temporary file over the original.
func watchFile(ctx context.Context, path string, onChange func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	slog.Info("watching", "file", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				slog.Debug("input changed", "file", path, "op", ev.Op.String())
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}
