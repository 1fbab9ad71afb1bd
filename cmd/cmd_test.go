package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/dzjyyds666/polyprops/parse/polyprops"
	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

func writeInput(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunParse(t *testing.T) {
	convey.Convey("parse prints the tree as json", t, func() {
		p := &ParseParams{Input: writeInput(t, "in.pp", "{name: demo, sizes: [1, 2]}"), Format: "json"}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		var out, errOut bytes.Buffer
		err = runParse(p, opts, &out, &errOut)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out.String(), convey.ShouldContainSubstring, `"name": "demo"`)
		convey.So(errOut.String(), convey.ShouldBeEmpty)
	})

	convey.Convey("find selects a nested value", t, func() {
		p := &ParseParams{Input: writeInput(t, "in.pp", "{a: {b: [10, 20]}}"), Find: "a.b.1", Format: "yaml"}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		var out, errOut bytes.Buffer
		convey.So(runParse(p, opts, &out, &errOut), convey.ShouldBeNil)
		convey.So(out.String(), convey.ShouldEqual, "20\n")

		p.Find = "a.missing"
		convey.So(runParse(p, opts, &out, &errOut), convey.ShouldNotBeNil)
	})

	convey.Convey("diagnostics are printed and the command fails", t, func() {
		p := &ParseParams{Input: writeInput(t, "bad.pp", "{ key: 'no' key2: 'comma' }")}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		var out, errOut bytes.Buffer
		err = runParse(p, opts, &out, &errOut)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(errOut.String(), convey.ShouldContainSubstring, "bad.pp:0:")
		convey.So(errOut.String(), convey.ShouldContainSubstring, "missing separator")
		convey.So(out.Len(), convey.ShouldEqual, 0)
	})

	convey.Convey("output goes to a file when requested", t, func() {
		p := &ParseParams{Input: writeInput(t, "in.pp", "[true, null]")}
		p.Output = filepath.Join(t.TempDir(), "out.json")
		opts, _ := p.options()

		var out, errOut bytes.Buffer
		convey.So(runParse(p, opts, &out, &errOut), convey.ShouldBeNil)
		data, err := os.ReadFile(p.Output)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldContainSubstring, "true")
		convey.So(out.Len(), convey.ShouldEqual, 0)
	})
}

func TestParseOptions(t *testing.T) {
	convey.Convey("flags adjust the grammar config", t, func() {
		p := &ParseParams{Input: writeInput(t, "in.pp", "{a: 1 ; comment\n}"), Comment: ";", Strict: true}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		doc, err := polyprops.ParseDocument("{a: 1 ; comment\n}", opts...)
		convey.So(err, convey.ShouldBeNil)
		convey.So(doc.Success, convey.ShouldBeTrue)
		convey.So(doc.Value, convey.ShouldResemble, map[string]any{"a": 1})
	})

	convey.Convey("extended enables vector literals", t, func() {
		p := &ParseParams{Extended: true}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		v, err := polyprops.Parse("{pos: v[1, 2]}", opts...)
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.(map[string]any)["pos"], convey.ShouldResemble, polyprops.Vector{1, 2})
	})

	convey.Convey("a config file is loaded", t, func() {
		p := &ParseParams{Config: writeInput(t, "grammar.toml", "comment_token = \"--\"\n")}
		opts, err := p.options()
		convey.So(err, convey.ShouldBeNil)

		v, err := polyprops.Parse("{a: 1 -- note\n}", opts...)
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldResemble, map[string]any{"a": 1})

		p.Config = filepath.Join(t.TempDir(), "missing.toml")
		_, err = p.options()
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestEncode(t *testing.T) {
	convey.Convey("decimals keep their exact text", t, func() {
		v := map[string]any{"price": decimal.RequireFromString("19.990"), "list": []any{polyprops.Vector{1, 2}}}
		data, err := encode(v, "yaml")
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldContainSubstring, "price: \"19.99\"")

		data, err = encode(v, "json")
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldContainSubstring, `"price": "19.99"`)
	})

	convey.Convey("unknown formats are rejected", t, func() {
		_, err := encode(1, "ini")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestPrintDiagnostics(t *testing.T) {
	convey.Convey("one line per diagnostic", t, func() {
		var buf bytes.Buffer
		printDiagnostics(&buf, "f.pp", []grammar.Diagnostic{
			{Line: 0, Column: 3, Message: "first"},
			{Line: 2, Column: 0, Message: "second"},
		})
		convey.So(buf.String(), convey.ShouldContainSubstring, "f.pp:0:3:")
		convey.So(buf.String(), convey.ShouldContainSubstring, "first")
		convey.So(buf.String(), convey.ShouldContainSubstring, "f.pp:2:0:")
		convey.So(bytes.Count(buf.Bytes(), []byte("\n")), convey.ShouldEqual, 2)
	})
}

func TestWatchFile(t *testing.T) {
	convey.Convey("a write to the watched file triggers a callback", t, func() {
		path := writeInput(t, "watched.pp", "{}")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 16)
		done := make(chan error, 1)
		go func() {
			done <- watchFile(ctx, path, func() { changed <- struct{}{} })
		}()

		seen := false
		deadline := time.After(5 * time.Second)
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for !seen {
			select {
			case <-changed:
				seen = true
			case <-tick.C:
				os.WriteFile(path, []byte("{a: 1}"), 0o644)
			case <-deadline:
				t.Fatal("no change event")
			}
		}
		cancel()
		convey.So(<-done, convey.ShouldBeNil)
	})
}

func TestXmlCommand(t *testing.T) {
	convey.Convey("xml prints the node tree", t, func() {
		xmlParams.Input = writeInput(t, "in.xml", `<root a="1"><item>text</item></root>`)
		xmlParams.Output = ""
		xmlParams.Format = "json"

		var out, errOut bytes.Buffer
		xmlCmd.SetOut(&out)
		xmlCmd.SetErr(&errOut)
		err := xmlRun(xmlCmd, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out.String(), convey.ShouldContainSubstring, `"name": "root"`)
		convey.So(out.String(), convey.ShouldContainSubstring, `"text"`)
	})

	convey.Convey("mismatched tags report diagnostics", t, func() {
		xmlParams.Input = writeInput(t, "bad.xml", `<a><b></a></b>`)
		var out, errOut bytes.Buffer
		xmlCmd.SetOut(&out)
		xmlCmd.SetErr(&errOut)
		err := xmlRun(xmlCmd, nil)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(errOut.String(), convey.ShouldContainSubstring, "bad.xml:")
	})
}
