package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dzjyyds666/polyprops/parse/polyprops"
	"github.com/dzjyyds666/polyprops/pkg"
	"github.com/spf13/cobra"
)

type ParseParams struct {
	Find     string `json:"find"`     // 查找的key, 用.分隔
	Input    string `json:"input"`    // 输入文件路径
	Output   string `json:"output"`   // 输出文件地址
	Format   string `json:"format"`   // 输出格式 json / yaml
	Config   string `json:"config"`   // 语法配置文件 (toml / yaml)
	Comment  string `json:"comment"`  // 注释符号
	Extended bool   `json:"extended"` // 启用 vector / color 扩展
	Strict   bool   `json:"strict"`   // 遇到第一个错误就停止
	Watch    bool   `json:"watch"`    // 文件变化时重新解析
}

var params *ParseParams

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "polyprops parse tools",
	RunE:  parseRun,
}

func init() {
	params = &ParseParams{}
	parseCmd.Flags().StringVarP(&params.Find, "find", "f", "", "dotted key path to print")
	parseCmd.Flags().StringVarP(&params.Input, "input", "i", "", "input file path")
	parseCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")
	parseCmd.Flags().StringVar(&params.Format, "format", "json", "output format: json or yaml")
	parseCmd.Flags().StringVarP(&params.Config, "config", "c", "", "grammar config file (.toml, .yaml)")
	parseCmd.Flags().StringVar(&params.Comment, "comment", "", "override the line comment token")
	parseCmd.Flags().BoolVar(&params.Extended, "extended", false, "enable the vector and color literals")
	parseCmd.Flags().BoolVar(&params.Strict, "strict", false, "stop at the first malformed element")
	parseCmd.Flags().BoolVarP(&params.Watch, "watch", "w", false, "parse again whenever the input changes")
}

func parseRun(cmd *cobra.Command, args []string) error {
	if len(params.Input) == 0 {
		return fmt.Errorf("no input file path")
	}
	exist, err := pkg.CheckFileExist(params.Input)
	if err != nil {
		return fmt.Errorf("check file exist error: %w", err)
	}
	if !exist {
		return fmt.Errorf("input file not exist")
	}

	opts, err := params.options()
	if err != nil {
		return err
	}
	if verbose {
		opts = append(opts, polyprops.WithLogger(slog.Default()))
	}

	err = runParse(params, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if !params.Watch {
		return err
	}
	if err != nil {
		slog.Error("parse failed", "file", params.Input, "err", err)
	}
	return watchFile(cmd.Context(), params.Input, func() {
		if err := runParse(params, opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			slog.Error("parse failed", "file", params.Input, "err", err)
		}
	})
}

// options builds the grammar options selected by the flags. A config file
// takes precedence over --extended.
func (p *ParseParams) options() ([]polyprops.Option, error) {
	cfg := polyprops.DefaultConfig()
	if p.Extended {
		cfg = polyprops.ExtendedConfig()
	}
	if p.Config != "" {
		loaded, err := polyprops.LoadConfig(p.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if p.Comment != "" {
		cfg.CommentToken = p.Comment
	}
	if p.Strict {
		cfg.ContinueAfterError = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return []polyprops.Option{polyprops.WithConfig(cfg)}, nil
}

// runParse parses the input once and writes the selected value to the
// output file, or to out when no output file is set. Diagnostics go to
// errOut.
func runParse(p *ParseParams, opts []polyprops.Option, out, errOut io.Writer) error {
	text, err := pkg.ReadText(p.Input)
	if err != nil {
		return err
	}
	doc, err := polyprops.ParseDocument(text, opts...)
	if err != nil {
		return err
	}
	printDiagnostics(errOut, p.Input, doc.Diagnostics)
	if !doc.Success {
		return fmt.Errorf("%s: parse failed with %d diagnostics", p.Input, len(doc.Diagnostics))
	}

	value := doc.Value
	if p.Find != "" {
		v, ok := polyprops.GetPath(value, p.Find)
		if !ok {
			return fmt.Errorf("key %q not found", p.Find)
		}
		value = v
	}
	data, err := encode(value, p.Format)
	if err != nil {
		return err
	}
	return writeOutput(p.Output, data, out)
}
