package cmd

import (
	"errors"
	"fmt"

	"github.com/dzjyyds666/polyprops/parse/grammar"
	"github.com/dzjyyds666/polyprops/parse/xmlnode"
	"github.com/dzjyyds666/polyprops/pkg"
	"github.com/spf13/cobra"
)

type XmlParams struct {
	Input  string `json:"input"`  // 输入文件路径
	Output string `json:"output"` // 输出文件地址
	Format string `json:"format"` // 输出格式 json / yaml
}

var xmlParams *XmlParams

var xmlCmd = &cobra.Command{
	Use:   "xml",
	Short: "parse a small xml document into a node tree",
	RunE:  xmlRun,
}

func init() {
	xmlParams = &XmlParams{}
	xmlCmd.Flags().StringVarP(&xmlParams.Input, "input", "i", "", "input file path")
	xmlCmd.Flags().StringVarP(&xmlParams.Output, "output", "o", "", "output path")
	xmlCmd.Flags().StringVar(&xmlParams.Format, "format", "json", "output format: json or yaml")
}

func xmlRun(cmd *cobra.Command, args []string) error {
	if len(xmlParams.Input) == 0 {
		return fmt.Errorf("no input file path")
	}
	exist, err := pkg.CheckFileExist(xmlParams.Input)
	if err != nil {
		return fmt.Errorf("check file exist error: %w", err)
	}
	if !exist {
		return fmt.Errorf("input file not exist")
	}
	text, err := pkg.ReadText(xmlParams.Input)
	if err != nil {
		return err
	}

	node, err := xmlnode.Parse(text, nil)
	if err != nil {
		var derr *grammar.DiagnosticsError
		if errors.As(err, &derr) {
			printDiagnostics(cmd.ErrOrStderr(), xmlParams.Input, derr.Diagnostics)
			return fmt.Errorf("%s: parse failed with %d diagnostics", xmlParams.Input, len(derr.Diagnostics))
		}
		return err
	}
	data, err := encode(node, xmlParams.Format)
	if err != nil {
		return err
	}
	return writeOutput(xmlParams.Output, data, cmd.OutOrStdout())
}
