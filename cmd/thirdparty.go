package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/thirdparty"
	"github.com/joelfokou/buildshim/internal/vfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tpInput  string
	tpOutput string
	tpArray  string
	tpCount  string
)

// thirdPartyCmd renders the third-party path list as C++ source.
var thirdPartyCmd = &cobra.Command{
	Use:   "thirdparty-paths",
	Short: "Generate the clang plugin's third-party path table",
	Long: heredoc.Doc(`
		Read a list of third-party directories, one per line, and write a C++
		source file defining a string array of them plus its length.

		Use "--output -" to write the source to stdout.
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := firstNonEmpty(tpInput, config.C.Generator.Input)
		output := firstNonEmpty(tpOutput, config.C.Generator.Output)
		opts := thirdparty.Options{
			ArrayName: firstNonEmpty(tpArray, config.C.Generator.ArrayName),
			CountName: firstNonEmpty(tpCount, config.C.Generator.CountName),
		}

		fsys := vfs.NewOSFS()

		if output == "-" {
			paths, err := thirdparty.ReadPaths(fsys, input)
			if err != nil {
				return err
			}
			return thirdparty.Generate(cmd.OutOrStdout(), paths, opts)
		}

		if err := thirdparty.GenerateFile(fsys, input, output, opts); err != nil {
			logger.L().Error("third-party path generation failed", zap.String("input", input), zap.Error(err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", output)
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(thirdPartyCmd)

	thirdPartyCmd.Flags().StringVarP(&tpInput, "input", "i", "", "Path list to read (default from config generator.input)")
	thirdPartyCmd.Flags().StringVarP(&tpOutput, "output", "o", "", "C++ file to write, or - for stdout (default from config generator.output)")
	thirdPartyCmd.Flags().StringVar(&tpArray, "array", "", "Name of the generated array")
	thirdPartyCmd.Flags().StringVar(&tpCount, "count", "", "Name of the generated length constant")
}
