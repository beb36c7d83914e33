package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/history"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/testreport"
	"github.com/joelfokou/buildshim/internal/vfs"
	"github.com/jstemmer/go-junit-report/v2/gtr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportFormat       string
	reportExpectations string
	reportNoRecord     bool
)

// reportCmd rewrites saved go test output into the build log format.
var reportCmd = &cobra.Command{
	Use:   "report [file|-]",
	Short: "Convert go test output into build log lines",
	Long: heredoc.Doc(`
		Read go test output from a file, or stdin when the file is "-" or
		omitted, and print one result line per test:

		  TEST-PASS | example.com/pkg | pkg.TestName

		The command exits non-zero when any test failed unexpectedly or a
		known failure passed.
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "-"
		if len(args) == 1 {
			source = args[0]
		}

		format, err := testreport.ParseFormat(reportFormat)
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if source != "-" {
			f, err := os.Open(source)
			if err != nil {
				logger.L().Error("failed to open test output", zap.String("path", source), zap.Error(err))
				return fmt.Errorf("failed to open test output %s: %w", source, err)
			}
			defer f.Close()
			r = f
		}

		report, err := testreport.Parse(r, format)
		if err != nil {
			logger.L().Error("failed to parse test output", zap.String("source", source), zap.Error(err))
			return fmt.Errorf("failed to parse test output: %w", err)
		}

		return processReport(cmd, source, report, reportExpectations, !reportNoRecord)
	},
}

// processReport classifies, prints and optionally records a parsed report.
// It returns an exitError when the summary is not OK.
func processReport(cmd *cobra.Command, source string, report gtr.Report, expFile string, record bool) error {
	expFile = firstNonEmpty(expFile, config.C.Testing.Expectations)

	var exp *testreport.Expectations
	if expFile != "" {
		var err error
		if exp, err = testreport.LoadExpectations(vfs.NewOSFS(), expFile); err != nil {
			return err
		}
	}

	outcomes := testreport.Evaluate(report, exp)

	out := cmd.OutOrStdout()
	color := false
	if f, ok := out.(*os.File); ok {
		color = testreport.WantColor(f)
	}

	p := testreport.NewPrinter(out, color)
	sum, err := p.Print(outcomes)
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := p.PrintSummary(sum); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if record && config.C.Testing.Record {
		if err := recordReport(source, sum, outcomes); err != nil {
			// A lost history entry does not change the verdict.
			logger.L().Warn("failed to record report", zap.Error(err))
		}
	}

	logger.L().Info("report processed",
		zap.String("source", source),
		zap.Int("tests", sum.Total()),
		zap.Bool("ok", sum.OK()),
	)

	if !sum.OK() {
		return &exitError{code: 1}
	}
	return nil
}

func recordReport(source string, sum testreport.Summary, outcomes []testreport.Outcome) error {
	store, err := history.NewStore(config.C.Paths.Database)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	results := make([]history.Result, len(outcomes))
	for i, o := range outcomes {
		results[i] = history.Result{
			Package: o.Package,
			Test:    o.Test,
			Status:  string(o.Status),
			Message: o.Message,
		}
	}

	rep, err := store.Record(source, history.Counts(sum), results)
	if err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}

	logger.L().Debug("report recorded", zap.String("report_id", rep.ID), zap.Int("results", len(results)))
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", string(testreport.FormatJSON), "Input format: json (go test -json) or text (go test -v)")
	reportCmd.Flags().StringVarP(&reportExpectations, "expectations", "e", "", "TOML file listing known failures (default from config testing.expectations)")
	reportCmd.Flags().BoolVar(&reportNoRecord, "no-record", false, "Do not save the report to history")
}
