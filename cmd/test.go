package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/joelfokou/buildshim/internal/testreport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	testExpectations string
	testNoRecord     bool
)

// testCmd runs go test and prints its results in the build log format.
var testCmd = &cobra.Command{
	Use:   "test [packages...] [-- go test flags]",
	Short: "Run go test and report results",
	Long: heredoc.Doc(`
		Run "go test -json" on the given packages (./... by default) and print
		one result line per test. Arguments after "--" are passed to go test.

		The command exits non-zero when any test failed unexpectedly or a
		known failure passed.
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkgs, extra := args, []string(nil)
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			pkgs, extra = args[:dash], args[dash:]
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				fmt.Fprintln(os.Stderr, "\n✖ Received interrupt. Stopping tests...")
				cancel()
			case <-ctx.Done():
			}
		}()

		opts := testreport.RunOptions{
			GoBin:    config.C.Testing.GoBin,
			Packages: pkgs,
			Args:     extra,
			Stderr:   os.Stderr,
		}

		res, err := testreport.Run(ctx, opts)
		if err != nil {
			logger.L().Error("test run failed", zap.Error(err))
			return err
		}

		err = processReport(cmd, strings.Join(opts.CommandLine(), " "), res.Report, testExpectations, !testNoRecord)
		if err == nil && res.ExitCode != 0 && len(res.Report.Packages) == 0 {
			// go test failed before reporting any package, e.g. a bad flag.
			return &exitError{code: res.ExitCode}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testExpectations, "expectations", "e", "", "TOML file listing known failures (default from config testing.expectations)")
	testCmd.Flags().BoolVar(&testNoRecord, "no-record", false, "Do not save the report to history")
}
