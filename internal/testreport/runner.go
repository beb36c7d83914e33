package testreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/jstemmer/go-junit-report/v2/gtr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOptions describes a go test invocation.
type RunOptions struct {
	GoBin    string   // defaults to "go"
	Packages []string // defaults to "./..."
	Args     []string // extra go test flags, placed before the packages
	Dir      string
	Env      []string  // nil inherits the current environment
	Stderr   io.Writer // build errors and other non-JSON output; nil discards
}

// RunResult is the parsed output of a go test run.
type RunResult struct {
	Report   gtr.Report
	ExitCode int
}

// CommandLine returns the go test command line opts would run.
func (opts RunOptions) CommandLine() []string {
	goBin := opts.GoBin
	if goBin == "" {
		goBin = "go"
	}
	pkgs := opts.Packages
	if len(pkgs) == 0 {
		pkgs = []string{"./..."}
	}

	args := []string{goBin, "test", "-json"}
	args = append(args, opts.Args...)
	return append(args, pkgs...)
}

// Run executes go test -json and parses its output as it streams. A
// non-zero exit from go test is not an error: failing tests are reported in
// the result. Errors are returned only when the command could not run or was
// cancelled.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	argv := opts.CommandLine()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stderr = opts.Stderr
	setCmdProcessAttrs(cmd)

	pr, pw := io.Pipe()
	cmd.Stdout = pw

	logger.L().Info("running tests", zap.String("command", strings.Join(argv, " ")), zap.String("dir", opts.Dir))

	if err := cmd.Start(); err != nil {
		pw.Close()
		logger.L().Error("failed to start go test", zap.Strings("argv", argv), zap.Error(err))
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	res := &RunResult{}

	var g errgroup.Group
	g.Go(func() error {
		report, err := Parse(pr, FormatJSON)
		if err != nil {
			pr.CloseWithError(err)
			return fmt.Errorf("failed to parse go test output: %w", err)
		}
		res.Report = report
		// Drain anything the parser left so the child never blocks on stdout.
		_, _ = io.Copy(io.Discard, pr)
		return nil
	})

	waitErr := cmd.Wait()
	pw.Close()
	parseErr := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.L().Warn("test run cancelled", zap.Error(ctxErr))
		return nil, fmt.Errorf("test run cancelled: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		logger.L().Error("go test failed", zap.Error(waitErr))
		return nil, fmt.Errorf("go test failed: %w", waitErr)
	}

	if parseErr != nil {
		logger.L().Error("failed to parse test output", zap.Error(parseErr))
		return nil, parseErr
	}

	logger.L().Info("test run finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Int("packages", len(res.Report.Packages)),
	)
	return res, nil
}
