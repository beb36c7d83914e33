package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/history"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	historyFailed bool
	historyLimit  int
	historyOffset int
	historyJSON   bool
)

// historyCmd lists recorded reports with filtering and pagination.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded test reports",
	Long:  "List processed test reports, newest first, with optional filtering by status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		status := ""
		if historyFailed {
			status = string(history.StatusFailed)
		}

		reports, err := store.ListReports(status, historyLimit, historyOffset)
		if err != nil {
			logger.L().Error("failed to list reports", zap.Error(err))
			return fmt.Errorf("failed to list reports: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintln(out, "No reports found")
			return nil
		}

		if historyJSON {
			return printReportsJSON(out, reports)
		}
		return printReportsTable(out, reports)
	},
}

// historyShowCmd shows every result of one report.
var historyShowCmd = &cobra.Command{
	Use:   "show <report_id>",
	Short: "Show the results of a recorded report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.Load(id)
		if err != nil {
			logger.L().Error("report not found", zap.String("report_id", id), zap.Error(err))
			return fmt.Errorf("report '%s' not found: %w", id, err)
		}

		results, err := store.LoadResults(id)
		if err != nil {
			logger.L().Error("failed to load results", zap.String("report_id", id), zap.Error(err))
			return fmt.Errorf("failed to load results for report '%s': %w", id, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "=== Report '%s' ===\n\n", rep.ID)
		fmt.Fprintf(out, "Source:  %s\n", rep.Source)
		fmt.Fprintf(out, "Status:  %s\n", coloriseStatus(rep.Status))
		fmt.Fprintf(out, "Created: %s (%s)\n", rep.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(rep.CreatedAt))
		fmt.Fprintf(out, "Counts:  %s\n\n", formatCounts(rep.Counts))

		for _, r := range results {
			line := fmt.Sprintf("%s | %s | %s", r.Status, r.Package, r.Test)
			if r.Message != "" {
				line += ", " + r.Message
			}
			fmt.Fprintln(out, line)
		}

		logger.L().Info("displayed report", zap.String("report_id", id), zap.Int("results", len(results)))
		return nil
	},
}

func openHistory() (*history.Store, error) {
	store, err := history.NewStore(config.C.Paths.Database)
	if err != nil {
		logger.L().Error("failed to initialise history store", zap.Error(err))
		return nil, fmt.Errorf("failed to initialise history store: %w", err)
	}
	return store, nil
}

// printReportsTable displays reports in a formatted table.
func printReportsTable(out io.Writer, reports []*history.Report) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "REPORT ID\tSTATUS\tTESTS\tRESULTS\tCREATED\tSOURCE\n")
	fmt.Fprintf(w, "---------\t------\t-----\t-------\t-------\t------\n")

	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			coloriseStatus(r.Status),
			humanize.Comma(int64(r.Counts.Total())),
			formatCounts(r.Counts),
			humanize.Time(r.CreatedAt),
			r.Source,
		)
	}

	logger.L().Info("displayed reports", zap.Int("count", len(reports)))
	return w.Flush()
}

// printReportsJSON outputs reports in JSON format.
func printReportsJSON(out io.Writer, reports []*history.Report) error {
	for _, r := range reports {
		data, err := history.MarshalReport(r)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		fmt.Fprintln(out, buf.String())
	}

	logger.L().Info("displayed reports in JSON", zap.Int("count", len(reports)))
	return nil
}

func formatCounts(c history.Counts) string {
	return fmt.Sprintf("%d pass, %d skip, %d known, %d unexpected pass, %d fail",
		c.Passed, c.Skipped, c.KnownFail, c.UnexpectedPass, c.Failed)
}

func coloriseStatus(status history.ReportStatus) string {
	switch status {
	case history.StatusPassed:
		return "✓ " + string(status)
	case history.StatusFailed:
		return "✗ " + string(status)
	default:
		return string(status)
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only show failed reports")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "Limit number of results")
	historyCmd.Flags().IntVarP(&historyOffset, "offset", "o", 0, "Offset for pagination")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
}
