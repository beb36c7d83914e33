package testreport

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorEnv forces coloured output when set to a non-empty value, for runs
// whose stdout is a pipe to a terminal-aware log viewer.
const ColorEnv = "BSHIM_STDOUT_ISATTY"

// WantColor reports whether output to f should be coloured.
func WantColor(f *os.File) bool {
	if os.Getenv(ColorEnv) != "" {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes outcomes in the build log format.
type Printer struct {
	w       io.Writer
	color   bool
	profile termenv.Profile
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color, profile: termenv.ANSI}
}

// Print writes every outcome and returns the tally.
func (p *Printer) Print(outcomes []Outcome) (Summary, error) {
	var sum Summary
	for _, o := range outcomes {
		sum.add(o.Status)
		if err := p.printOutcome(o); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (p *Printer) printOutcome(o Outcome) error {
	sep := ""
	if o.Message != "" {
		sep = ", "
	}

	if _, err := fmt.Fprintf(p.w, "%s | %s | %s.%s%s%s\n",
		p.status(o.Status), o.File, o.Suite(), o.Test, sep, o.Message); err != nil {
		return err
	}

	if o.Status != StatusUnexpectedFail {
		return nil
	}

	if _, err := fmt.Fprintf(p.w, "FAIL: %s.%s\n", o.Suite(), o.Test); err != nil {
		return err
	}
	for _, line := range o.Output {
		if _, err := fmt.Fprintf(p.w, "    %s\n", strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary writes the closing tally line.
func (p *Printer) PrintSummary(s Summary) error {
	_, err := fmt.Fprintf(p.w, "\n%d passed, %d skipped, %d known failures, %d unexpected passes, %d failed\n",
		s.Passed, s.Skipped, s.KnownFail, s.UnexpectedPass, s.Failed)
	return err
}

func (p *Printer) status(s Status) string {
	if !p.color {
		return string(s)
	}

	var c termenv.Color
	switch s {
	case StatusPass:
		c = p.profile.Color("2")
	case StatusSkip, StatusKnownFail:
		c = p.profile.Color("3")
	default:
		c = p.profile.Color("1")
	}
	return termenv.String(string(s)).Foreground(c).Bold().String()
}
