package testreport

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/jstemmer/go-junit-report/v2/gtr"
	"github.com/jstemmer/go-junit-report/v2/parser/gotest"
)

// Format names the flavour of go test output being read.
type Format string

const (
	FormatJSON Format = "json" // go test -json
	FormatText Format = "text" // go test -v
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or text)", s)
	}
}

// Parse reads go test output from r.
func Parse(r io.Reader, format Format) (gtr.Report, error) {
	switch format {
	case FormatJSON:
		return gotest.NewJSONParser().Parse(r)
	case FormatText:
		return gotest.NewParser().Parse(r)
	default:
		return gtr.Report{}, fmt.Errorf("unknown format %q", format)
	}
}

// Outcome is the classified result of one test.
type Outcome struct {
	Package string
	Test    string
	Status  Status
	File    string   // package path, plus the test file when the output names one
	Message string   // set for unexpected failures
	Output  []string // captured test output
}

// Suite returns the short package name used as the test's class.
func (o Outcome) Suite() string {
	return path.Base(o.Package)
}

const noMessage = "NO MESSAGE"

// failLine matches the file:line prefix that t.Error and friends add.
var failLine = regexp.MustCompile(`^\s*([\w.+-]+_test\.go):(\d+): ?(.*)$`)

// Evaluate classifies every test in report. Tests listed in exp flip from
// fail to known-fail and from pass to unexpected-pass.
func Evaluate(report gtr.Report, exp *Expectations) []Outcome {
	var outcomes []Outcome

	for _, pkg := range report.Packages {
		if pkg.BuildError.Name != "" {
			outcomes = append(outcomes, packageFailure(pkg.Name, "<build>", pkg.BuildError))
		}

		for _, t := range pkg.Tests {
			outcomes = append(outcomes, evaluateTest(pkg.Name, t, exp))
		}

		if pkg.RunError.Name != "" {
			outcomes = append(outcomes, packageFailure(pkg.Name, "<run>", pkg.RunError))
		}
	}

	return outcomes
}

func evaluateTest(pkg string, t gtr.Test, exp *Expectations) Outcome {
	o := Outcome{
		Package: pkg,
		Test:    t.Name,
		File:    pkg,
		Output:  t.Output,
	}

	_, known := exp.Lookup(pkg, t.Name)

	switch t.Result {
	case gtr.Pass:
		o.Status = StatusPass
		if known {
			o.Status = StatusUnexpectedPass
		}
	case gtr.Skip:
		o.Status = StatusSkip
	case gtr.Fail:
		o.Status = StatusUnexpectedFail
		if known {
			o.Status = StatusKnownFail
		}
	default:
		// Never finished, e.g. the binary panicked or timed out mid-test.
		o.Status = StatusUnexpectedFail
		if known {
			o.Status = StatusKnownFail
		}
	}

	file, msg := failureMessage(t.Output)
	if file != "" {
		o.File = pkg + "/" + file
	}
	if o.Status == StatusUnexpectedFail {
		o.Message = msg
	}

	return o
}

func packageFailure(pkg, name string, e gtr.Error) Outcome {
	var msg string
	for _, line := range e.Output {
		if line = strings.TrimSpace(line); line != "" {
			msg = line
			break
		}
	}
	if msg == "" {
		msg = noMessage
	}

	return Outcome{
		Package: pkg,
		Test:    name,
		Status:  StatusUnexpectedFail,
		File:    pkg,
		Message: msg,
		Output:  e.Output,
	}
}

// failureMessage finds the first file:line report in output and renders it
// as "line N: message".
func failureMessage(output []string) (file, msg string) {
	for _, line := range output {
		m := failLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[3])
		if text == "" {
			text = noMessage
		}
		return m[1], fmt.Sprintf("line %s: %s", m[2], text)
	}
	return "", noMessage
}
