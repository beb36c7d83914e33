// Package testreport turns go test output into the build log format
//
//	TEST-PASS | example.com/pkg | pkg.TestName
//	TEST-UNEXPECTED-FAIL | example.com/pkg/x_test.go | pkg.TestOther, line 12: boom
//
// that the build infrastructure scans for results.
package testreport

// Status is the leading token of a result line.
type Status string

const (
	StatusPass           Status = "TEST-PASS"
	StatusSkip           Status = "TEST-SKIP"
	StatusKnownFail      Status = "TEST-KNOWN-FAIL"
	StatusUnexpectedPass Status = "TEST-UNEXPECTED-PASS"
	StatusUnexpectedFail Status = "TEST-UNEXPECTED-FAIL"
)

// Unexpected reports whether s should fail the build.
func (s Status) Unexpected() bool {
	return s == StatusUnexpectedPass || s == StatusUnexpectedFail
}

// Summary tallies outcomes by status.
type Summary struct {
	Passed         int
	Skipped        int
	KnownFail      int
	UnexpectedPass int
	Failed         int
}

func (s *Summary) add(status Status) {
	switch status {
	case StatusPass:
		s.Passed++
	case StatusSkip:
		s.Skipped++
	case StatusKnownFail:
		s.KnownFail++
	case StatusUnexpectedPass:
		s.UnexpectedPass++
	case StatusUnexpectedFail:
		s.Failed++
	}
}

// OK reports whether nothing unexpected happened.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.UnexpectedPass == 0
}

// Total returns the number of outcomes.
func (s Summary) Total() int {
	return s.Passed + s.Skipped + s.KnownFail + s.UnexpectedPass + s.Failed
}
