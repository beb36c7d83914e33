// Package helpers - test output and input files used in tests.
package helpers

// MixedTestOutput is go test -v output with one test of each kind.
func MixedTestOutput() string {
	return `=== RUN   TestOK
--- PASS: TestOK (0.00s)
=== RUN   TestBad
    widget_test.go:12: expected 1, got 2
--- FAIL: TestBad (0.00s)
=== RUN   TestSkipped
    widget_test.go:20: needs a GPU
--- SKIP: TestSkipped (0.00s)
=== RUN   TestFlaky
    widget_test.go:30: connection reset
--- FAIL: TestFlaky (0.00s)
FAIL
FAIL	example.com/widget	0.010s
`
}

// PassingTestOutput is go test -v output where every test passes.
func PassingTestOutput() string {
	return `=== RUN   TestOne
--- PASS: TestOne (0.00s)
=== RUN   TestTwo
--- PASS: TestTwo (0.00s)
PASS
ok  	example.com/green	0.003s
`
}

// PassingTestJSON is PassingTestOutput as go test -json events.
func PassingTestJSON() string {
	return `{"Action":"start","Package":"example.com/green"}
{"Action":"run","Package":"example.com/green","Test":"TestOne"}
{"Action":"output","Package":"example.com/green","Test":"TestOne","Output":"=== RUN   TestOne\n"}
{"Action":"output","Package":"example.com/green","Test":"TestOne","Output":"--- PASS: TestOne (0.00s)\n"}
{"Action":"pass","Package":"example.com/green","Test":"TestOne","Elapsed":0}
{"Action":"run","Package":"example.com/green","Test":"TestTwo"}
{"Action":"output","Package":"example.com/green","Test":"TestTwo","Output":"=== RUN   TestTwo\n"}
{"Action":"output","Package":"example.com/green","Test":"TestTwo","Output":"--- PASS: TestTwo (0.00s)\n"}
{"Action":"pass","Package":"example.com/green","Test":"TestTwo","Elapsed":0}
{"Action":"output","Package":"example.com/green","Output":"PASS\n"}
{"Action":"output","Package":"example.com/green","Output":"ok  \texample.com/green\t0.003s\n"}
{"Action":"pass","Package":"example.com/green","Elapsed":0.003}
`
}

// FlakyExpectations marks TestFlaky in MixedTestOutput as a known failure.
func FlakyExpectations() string {
	return `
[[known_failure]]
package = "example.com/widget"
test = "TestFlaky"
reason = "upstream server drops connections"
`
}

// ThirdPartyList is a third-party path list with a trailing slash, padding
// and a blank line.
func ThirdPartyList() string {
	return "gfx/skia/\n  media/libvpx \n\nthird_party/rust\n"
}
