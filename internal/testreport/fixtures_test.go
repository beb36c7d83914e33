package testreport

import (
	"encoding/json"
	"strings"
)

const demoText = `=== RUN   TestOK
--- PASS: TestOK (0.00s)
=== RUN   TestBad
    demo_test.go:12: expected 1, got 2
    demo_test.go:13: second complaint
--- FAIL: TestBad (0.00s)
=== RUN   TestSkipped
    demo_test.go:20: not on this platform
--- SKIP: TestSkipped (0.00s)
=== RUN   TestFlaky
    demo_test.go:30: timed out talking to the network
--- FAIL: TestFlaky (0.00s)
=== RUN   TestFixed
--- PASS: TestFixed (0.00s)
FAIL
FAIL	example.com/demo	0.012s
`

const passingText = `=== RUN   TestOK
--- PASS: TestOK (0.00s)
PASS
ok  	example.com/green	0.004s
`

const demoExpectations = `
[[known_failure]]
package = "example.com/demo"
test = "TestFlaky"
reason = "network is flaky on CI"

[[known_failure]]
test = "TestFixed"
reason = "fixed upstream, remove me"
`

// toJSON converts go test -v output into the event stream go test -json
// would have produced for it.
func toJSON(pkg, text string) string {
	type event struct {
		Action  string
		Package string
		Test    string `json:",omitempty"`
		Output  string `json:",omitempty"`
	}

	var b strings.Builder
	enc := json.NewEncoder(&b)

	current := ""
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "=== RUN   "):
			current = strings.TrimSpace(strings.TrimPrefix(line, "=== RUN   "))
			enc.Encode(event{Action: "run", Package: pkg, Test: current})
			enc.Encode(event{Action: "output", Package: pkg, Test: current, Output: line})
		case strings.HasPrefix(line, "--- "):
			enc.Encode(event{Action: "output", Package: pkg, Test: current, Output: line})
			action := strings.ToLower(strings.TrimSuffix(strings.Fields(line)[1], ":"))
			enc.Encode(event{Action: action, Package: pkg, Test: current})
			current = ""
		case strings.HasPrefix(line, "    "):
			enc.Encode(event{Action: "output", Package: pkg, Test: current, Output: line})
		default:
			enc.Encode(event{Action: "output", Package: pkg, Output: line})
		}
	}

	return b.String()
}

var fixtures = map[string]string{
	"demo":    toJSON("example.com/demo", demoText),
	"passing": toJSON("example.com/green", passingText),
}
