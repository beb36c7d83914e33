package history

import (
	"encoding/json"
	"time"
)

type ReportStatus string

const (
	StatusPassed ReportStatus = "passed"
	StatusFailed ReportStatus = "failed"
)

const dbschema = `
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    status TEXT NOT NULL,
    passed INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    known_fail INTEGER NOT NULL DEFAULT 0,
    unexpected_pass INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    report_id TEXT NOT NULL,
    package TEXT NOT NULL,
    test TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT,
    FOREIGN KEY (report_id) REFERENCES reports(id)
);

CREATE INDEX IF NOT EXISTS idx_results_report_id ON results(report_id);
`

const (
	QueryCreateReport = `
        INSERT INTO reports (id, source, status, passed, skipped, known_fail, unexpected_pass, failed, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	QueryLoadReport = `
        SELECT id, source, status, passed, skipped, known_fail, unexpected_pass, failed, created_at
        FROM reports
        WHERE id = ?
    `

	QueryListReports = `
		SELECT id, source, status, passed, skipped, known_fail, unexpected_pass, failed, created_at
		FROM reports
		WHERE (? = '' OR status = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	QueryCreateResult = `
        INSERT INTO results (report_id, package, test, status, message)
        VALUES (?, ?, ?, ?, ?)
    `

	QueryLoadResults = `
        SELECT id, report_id, package, test, status, message
        FROM results
        WHERE report_id = ?
        ORDER BY id
    `
)

// Counts is the per-status tally of a report.
type Counts struct {
	Passed         int `json:"passed"`
	Skipped        int `json:"skipped"`
	KnownFail      int `json:"known_fail"`
	UnexpectedPass int `json:"unexpected_pass"`
	Failed         int `json:"failed"`
}

// Total returns the number of outcomes counted.
func (c Counts) Total() int {
	return c.Passed + c.Skipped + c.KnownFail + c.UnexpectedPass + c.Failed
}

// Report is one processed batch of test output.
type Report struct {
	ID        string       `db:"id"`
	Source    string       `db:"source"` // file name, "-" for stdin, or the go test command line
	Status    ReportStatus `db:"status"`
	Counts    Counts
	CreatedAt time.Time `db:"created_at"`
}

// Result is the outcome of a single test within a report.
type Result struct {
	ID       int64  `db:"id"`
	ReportID string `db:"report_id"` // Foreign key to Report
	Package  string `db:"package"`
	Test     string `db:"test"`
	Status   string `db:"status"`
	Message  string `db:"message"`
}

// MarshalReport converts a Report to JSON bytes.
func MarshalReport(r *Report) ([]byte, error) {
	type reportOutput struct {
		ID        string    `json:"id"`
		Source    string    `json:"source"`
		Status    string    `json:"status"`
		Counts    Counts    `json:"counts"`
		CreatedAt time.Time `json:"created_at"`
	}

	return json.Marshal(reportOutput{
		ID:        r.ID,
		Source:    r.Source,
		Status:    string(r.Status),
		Counts:    r.Counts,
		CreatedAt: r.CreatedAt,
	})
}
