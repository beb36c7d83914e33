// Package history records processed test reports in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages the persistence of reports using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initialises a new Store with SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	_, err := s.db.Exec(dbschema)
	return err
}

// NewReport creates and stores a report for source with the given counts.
func (s *Store) NewReport(source string, counts Counts) (*Report, error) {
	return insertReport(s.db, source, counts)
}

// Record stores a report and all of its results in one transaction. Nothing
// is kept when any insert fails.
func (s *Store) Record(source string, counts Counts, results []Result) (*Report, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	report, err := insertReport(tx, source, counts)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].ReportID = report.ID
		if err := insertResult(tx, &results[i]); err != nil {
			return nil, fmt.Errorf("failed to save result for %s: %w", results[i].Test, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return report, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertReport(db execer, source string, counts Counts) (*Report, error) {
	status := StatusPassed
	if counts.Failed > 0 || counts.UnexpectedPass > 0 {
		status = StatusFailed
	}

	report := &Report{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    status,
		Counts:    counts,
		CreatedAt: time.Now(),
	}

	_, err := db.Exec(QueryCreateReport,
		report.ID, report.Source, report.Status,
		counts.Passed, counts.Skipped, counts.KnownFail, counts.UnexpectedPass, counts.Failed,
		report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func insertResult(db execer, result *Result) error {
	res, err := db.Exec(QueryCreateResult, result.ReportID, result.Package, result.Test, result.Status, result.Message)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	result.ID = id
	return nil
}

// Load retrieves a report by its ID.
func (s *Store) Load(id string) (*Report, error) {
	return scanReport(s.db.QueryRow(QueryLoadReport, id))
}

// ListReports retrieves reports, newest first, optionally filtered by status.
func (s *Store) ListReports(status string, limit, offset int) ([]*Report, error) {
	rows, err := s.db.Query(QueryListReports, status, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// SaveResult persists a Result to the database.
func (s *Store) SaveResult(result *Result) error {
	return insertResult(s.db, result)
}

// LoadResults retrieves all results for a report in insertion order.
func (s *Store) LoadResults(reportID string) ([]Result, error) {
	rows, err := s.db.Query(QueryLoadResults, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var msg sql.NullString
		if err := rows.Scan(&r.ID, &r.ReportID, &r.Package, &r.Test, &r.Status, &msg); err != nil {
			return nil, err
		}
		r.Message = msg.String
		results = append(results, r)
	}

	return results, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	r := &Report{}
	err := row.Scan(&r.ID, &r.Source, &r.Status,
		&r.Counts.Passed, &r.Counts.Skipped, &r.Counts.KnownFail, &r.Counts.UnexpectedPass, &r.Counts.Failed,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
