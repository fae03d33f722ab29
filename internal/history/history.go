// Package history persists compliance-run results to SQLite so the operator
// can review which bands were missing data on past days.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/bandctl/internal/secrets"
	"github.com/desertthunder/bandctl/internal/shared"
)

//go:embed schema.sql
var schema string

// Run is one band's recorded result for one compliance check.
type Run struct {
	CheckDate  string   `json:"check_date"`
	Band       string   `json:"band"`
	Missing    []string `json:"missing"`
	RecordedAt string   `json:"recorded_at"`
}

// Store wraps the compliance history database.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path and applies
// the schema.
func Open(path string, maxOpenConns, maxIdleConns int) (*Store, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one compliance report: a row per band, compliant bands
// included with an empty missing list so the run itself is visible later.
func (s *Store) RecordRun(date string, report map[string][]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO compliance_runs (check_date, band, missing) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for band := 1; band <= secrets.NumBands; band++ {
		key := strconv.Itoa(band)
		missing := strings.Join(report[key], ",")
		if _, err := stmt.Exec(date, key, missing); err != nil {
			return fmt.Errorf("failed to record run for band %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Runs returns every recorded row for a date, newest first.
func (s *Store) Runs(date string) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT check_date, band, missing, recorded_at FROM compliance_runs WHERE check_date = ? ORDER BY recorded_at DESC, band",
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var missing string
		if err := rows.Scan(&run.CheckDate, &run.Band, &missing, &run.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if missing != "" {
			run.Missing = strings.Split(missing, ",")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
