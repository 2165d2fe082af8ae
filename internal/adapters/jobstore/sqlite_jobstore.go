package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// SQLiteJobStore is a SQLite implementation of the JobStore interface.
// Run dates are stored as RFC 3339 strings so entries stay readable
// across restarts and schema-tolerant upgrades.
type SQLiteJobStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteJobStore creates a new SQLite job store
func NewSQLiteJobStore(dbPath string, logger *zap.Logger) (*SQLiteJobStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scheduled_jobs (
			lead_id INTEGER PRIMARY KEY,
			subject TEXT,
			body TEXT,
			run_date TEXT,
			created_at TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteJobStore{
		db:     db,
		logger: logger,
	}, nil
}

// Put stores a job, replacing any existing entry for the lead
func (s *SQLiteJobStore) Put(ctx context.Context, job *core.ScheduledJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_jobs (lead_id, subject, body, run_date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, job.LeadID, job.Subject, job.Body, job.RunDate.Format(time.RFC3339), job.CreatedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert job entry: %w", err)
	}
	return nil
}

// Get retrieves a job by lead id, nil if absent
func (s *SQLiteJobStore) Get(ctx context.Context, leadID int) (*core.ScheduledJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT lead_id, subject, body, run_date, created_at
		FROM scheduled_jobs
		WHERE lead_id = ?
	`, leadID)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job entry: %w", err)
	}
	return job, nil
}

// Delete removes a job entry; absence is not an error
func (s *SQLiteJobStore) Delete(ctx context.Context, leadID int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM scheduled_jobs
		WHERE lead_id = ?
	`, leadID)

	if err != nil {
		return fmt.Errorf("failed to delete job entry: %w", err)
	}
	return nil
}

// List returns all persisted jobs. Unreadable rows are skipped with a
// logged warning so one corrupt entry cannot abort startup recovery.
func (s *SQLiteJobStore) List(ctx context.Context) ([]*core.ScheduledJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lead_id, subject, body, run_date, created_at
		FROM scheduled_jobs
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job entries: %w", err)
	}
	defer rows.Close()

	var jobs []*core.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			s.logger.Warn("Skipping unreadable job entry", zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job entries: %w", err)
	}
	return jobs, nil
}

// Close closes the database connection
func (s *SQLiteJobStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*core.ScheduledJob, error) {
	var job core.ScheduledJob
	var runDate, createdAt string

	if err := row.Scan(&job.LeadID, &job.Subject, &job.Body, &runDate, &createdAt); err != nil {
		return nil, err
	}

	var err error
	job.RunDate, err = time.Parse(time.RFC3339, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run_date %q: %w", runDate, err)
	}
	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	return &job, nil
}
