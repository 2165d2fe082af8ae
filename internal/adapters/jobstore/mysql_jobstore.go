package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// MySQLJobStore is a MySQL implementation of the JobStore interface
type MySQLJobStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLJobStore creates a new MySQL job store
func NewMySQLJobStore(dsn string, logger *zap.Logger) (*MySQLJobStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scheduled_jobs (
			lead_id INT PRIMARY KEY,
			subject TEXT,
			body TEXT,
			run_date VARCHAR(64),
			created_at VARCHAR(64)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLJobStore{
		db:     db,
		logger: logger,
	}, nil
}

// Put stores a job, replacing any existing entry for the lead
func (s *MySQLJobStore) Put(ctx context.Context, job *core.ScheduledJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (lead_id, subject, body, run_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			subject = VALUES(subject),
			body = VALUES(body),
			run_date = VALUES(run_date),
			created_at = VALUES(created_at)
	`, job.LeadID, job.Subject, job.Body, job.RunDate.Format(time.RFC3339), job.CreatedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert job entry: %w", err)
	}
	return nil
}

// Get retrieves a job by lead id, nil if absent
func (s *MySQLJobStore) Get(ctx context.Context, leadID int) (*core.ScheduledJob, error) {
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
func (s *MySQLJobStore) Delete(ctx context.Context, leadID int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM scheduled_jobs
		WHERE lead_id = ?
	`, leadID)

	if err != nil {
		return fmt.Errorf("failed to delete job entry: %w", err)
	}
	return nil
}

// List returns all persisted jobs, skipping unreadable rows with a
// logged warning
func (s *MySQLJobStore) List(ctx context.Context) ([]*core.ScheduledJob, error) {
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
func (s *MySQLJobStore) Close() error {
	return s.db.Close()
}
