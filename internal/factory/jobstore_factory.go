package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/adapters/jobstore"
	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
)

// JobStoreFactory creates job stores based on configuration
type JobStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJobStoreFactory creates a new job store factory
func NewJobStoreFactory(cfg *config.Config, logger *zap.Logger) *JobStoreFactory {
	return &JobStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateJobStore creates a job store based on the configuration
func (f *JobStoreFactory) CreateJobStore() (core.JobStore, error) {
	schedCfg := f.cfg.GetScheduler()

	switch schedCfg.StoreType {
	case "memory":
		return jobstore.NewMemoryJobStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(schedCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return jobstore.NewSQLiteJobStore(schedCfg.SQLitePath, f.logger)
	case "mysql":
		return jobstore.NewMySQLJobStore(schedCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported job store type: %s", schedCfg.StoreType)
	}
}
