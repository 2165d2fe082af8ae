package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/adapters/leadstore"
	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
)

// LeadStoreFactory creates the lead store backed by its JSON snapshot
type LeadStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLeadStoreFactory creates a new lead store factory
func NewLeadStoreFactory(cfg *config.Config, logger *zap.Logger) *LeadStoreFactory {
	return &LeadStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLeadStore loads the snapshot and builds the in-memory store
// over it
func (f *LeadStoreFactory) CreateLeadStore() (core.LeadStore, error) {
	path := f.cfg.GetString("leads.snapshot_path")
	snapshot := leadstore.NewJSONFile(path)

	leads, err := snapshot.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load lead snapshot: %w", err)
	}

	f.logger.Info("Lead snapshot loaded",
		zap.String("path", path),
		zap.Int("leads", len(leads)))
	return leadstore.NewMemoryStore(leads, snapshot, f.logger), nil
}
