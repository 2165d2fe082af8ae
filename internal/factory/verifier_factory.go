package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/verify"
)

// VerifierFactory creates the verification engine based on configuration
type VerifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewVerifierFactory creates a new verifier factory
func NewVerifierFactory(cfg *config.Config, logger *zap.Logger) *VerifierFactory {
	return &VerifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVerifier assembles the SMTP prober and provider fallback chain
func (f *VerifierFactory) CreateVerifier(providers []core.VerificationProvider) (core.Verifier, error) {
	verifyCfg, err := f.cfg.GetVerify()
	if err != nil {
		return nil, fmt.Errorf("invalid verify configuration: %w", err)
	}
	if verifyCfg.FromEmail == "" {
		return nil, fmt.Errorf("verify.from_email is required")
	}

	prober := verify.NewSMTPProber(verifyCfg.FromEmail, verifyCfg.HeloDomain, verifyCfg.Timeout, f.logger)
	return verify.NewEngine(prober, providers, verifyCfg.TrustedDomains, verifyCfg.CatchAllSamples, f.logger), nil
}
