package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/adapters/providers"
	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
)

// ProviderFactory creates verification providers based on configuration
type ProviderFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *zap.Logger) *ProviderFactory {
	return &ProviderFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateProviders builds the configured providers in fallback order.
// Providers missing their credentials are skipped with a warning rather
// than failing startup.
func (f *ProviderFactory) CreateProviders() ([]core.VerificationProvider, error) {
	order := f.cfg.GetStringSlice("providers.order")
	timeout, err := f.cfg.GetDuration("providers.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid provider timeout: %w", err)
	}

	var result []core.VerificationProvider
	for _, name := range order {
		switch name {
		case "trumail":
			apiURL := f.cfg.GetString("providers.trumail.api_url")
			if apiURL == "" {
				f.logger.Warn("Skipping provider without API URL", zap.String("provider", name))
				continue
			}
			result = append(result, providers.NewTrumail(apiURL, timeout))
		case "hunter":
			apiKey := f.cfg.GetString("providers.hunter.api_key")
			if apiKey == "" {
				f.logger.Warn("Skipping provider without API key", zap.String("provider", name))
				continue
			}
			result = append(result, providers.NewHunter(apiKey, timeout))
		case "kickbox":
			apiKey := f.cfg.GetString("providers.kickbox.api_key")
			if apiKey == "" {
				f.logger.Warn("Skipping provider without API key", zap.String("provider", name))
				continue
			}
			result = append(result, providers.NewKickbox(apiKey, timeout))
		case "abstractapi":
			apiKey := f.cfg.GetString("providers.abstractapi.api_key")
			if apiKey == "" {
				f.logger.Warn("Skipping provider without API key", zap.String("provider", name))
				continue
			}
			result = append(result, providers.NewAbstractAPI(apiKey, timeout))
		default:
			return nil, fmt.Errorf("unsupported verification provider: %s", name)
		}
	}

	if len(result) > 0 {
		names := make([]string, len(result))
		for i, p := range result {
			names[i] = p.Name()
		}
		f.logger.Info("Verification providers configured", zap.Strings("providers", names))
	}
	return result, nil
}
