package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/dispatch"
)

// DispatchFactory creates the dispatch engine based on configuration
type DispatchFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDispatchFactory creates a new dispatch factory
func NewDispatchFactory(cfg *config.Config, logger *zap.Logger) *DispatchFactory {
	return &DispatchFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDispatcher builds the gomail transport and quota-enforcing
// engine. Missing relay credentials do not fail startup; the engine
// reports the problem on the first send instead.
func (f *DispatchFactory) CreateDispatcher(clock core.Clock) core.Dispatcher {
	smtpCfg := f.cfg.GetSMTP()
	sendCfg := f.cfg.GetSend()

	configured := smtpCfg.Host != "" && smtpCfg.Username != "" && smtpCfg.Password != ""
	if !configured {
		f.logger.Warn("Outbound relay credentials not configured, sends will fail")
	}

	transport := dispatch.NewGomailTransport(
		smtpCfg.Host, smtpCfg.Port, smtpCfg.Username, smtpCfg.Password, smtpCfg.FromName)
	quota := dispatch.NewDailyQuota(sendCfg.DailyCap, clock)

	return dispatch.NewEngine(transport, quota, configured, f.logger)
}
