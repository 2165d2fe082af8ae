package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/api"
	"github.com/mikey/cold-outreach/internal/bulk"
	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/draft"
	"github.com/mikey/cold-outreach/internal/factory"
	"github.com/mikey/cold-outreach/internal/logging"
	"github.com/mikey/cold-outreach/internal/scheduler"
	"github.com/mikey/cold-outreach/internal/sendtime"
	"github.com/mikey/cold-outreach/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register clock
	if err := container.Provide(func() core.Clock {
		return core.SystemClock{}
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewProviderFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewVerifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewJobStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLeadStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewDispatchFactory); err != nil {
		return nil, err
	}

	// Register verification providers
	if err := container.Provide(func(f *factory.ProviderFactory) ([]core.VerificationProvider, error) {
		return f.CreateProviders()
	}); err != nil {
		return nil, err
	}

	// Register verifier
	if err := container.Provide(func(f *factory.VerifierFactory, providers []core.VerificationProvider) (core.Verifier, error) {
		return f.CreateVerifier(providers)
	}); err != nil {
		return nil, err
	}

	// Register lead store
	if err := container.Provide(func(f *factory.LeadStoreFactory) (core.LeadStore, error) {
		return f.CreateLeadStore()
	}); err != nil {
		return nil, err
	}

	// Register job store
	if err := container.Provide(func(f *factory.JobStoreFactory) (core.JobStore, error) {
		return f.CreateJobStore()
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(func(f *factory.DispatchFactory, clock core.Clock) core.Dispatcher {
		return f.CreateDispatcher(clock)
	}); err != nil {
		return nil, err
	}

	// Register text processor and drafter
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}
	if err := container.Provide(draft.NewDrafter); err != nil {
		return nil, err
	}

	// Register outreach service
	if err := container.Provide(core.NewOutreachService); err != nil {
		return nil, err
	}

	// Register send time planner
	if err := container.Provide(func(cfg *config.Config, clock core.Clock, logger *zap.Logger) *sendtime.Planner {
		st := cfg.GetSendTime()
		return sendtime.NewPlanner(sendtime.NewStaticCityResolver(), st.Timezone, st.Hours, st.Weekdays, clock, logger)
	}); err != nil {
		return nil, err
	}

	// Register bulk tracker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *bulk.Tracker {
		return bulk.NewTracker(cfg.GetInt("bulk.workers"), logger)
	}); err != nil {
		return nil, err
	}

	// Register scheduler
	if err := container.Provide(func(
		store core.JobStore,
		leads core.LeadStore,
		dispatcher core.Dispatcher,
		service *core.OutreachService,
		cfg *config.Config,
		clock core.Clock,
		logger *zap.Logger,
	) *scheduler.Scheduler {
		return scheduler.NewScheduler(store, leads, dispatcher, service, cfg.GetScheduler().CrashPolicy, clock, logger)
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(
		leads core.LeadStore,
		service *core.OutreachService,
		verifier core.Verifier,
		dispatcher core.Dispatcher,
		drafter *draft.Drafter,
		sched *scheduler.Scheduler,
		planner *sendtime.Planner,
		tracker *bulk.Tracker,
		cfg *config.Config,
		logger *zap.Logger,
	) (*api.Server, error) {
		verifyCfg, err := cfg.GetVerify()
		if err != nil {
			return nil, err
		}
		return api.NewServer(
			leads,
			service,
			verifier,
			dispatcher,
			drafter,
			sched,
			planner,
			tracker,
			core.VerifyStrategy(verifyCfg.Strategy),
			verifyCfg.Delay,
			cfg.GetStringSlice("server.cors_origins"),
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
