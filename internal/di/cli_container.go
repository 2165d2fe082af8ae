package di

import (
	"flag"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/factory"
	"github.com/mikey/cold-outreach/internal/logging"
)

// CLIFlags contains all command line flags for the CLI verifier
type CLIFlags struct {
	// Probe flags
	FromEmail       string
	HeloDomain      string
	Timeout         time.Duration
	Strategy        string
	Delay           time.Duration
	CatchAllSamples int

	// Provider flags
	Providers       string
	ProviderTimeout time.Duration
	TrumailURL      string
	HunterAPIKey    string
	KickboxAPIKey   string
	AbstractAPIKey  string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Probe flags
	flag.StringVar(&flags.FromEmail, "from", "verify@example.com", "MAIL FROM address used for probing")
	flag.StringVar(&flags.HeloDomain, "helo", "", "HELO domain (derived from -from when empty)")
	flag.DurationVar(&flags.Timeout, "timeout", 15*time.Second, "Per-host SMTP timeout")
	flag.StringVar(&flags.Strategy, "strategy", "smtp-only", "Verification strategy (smtp-only, api-only, smart)")
	flag.DurationVar(&flags.Delay, "delay", 1500*time.Millisecond, "Pause between distinct probes")
	flag.IntVar(&flags.CatchAllSamples, "catch-all-samples", 2, "Random probes used for catch-all detection")

	// Provider flags
	flag.StringVar(&flags.Providers, "providers", "", "Comma-separated provider fallback order")
	flag.DurationVar(&flags.ProviderTimeout, "provider-timeout", 10*time.Second, "Per-provider HTTP timeout")
	flag.StringVar(&flags.TrumailURL, "trumail-url", "", "Trumail API base URL")
	flag.StringVar(&flags.HunterAPIKey, "hunter-api-key", "", "API key for Hunter")
	flag.StringVar(&flags.KickboxAPIKey, "kickbox-api-key", "", "API key for Kickbox")
	flag.StringVar(&flags.AbstractAPIKey, "abstractapi-api-key", "", "API key for AbstractAPI")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input file with one email per line (use arguments if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI verifier
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
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

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("verify.strategy", flags.Strategy)
	v.Set("verify.from_email", flags.FromEmail)
	v.Set("verify.helo_domain", flags.HeloDomain)
	v.Set("verify.timeout", flags.Timeout.String())
	v.Set("verify.delay", flags.Delay.String())
	v.Set("verify.catch_all_samples", flags.CatchAllSamples)

	v.Set("providers.timeout", flags.ProviderTimeout.String())
	if flags.Providers != "" {
		v.Set("providers.order", strings.Split(flags.Providers, ","))
	}
	if flags.TrumailURL != "" {
		v.Set("providers.trumail.api_url", flags.TrumailURL)
	}
	v.Set("providers.hunter.api_key", flags.HunterAPIKey)
	v.Set("providers.kickbox.api_key", flags.KickboxAPIKey)
	v.Set("providers.abstractapi.api_key", flags.AbstractAPIKey)

	return config.NewFromViper(v)
}
