package verify

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

const localPartChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// catchAllProbePause spaces the randomized probes so the exchanger does
// not see a burst from one source
const catchAllProbePause = time.Second

// Engine verifies mailboxes via protocol-level probing with external
// providers as fallback
type Engine struct {
	prober          Prober
	providers       []core.VerificationProvider
	trustedDomains  map[string]struct{}
	catchAllSamples int
	logger          *zap.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewEngine creates a new verification engine. Providers are consulted
// in the order given.
func NewEngine(
	prober Prober,
	providers []core.VerificationProvider,
	trustedDomains []string,
	catchAllSamples int,
	logger *zap.Logger,
) *Engine {
	trusted := make(map[string]struct{}, len(trustedDomains))
	for _, d := range trustedDomains {
		trusted[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return &Engine{
		prober:          prober,
		providers:       providers,
		trustedDomains:  trusted,
		catchAllSamples: catchAllSamples,
		logger:          logger,
		sleep:           time.Sleep,
	}
}

// Verify checks a single address using the given strategy
func (e *Engine) Verify(ctx context.Context, email string, strategy core.VerifyStrategy) *core.VerificationResult {
	if domain, ok := splitDomain(email); ok {
		if _, trusted := e.trustedDomains[strings.ToLower(domain)]; trusted {
			return &core.VerificationResult{
				Email:   email,
				Status:  core.VerificationValid,
				Message: "domain is trusted",
			}
		}
	}

	switch strategy {
	case core.StrategySMTPOnly:
		return e.verifySMTP(ctx, email)
	case core.StrategyAPIOnly:
		return e.verifyAPI(ctx, email)
	default:
		return e.verifySmart(ctx, email)
	}
}

// VerifyBatch checks addresses in input order. Identical addresses are
// verified once and the result reused; distinct probes are paced with
// the given delay to avoid tripping upstream rate limiting.
func (e *Engine) VerifyBatch(ctx context.Context, emails []string, strategy core.VerifyStrategy, delay time.Duration) []*core.VerificationResult {
	results := make([]*core.VerificationResult, 0, len(emails))
	seen := make(map[string]*core.VerificationResult)

	for _, email := range emails {
		if cached, ok := seen[email]; ok {
			dup := *cached
			results = append(results, &dup)
			continue
		}
		if len(seen) > 0 && delay > 0 {
			e.sleep(delay)
		}
		result := e.Verify(ctx, email, strategy)
		seen[email] = result
		results = append(results, result)
	}

	return results
}

func (e *Engine) verifySMTP(ctx context.Context, email string) *core.VerificationResult {
	status, msg := e.prober.Probe(ctx, email)
	return &core.VerificationResult{Email: email, Status: status, Message: msg}
}

// verifyAPI walks the provider priority list. The first definitive
// valid/invalid answer wins; a catch-all answer is remembered as a
// fallback while probing continues.
func (e *Engine) verifyAPI(ctx context.Context, email string) *core.VerificationResult {
	var catchAll *core.VerificationResult

	for _, provider := range e.providers {
		result, err := provider.Verify(ctx, email)
		if err != nil {
			e.logger.Warn("Verification provider failed",
				zap.String("provider", provider.Name()),
				zap.String("email", email),
				zap.Error(err))
			continue
		}

		switch result.Status {
		case core.VerificationValid, core.VerificationInvalid:
			return result
		case core.VerificationCatchAll:
			if catchAll == nil {
				catchAll = result
			}
		}
	}

	if catchAll != nil {
		return catchAll
	}
	return &core.VerificationResult{
		Email:   email,
		Status:  core.VerificationUnknown,
		Message: "no provider returned a definitive result",
	}
}

// verifySmart runs the SMTP probe first and only falls back to the
// provider chain when the probe looks blocked. A positive SMTP answer
// is double-checked for catch-all acceptance.
func (e *Engine) verifySmart(ctx context.Context, email string) *core.VerificationResult {
	result := e.verifySMTP(ctx, email)

	switch result.Status {
	case core.VerificationInvalid:
		return result
	case core.VerificationValid:
		if domain, ok := splitDomain(email); ok && e.isCatchAllDomain(ctx, domain) {
			return &core.VerificationResult{
				Email:   email,
				Status:  core.VerificationCatchAll,
				Message: "domain accepts any mailbox",
			}
		}
		return result
	}

	if diagnosticIndicatesBlocking(result.Message) && len(e.providers) > 0 {
		apiResult := e.verifyAPI(ctx, email)
		if apiResult.Status != core.VerificationUnknown {
			return apiResult
		}
	}

	return result
}

// isCatchAllDomain probes the domain with randomly generated local
// parts; only when every probe is accepted is the domain catch-all.
func (e *Engine) isCatchAllDomain(ctx context.Context, domain string) bool {
	if e.catchAllSamples <= 0 {
		return false
	}

	for i := 0; i < e.catchAllSamples; i++ {
		if i > 0 {
			e.sleep(catchAllProbePause)
		}
		status, _ := e.prober.Probe(ctx, randomLocalPart()+"@"+domain)
		if status != core.VerificationValid {
			return false
		}
	}

	e.logger.Debug("Catch-all domain detected", zap.String("domain", domain))
	return true
}

// diagnosticIndicatesBlocking reports whether an unknown result looks
// like network/IP blocking rather than a settled protocol answer
func diagnosticIndicatesBlocking(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"could not verify", "connection", "timeout", "temporary", "rate limit", "lookup failed"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func splitDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return email[at+1:], true
}

func randomLocalPart() string {
	b := make([]byte, 15)
	for i := range b {
		b[i] = localPartChars[rand.Intn(len(localPartChars))]
	}
	return string(b)
}
