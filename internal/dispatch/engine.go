package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/metrics"
)

// Transport delivers one already-composed message to the relay.
// The production implementation speaks SMTP-over-TLS via gomail.
type Transport interface {
	Deliver(ctx context.Context, msg core.OutboundEmail) error
}

// Engine sends messages through a single configured relay while
// enforcing the rolling daily quota. There is no internal retry: every
// failure is terminal for that call.
type Engine struct {
	transport  Transport
	quota      *DailyQuota
	configured bool
	logger     *zap.Logger
}

// NewEngine creates a new dispatch engine. configured reports whether
// relay credentials are present; without them every send fails fast.
func NewEngine(transport Transport, quota *DailyQuota, configured bool, logger *zap.Logger) *Engine {
	return &Engine{
		transport:  transport,
		quota:      quota,
		configured: configured,
		logger:     logger,
	}
}

// Send transmits a single message. The quota is checked before any
// network I/O and recorded only after a confirmed delivery.
func (e *Engine) Send(ctx context.Context, msg core.OutboundEmail) core.SendResult {
	if !e.configured {
		return core.SendResult{Diagnostic: "relay credentials not configured"}
	}

	if err := e.quota.Check(); err != nil {
		return core.SendResult{Diagnostic: fmt.Sprintf("daily email cap reached (%d)", e.quota.Limit())}
	}

	if err := e.transport.Deliver(ctx, msg); err != nil {
		diagnostic := classifyDeliveryError(err)
		e.logger.Warn("Delivery failed",
			zap.String("to", msg.To),
			zap.String("diagnostic", diagnostic),
			zap.Error(err))
		metrics.RecordSendFailure()
		return core.SendResult{Diagnostic: diagnostic}
	}

	e.quota.Record()
	metrics.RecordSend()
	e.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.Int("quota_used", e.quota.Used()))
	return core.SendResult{Success: true, Diagnostic: "email sent successfully"}
}

// SendBatch transmits messages in input order, pacing consecutive sends
// at ratePerMinute. Once the daily cap is hit the remaining messages
// are failed with the quota diagnostic without further network I/O;
// results already produced are preserved.
func (e *Engine) SendBatch(ctx context.Context, msgs []core.OutboundEmail, ratePerMinute int) []core.SendResult {
	results := make([]core.SendResult, 0, len(msgs))
	if len(msgs) == 0 {
		return results
	}
	if ratePerMinute <= 0 {
		ratePerMinute = 1
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	quotaDiagnostic := fmt.Sprintf("daily email cap reached (%d)", e.quota.Limit())

	for i, msg := range msgs {
		if e.quota.Check() != nil {
			for range msgs[i:] {
				results = append(results, core.SendResult{Diagnostic: quotaDiagnostic})
			}
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			results = append(results, core.SendResult{Diagnostic: fmt.Sprintf("batch aborted: %v", err)})
			continue
		}

		results = append(results, e.Send(ctx, msg))
	}

	return results
}

// Remaining reports how many sends are left in today's quota
func (e *Engine) Remaining() int {
	return e.quota.Remaining()
}

// classifyDeliveryError distinguishes authentication, recipient and
// generic protocol failures. The relay's reply text is all gomail
// surfaces, so classification matches on the standard reply codes.
func classifyDeliveryError(err error) string {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "535") || strings.Contains(text, "auth"):
		return "authentication failed, check the relay credentials"
	case strings.Contains(text, "550") || strings.Contains(text, "recipient"):
		return "recipient refused by relay"
	default:
		return fmt.Sprintf("smtp error: %v", err)
	}
}
