package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mikey/cold-outreach/internal/core"
)

const kickboxAPIURL = "https://api.kickbox.com/v2/verify"

// Kickbox verifies addresses against the Kickbox API
type Kickbox struct {
	client *resty.Client
	apiKey string
	apiURL string
}

type kickboxResponse struct {
	Result string `json:"result"`
	Reason string `json:"reason"`
}

// NewKickbox creates a new Kickbox provider
func NewKickbox(apiKey string, timeout time.Duration) *Kickbox {
	return &Kickbox{
		client: resty.New().SetTimeout(timeout),
		apiKey: apiKey,
		apiURL: kickboxAPIURL,
	}
}

// Name returns the provider name
func (k *Kickbox) Name() string {
	return "Kickbox"
}

// Verify checks an email address against Kickbox. Kickbox reports
// deliverable, undeliverable, risky or unknown; risky with an
// accept_all reason marks a catch-all domain.
func (k *Kickbox) Verify(ctx context.Context, email string) (*core.VerificationResult, error) {
	var out kickboxResponse
	resp, err := k.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"email":  email,
			"apikey": k.apiKey,
		}).
		SetResult(&out).
		Get(k.apiURL)
	if err != nil {
		return nil, fmt.Errorf("kickbox request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return result(email, core.VerificationUnknown, fmt.Sprintf("Kickbox API error: %d", resp.StatusCode())), nil
	}

	switch {
	case out.Result == "deliverable":
		return result(email, core.VerificationValid, fmt.Sprintf("Kickbox: deliverable (%s)", out.Reason)), nil
	case out.Result == "undeliverable":
		return result(email, core.VerificationInvalid, fmt.Sprintf("Kickbox: undeliverable (%s)", out.Reason)), nil
	case out.Result == "risky" && out.Reason == "accept_all":
		return result(email, core.VerificationCatchAll, "Kickbox: risky, accept-all domain"), nil
	default:
		return result(email, core.VerificationUnknown, fmt.Sprintf("Kickbox: %s (%s)", out.Result, out.Reason)), nil
	}
}
