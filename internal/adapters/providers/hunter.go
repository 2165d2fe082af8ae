package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mikey/cold-outreach/internal/core"
)

const hunterAPIURL = "https://api.hunter.io/v2/email-verifier"

// Hunter verifies addresses against the Hunter.io email verifier
type Hunter struct {
	client *resty.Client
	apiKey string
	apiURL string
}

type hunterResponse struct {
	Data struct {
		Status string `json:"status"`
		Score  int    `json:"score"`
	} `json:"data"`
}

// NewHunter creates a new Hunter.io provider
func NewHunter(apiKey string, timeout time.Duration) *Hunter {
	return &Hunter{
		client: resty.New().SetTimeout(timeout),
		apiKey: apiKey,
		apiURL: hunterAPIURL,
	}
}

// Name returns the provider name
func (h *Hunter) Name() string {
	return "Hunter.io"
}

// Verify checks an email address against Hunter.io. Hunter reports
// valid, invalid, accept_all, unknown, webmail or disposable; the score
// settles the borderline vocabulary.
func (h *Hunter) Verify(ctx context.Context, email string) (*core.VerificationResult, error) {
	var out hunterResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"email":   email,
			"api_key": h.apiKey,
		}).
		SetResult(&out).
		Get(h.apiURL)
	if err != nil {
		return nil, fmt.Errorf("hunter request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return result(email, core.VerificationUnknown, "Hunter.io: invalid API key"), nil
	default:
		return result(email, core.VerificationUnknown, fmt.Sprintf("Hunter.io API error: %d", resp.StatusCode())), nil
	}

	status, score := out.Data.Status, out.Data.Score
	switch {
	case status == "valid" || score >= 80:
		return result(email, core.VerificationValid, fmt.Sprintf("Hunter.io: valid (score: %d)", score)), nil
	case status == "accept_all":
		return result(email, core.VerificationCatchAll, "Hunter.io: accept-all domain"), nil
	case status == "invalid" || score < 30:
		return result(email, core.VerificationInvalid, fmt.Sprintf("Hunter.io: invalid (score: %d)", score)), nil
	default:
		return result(email, core.VerificationUnknown, fmt.Sprintf("Hunter.io: %s (score: %d)", status, score)), nil
	}
}
