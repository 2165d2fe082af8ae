package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mikey/cold-outreach/internal/core"
)

const abstractAPIURL = "https://emailvalidation.abstractapi.com/v1/"

// AbstractAPI verifies addresses against the AbstractAPI email
// validation endpoint
type AbstractAPI struct {
	client *resty.Client
	apiKey string
	apiURL string
}

type abstractFlag struct {
	Value bool `json:"value"`
}

type abstractResponse struct {
	Deliverability string       `json:"deliverability"`
	IsValidFormat  abstractFlag `json:"is_valid_format"`
	IsSMTPValid    abstractFlag `json:"is_smtp_valid"`
	IsCatchAll     abstractFlag `json:"is_catchall_email"`
}

// NewAbstractAPI creates a new AbstractAPI provider
func NewAbstractAPI(apiKey string, timeout time.Duration) *AbstractAPI {
	return &AbstractAPI{
		client: resty.New().SetTimeout(timeout),
		apiKey: apiKey,
		apiURL: abstractAPIURL,
	}
}

// Name returns the provider name
func (a *AbstractAPI) Name() string {
	return "AbstractAPI"
}

// Verify checks an email address against AbstractAPI
func (a *AbstractAPI) Verify(ctx context.Context, email string) (*core.VerificationResult, error) {
	var out abstractResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": a.apiKey,
			"email":   email,
		}).
		SetResult(&out).
		Get(a.apiURL)
	if err != nil {
		return nil, fmt.Errorf("abstractapi request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return result(email, core.VerificationUnknown, fmt.Sprintf("AbstractAPI error: %d", resp.StatusCode())), nil
	}

	switch {
	case out.Deliverability == "DELIVERABLE" && out.IsValidFormat.Value && out.IsSMTPValid.Value:
		return result(email, core.VerificationValid, "AbstractAPI: deliverable"), nil
	case out.IsCatchAll.Value:
		return result(email, core.VerificationCatchAll, "AbstractAPI: catch-all domain"), nil
	case out.Deliverability == "UNDELIVERABLE":
		return result(email, core.VerificationInvalid, "AbstractAPI: undeliverable"), nil
	default:
		return result(email, core.VerificationUnknown, fmt.Sprintf("AbstractAPI: %s", out.Deliverability)), nil
	}
}
