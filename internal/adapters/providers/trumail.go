package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mikey/cold-outreach/internal/core"
)

// Trumail verifies addresses against the Trumail lookup API. It needs
// no API key, which makes it the default first hop in the fallback
// chain.
type Trumail struct {
	client *resty.Client
	apiURL string
}

type trumailResponse struct {
	Deliverable bool `json:"deliverable"`
	FullInbox   bool `json:"fullInbox"`
	CatchAll    bool `json:"catchAll"`
}

// NewTrumail creates a new Trumail provider
func NewTrumail(apiURL string, timeout time.Duration) *Trumail {
	return &Trumail{
		client: resty.New().SetTimeout(timeout),
		apiURL: apiURL,
	}
}

// Name returns the provider name
func (t *Trumail) Name() string {
	return "Trumail"
}

// Verify checks an email address against Trumail
func (t *Trumail) Verify(ctx context.Context, email string) (*core.VerificationResult, error) {
	var out trumailResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		SetResult(&out).
		Get(t.apiURL)
	if err != nil {
		return nil, fmt.Errorf("trumail request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return result(email, core.VerificationUnknown, fmt.Sprintf("Trumail API error: %d", resp.StatusCode())), nil
	}

	switch {
	case out.Deliverable && !out.FullInbox:
		return result(email, core.VerificationValid, "Trumail: email is deliverable"), nil
	case out.CatchAll:
		return result(email, core.VerificationCatchAll, "Trumail: domain is catch-all"), nil
	case out.FullInbox:
		return result(email, core.VerificationInvalid, "Trumail: mailbox is full"), nil
	default:
		return result(email, core.VerificationInvalid, "Trumail: email not deliverable"), nil
	}
}

func result(email string, status core.VerificationStatus, message string) *core.VerificationResult {
	return &core.VerificationResult{Email: email, Status: status, Message: message}
}
