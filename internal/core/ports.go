package core

import (
	"context"
	"errors"
	"time"
)

// ErrLeadNotFound is returned when a lead id is not in the store
var ErrLeadNotFound = errors.New("lead not found")

// LeadStore holds the working set of lead records.
// Update merges only the supplied fields. It is not internally
// serialized against concurrent read-modify-write cycles on the same
// id; callers running overlapping flows must coordinate.
type LeadStore interface {
	// Get retrieves a lead by id
	Get(id int) (*Lead, error)

	// Update applies a partial update and returns the updated lead
	Update(id int, upd LeadUpdate) (*Lead, error)

	// List returns leads matching the filter, ordered by id
	List(filter LeadFilter) []*Lead

	// Replace swaps in a freshly loaded dataset
	Replace(leads []*Lead)

	// Persist writes the current working set to durable storage
	Persist() error
}

// JobStore is the durable mapping from lead id to scheduled job
// metadata. List skips unreadable entries rather than failing.
type JobStore interface {
	// Put stores a job, replacing any existing entry for the lead
	Put(ctx context.Context, job *ScheduledJob) error

	// Get retrieves a job by lead id, nil if absent
	Get(ctx context.Context, leadID int) (*ScheduledJob, error)

	// Delete removes a job entry; deleting an absent entry is not an error
	Delete(ctx context.Context, leadID int) error

	// List returns all persisted jobs
	List(ctx context.Context) ([]*ScheduledJob, error)

	// Close releases any underlying resources
	Close() error
}

// Dispatcher transmits messages through the configured relay while
// enforcing the daily send quota
type Dispatcher interface {
	// Send transmits a single message
	Send(ctx context.Context, msg OutboundEmail) SendResult

	// SendBatch transmits messages in order at the given per-minute rate
	SendBatch(ctx context.Context, msgs []OutboundEmail, ratePerMinute int) []SendResult

	// Remaining reports how many sends are left in today's quota
	Remaining() int
}

// VerifyStrategy selects how a mailbox is verified
type VerifyStrategy string

const (
	StrategySMTPOnly VerifyStrategy = "smtp-only"
	StrategyAPIOnly  VerifyStrategy = "api-only"
	StrategySmart    VerifyStrategy = "smart"
)

// Verifier checks mailbox deliverability
type Verifier interface {
	// Verify checks a single address using the given strategy
	Verify(ctx context.Context, email string, strategy VerifyStrategy) *VerificationResult

	// VerifyBatch checks addresses in order, de-duplicating repeats and
	// pacing distinct probes with the given delay
	VerifyBatch(ctx context.Context, emails []string, strategy VerifyStrategy, delay time.Duration) []*VerificationResult
}

// VerificationProvider is one external verification service.
// Implementations normalize their vocabulary into VerificationStatus.
type VerificationProvider interface {
	// Verify checks an email address against the provider
	Verify(ctx context.Context, email string) (*VerificationResult, error)

	// Name returns the provider name for diagnostics
	Name() string
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock uses the system time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
