package core

import (
	"time"
)

// VerificationStatus is the outcome of a mailbox verification
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationValid    VerificationStatus = "valid"
	VerificationInvalid  VerificationStatus = "invalid"
	VerificationUnknown  VerificationStatus = "unknown"
	VerificationCatchAll VerificationStatus = "catch_all"
)

// SequenceStep is the outreach stage a lead has reached
type SequenceStep string

const (
	StepNotSent SequenceStep = "not_sent"
	StepInitial SequenceStep = "initial_sent"
	StepGhost1  SequenceStep = "ghost_1_sent"
	StepGhost2  SequenceStep = "ghost_2_sent"
	StepReplied SequenceStep = "replied"
)

// Lead represents a prospective contact record driving one outreach sequence
type Lead struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Website  string `json:"website,omitempty"`
	Category string `json:"category,omitempty"`
	City     string `json:"city,omitempty"`

	OwnerName             string             `json:"owner_name,omitempty"`
	Verification          VerificationStatus `json:"email_verified"`
	VerificationCheckedAt *time.Time         `json:"verification_checked_at,omitempty"`
	WebsiteScanSummary    string             `json:"website_scan_summary,omitempty"`
	WebsiteScanAt         *time.Time         `json:"website_scan_at,omitempty"`
	Notes                 string             `json:"my_notes,omitempty"`
	EmailSubject          string             `json:"email_subject,omitempty"`
	EmailDraft            string             `json:"email_draft,omitempty"`
	EmailSentAt           *time.Time         `json:"email_sent_at,omitempty"`
	SequenceStep          SequenceStep       `json:"sequence_step"`
	TheirLastReply        string             `json:"their_last_reply,omitempty"`
	ReplyDraft            string             `json:"my_reply_draft,omitempty"`
	ScheduledAt           *time.Time         `json:"scheduled_at,omitempty"`

	// Extra preserves import columns this system does not interpret
	Extra map[string]string `json:"extra_data,omitempty"`
}

// LeadUpdate is a partial update; nil fields are left untouched.
// ScheduledAt is cleared via ClearScheduledAt since nil means "no change".
type LeadUpdate struct {
	Name                  *string
	Email                 *string
	OwnerName             *string
	Notes                 *string
	Verification          *VerificationStatus
	VerificationCheckedAt *time.Time
	WebsiteScanSummary    *string
	WebsiteScanAt         *time.Time
	EmailSubject          *string
	EmailDraft            *string
	EmailSentAt           *time.Time
	SequenceStep          *SequenceStep
	TheirLastReply        *string
	ReplyDraft            *string
	ScheduledAt           *time.Time
	ClearScheduledAt      bool
}

// LeadFilter narrows a lead listing; nil fields match everything
type LeadFilter struct {
	Verification *VerificationStatus
	SequenceStep *SequenceStep
	HasDraft     *bool
	HasScan      *bool
}

// VerificationResult represents the result of a mailbox verification
type VerificationResult struct {
	Email   string             `json:"email"`
	Status  VerificationStatus `json:"status"`
	Message string             `json:"message,omitempty"`
}

// SendResult represents the outcome of one dispatch attempt
type SendResult struct {
	Success    bool   `json:"success"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// OutboundEmail is a single message handed to the dispatch engine
type OutboundEmail struct {
	To      string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailDraft is a generated subject/body pair
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ScheduledJob is the durable record of a future send, keyed by lead id
type ScheduledJob struct {
	LeadID    int       `json:"lead_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	RunDate   time.Time `json:"run_date"`
	CreatedAt time.Time `json:"created_at"`
}
