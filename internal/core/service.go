package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoDraft is returned when a send is requested for a lead without a draft
var ErrNoDraft = errors.New("lead has no email draft")

// ErrNoEmail is returned when a lead has no email address
var ErrNoEmail = errors.New("lead has no email address")

// OutreachService is the core orchestration for immediate sends and
// verification write-back
type OutreachService struct {
	leads      LeadStore
	verifier   Verifier
	dispatcher Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// NewOutreachService creates a new outreach service
func NewOutreachService(
	leads LeadStore,
	verifier Verifier,
	dispatcher Dispatcher,
	logger *zap.Logger,
	clock Clock,
) *OutreachService {
	return &OutreachService{
		leads:      leads,
		verifier:   verifier,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      clock,
	}
}

// VerifyLead verifies a lead's mailbox and writes the status back to the store
func (s *OutreachService) VerifyLead(ctx context.Context, leadID int, strategy VerifyStrategy) (*VerificationResult, error) {
	lead, err := s.leads.Get(leadID)
	if err != nil {
		return nil, err
	}
	if lead.Email == "" {
		return nil, ErrNoEmail
	}

	result := s.verifier.Verify(ctx, lead.Email, strategy)

	now := s.clock.Now()
	status := result.Status
	if _, err := s.leads.Update(leadID, LeadUpdate{
		Verification:          &status,
		VerificationCheckedAt: &now,
	}); err != nil {
		return nil, err
	}
	s.persist()

	return result, nil
}

// SendToLead sends the lead's draft (or the supplied overrides)
// immediately through the dispatch engine. On success the sequence step
// advances one stage, email_sent_at is stamped, scheduled_at is cleared
// and the draft actually sent is written back.
func (s *OutreachService) SendToLead(ctx context.Context, leadID int, subject, body string) (SendResult, error) {
	lead, err := s.leads.Get(leadID)
	if err != nil {
		return SendResult{}, err
	}
	if lead.Email == "" {
		return SendResult{}, ErrNoEmail
	}

	if subject == "" {
		subject = lead.EmailSubject
	}
	if body == "" {
		body = lead.EmailDraft
	}
	if subject == "" || body == "" {
		return SendResult{}, ErrNoDraft
	}

	result := s.dispatcher.Send(ctx, OutboundEmail{To: lead.Email, Subject: subject, Body: body})
	if !result.Success {
		s.logger.Warn("Send failed",
			zap.Int("lead_id", leadID),
			zap.String("to", lead.Email),
			zap.String("diagnostic", result.Diagnostic))
		return result, nil
	}

	if err := s.RecordSendSuccess(leadID, subject, body); err != nil {
		return result, fmt.Errorf("send succeeded but lead update failed: %w", err)
	}

	return result, nil
}

// RecordSendSuccess advances the lead's sequence state after a
// confirmed delivery. Shared by the immediate path and the scheduler.
func (s *OutreachService) RecordSendSuccess(leadID int, subject, body string) error {
	lead, err := s.leads.Get(leadID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	next := NextSequenceStep(lead.SequenceStep)
	if _, err := s.leads.Update(leadID, LeadUpdate{
		SequenceStep:     &next,
		EmailSentAt:      &now,
		EmailSubject:     &subject,
		EmailDraft:       &body,
		ClearScheduledAt: true,
	}); err != nil {
		return err
	}
	s.persist()

	s.logger.Info("Lead sequence advanced",
		zap.Int("lead_id", leadID),
		zap.String("step", string(next)))
	return nil
}

// ApplyDraft writes a generated draft onto the lead
func (s *OutreachService) ApplyDraft(leadID int, draft EmailDraft) (*Lead, error) {
	lead, err := s.leads.Update(leadID, LeadUpdate{
		EmailSubject: &draft.Subject,
		EmailDraft:   &draft.Body,
	})
	if err != nil {
		return nil, err
	}
	s.persist()
	return lead, nil
}

// persist requests a store persist; failure is logged and non-fatal
// because the in-memory record stays authoritative.
func (s *OutreachService) persist() {
	if err := s.leads.Persist(); err != nil {
		s.logger.Error("Failed to persist lead store", zap.Error(err))
	}
}
