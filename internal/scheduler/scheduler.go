package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/metrics"
)

// Crash recovery policies. With remove_before_send a crash mid-send
// loses the job; with remove_after_send it may double-send. At-most-once
// is the default.
const (
	CrashPolicyRemoveBeforeSend = "remove_before_send"
	CrashPolicyRemoveAfterSend  = "remove_after_send"
)

// Scheduler arms one timer per scheduled lead and persists every job
// before acknowledging it, so pending sends survive a restart.
type Scheduler struct {
	store       core.JobStore
	leads       core.LeadStore
	dispatcher  core.Dispatcher
	service     *core.OutreachService
	crashPolicy string
	clock       core.Clock
	logger      *zap.Logger

	mu     sync.Mutex
	timers map[int]*time.Timer
	missed []*core.ScheduledJob
}

// NewScheduler creates a new send scheduler
func NewScheduler(
	store core.JobStore,
	leads core.LeadStore,
	dispatcher core.Dispatcher,
	service *core.OutreachService,
	crashPolicy string,
	clock core.Clock,
	logger *zap.Logger,
) *Scheduler {
	if crashPolicy != CrashPolicyRemoveAfterSend {
		crashPolicy = CrashPolicyRemoveBeforeSend
	}
	return &Scheduler{
		store:       store,
		leads:       leads,
		dispatcher:  dispatcher,
		service:     service,
		crashPolicy: crashPolicy,
		clock:       clock,
		logger:      logger,
		timers:      make(map[int]*time.Timer),
	}
}

// Start loads persisted jobs and re-registers the pending ones. Jobs
// whose run date has passed are surfaced as missed, never fired
// automatically.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled jobs: %w", err)
	}

	now := s.clock.Now()
	registered := 0
	for _, job := range jobs {
		if job.RunDate.After(now) {
			s.arm(job)
			registered++
			continue
		}

		s.mu.Lock()
		s.missed = append(s.missed, job)
		s.mu.Unlock()
		metrics.RecordJobMissed()
		s.logger.Warn("Scheduled send is past due, not firing",
			zap.Int("lead_id", job.LeadID),
			zap.Time("run_date", job.RunDate))
	}

	s.logger.Info("Scheduler started",
		zap.Int("registered", registered),
		zap.Int("missed", len(s.missed)))
	return nil
}

// Schedule persists a future send for the lead and arms its timer.
// Scheduling a lead that already has a pending job replaces it.
func (s *Scheduler) Schedule(ctx context.Context, leadID int, subject, body string, runDate time.Time) (*core.ScheduledJob, error) {
	lead, err := s.leads.Get(leadID)
	if err != nil {
		return nil, err
	}
	if lead.Email == "" {
		return nil, core.ErrNoEmail
	}
	if subject == "" {
		subject = lead.EmailSubject
	}
	if body == "" {
		body = lead.EmailDraft
	}
	if subject == "" || body == "" {
		return nil, core.ErrNoDraft
	}
	if !runDate.After(s.clock.Now()) {
		return nil, fmt.Errorf("run date %s is not in the future", runDate.Format(time.RFC3339))
	}

	job := &core.ScheduledJob{
		LeadID:    leadID,
		Subject:   subject,
		Body:      body,
		RunDate:   runDate,
		CreatedAt: s.clock.Now(),
	}

	// Persist first; the timer only exists once the job would survive a
	// crash.
	if err := s.store.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist scheduled job: %w", err)
	}

	if _, err := s.leads.Update(leadID, core.LeadUpdate{ScheduledAt: &runDate}); err != nil {
		return nil, err
	}
	if err := s.leads.Persist(); err != nil {
		s.logger.Error("Failed to persist lead store", zap.Error(err))
	}

	s.arm(job)

	s.logger.Info("Send scheduled",
		zap.Int("lead_id", leadID),
		zap.Time("run_date", runDate))
	return job, nil
}

// Cancel removes a pending job and clears the lead's scheduled marker.
// Cancelling a lead with no pending job is not an error.
func (s *Scheduler) Cancel(ctx context.Context, leadID int) error {
	s.disarm(leadID)

	if err := s.store.Delete(ctx, leadID); err != nil {
		return fmt.Errorf("failed to delete scheduled job: %w", err)
	}

	if _, err := s.leads.Update(leadID, core.LeadUpdate{ClearScheduledAt: true}); err != nil {
		if err == core.ErrLeadNotFound {
			return nil
		}
		return err
	}
	if err := s.leads.Persist(); err != nil {
		s.logger.Error("Failed to persist lead store", zap.Error(err))
	}
	return nil
}

// Jobs returns all persisted pending jobs
func (s *Scheduler) Jobs(ctx context.Context) ([]*core.ScheduledJob, error) {
	return s.store.List(ctx)
}

// Missed returns the jobs found past due during startup recovery
func (s *Scheduler) Missed() []*core.ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	missed := make([]*core.ScheduledJob, len(s.missed))
	copy(missed, s.missed)
	return missed
}

// Stop disarms all timers. Persisted jobs stay in the store for the
// next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) arm(job *core.ScheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[job.LeadID]; ok {
		timer.Stop()
	}

	delay := job.RunDate.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	armed := *job
	s.timers[job.LeadID] = time.AfterFunc(delay, func() {
		s.fire(&armed)
	})
}

func (s *Scheduler) disarm(leadID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[leadID]; ok {
		timer.Stop()
		delete(s.timers, leadID)
	}
}

// fire executes one due job. Under remove_before_send the store entry
// goes first, trading a lost send on crash for never double-sending.
func (s *Scheduler) fire(job *core.ScheduledJob) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.disarm(job.LeadID)

	if s.crashPolicy == CrashPolicyRemoveBeforeSend {
		if err := s.store.Delete(ctx, job.LeadID); err != nil {
			s.logger.Error("Failed to remove job before send, aborting fire",
				zap.Int("lead_id", job.LeadID),
				zap.Error(err))
			return
		}
	}

	lead, err := s.leads.Get(job.LeadID)
	if err != nil {
		s.logger.Error("Scheduled lead no longer exists",
			zap.Int("lead_id", job.LeadID),
			zap.Error(err))
		return
	}
	if lead.Email == "" {
		s.logger.Error("Scheduled lead has no email address",
			zap.Int("lead_id", job.LeadID))
		return
	}

	result := s.dispatcher.Send(ctx, core.OutboundEmail{
		To:      lead.Email,
		Subject: job.Subject,
		Body:    job.Body,
	})

	if s.crashPolicy == CrashPolicyRemoveAfterSend {
		if err := s.store.Delete(ctx, job.LeadID); err != nil {
			s.logger.Error("Failed to remove job after send",
				zap.Int("lead_id", job.LeadID),
				zap.Error(err))
		}
	}

	if !result.Success {
		// The lead keeps its sequence step and scheduled marker, so the
		// operator can see what was attempted and reschedule.
		s.logger.Warn("Scheduled send failed",
			zap.Int("lead_id", job.LeadID),
			zap.String("diagnostic", result.Diagnostic))
		return
	}

	metrics.RecordJobFired()
	if err := s.service.RecordSendSuccess(job.LeadID, job.Subject, job.Body); err != nil {
		s.logger.Error("Scheduled send delivered but lead update failed",
			zap.Int("lead_id", job.LeadID),
			zap.Error(err))
	}
}
