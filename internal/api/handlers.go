package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/bulk"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/metrics"
)

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	var filter core.LeadFilter

	if v := r.URL.Query().Get("verification"); v != "" {
		status := core.VerificationStatus(v)
		filter.Verification = &status
	}
	if v := r.URL.Query().Get("sequence_step"); v != "" {
		step := core.SequenceStep(v)
		filter.SequenceStep = &step
	}
	if v := r.URL.Query().Get("has_draft"); v != "" {
		hasDraft := v == "true"
		filter.HasDraft = &hasDraft
	}
	if v := r.URL.Query().Get("has_scan"); v != "" {
		hasScan := v == "true"
		filter.HasScan = &hasScan
	}

	respondJSON(w, http.StatusOK, s.leads.List(filter))
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	lead, err := s.leads.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

type leadPatch struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	OwnerName          *string `json:"owner_name"`
	Notes              *string `json:"my_notes"`
	EmailSubject       *string `json:"email_subject"`
	EmailDraft         *string `json:"email_draft"`
	SequenceStep       *string `json:"sequence_step"`
	TheirLastReply     *string `json:"their_last_reply"`
	ReplyDraft         *string `json:"my_reply_draft"`
	WebsiteScanSummary *string `json:"website_scan_summary"`
}

func (s *Server) handlePatchLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var patch leadPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := core.LeadUpdate{
		Name:               patch.Name,
		Email:              patch.Email,
		OwnerName:          patch.OwnerName,
		Notes:              patch.Notes,
		EmailSubject:       patch.EmailSubject,
		EmailDraft:         patch.EmailDraft,
		TheirLastReply:     patch.TheirLastReply,
		ReplyDraft:         patch.ReplyDraft,
		WebsiteScanSummary: patch.WebsiteScanSummary,
	}
	if patch.SequenceStep != nil {
		step := core.SequenceStep(*patch.SequenceStep)
		upd.SequenceStep = &step
	}

	lead, err := s.leads.Update(id, upd)
	if err != nil {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}
	if err := s.leads.Persist(); err != nil {
		s.logger.Error("Failed to persist lead store", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, lead)
}

type verifyRequest struct {
	Strategy string `json:"strategy"`
}

func (s *Server) handleVerifyLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var req verifyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	result, err := s.service.VerifyLead(r.Context(), id, s.strategy(req.Strategy))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	metrics.RecordVerification(string(result.Status))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDraftLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	lead, err := s.leads.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}

	generated := s.drafter.ForStep(lead)
	updated, err := s.service.ApplyDraft(id, generated)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

type sendRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) handleSendLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var req sendRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	result, err := s.service.SendToLead(r.Context(), id, req.Subject, req.Body)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type scheduleRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	RunAt   string `json:"run_at"`
}

func (s *Server) handleScheduleLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var req scheduleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	var runAt time.Time
	if req.RunAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RunAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "run_at must be RFC 3339")
			return
		}
		runAt = parsed
	} else {
		lead, err := s.leads.Get(id)
		if err != nil {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}
		runAt = s.planner.NextSendTime(lead.City)
	}

	job, err := s.scheduler.Schedule(r.Context(), id, req.Subject, req.Body, runAt)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	if err := s.scheduler.Cancel(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type bulkRequest struct {
	LeadIDs  []int  `json:"lead_ids"`
	Strategy string `json:"strategy"`
}

func (s *Server) handleBulkVerify(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LeadIDs) == 0 {
		respondError(w, http.StatusBadRequest, "lead_ids is required")
		return
	}

	ids := req.LeadIDs
	strategy := s.strategy(req.Strategy)
	delay := s.verifyDelay

	// Probes stay sequential so the pacing delay between distinct
	// mailboxes holds.
	opID, err := s.tracker.Start("verify", len(ids), 1, func(ctx context.Context, opID string, i int) error {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		s.tracker.SetCurrent(opID, fmt.Sprintf("lead %d", ids[i]))
		result, err := s.service.VerifyLead(ctx, ids[i], strategy)
		if err != nil {
			return fmt.Errorf("lead %d: %w", ids[i], err)
		}
		metrics.RecordVerification(string(result.Status))
		return nil
	})
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"operation_id": opID})
}

func (s *Server) handleBulkDraft(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LeadIDs) == 0 {
		respondError(w, http.StatusBadRequest, "lead_ids is required")
		return
	}

	ids := req.LeadIDs
	opID, err := s.tracker.Start("draft", len(ids), 0, func(ctx context.Context, _ string, i int) error {
		lead, err := s.leads.Get(ids[i])
		if err != nil {
			return fmt.Errorf("lead %d: %w", ids[i], err)
		}
		if _, err := s.service.ApplyDraft(ids[i], s.drafter.ForStep(lead)); err != nil {
			return fmt.Errorf("lead %d: %w", ids[i], err)
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"operation_id": opID})
}

func (s *Server) handleBulkProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.tracker.Progress(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "operation not found")
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleBulkStop(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Stop(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "operation not found")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

func (s *Server) handleListSchedule(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.scheduler.Jobs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleMissedSchedule(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.scheduler.Missed())
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"remaining": s.dispatcher.Remaining()})
}

func (s *Server) leadID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid lead id")
		return 0, false
	}
	return id, true
}

func (s *Server) strategy(requested string) core.VerifyStrategy {
	if requested == "" {
		return s.defaultStrategy
	}
	return core.VerifyStrategy(requested)
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrLeadNotFound):
		respondError(w, http.StatusNotFound, "lead not found")
	case errors.Is(err, core.ErrNoEmail), errors.Is(err, core.ErrNoDraft):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bulk.ErrAlreadyRunning):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
