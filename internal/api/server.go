package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/bulk"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/draft"
	"github.com/mikey/cold-outreach/internal/metrics"
	"github.com/mikey/cold-outreach/internal/scheduler"
	"github.com/mikey/cold-outreach/internal/sendtime"
)

// Server exposes the outreach operations over HTTP
type Server struct {
	leads      core.LeadStore
	service    *core.OutreachService
	verifier   core.Verifier
	dispatcher core.Dispatcher
	drafter    *draft.Drafter
	scheduler  *scheduler.Scheduler
	planner    *sendtime.Planner
	tracker    *bulk.Tracker

	defaultStrategy core.VerifyStrategy
	verifyDelay     time.Duration
	corsOrigins     []string
	logger          *zap.Logger
}

// NewServer creates the HTTP server over the assembled components
func NewServer(
	leads core.LeadStore,
	service *core.OutreachService,
	verifier core.Verifier,
	dispatcher core.Dispatcher,
	drafter *draft.Drafter,
	sched *scheduler.Scheduler,
	planner *sendtime.Planner,
	tracker *bulk.Tracker,
	defaultStrategy core.VerifyStrategy,
	verifyDelay time.Duration,
	corsOrigins []string,
	logger *zap.Logger,
) *Server {
	return &Server{
		leads:           leads,
		service:         service,
		verifier:        verifier,
		dispatcher:      dispatcher,
		drafter:         drafter,
		scheduler:       sched,
		planner:         planner,
		tracker:         tracker,
		defaultStrategy: defaultStrategy,
		verifyDelay:     verifyDelay,
		corsOrigins:     corsOrigins,
		logger:          logger,
	}
}

// Router builds the HTTP routing table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", s.handleListLeads)
		r.Get("/leads/{id}", s.handleGetLead)
		r.Patch("/leads/{id}", s.handlePatchLead)

		r.Post("/leads/{id}/verify", s.handleVerifyLead)
		r.Post("/leads/{id}/draft", s.handleDraftLead)
		r.Post("/leads/{id}/send", s.handleSendLead)
		r.Post("/leads/{id}/schedule", s.handleScheduleLead)
		r.Delete("/leads/{id}/schedule", s.handleCancelSchedule)

		r.Post("/bulk/verify", s.handleBulkVerify)
		r.Post("/bulk/draft", s.handleBulkDraft)
		r.Post("/bulk/{id}/stop", s.handleBulkStop)
		r.Get("/bulk/{id}", s.handleBulkProgress)

		r.Get("/schedule", s.handleListSchedule)
		r.Get("/schedule/missed", s.handleMissedSchedule)
		r.Get("/quota", s.handleQuota)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
