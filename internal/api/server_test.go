package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/adapters/jobstore"
	"github.com/mikey/cold-outreach/internal/adapters/leadstore"
	"github.com/mikey/cold-outreach/internal/bulk"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/draft"
	"github.com/mikey/cold-outreach/internal/scheduler"
	"github.com/mikey/cold-outreach/internal/sendtime"
	"github.com/mikey/cold-outreach/internal/utils"
)

type stubVerifier struct {
	status core.VerificationStatus
}

func (v *stubVerifier) Verify(ctx context.Context, email string, strategy core.VerifyStrategy) *core.VerificationResult {
	return &core.VerificationResult{Email: email, Status: v.status, Message: "stub"}
}

func (v *stubVerifier) VerifyBatch(ctx context.Context, emails []string, strategy core.VerifyStrategy, delay time.Duration) []*core.VerificationResult {
	results := make([]*core.VerificationResult, len(emails))
	for i, email := range emails {
		results[i] = v.Verify(ctx, email, strategy)
	}
	return results
}

type stubDispatcher struct {
	result core.SendResult
	sent   int
}

func (d *stubDispatcher) Send(ctx context.Context, msg core.OutboundEmail) core.SendResult {
	d.sent++
	return d.result
}

func (d *stubDispatcher) SendBatch(ctx context.Context, msgs []core.OutboundEmail, ratePerMinute int) []core.SendResult {
	results := make([]core.SendResult, len(msgs))
	for i, msg := range msgs {
		results[i] = d.Send(ctx, msg)
	}
	return results
}

func (d *stubDispatcher) Remaining() int { return 42 }

func newTestServer(t *testing.T, leads ...*core.Lead) (*httptest.Server, *stubDispatcher) {
	t.Helper()

	logger := zap.NewNop()
	clock := core.SystemClock{}

	leadStore := leadstore.NewMemoryStore(leads, nil, logger)
	jobStore := jobstore.NewMemoryJobStore(logger)
	verifier := &stubVerifier{status: core.VerificationValid}
	dispatcher := &stubDispatcher{result: core.SendResult{Success: true}}
	service := core.NewOutreachService(leadStore, verifier, dispatcher, logger, clock)
	drafter := draft.NewDrafter(utils.NewTextProcessor(logger), logger)
	sched := scheduler.NewScheduler(jobStore, leadStore, dispatcher, service, scheduler.CrashPolicyRemoveBeforeSend, clock, logger)
	t.Cleanup(sched.Stop)
	planner := sendtime.NewPlanner(sendtime.NewStaticCityResolver(), "America/New_York", []int{10, 14}, []int{2, 3, 4}, clock, logger)
	tracker := bulk.NewTracker(2, logger)

	server := NewServer(leadStore, service, verifier, dispatcher, drafter, sched, planner, tracker,
		core.StrategySmart, 0, []string{"*"}, logger)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, dispatcher
}

func testLead() *core.Lead {
	return &core.Lead{
		ID:           1,
		Name:         "Acme Roofing",
		Email:        "owner@example.com",
		City:         "Austin",
		EmailSubject: "Quick thought",
		EmailDraft:   "Hi there",
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var out map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
}

func TestListAndGetLeads(t *testing.T) {
	ts, _ := newTestServer(t, testLead(), &core.Lead{ID: 2, Name: "Best Plumbing", Email: "info@example.org"})

	var leads []core.Lead
	resp := getJSON(t, ts.URL+"/api/leads", &leads)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, leads, 2)
	assert.Equal(t, 1, leads[0].ID)

	var lead core.Lead
	resp = getJSON(t, ts.URL+"/api/leads/2", &lead)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Best Plumbing", lead.Name)

	resp = getJSON(t, ts.URL+"/api/leads/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVerifyEndpointWritesBack(t *testing.T) {
	ts, _ := newTestServer(t, testLead())

	var result core.VerificationResult
	resp := postJSON(t, ts.URL+"/api/leads/1/verify", `{"strategy":"smart"}`, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, core.VerificationValid, result.Status)

	var lead core.Lead
	getJSON(t, ts.URL+"/api/leads/1", &lead)
	assert.Equal(t, core.VerificationValid, lead.Verification)
}

func TestSendEndpointAdvancesSequence(t *testing.T) {
	ts, dispatcher := newTestServer(t, testLead())

	var result core.SendResult
	resp := postJSON(t, ts.URL+"/api/leads/1/send", "", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Success)
	assert.Equal(t, 1, dispatcher.sent)

	var lead core.Lead
	getJSON(t, ts.URL+"/api/leads/1", &lead)
	assert.Equal(t, core.StepInitial, lead.SequenceStep)
}

func TestSendEndpointWithoutDraft(t *testing.T) {
	ts, _ := newTestServer(t, &core.Lead{ID: 1, Email: "owner@example.com"})

	resp := postJSON(t, ts.URL+"/api/leads/1/send", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &core.Lead{ID: 1, Name: "Acme Roofing", Email: "owner@example.com", City: "Austin"})

	var lead core.Lead
	resp := postJSON(t, ts.URL+"/api/leads/1/draft", "", &lead)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Quick thought about your Austin website", lead.EmailSubject)
	assert.NotEmpty(t, lead.EmailDraft)
}

func TestScheduleAndCancel(t *testing.T) {
	ts, _ := newTestServer(t, testLead())

	runAt := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	var job core.ScheduledJob
	resp := postJSON(t, ts.URL+"/api/leads/1/schedule", `{"run_at":"`+runAt+`"}`, &job)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, job.LeadID)

	var jobs []core.ScheduledJob
	getJSON(t, ts.URL+"/api/schedule", &jobs)
	require.Len(t, jobs, 1)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/leads/1/schedule", nil)
	require.NoError(t, err)
	cancelResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	cancelResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, cancelResp.StatusCode)

	getJSON(t, ts.URL+"/api/schedule", &jobs)
	assert.Empty(t, jobs)
}

func TestQuotaEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var out map[string]int
	resp := getJSON(t, ts.URL+"/api/quota", &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 42, out["remaining"])
}
