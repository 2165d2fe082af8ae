package draft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/utils"
)

func newTestDrafter() *Drafter {
	logger := zap.NewNop()
	return NewDrafter(utils.NewTextProcessor(logger), logger)
}

func TestInitialDraftPersonalization(t *testing.T) {
	d := newTestDrafter()

	lead := &core.Lead{
		ID:        1,
		Name:      "Acme Roofing",
		OwnerName: "john smith",
		Category:  "Roofing",
		City:      "Austin",
	}

	draft := d.Initial(lead)
	assert.Equal(t, "Quick thought about your Austin website", draft.Subject)
	assert.True(t, strings.HasPrefix(draft.Body, "Hi John,"), draft.Body)
	assert.Contains(t, draft.Body, "your roofing business in Austin")
}

func TestInitialDraftObservationsFromScan(t *testing.T) {
	d := newTestDrafter()

	lead := &core.Lead{
		ID:                 1,
		Name:               "Acme Roofing",
		WebsiteScanSummary: "The site is slow and has no meta description.",
	}

	draft := d.Initial(lead)
	assert.Contains(t, draft.Body, "load a bit slowly")
	assert.Contains(t, draft.Body, "SEO improvements")
}

func TestInitialDraftFallbackObservation(t *testing.T) {
	d := newTestDrafter()

	draft := d.Initial(&core.Lead{ID: 1, Name: "Acme Roofing"})
	assert.Contains(t, draft.Body, "A few tweaks to the layout and messaging")
	assert.Equal(t, "Quick thought about your website", draft.Subject)
}

func TestFollowupDrafts(t *testing.T) {
	d := newTestDrafter()
	lead := &core.Lead{ID: 1, OwnerName: "Jane Doe", Website: "acmeroofing.com"}

	first := d.Followup(lead, 1)
	assert.Equal(t, "Following up - acmeroofing.com", first.Subject)
	assert.Contains(t, first.Body, "Hi Jane,")

	second := d.Followup(lead, 2)
	assert.Equal(t, "Still interested in connecting?", second.Subject)
	assert.Contains(t, second.Body, "gentle bump")
}

func TestReplyDraftMatchesPatterns(t *testing.T) {
	d := newTestDrafter()

	tests := []struct {
		name       string
		theirReply string
		contains   string
	}{
		{"interested", "Sounds good, tell me more", "Great to hear you're interested"},
		{"busy", "I'm really busy right now", "timing is everything"},
		{"pricing", "How much does this cost?", "The investment really depends"},
		{"identity", "Who are you? What company is this?", "Happy to share"},
		{"generic", "ok", "I appreciate you getting back to me"},
	}

	lead := &core.Lead{ID: 1, OwnerName: "Jane", EmailSubject: "Quick thought"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := d.Reply(lead, tt.theirReply)
			assert.Contains(t, draft.Body, tt.contains)
			assert.Equal(t, "Re: Quick thought", draft.Subject)
		})
	}
}

func TestForStepSelection(t *testing.T) {
	d := newTestDrafter()

	tests := []struct {
		step    core.SequenceStep
		subject string
	}{
		{core.StepNotSent, "Quick thought about your website"},
		{core.StepInitial, "Following up - acmeroofing.com"},
		{core.StepGhost1, "Still interested in connecting?"},
	}

	for _, tt := range tests {
		lead := &core.Lead{ID: 1, Name: "Acme", Website: "acmeroofing.com", SequenceStep: tt.step}
		assert.Equal(t, tt.subject, d.ForStep(lead).Subject)
	}

	replied := &core.Lead{ID: 1, Name: "Acme", SequenceStep: core.StepReplied, TheirLastReply: "tell me more"}
	assert.Contains(t, d.ForStep(replied).Body, "Great to hear you're interested")
}

func TestSalutationFallsBackToGeneric(t *testing.T) {
	d := newTestDrafter()
	draft := d.Initial(&core.Lead{ID: 1})
	assert.True(t, strings.HasPrefix(draft.Body, "Hi there,"), draft.Body)
}
