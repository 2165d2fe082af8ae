package leadstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

func newTestStore(leads ...*core.Lead) *MemoryStore {
	return NewMemoryStore(leads, nil, zap.NewNop())
}

func TestGetUnknownLead(t *testing.T) {
	store := newTestStore()
	_, err := store.Get(42)
	assert.ErrorIs(t, err, core.ErrLeadNotFound)
}

func TestReplaceAppliesInitialValues(t *testing.T) {
	store := newTestStore(&core.Lead{ID: 1, Name: "Acme Roofing", Email: "owner@example.com"})

	lead, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, core.VerificationPending, lead.Verification)
	assert.Equal(t, core.StepNotSent, lead.SequenceStep)
	assert.Equal(t, "Acme Roofing", lead.OwnerName, "owner name falls back to the business name")
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	store := newTestStore(&core.Lead{
		ID:    1,
		Name:  "Acme Roofing",
		Email: "owner@example.com",
		Notes: "met at trade show",
	})

	subject := "Quick thought"
	updated, err := store.Update(1, core.LeadUpdate{EmailSubject: &subject})
	require.NoError(t, err)

	assert.Equal(t, "Quick thought", updated.EmailSubject)
	assert.Equal(t, "met at trade show", updated.Notes, "unset fields stay untouched")
	assert.Equal(t, "owner@example.com", updated.Email)
}

func TestUpdateClearScheduledAt(t *testing.T) {
	scheduled := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	store := newTestStore(&core.Lead{ID: 1, Email: "owner@example.com", ScheduledAt: &scheduled})

	updated, err := store.Update(1, core.LeadUpdate{ClearScheduledAt: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ScheduledAt)
}

func TestGetReturnsCopy(t *testing.T) {
	store := newTestStore(&core.Lead{
		ID:    1,
		Email: "owner@example.com",
		Extra: map[string]string{"source": "import"},
	})

	lead, err := store.Get(1)
	require.NoError(t, err)
	lead.Email = "tampered@example.com"
	lead.Extra["source"] = "tampered"

	fresh, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", fresh.Email)
	assert.Equal(t, "import", fresh.Extra["source"])
}

func TestListOrdersByID(t *testing.T) {
	store := newTestStore(
		&core.Lead{ID: 3, Email: "c@example.com"},
		&core.Lead{ID: 1, Email: "a@example.com"},
		&core.Lead{ID: 2, Email: "b@example.com"},
	)

	leads := store.List(core.LeadFilter{})
	require.Len(t, leads, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{leads[0].ID, leads[1].ID, leads[2].ID})
}

func TestListFilters(t *testing.T) {
	valid := core.VerificationValid
	hasDraft := true

	store := newTestStore(
		&core.Lead{ID: 1, Email: "a@example.com", Verification: core.VerificationValid, EmailDraft: "Hi"},
		&core.Lead{ID: 2, Email: "b@example.com", Verification: core.VerificationValid},
		&core.Lead{ID: 3, Email: "c@example.com", Verification: core.VerificationInvalid, EmailDraft: "Hi"},
	)

	leads := store.List(core.LeadFilter{Verification: &valid, HasDraft: &hasDraft})
	require.Len(t, leads, 1)
	assert.Equal(t, 1, leads[0].ID)
}

func TestPersistWithoutPersister(t *testing.T) {
	store := newTestStore(&core.Lead{ID: 1, Email: "owner@example.com"})
	assert.NoError(t, store.Persist())
}
