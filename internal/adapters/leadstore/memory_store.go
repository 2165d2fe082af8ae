package leadstore

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// Persister writes a snapshot of the working set to durable storage
type Persister interface {
	Save(leads []*core.Lead) error
}

// MemoryStore holds the working set of leads for the loaded dataset.
// The internal mutex only protects the map itself; read-modify-write
// cycles on the same lead from different flows must be coordinated by
// the callers, as the store contract states.
type MemoryStore struct {
	mu        sync.RWMutex
	leads     map[int]*core.Lead
	persister Persister
	logger    *zap.Logger
}

// NewMemoryStore creates a store over an initial dataset. persister may
// be nil, in which case Persist is a no-op.
func NewMemoryStore(leads []*core.Lead, persister Persister, logger *zap.Logger) *MemoryStore {
	s := &MemoryStore{
		leads:     make(map[int]*core.Lead, len(leads)),
		persister: persister,
		logger:    logger,
	}
	s.Replace(leads)
	return s
}

// Get retrieves a lead by id
func (s *MemoryStore) Get(id int) (*core.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, core.ErrLeadNotFound
	}
	return copyLead(lead), nil
}

// Update merges the supplied fields into the lead. Unset fields are
// never clobbered.
func (s *MemoryStore) Update(id int, upd core.LeadUpdate) (*core.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, core.ErrLeadNotFound
	}

	applyUpdate(lead, upd)
	return copyLead(lead), nil
}

// List returns leads matching the filter, ordered by id
func (s *MemoryStore) List(filter core.LeadFilter) []*core.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]*core.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if !matches(lead, filter) {
			continue
		}
		leads = append(leads, copyLead(lead))
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID < leads[j].ID })
	return leads
}

// Replace swaps in a freshly loaded dataset. Leads without a
// verification status or sequence step get the initial values.
func (s *MemoryStore) Replace(leads []*core.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = make(map[int]*core.Lead, len(leads))
	for _, lead := range leads {
		stored := *copyLead(lead)
		if stored.Verification == "" {
			stored.Verification = core.VerificationPending
		}
		if stored.SequenceStep == "" {
			stored.SequenceStep = core.StepNotSent
		}
		if stored.OwnerName == "" {
			stored.OwnerName = stored.Name
		}
		s.leads[stored.ID] = &stored
	}
}

// Persist writes the current working set through the configured
// persister
func (s *MemoryStore) Persist() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(s.List(core.LeadFilter{}))
}

// copyLead clones a lead, including its Extra map, so callers never
// share mutable state with the store.
func copyLead(lead *core.Lead) *core.Lead {
	found := *lead
	if lead.Extra != nil {
		found.Extra = make(map[string]string, len(lead.Extra))
		for k, v := range lead.Extra {
			found.Extra[k] = v
		}
	}
	return &found
}

func applyUpdate(lead *core.Lead, upd core.LeadUpdate) {
	if upd.Name != nil {
		lead.Name = *upd.Name
	}
	if upd.Email != nil {
		lead.Email = *upd.Email
	}
	if upd.OwnerName != nil {
		lead.OwnerName = *upd.OwnerName
	}
	if upd.Notes != nil {
		lead.Notes = *upd.Notes
	}
	if upd.Verification != nil {
		lead.Verification = *upd.Verification
	}
	if upd.VerificationCheckedAt != nil {
		lead.VerificationCheckedAt = upd.VerificationCheckedAt
	}
	if upd.WebsiteScanSummary != nil {
		lead.WebsiteScanSummary = *upd.WebsiteScanSummary
	}
	if upd.WebsiteScanAt != nil {
		lead.WebsiteScanAt = upd.WebsiteScanAt
	}
	if upd.EmailSubject != nil {
		lead.EmailSubject = *upd.EmailSubject
	}
	if upd.EmailDraft != nil {
		lead.EmailDraft = *upd.EmailDraft
	}
	if upd.EmailSentAt != nil {
		lead.EmailSentAt = upd.EmailSentAt
	}
	if upd.SequenceStep != nil {
		lead.SequenceStep = *upd.SequenceStep
	}
	if upd.TheirLastReply != nil {
		lead.TheirLastReply = *upd.TheirLastReply
	}
	if upd.ReplyDraft != nil {
		lead.ReplyDraft = *upd.ReplyDraft
	}
	if upd.ScheduledAt != nil {
		lead.ScheduledAt = upd.ScheduledAt
	}
	if upd.ClearScheduledAt {
		lead.ScheduledAt = nil
	}
}

func matches(lead *core.Lead, filter core.LeadFilter) bool {
	if filter.Verification != nil && lead.Verification != *filter.Verification {
		return false
	}
	if filter.SequenceStep != nil && lead.SequenceStep != *filter.SequenceStep {
		return false
	}
	if filter.HasDraft != nil && (lead.EmailDraft != "") != *filter.HasDraft {
		return false
	}
	if filter.HasScan != nil && (lead.WebsiteScanSummary != "") != *filter.HasScan {
		return false
	}
	return true
}
