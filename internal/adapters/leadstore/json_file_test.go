package leadstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/cold-outreach/internal/core"
)

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	snapshot := NewJSONFile(path)

	leads := []*core.Lead{
		{ID: 1, Name: "Acme Roofing", Email: "owner@example.com", Verification: core.VerificationValid, SequenceStep: core.StepInitial},
		{ID: 2, Name: "Best Plumbing", Email: "info@example.org", Verification: core.VerificationPending, SequenceStep: core.StepNotSent},
	}
	require.NoError(t, snapshot.Save(leads))

	loaded, err := snapshot.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Acme Roofing", loaded[0].Name)
	assert.Equal(t, core.StepInitial, loaded[0].SequenceStep)
	assert.Equal(t, core.VerificationPending, loaded[1].Verification)
}

func TestJSONFileMissingSnapshot(t *testing.T) {
	snapshot := NewJSONFile(filepath.Join(t.TempDir(), "missing.json"))

	leads, err := snapshot.Load()
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestJSONFileSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "leads.json")
	snapshot := NewJSONFile(path)

	require.NoError(t, snapshot.Save([]*core.Lead{{ID: 1, Email: "owner@example.com"}}))

	loaded, err := snapshot.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
