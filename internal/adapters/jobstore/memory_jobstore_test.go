package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

func testJob(leadID int) *core.ScheduledJob {
	return &core.ScheduledJob{
		LeadID:    leadID,
		Subject:   "Quick thought",
		Body:      "Hi there",
		RunDate:   time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryJobStorePutReplaces(t *testing.T) {
	store := NewMemoryJobStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testJob(1)))

	replacement := testJob(1)
	replacement.Subject = "New subject"
	require.NoError(t, store.Put(ctx, replacement))

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "New subject", jobs[0].Subject)
}

func TestMemoryJobStoreGetAbsent(t *testing.T) {
	store := NewMemoryJobStore(zap.NewNop())

	job, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestMemoryJobStoreDeleteAbsent(t *testing.T) {
	store := NewMemoryJobStore(zap.NewNop())
	assert.NoError(t, store.Delete(context.Background(), 42))
}

func TestMemoryJobStoreReturnsCopies(t *testing.T) {
	store := NewMemoryJobStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testJob(1)))

	job, err := store.Get(ctx, 1)
	require.NoError(t, err)
	job.Subject = "tampered"

	fresh, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Quick thought", fresh.Subject)
}
