package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

type fakeTransport struct {
	delivered []core.OutboundEmail
	err       error
}

func (t *fakeTransport) Deliver(ctx context.Context, msg core.OutboundEmail) error {
	if t.err != nil {
		return t.err
	}
	t.delivered = append(t.delivered, msg)
	return nil
}

func newTestEngine(transport Transport, cap int, configured bool) *Engine {
	clock := &movableClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	return NewEngine(transport, NewDailyQuota(cap, clock), configured, zap.NewNop())
}

func msgs(n int) []core.OutboundEmail {
	out := make([]core.OutboundEmail, n)
	for i := range out {
		out[i] = core.OutboundEmail{
			To:      fmt.Sprintf("lead%d@example.com", i),
			Subject: "Quick thought",
			Body:    "Hi there",
		}
	}
	return out
}

func TestSendSuccess(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(transport, 10, true)

	result := e.Send(context.Background(), msgs(1)[0])
	assert.True(t, result.Success)
	assert.Len(t, transport.delivered, 1)
	assert.Equal(t, 9, e.Remaining())
}

func TestSendUnconfiguredRelay(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(transport, 10, false)

	result := e.Send(context.Background(), msgs(1)[0])
	assert.False(t, result.Success)
	assert.Equal(t, "relay credentials not configured", result.Diagnostic)
	assert.Empty(t, transport.delivered)
}

func TestSendFailureDoesNotConsumeQuota(t *testing.T) {
	transport := &fakeTransport{err: errors.New("421 service not available")}
	e := newTestEngine(transport, 10, true)

	result := e.Send(context.Background(), msgs(1)[0])
	assert.False(t, result.Success)
	assert.Equal(t, 10, e.Remaining())
}

func TestSendBatchStopsAtDailyCap(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(transport, 2, true)

	results := e.SendBatch(context.Background(), msgs(5), 600)

	require.Len(t, results, 5)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	for _, result := range results[2:] {
		assert.False(t, result.Success)
		assert.Equal(t, "daily email cap reached (2)", result.Diagnostic)
	}

	// results stay in input order and no further I/O happens past the cap
	assert.Len(t, transport.delivered, 2)
	assert.Equal(t, "lead0@example.com", transport.delivered[0].To)
	assert.Equal(t, "lead1@example.com", transport.delivered[1].To)
}

func TestSendBatchEmpty(t *testing.T) {
	e := newTestEngine(&fakeTransport{}, 2, true)
	assert.Empty(t, e.SendBatch(context.Background(), nil, 5))
}

func TestClassifyDeliveryError(t *testing.T) {
	tests := []struct {
		err  string
		want string
	}{
		{"535 5.7.8 authentication credentials invalid", "authentication failed, check the relay credentials"},
		{"550 5.1.1 recipient address rejected", "recipient refused by relay"},
		{"421 service not available", "smtp error: 421 service not available"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDeliveryError(errors.New(tt.err)))
	}
}
