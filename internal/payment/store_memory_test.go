package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audittrail/pkg/platform/sentinel"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	resp := Response{PaymentID: "pay-1", Status: StatusCompleted, AmountMinor: 49_99}
	require.NoError(t, s.Put(ctx, resp))

	got, err := s.Get(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Response{PaymentID: "pay-1", Status: StatusCompleted}))
	require.NoError(t, s.Put(ctx, Response{PaymentID: "pay-1", Status: StatusRefunded}))

	got, err := s.Get(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, got.Status)
}

func TestMemoryStoreMissing(t *testing.T) {
	s := NewMemoryStore(0)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Response{PaymentID: "pay-1", Status: StatusCompleted}))
	time.Sleep(50 * time.Millisecond)

	_, err := s.Get(ctx, "pay-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
