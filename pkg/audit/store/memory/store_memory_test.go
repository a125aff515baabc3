package memory

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audittrail/pkg/audit"
)

func TestAppendAndListRecent(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ev := audit.NewEvent("SEQ", "step", "res-"+strconv.Itoa(i), audit.ResultSuccess)
		require.NoError(t, s.Append(ctx, ev))
	}
	assert.Equal(t, 5, s.Count())

	recent, err := s.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "res-4", recent[0].Resource)
	assert.Equal(t, "res-2", recent[2].Resource)
}

func TestListRecentLimitExceedsCount(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, audit.NewEvent("A", "a", "r", audit.ResultSuccess)))

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestClear(t *testing.T) {
	s := New()
	require.NoError(t, s.Append(context.Background(), audit.NewEvent("A", "a", "r", audit.ResultSuccess)))
	s.Clear()
	assert.Zero(t, s.Count())
}
