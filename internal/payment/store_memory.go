package payment

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"audittrail/pkg/platform/sentinel"
)

// MemoryStore keeps payments in an expiring in-process cache.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore builds a store whose entries expire after ttl. A zero ttl
// means entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{cache: gocache.New(ttl, 10*time.Minute)}
}

// Put saves or replaces a payment.
func (s *MemoryStore) Put(_ context.Context, resp Response) error {
	s.cache.SetDefault(resp.PaymentID, resp)
	return nil
}

// Get returns a payment by ID, or sentinel.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, paymentID string) (Response, error) {
	v, ok := s.cache.Get(paymentID)
	if !ok {
		return Response{}, fmt.Errorf("%w: payment %s", sentinel.ErrNotFound, paymentID)
	}
	return v.(Response), nil
}
