package payment

import "context"

// Store keeps processed payments for status lookups and refunds. Entries are
// demo state, not durable ledgers, so TTL-based expiry is acceptable.
type Store interface {
	// Put saves or replaces a payment by its PaymentID.
	Put(ctx context.Context, resp Response) error

	// Get returns a payment by ID, or sentinel.ErrNotFound.
	Get(ctx context.Context, paymentID string) (Response, error)
}
