package payment

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const mockGatewayName = "MockPaymentGateway"

// Test card numbers that trigger fixed outcomes, mirroring the conventions of
// real gateway sandboxes.
const (
	CardDeclined          = "4000000000000002"
	CardInsufficientFunds = "4000000000009995"
	CardLost              = "4000000000009987"
	CardStolen            = "4000000000009979"
	CardExpired           = "4000000000000069"
	CardInvalidCVV        = "4000000000000127"
)

// Amount limits, in minor units.
const (
	maxAmountMinor = 10_000_00 // anything above is declined
	minAmountMinor = 1         // anything below fails
)

// MockGateway simulates a payment processor: deterministic outcomes for the
// test card numbers above, probabilistic declines and faults otherwise. The
// randomness source and processing delay are injectable so tests are exact.
type MockGateway struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay func() time.Duration
}

// MockOption customizes a MockGateway.
type MockOption func(*MockGateway)

// WithRand replaces the randomness source. Seed it for deterministic tests.
func WithRand(rng *rand.Rand) MockOption {
	return func(g *MockGateway) { g.rng = rng }
}

// WithoutDelay removes the simulated processing delay.
func WithoutDelay() MockOption {
	return func(g *MockGateway) { g.delay = func() time.Duration { return 0 } }
}

// NewMockGateway builds the simulator with a 1-3s simulated processing delay.
func NewMockGateway(opts ...MockOption) *MockGateway {
	g := &MockGateway{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation doesn't need crypto rand
	}
	g.delay = func() time.Duration {
		return time.Second + time.Duration(g.random()*2*float64(time.Second))
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *MockGateway) random() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Name identifies the gateway.
func (g *MockGateway) Name() string { return mockGatewayName }

// Available simulates 99.9% uptime.
func (g *MockGateway) Available() bool { return g.random() > 0.001 }

// ProcessPayment runs the scenario table: fixed test cards first, then
// probabilistic faults and declines, then amount limits, then approval.
func (g *MockGateway) ProcessPayment(req Request) (GatewayResponse, error) {
	start := time.Now()
	if d := g.delay(); d > 0 {
		time.Sleep(d)
	}
	elapsed := time.Since(start)

	txnID := "GW-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	// Gateway-level faults, not business declines.
	if g.random() < 0.01 {
		return GatewayResponse{}, &GatewayError{
			Gateway: mockGatewayName, Code: "TIMEOUT",
			Message: "network timeout", Retryable: true,
		}
	}
	if g.random() < 0.001 {
		return GatewayResponse{}, &GatewayError{
			Gateway: mockGatewayName, Code: "GATEWAY_UNAVAILABLE",
			Message: "gateway temporarily unavailable", Retryable: true,
		}
	}

	card := strings.NewReplacer(" ", "", "-", "").Replace(req.CardNumber)
	switch card {
	case CardDeclined:
		return declined(txnID, "CARD_DECLINED", "Card declined by issuer", elapsed), nil
	case CardInsufficientFunds:
		return declined(txnID, "INSUFFICIENT_FUNDS", "Insufficient funds", elapsed), nil
	case CardLost:
		return declined(txnID, "LOST_CARD", "Lost card", elapsed), nil
	case CardStolen:
		return declined(txnID, "STOLEN_CARD", "Stolen card", elapsed), nil
	case CardExpired:
		return declined(txnID, "EXPIRED_CARD", "Card expired", elapsed), nil
	case CardInvalidCVV:
		return declined(txnID, "INVALID_CVV", "Invalid security code", elapsed), nil
	}

	if req.AmountMinor > 5_000_00 && g.random() < 0.005 {
		return declined(txnID, "FRAUD_DETECTED", "Fraud detection triggered", elapsed), nil
	}
	if g.random() < 0.02 {
		return declined(txnID, "INSUFFICIENT_FUNDS", "Insufficient funds", elapsed), nil
	}
	if g.random() < 0.01 {
		return declined(txnID, "CARD_DECLINED", "Card declined by issuer", elapsed), nil
	}
	if g.random() < 0.005 {
		return declined(txnID, "EXPIRED_CARD", "Card expired", elapsed), nil
	}
	if g.random() < 0.005 {
		return declined(txnID, "INVALID_CVV", "Invalid security code", elapsed), nil
	}

	if req.AmountMinor > maxAmountMinor {
		return declined(txnID, "AMOUNT_LIMIT_EXCEEDED", "Amount exceeds daily limit", elapsed), nil
	}
	if req.AmountMinor < minAmountMinor {
		return declined(txnID, "AMOUNT_TOO_SMALL", "Amount too small", elapsed), nil
	}

	return GatewayResponse{
		Approved:             true,
		GatewayTransactionID: txnID,
		ResponseCode:         "SUCCESS",
		ResponseMessage:      "Payment approved",
		ProcessingTime:       elapsed,
		Timestamp:            time.Now().UTC(),
	}, nil
}

// RefundPayment always succeeds in the simulation.
func (g *MockGateway) RefundPayment(transactionID string, amountMinor int64) (GatewayResponse, error) {
	if transactionID == "" {
		return GatewayResponse{}, &GatewayError{
			Gateway: mockGatewayName, Code: "INVALID_TRANSACTION",
			Message: "transaction id is required",
		}
	}
	if amountMinor <= 0 {
		return GatewayResponse{}, &GatewayError{
			Gateway: mockGatewayName, Code: "AMOUNT_TOO_SMALL",
			Message: fmt.Sprintf("refund amount must be positive, got %d", amountMinor),
		}
	}
	return GatewayResponse{
		Approved:             true,
		GatewayTransactionID: transactionID,
		ResponseCode:         "REFUND_SUCCESS",
		ResponseMessage:      "Refund processed successfully",
		Timestamp:            time.Now().UTC(),
	}, nil
}

func declined(txnID, code, message string, elapsed time.Duration) GatewayResponse {
	return GatewayResponse{
		GatewayTransactionID: txnID,
		ResponseCode:         code,
		ResponseMessage:      message,
		ProcessingTime:       elapsed,
		Timestamp:            time.Now().UTC(),
	}
}
