package payment

import "fmt"

// Gateway abstracts an upstream payment processor. Real deployments would
// implement this against Stripe, Adyen, and friends; this repo ships a mock.
type Gateway interface {
	// ProcessPayment authorizes and captures one payment.
	ProcessPayment(req Request) (GatewayResponse, error)

	// RefundPayment refunds a captured transaction.
	RefundPayment(transactionID string, amountMinor int64) (GatewayResponse, error)

	// Available reports whether the gateway is accepting traffic.
	Available() bool

	// Name identifies the gateway in logs and audit events.
	Name() string
}

// GatewayError reports a gateway-level failure, as opposed to a decline,
// which is a normal business outcome carried in GatewayResponse.
type GatewayError struct {
	Gateway   string
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Gateway, e.Message, e.Code)
}
