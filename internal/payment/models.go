package payment

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a payment. Wire values are lowercase.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusDeclined   Status = "declined"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusPending    Status = "pending"
	StatusRefunded   Status = "refunded"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusDeclined, StatusFailed,
		StatusCancelled, StatusPending, StatusRefunded:
		return true
	}
	return false
}

// Request is a payment submission. Amounts are integer minor units (cents for
// USD) so arithmetic stays exact.
type Request struct {
	PaymentID      string          `json:"payment_id"`
	MerchantID     string          `json:"merchant_id"`
	CustomerID     string          `json:"customer_id"`
	AmountMinor    int64           `json:"amount_minor"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method"`
	CardNumber     string          `json:"card_number,omitempty"`
	Description    string          `json:"description,omitempty"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
}

// BillingAddress is the cardholder billing address.
type BillingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the request fields that processing depends on.
func (r Request) Validate() error {
	var missing []string
	if r.PaymentID == "" {
		missing = append(missing, "payment_id")
	}
	if r.MerchantID == "" {
		missing = append(missing, "merchant_id")
	}
	if r.CustomerID == "" {
		missing = append(missing, "customer_id")
	}
	if r.Currency == "" {
		missing = append(missing, "currency")
	}
	if r.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if r.AmountMinor <= 0 {
		return fmt.Errorf("amount must be positive, got %d", r.AmountMinor)
	}
	return nil
}

// Response is the outcome of a payment operation.
type Response struct {
	PaymentID          string    `json:"payment_id"`
	Status             Status    `json:"status"`
	TransactionID      string    `json:"transaction_id,omitempty"`
	AmountMinor        int64     `json:"amount_minor"`
	Currency           string    `json:"currency"`
	ProcessingFeeMinor int64     `json:"processing_fee_minor,omitempty"`
	Message            string    `json:"message,omitempty"`
	ProcessedAt        time.Time `json:"processed_at"`
}

// GatewayResponse is the raw outcome reported by a payment gateway.
type GatewayResponse struct {
	Approved             bool          `json:"approved"`
	GatewayTransactionID string        `json:"gateway_transaction_id"`
	ResponseCode         string        `json:"response_code"`
	ResponseMessage      string        `json:"response_message,omitempty"`
	ProcessingTime       time.Duration `json:"processing_time,omitempty"`
	Timestamp            time.Time     `json:"timestamp"`
}
