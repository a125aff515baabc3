package payment

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"audittrail/pkg/audit"
	"audittrail/pkg/auditcontext"
	"audittrail/pkg/platform/sentinel"
)

// captureSink records emitted audit events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureSink) Emit(_ context.Context, ev audit.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) Ready(context.Context) bool { return true }
func (c *captureSink) Close() error               { return nil }

func (c *captureSink) byType(eventType string) []audit.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []audit.Event
	for _, ev := range c.events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type PaymentServiceSuite struct {
	suite.Suite
	sink    *captureSink
	store   *MemoryStore
	service *Service
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.sink = &captureSink{}
	auditor, err := audit.NewLogger(s.sink, audit.WithEnricher(auditcontext.Enrich))
	s.Require().NoError(err)

	s.store = NewMemoryStore(0)
	gateway := NewMockGateway(WithRand(rand.New(maxSource{})), WithoutDelay())

	s.service, err = NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), auditor, gateway, s.store, nil)
	s.Require().NoError(err)
}

// waitForEvent polls for an async audit emission of the given type.
func (s *PaymentServiceSuite) waitForEvent(eventType string) audit.Event {
	s.T().Helper()
	return s.waitForEventWhere(eventType, func(audit.Event) bool { return true })
}

// waitForEventWhere polls for an async emission of the given type matching the
// predicate. Needed when sub-tests sharing a sink emit the same type with
// different results.
func (s *PaymentServiceSuite) waitForEventWhere(eventType string, match func(audit.Event) bool) audit.Event {
	s.T().Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, ev := range s.sink.byType(eventType) {
			if match(ev) {
				return ev
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.T().Fatalf("timed out waiting for %s event", eventType)
	return audit.Event{}
}

func (s *PaymentServiceSuite) TestNewService() {
	s.Run("nil logger returns error", func() {
		_, err := NewService(nil, nil, nil, nil, nil)
		s.Error(err)
		s.Contains(err.Error(), "logger is required")
	})

	s.Run("nil gateway returns error", func() {
		auditor, err := audit.NewLogger(&captureSink{})
		s.Require().NoError(err)
		_, err = NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), auditor, nil, s.store, nil)
		s.Error(err)
		s.Contains(err.Error(), "gateway is required")
	})
}

func (s *PaymentServiceSuite) TestProcessApproved() {
	resp, err := s.service.Process(context.Background(), validRequest())
	s.Require().NoError(err)

	s.Equal(StatusCompleted, resp.Status)
	s.Equal("pay-1", resp.PaymentID)
	s.NotEmpty(resp.TransactionID)
	s.EqualValues(144, resp.ProcessingFeeMinor) // 2.9% of 49.99
	s.False(resp.ProcessedAt.IsZero())

	stored, err := s.store.Get(context.Background(), "pay-1")
	s.Require().NoError(err)
	s.Equal(StatusCompleted, stored.Status)

	initiated := s.waitForEvent(EventPaymentInitiated)
	s.Equal("cust-1", initiated.ActorID)
	s.Equal("pay-1", initiated.SessionID)
	s.NotEmpty(initiated.CorrelationID)
	s.Equal("payment/pay-1", initiated.Resource)

	completed := s.waitForEvent(EventPaymentCompleted)
	s.Equal(audit.ResultSuccess, completed.Result)
	s.Equal(resp.TransactionID, completed.Details["transaction_id"])
}

func (s *PaymentServiceSuite) TestProcessDeclinedCard() {
	req := validRequest()
	req.CardNumber = CardDeclined

	resp, err := s.service.Process(context.Background(), req)
	s.Require().NoError(err)
	s.Equal(StatusDeclined, resp.Status)
	s.Zero(resp.ProcessingFeeMinor)

	declinedEv := s.waitForEvent(EventPaymentDeclined)
	s.Equal(audit.ResultDenied, declinedEv.Result)
}

func (s *PaymentServiceSuite) TestProcessInsufficientFundsIsFailure() {
	req := validRequest()
	req.CardNumber = CardInsufficientFunds

	resp, err := s.service.Process(context.Background(), req)
	s.Require().NoError(err)
	s.Equal(StatusFailed, resp.Status)

	failedEv := s.waitForEvent(EventPaymentFailed)
	s.Equal(audit.ResultFailure, failedEv.Result)
}

func (s *PaymentServiceSuite) TestProcessGatewayFault() {
	gateway := NewMockGateway(WithRand(rand.New(minSource{})), WithoutDelay())
	auditor, err := audit.NewLogger(s.sink, audit.WithEnricher(auditcontext.Enrich))
	s.Require().NoError(err)
	svc, err := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), auditor, gateway, s.store, nil)
	s.Require().NoError(err)

	resp, err := svc.Process(context.Background(), validRequest())
	s.Require().NoError(err)
	s.Equal(StatusFailed, resp.Status)
	s.Contains(resp.Message, "payment processing failed")

	errorEv := s.waitForEvent(EventPaymentError)
	s.Equal(audit.ResultFailure, errorEv.Result)
}

func (s *PaymentServiceSuite) TestProcessInvalidRequest() {
	req := validRequest()
	req.MerchantID = ""
	req.AmountMinor = -5

	_, err := s.service.Process(context.Background(), req)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	errorEv := s.waitForEvent(EventPaymentError)
	s.Equal(audit.ResultInvalid, errorEv.Result)
}

func (s *PaymentServiceSuite) TestProcessKeepsUpstreamCorrelationID() {
	ctx := auditcontext.WithCorrelationID(context.Background(), "corr-upstream")

	_, err := s.service.Process(ctx, validRequest())
	s.Require().NoError(err)

	initiated := s.waitForEvent(EventPaymentInitiated)
	s.Equal("corr-upstream", initiated.CorrelationID)
}

func (s *PaymentServiceSuite) TestStatus() {
	s.Run("missing payment returns not found", func() {
		_, err := s.service.Status(context.Background(), "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("existing payment is returned and audited", func() {
		_, err := s.service.Process(context.Background(), validRequest())
		s.Require().NoError(err)

		resp, err := s.service.Status(context.Background(), "pay-1")
		s.Require().NoError(err)
		s.Equal(StatusCompleted, resp.Status)

		ev := s.waitForEventWhere(EventStatusRequested, func(ev audit.Event) bool {
			return ev.Result == audit.ResultSuccess
		})
		s.Equal("payment/pay-1", ev.Resource)
	})
}

func (s *PaymentServiceSuite) TestRefund() {
	s.Run("missing payment returns not found", func() {
		_, err := s.service.Refund(context.Background(), "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("completed payment is refunded", func() {
		_, err := s.service.Process(context.Background(), validRequest())
		s.Require().NoError(err)

		resp, err := s.service.Refund(context.Background(), "pay-1")
		s.Require().NoError(err)
		s.Equal(StatusRefunded, resp.Status)

		stored, err := s.store.Get(context.Background(), "pay-1")
		s.Require().NoError(err)
		s.Equal(StatusRefunded, stored.Status)

		ev := s.waitForEventWhere(EventPaymentRefunded, func(ev audit.Event) bool {
			return ev.Result == audit.ResultSuccess
		})
		s.Equal("payment/pay-1", ev.Resource)
	})

	s.Run("refunding twice is an invalid state", func() {
		_, err := s.service.Process(context.Background(), validRequest())
		s.Require().NoError(err)
		_, err = s.service.Refund(context.Background(), "pay-1")
		s.Require().NoError(err)

		_, err = s.service.Refund(context.Background(), "pay-1")
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *PaymentServiceSuite) TestStartupShutdownEvents() {
	ctx := auditcontext.WithOrigin(context.Background(), "payment-service", "payment-processor")

	s.service.Startup(ctx)
	startup := s.waitForEvent(EventServiceStartup)
	s.Equal("payment-service", startup.Application)

	s.service.Shutdown(ctx)
	shutdown := s.sink.byType(EventServiceShutdown)
	s.Require().Len(shutdown, 1)

	// The audit logger is closed after shutdown.
	s.False(s.service.Ready(ctx))
}

func TestProcessingFee(t *testing.T) {
	cases := []struct {
		amount int64
		fee    int64
	}{
		{100_00, 290}, // 2.9% of 100.00
		{10_00, 30},   // 29 rounds up to the floor
		{1_00, 30},    // floor applies
		{1, 30},       // floor applies
		{49_99, 144},  // truncating division
		{10_000_00, 29_000},
	}
	for _, tc := range cases {
		if got := ProcessingFee(tc.amount); got != tc.fee {
			t.Errorf("ProcessingFee(%d) = %d, want %d", tc.amount, got, tc.fee)
		}
	}
}
