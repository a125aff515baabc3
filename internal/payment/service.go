package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"audittrail/internal/platform/metrics"
	"audittrail/pkg/audit"
	"audittrail/pkg/auditcontext"
	"audittrail/pkg/platform/sentinel"
)

// Audit event types emitted by the payment service.
const (
	EventServiceStartup   = "SERVICE_STARTUP"
	EventServiceShutdown  = "SERVICE_SHUTDOWN"
	EventPaymentInitiated = "PAYMENT_INITIATED"
	EventPaymentCompleted = "PAYMENT_COMPLETED"
	EventPaymentDeclined  = "PAYMENT_DECLINED"
	EventPaymentFailed    = "PAYMENT_FAILED"
	EventPaymentError     = "PAYMENT_ERROR"
	EventPaymentRefunded  = "PAYMENT_REFUNDED"
	EventStatusRequested  = "PAYMENT_STATUS_REQUESTED"
)

// Processing fee: 2.9% with a 30-minor-unit floor.
const (
	feeNumerator   = 29
	feeDenominator = 1000
	feeFloorMinor  = 30
)

// Gateway response codes that map to a failed (rather than declined) payment.
var failureCodes = map[string]struct{}{
	"INSUFFICIENT_FUNDS": {},
	"AMOUNT_TOO_SMALL":   {},
}

// Service processes payments through a gateway and emits an audit event for
// every significant transition. Audit emission is best-effort: a sink outage
// never fails a payment, it only logs a warning and bumps a counter.
type Service struct {
	logger  *slog.Logger
	auditor *audit.Logger
	gateway Gateway
	store   Store
	metrics *metrics.Metrics
}

// NewService wires the service. Logger, auditor, gateway, and store are
// required; metrics may be nil.
func NewService(logger *slog.Logger, auditor *audit.Logger, gateway Gateway, store Store, m *metrics.Metrics) (*Service, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit logger is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if store == nil {
		return nil, fmt.Errorf("payment store is required")
	}
	return &Service{logger: logger, auditor: auditor, gateway: gateway, store: store, metrics: m}, nil
}

// Startup emits the service startup audit event.
func (s *Service) Startup(ctx context.Context) {
	s.emit(ctx, s.auditor.Event(ctx, EventServiceStartup, "initialize", "payment-service",
		audit.ResultSuccess, audit.WithMessage("payment service started")))
}

// Shutdown emits the shutdown audit event and closes the audit logger.
func (s *Service) Shutdown(ctx context.Context) {
	// Synchronous on purpose: the sink closes right after.
	if err := s.auditor.Emit(ctx, s.auditor.Event(ctx, EventServiceShutdown, "cleanup",
		"payment-service", audit.ResultSuccess, audit.WithMessage("payment service shutting down"))); err != nil {
		s.logger.WarnContext(ctx, "failed to emit shutdown audit event", "error", err.Error())
	}
	if err := s.auditor.Close(); err != nil {
		s.logger.WarnContext(ctx, "failed to close audit logger", "error", err.Error())
	}
}

// Process validates and settles one payment. Gateway declines are normal
// outcomes, returned as Responses; gateway faults produce a failed Response
// and an error event.
func (s *Service) Process(ctx context.Context, req Request) (Response, error) {
	ctx = ensureCorrelation(ctx)
	ctx = auditcontext.WithActorID(ctx, req.CustomerID)
	ctx = auditcontext.WithSessionID(ctx, req.PaymentID)
	resource := "payment/" + req.PaymentID

	if err := req.Validate(); err != nil {
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentError, "process_payment", resource,
			audit.ResultInvalid, audit.WithMessage(err.Error())))
		return Response{}, fmt.Errorf("%w: %w", sentinel.ErrInvalidState, err)
	}

	s.emit(ctx, s.auditor.Event(ctx, EventPaymentInitiated, "process_payment", resource,
		audit.ResultSuccess,
		audit.WithMessage("payment processing initiated"),
		audit.WithDetails(map[string]any{
			"amount_minor":   req.AmountMinor,
			"currency":       req.Currency,
			"payment_method": req.PaymentMethod,
			"merchant_id":    req.MerchantID,
		}),
	))

	s.logger.InfoContext(ctx, "processing payment",
		"payment_id", req.PaymentID, "amount_minor", req.AmountMinor, "currency", req.Currency)

	gw, err := s.gateway.ProcessPayment(req)
	if err != nil {
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentError, "process_payment", resource,
			audit.ResultFailure, audit.WithMessage("gateway error: "+err.Error())))
		s.logger.ErrorContext(ctx, "gateway error", "payment_id", req.PaymentID, "error", err.Error())

		resp := Response{
			PaymentID:   req.PaymentID,
			Status:      StatusFailed,
			AmountMinor: req.AmountMinor,
			Currency:    req.Currency,
			Message:     "payment processing failed: " + err.Error(),
			ProcessedAt: time.Now().UTC(),
		}
		s.save(ctx, resp)
		s.metrics.IncPayment(string(resp.Status))
		return resp, nil
	}

	resp := s.toResponse(req, gw)
	s.save(ctx, resp)
	s.metrics.IncPayment(string(resp.Status))

	details := map[string]any{
		"transaction_id":       resp.TransactionID,
		"status":               string(resp.Status),
		"processing_fee_minor": resp.ProcessingFeeMinor,
		"gateway":              s.gateway.Name(),
		"gateway_code":         gw.ResponseCode,
	}

	switch resp.Status {
	case StatusCompleted:
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentCompleted, "process_payment", resource,
			audit.ResultSuccess, audit.WithMessage("payment processed successfully"),
			audit.WithDetails(details)))
	case StatusDeclined:
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentDeclined, "process_payment", resource,
			audit.ResultDenied, audit.WithMessage("payment declined: "+resp.Message),
			audit.WithDetails(details)))
	default:
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentFailed, "process_payment", resource,
			audit.ResultFailure, audit.WithMessage("payment failed: "+resp.Message),
			audit.WithDetails(details)))
	}

	s.logger.InfoContext(ctx, "payment processed",
		"payment_id", req.PaymentID, "status", string(resp.Status))
	return resp, nil
}

// Status looks up a previously processed payment.
func (s *Service) Status(ctx context.Context, paymentID string) (Response, error) {
	ctx = ensureCorrelation(ctx)
	resource := "payment/" + paymentID

	resp, err := s.store.Get(ctx, paymentID)
	if err != nil {
		result := audit.ResultFailure
		if errors.Is(err, sentinel.ErrNotFound) {
			result = audit.ResultInvalid
		}
		s.emit(ctx, s.auditor.Event(ctx, EventStatusRequested, "get_status", resource,
			result, audit.WithMessage(err.Error())))
		return Response{}, err
	}

	s.emit(ctx, s.auditor.Event(ctx, EventStatusRequested, "get_status", resource,
		audit.ResultSuccess, audit.WithMessage("payment status retrieved")))
	return resp, nil
}

// Refund refunds a completed payment through the gateway and records the new
// state.
func (s *Service) Refund(ctx context.Context, paymentID string) (Response, error) {
	ctx = ensureCorrelation(ctx)
	ctx = auditcontext.WithSessionID(ctx, paymentID)
	resource := "payment/" + paymentID

	resp, err := s.store.Get(ctx, paymentID)
	if err != nil {
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentRefunded, "refund_payment", resource,
			audit.ResultInvalid, audit.WithMessage(err.Error())))
		return Response{}, err
	}
	if resp.Status != StatusCompleted {
		err := fmt.Errorf("%w: cannot refund payment in status %q", sentinel.ErrInvalidState, resp.Status)
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentRefunded, "refund_payment", resource,
			audit.ResultDenied, audit.WithMessage(err.Error())))
		return Response{}, err
	}

	if _, err := s.gateway.RefundPayment(resp.TransactionID, resp.AmountMinor); err != nil {
		s.emit(ctx, s.auditor.Event(ctx, EventPaymentRefunded, "refund_payment", resource,
			audit.ResultFailure, audit.WithMessage("gateway refund failed: "+err.Error())))
		return Response{}, fmt.Errorf("refund %s: %w", paymentID, err)
	}

	resp.Status = StatusRefunded
	resp.Message = "payment refunded"
	resp.ProcessedAt = time.Now().UTC()
	s.save(ctx, resp)
	s.metrics.IncPayment(string(StatusRefunded))

	s.emit(ctx, s.auditor.Event(ctx, EventPaymentRefunded, "refund_payment", resource,
		audit.ResultSuccess, audit.WithMessage("payment refunded"),
		audit.WithDetails(map[string]any{"transaction_id": resp.TransactionID})))
	return resp, nil
}

// Ready reports whether the audit pipeline can accept events.
func (s *Service) Ready(ctx context.Context) bool {
	return s.auditor.Ready(ctx)
}

// toResponse maps a gateway outcome onto the payment model.
func (s *Service) toResponse(req Request, gw GatewayResponse) Response {
	resp := Response{
		PaymentID:     req.PaymentID,
		TransactionID: gw.GatewayTransactionID,
		AmountMinor:   req.AmountMinor,
		Currency:      req.Currency,
		Message:       gw.ResponseMessage,
		ProcessedAt:   time.Now().UTC(),
	}
	switch {
	case gw.Approved:
		resp.Status = StatusCompleted
		resp.ProcessingFeeMinor = ProcessingFee(req.AmountMinor)
	default:
		if _, ok := failureCodes[gw.ResponseCode]; ok {
			resp.Status = StatusFailed
		} else {
			resp.Status = StatusDeclined
		}
	}
	return resp
}

// save persists the payment outcome; lookup state is best-effort in the demo.
func (s *Service) save(ctx context.Context, resp Response) {
	if err := s.store.Put(ctx, resp); err != nil {
		s.logger.WarnContext(ctx, "failed to store payment",
			"payment_id", resp.PaymentID, "error", err.Error())
	}
}

// emit delivers an audit event without blocking the payment path. Failures
// are logged and counted, never propagated.
func (s *Service) emit(ctx context.Context, ev audit.Event) {
	done := s.auditor.EmitAsyncSafe(ctx, ev)
	go func() {
		if err := <-done; err != nil {
			s.metrics.IncEmitFailed()
			s.logger.Warn("failed to emit audit event",
				"event_type", ev.EventType, "error", err.Error())
			return
		}
		s.metrics.IncEmitted()
	}()
}

// ensureCorrelation guarantees a correlation id without clobbering one set by
// upstream middleware.
func ensureCorrelation(ctx context.Context) context.Context {
	if auditcontext.CorrelationID(ctx) != "" {
		return ctx
	}
	return auditcontext.WithCorrelationID(ctx, uuid.NewString())
}

// ProcessingFee computes the gateway fee in minor units: 2.9% with a floor.
func ProcessingFee(amountMinor int64) int64 {
	fee := amountMinor * feeNumerator / feeDenominator
	if fee < feeFloorMinor {
		fee = feeFloorMinor
	}
	return fee
}
