// Package handler exposes the payment service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"audittrail/internal/payment"
	"audittrail/pkg/platform/middleware/metadata"
	"audittrail/pkg/platform/sentinel"
)

// Handler wires payment HTTP endpoints to the service.
type Handler struct {
	service *payment.Service
	gateway payment.Gateway
	logger  *slog.Logger
}

// New creates a payment handler.
func New(service *payment.Service, gateway payment.Gateway, logger *slog.Logger) *Handler {
	return &Handler{service: service, gateway: gateway, logger: logger}
}

// Register mounts the payment routes. Every route runs behind the metadata
// middleware so emitted audit events carry correlation ID, client IP, and
// User-Agent.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(metadata.CorrelationID)
		r.Use(metadata.ClientMetadata)

		r.Post("/process", h.processPayment)
		r.Get("/health", h.health)
		r.Get("/{paymentID}", h.paymentStatus)
		r.Post("/{paymentID}/refund", h.refundPayment)
	})
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	resp, err := h.service.Process(r.Context(), req)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			h.writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "payment processing failed", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "internal_error", "payment processing failed")
		return
	}

	status := http.StatusOK
	if resp.Status != payment.StatusCompleted {
		// Declines and failures are business outcomes; 402 distinguishes them
		// from transport-level errors.
		status = http.StatusPaymentRequired
	}
	h.writeJSON(w, r, status, resp)
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request", "payment ID is required")
		return
	}

	resp, err := h.service.Status(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "not_found", "payment not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "payment lookup failed", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "internal_error", "payment lookup failed")
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) refundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request", "payment ID is required")
		return
	}

	resp, err := h.service.Refund(r.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			h.writeError(w, r, http.StatusNotFound, "not_found", "payment not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			h.writeError(w, r, http.StatusConflict, "invalid_state", err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "refund failed", "error", err.Error())
			h.writeError(w, r, http.StatusInternalServerError, "internal_error", "refund failed")
		}
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	auditReady := h.service.Ready(r.Context())
	gatewayUp := h.gateway.Available()

	status := http.StatusOK
	overall := "healthy"
	if !auditReady || !gatewayUp {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	h.writeJSON(w, r, status, map[string]any{
		"status":        overall,
		"audit_ready":   auditReady,
		"gateway_ready": gatewayUp,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, r, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
