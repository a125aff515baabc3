// Package metadata extracts request metadata (client IP, User-Agent,
// correlation ID) and seeds the ambient audit context so every event emitted
// while handling the request carries it.
package metadata

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"audittrail/pkg/auditcontext"
)

// Header carrying a caller-supplied correlation ID. When absent a fresh UUID
// is generated. The resolved value is echoed back on the response.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID resolves or generates the request correlation ID and stores it
// in the ambient audit context. Apply it early in the chain.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := auditcontext.WithCorrelationID(r.Context(), correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Origin stamps the emitting application and component into the ambient audit
// context for every request.
func Origin(application, component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auditcontext.WithOrigin(r.Context(), application, component)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientMetadata extracts the client IP address and User-Agent from the
// request and stores them in the ambient audit context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auditcontext.WithNetwork(r.Context(),
			ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP from the request, handling
// proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" (or "[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}
	return ""
}
