// Package middleware holds the HTTP middleware for the console's outer
// router: request correlation ids and per-client rate limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKeyRequestID struct{}

// maxInboundRequestID caps how much of a caller-supplied id we are willing
// to echo into logs and upstream headers.
const maxInboundRequestID = 64

// RequestID tags every request with a correlation id. A sane inbound
// X-Request-ID is kept so multi-hop traces stay on one id; anything
// missing or oversized is replaced with a fresh UUID. The id is echoed on
// the response and travels the request context so the backend client can
// stamp it onto the engine calls the request fans out to.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > maxInboundRequestID {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// WithRequestID returns a context carrying the given correlation id. Used
// by the middleware and by callers that originate work outside a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestIDFromContext returns the correlation id, or "" when the context
// did not pass through RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}
