// Package middleware provides the HTTP middleware chain for the ViaSegura
// API: request identity, tracing, logging, recovery, rate limiting and the
// JSON content-type contract.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader carries the request ID between services and back to the
// caller. Inbound values are trusted verbatim so IDs survive gateway hops.
const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// newRequestID mints a fresh ID. The prefix marks locally minted IDs apart
// from gateway-assigned ones in log searches.
func newRequestID() string {
	return "req_" + uuid.New().String()[:22]
}

// RequestID ensures every request carries an ID: the inbound header value
// when present, a freshly minted one otherwise. The ID is stored in the
// request context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID, or the empty
// string outside the middleware chain.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
