package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// Submission rate defaults: 20 tickets per second with short bursts.
const (
	defaultSubmitRate  = rate.Limit(20)
	defaultSubmitBurst = 40
)

// RequestID tags every request with an id for log correlation, honouring a
// caller-supplied one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// SubmitLimit throttles ticket submissions with a shared token bucket.
func SubmitLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "too many submissions, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
