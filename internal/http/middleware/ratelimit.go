package middlewarex

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit sheds load on the public gateway routes. A refused notification is
// redelivered by the gateway later.
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil && !l.Allow() {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
