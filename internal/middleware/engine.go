package middleware

import (
	"net/http"

	"github.com/dukerupert/grocerycalc/internal/shopping"
)

// WithEngine attaches e to every request context.
func WithEngine(e *shopping.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shopping.WithEngine(r.Context(), e)))
		})
	}
}
