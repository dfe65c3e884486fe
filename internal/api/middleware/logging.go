package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gameofchests/internal/middleware"
)

// Logging tags each API request with an id and logs it once complete
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return middleware.RequestID(logging(next))
	}
}
