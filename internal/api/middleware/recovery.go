package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/lighthouse/internal/api/apierr"
	"github.com/mcoot/lighthouse/internal/middleware"
)

// Recovery creates panic recovery middleware for the web API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// GameRecovery creates panic recovery middleware for game endpoints,
// which answer with a bare 500
func GameRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, middleware.DefaultPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
