package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/lighthouse/internal/api/apierr"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/auth"
)

// Session cookie names
const (
	GameCookie = "MM_AUTH"
	WebCookie  = "LighthouseToken"
)

type contextKey string

const (
	gameSessionContextKey contextKey = "game_session"
	webUserContextKey     contextKey = "web_user"
)

// GameAuth resolves the MM_AUTH cookie. A missing or unknown token and an
// unapproved one are refused with different statuses.
func GameAuth(authService *auth.Service, allowUnapproved bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authService.ResolveGameSession(r.Context(), cookieValue(r, GameCookie), allowUnapproved)
			if err != nil {
				apierr.WriteGameError(w, err)
				return
			}

			if session.Token.Approved {
				if err := authService.MarkUsed(r.Context(), session.Token); err != nil {
					apierr.WriteGameError(w, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), gameSessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WebAuth resolves the web session from a bearer token or the
// LighthouseToken cookie
func WebAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := extractWebToken(r)
			if secret == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			user, err := authService.ResolveWebSession(r.Context(), secret)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), webUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractWebToken checks the Authorization header before the cookie
func extractWebToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return cookieValue(r, WebCookie)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetGameSession returns the game session from the request context
func GetGameSession(ctx context.Context) *auth.GameSession {
	session, _ := ctx.Value(gameSessionContextKey).(*auth.GameSession)
	return session
}

// MustGetGameSession returns the game session or panics
func MustGetGameSession(ctx context.Context) *auth.GameSession {
	session := GetGameSession(ctx)
	if session == nil {
		panic("no game session in context - game auth middleware not applied?")
	}
	return session
}

// GetWebUser returns the web user from the request context
func GetWebUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(webUserContextKey).(*model.User)
	return user
}

// MustGetWebUser returns the web user or panics
func MustGetWebUser(ctx context.Context) *model.User {
	user := GetWebUser(ctx)
	if user == nil {
		panic("no web user in context - web auth middleware not applied?")
	}
	return user
}
