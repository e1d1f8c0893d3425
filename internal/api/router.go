package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lighthouse/internal/api/handler"
	"github.com/mcoot/lighthouse/internal/api/middleware"
	"github.com/mcoot/lighthouse/internal/metrics"
	httpmw "github.com/mcoot/lighthouse/internal/middleware"
	"github.com/mcoot/lighthouse/internal/services/auth"
	"github.com/mcoot/lighthouse/internal/services/match"
	"github.com/mcoot/lighthouse/internal/services/publish"
	"github.com/mcoot/lighthouse/internal/services/resource"
)

// GamePrefix is the path every game client request starts with
const GamePrefix = "/LITTLEBIGPLANETPS3_XML"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	MatchController *match.Controller
	PublishService  *publish.Service
	ResourceGate    *resource.Gate
	Metrics         *metrics.Metrics
	ServerName      string
	EulaText        string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	loginHandler := handler.NewLoginHandler(cfg.AuthService, cfg.ServerName)
	matchHandler := handler.NewMatchHandler(cfg.MatchController)
	publishHandler := handler.NewPublishHandler(cfg.PublishService)
	resourceHandler := handler.NewResourceHandler(cfg.ResourceGate)
	messageHandler := handler.NewMessageHandler(cfg.EulaText)
	accountHandler := handler.NewAccountHandler(cfg.AuthService)

	loggingMiddleware := httpmw.Logging(cfg.Logger)

	// Game routes answer with bare statuses
	game := r.PathPrefix(GamePrefix).Subrouter()
	game.Use(middleware.GameRecovery(cfg.Logger))
	game.Use(loggingMiddleware)
	game.HandleFunc("/login", loginHandler.Login).Methods(http.MethodPost)

	// Readable before the login has been approved
	unapproved := game.NewRoute().Subrouter()
	unapproved.Use(middleware.GameAuth(cfg.AuthService, true))
	unapproved.HandleFunc("/eula", messageHandler.Eula).Methods(http.MethodGet)
	unapproved.HandleFunc("/announce", messageHandler.Announce).Methods(http.MethodGet)

	approved := game.NewRoute().Subrouter()
	approved.Use(middleware.GameAuth(cfg.AuthService, false))
	approved.HandleFunc("/notification", messageHandler.Notification).Methods(http.MethodGet)
	approved.HandleFunc("/filter", messageHandler.Filter).Methods(http.MethodPost)
	approved.HandleFunc("/match", matchHandler.Match).Methods(http.MethodPost)
	approved.HandleFunc("/startPublish", publishHandler.StartPublish).Methods(http.MethodPost)
	approved.HandleFunc("/publish", publishHandler.Publish).Methods(http.MethodPost)
	approved.HandleFunc("/unpublish/{id:[0-9]+}", publishHandler.Unpublish).Methods(http.MethodPost)
	approved.HandleFunc("/upload/{hash}", resourceHandler.Upload).Methods(http.MethodPost)
	approved.HandleFunc("/r/{hash}", resourceHandler.Download).Methods(http.MethodGet)
	approved.HandleFunc("/filterResources", resourceHandler.Filter).Methods(http.MethodPost)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(loggingMiddleware)

	// Account routes (no auth required for registering/logging in)
	api.HandleFunc("/users/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.WebAuth(cfg.AuthService))
	protected.HandleFunc("/users/me", accountHandler.GetMe).Methods(http.MethodGet)

	// Login approval only exists with external auth
	if cfg.AuthService.UsesExternalAuth() {
		protected.HandleFunc("/tokens", accountHandler.PendingTokens).Methods(http.MethodGet)
		protected.HandleFunc("/tokens/{id}/approve", accountHandler.ApproveToken).Methods(http.MethodPost)
		protected.HandleFunc("/tokens/{id}", accountHandler.DenyToken).Methods(http.MethodDelete)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
