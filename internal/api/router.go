package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/minesweeper-go/internal/api/handler"
	"github.com/mcoot/minesweeper-go/internal/api/middleware"
	"github.com/mcoot/minesweeper-go/internal/api/sse"
	"github.com/mcoot/minesweeper-go/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	SessionService session.ServiceInterface
	HubManager     *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.SessionService, cfg.HubManager)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)

	// Game commands
	api.HandleFunc("/games/{id}/reveal", gameHandler.Reveal).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/flag", gameHandler.Flag).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/chord", gameHandler.Chord).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/reset", gameHandler.Reset).Methods(http.MethodPost)

	// History and push
	api.HandleFunc("/games/{id}/summaries", gameHandler.Summaries).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
