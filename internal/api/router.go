package api

import (
	"net/http"

	"github.com/geoquiz/geoquiz-api/internal/service"
	"github.com/gorilla/mux"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, stats StatsSource, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(stats, logger)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware(logger), recoverMiddleware(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// API docs
	router.PathPrefix("/docs/").Handler(v5emb.New("GeoQuiz API", "/api/v1/openapi.json", "/docs/"))

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/game", handler.Game).Methods(http.MethodPost)
	v1.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods(http.MethodGet)
	v1.HandleFunc("/difficulties", handler.GetDifficulties).Methods(http.MethodGet)
	v1.HandleFunc("/players/{id}/stats", handler.GetPlayerStats).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", handler.GetSession).Methods(http.MethodGet)
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	v1.HandleFunc("/openapi.json", handleOpenAPI()).Methods(http.MethodGet)

	return router
}
