package api

import (
	"encoding/json"
	"net/http"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/stats"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

type leaderboardQuery struct {
	Limit int `query:"limit" description:"Number of entries, 10 by default, at most 100"`
}

type idPath struct {
	ID int64 `path:"id"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuiz API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Guess the country of a city from its pictures.")

	// POST /api/v1/game
	postGame, _ := r.NewOperationContext(http.MethodPost, "/api/v1/game")
	postGame.SetSummary("Game action")
	postGame.SetDescription("Single entry point of the game. The action field selects the operation: " +
		"start_session, get_question, submit_answer, save_score, get_leaderboard, get_session, get_hint, get_player_stats. " +
		"Successful responses carry success=true and the fields of the action result. " +
		"get_hint deducts the hint cost from the score right away and returns the new score. " +
		"save_score reports in score_source whether the server score or the client final_score was persisted.")
	postGame.AddReqStructure(model.ActionRequest{})
	postGame.AddRespStructure(ActionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postGame)

	// GET /api/v1/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/v1/leaderboard")
	getLeaderboard.SetSummary("Leaderboard")
	getLeaderboard.SetDescription("Best scores, highest first. Equal scores are ranked by who reached them first.")
	getLeaderboard.AddReqStructure(leaderboardQuery{})
	getLeaderboard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getLeaderboard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getLeaderboard)

	// GET /api/v1/difficulties
	getDifficulties, _ := r.NewOperationContext(http.MethodGet, "/api/v1/difficulties")
	getDifficulties.SetSummary("Difficulty levels")
	getDifficulties.SetDescription("Choices, timer and base points of each difficulty, easiest first.")
	getDifficulties.AddRespStructure(DifficultiesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDifficulties)

	// GET /api/v1/players/{id}/stats
	getPlayerStats, _ := r.NewOperationContext(http.MethodGet, "/api/v1/players/{id}/stats")
	getPlayerStats.SetSummary("Player statistics")
	getPlayerStats.SetDescription("Totals, average and accuracy over the finished games of a player, with the 5 latest games.")
	getPlayerStats.AddReqStructure(idPath{})
	getPlayerStats.AddRespStructure(PlayerStatsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPlayerStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPlayerStats)

	// GET /api/v1/sessions/{id}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/v1/sessions/{id}")
	getSession.SetSummary("Session state")
	getSession.AddReqStructure(idPath{})
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// GET /api/v1/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/v1/stats")
	getStats.SetSummary("Service statistics")
	getStats.AddRespStructure(stats.Stats{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getStats)

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getHealth)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
