package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/scoring"
	"github.com/geoquiz/geoquiz-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Game handles POST /api/v1/game, dispatching on the action field
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	var req model.ActionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case ActionStartSession:
		h.startSession(w, r, req)
	case ActionGetQuestion:
		h.getQuestion(w, r, req)
	case ActionSubmitAnswer:
		h.submitAnswer(w, r, req)
	case ActionSaveScore:
		h.saveScore(w, r, req)
	case ActionGetLeaderboard:
		h.getLeaderboard(w, r, req.Limit)
	case ActionGetSession:
		h.getSession(w, r, req.SessionID)
	case ActionGetHint:
		h.getHint(w, r, req)
	case ActionGetPlayerStats:
		h.getPlayerStats(w, r, req.PlayerID)
	case "":
		writeError(w, http.StatusBadRequest, "action is required")
	default:
		writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, req model.ActionRequest) {
	if h.rejectMissing(w, param{"player_name", strings.TrimSpace(req.PlayerName) != ""}) {
		return
	}
	res, err := h.service.StartSession(r.Context(), req.PlayerName)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StartSessionResponse{Success: true, SessionStart: *res})
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request, req model.ActionRequest) {
	res, err := h.service.PickQuestion(r.Context(), model.QuestionRequest{
		Difficulty: req.Difficulty,
		NumChoices: req.NumChoices,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuestionResponse{Success: true, Question: *res})
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request, req model.ActionRequest) {
	if h.rejectMissing(w,
		param{"session_id", req.SessionID > 0},
		param{"city_id", req.CityID > 0},
		param{"answer", strings.TrimSpace(req.Answer) != ""},
	) {
		return
	}
	res, err := h.service.SubmitAnswer(r.Context(), model.AnswerRequest{
		SessionID:     req.SessionID,
		CityID:        req.CityID,
		Answer:        req.Answer,
		Difficulty:    req.Difficulty,
		TimeRemaining: req.TimeRemaining,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Success: true, AnswerResult: *res})
}

func (h *Handler) saveScore(w http.ResponseWriter, r *http.Request, req model.ActionRequest) {
	if h.rejectMissing(w, param{"session_id", req.SessionID > 0}) {
		return
	}
	res, err := h.service.FinalizeScore(r.Context(), model.FinalizeRequest{
		SessionID:        req.SessionID,
		ClientFinalScore: req.FinalScore,
		BestStreak:       req.BestStreak,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveScoreResponse{Success: true, FinalScore: *res})
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request, limit int) {
	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Success: true, Leaderboard: entries})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, sessionID int64) {
	if h.rejectMissing(w, param{"session_id", sessionID > 0}) {
		return
	}
	res, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, SessionState: *res})
}

func (h *Handler) getHint(w http.ResponseWriter, r *http.Request, req model.ActionRequest) {
	if h.rejectMissing(w,
		param{"session_id", req.SessionID > 0},
		param{"city_id", req.CityID > 0},
	) {
		return
	}
	res, err := h.service.RequestHint(r.Context(), req.SessionID, req.CityID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HintResponse{Success: true, Hint: *res})
}

func (h *Handler) getPlayerStats(w http.ResponseWriter, r *http.Request, playerID int64) {
	if h.rejectMissing(w, param{"player_id", playerID > 0}) {
		return
	}
	res, err := h.service.GetPlayerStats(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayerStatsResponse{Success: true, PlayerStats: *res})
}

// GetLeaderboard handles GET /api/v1/leaderboard
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}
	h.getLeaderboard(w, r, limit)
}

// GetDifficulties handles GET /api/v1/difficulties
func (h *Handler) GetDifficulties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DifficultiesResponse{Success: true, Difficulties: scoring.Levels()})
}

// GetPlayerStats handles GET /api/v1/players/{id}/stats
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid player id")
	if !ok {
		return
	}
	h.getPlayerStats(w, r, id)
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid session id")
	if !ok {
		return
	}
	h.getSession(w, r, id)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func pathID(w http.ResponseWriter, r *http.Request, msg string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}

type param struct {
	name    string
	present bool
}

// rejectMissing writes a validation error naming every absent parameter
func (h *Handler) rejectMissing(w http.ResponseWriter, params ...param) bool {
	var missing []string
	for _, p := range params {
		if !p.present {
			missing = append(missing, p.name)
		}
	}
	if len(missing) == 0 {
		return false
	}
	writeError(w, http.StatusBadRequest, "missing required parameter: "+strings.Join(missing, ", "))
	return true
}

// writeServiceError maps the error kind to a status code. Storage failures are logged and hidden.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotAvailable):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
