package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/service"
)

type Handler struct {
	tokenAuth          *jwtauth.JWTAuth
	gamePlayerService  *service.GamePlayerService
	gameLogService     *service.GameLogService
	leaderboardService *service.LeaderboardService
}

func NewHandler(gamePlayerService *service.GamePlayerService,
	gameLogService *service.GameLogService, leaderboardService *service.LeaderboardService) *Handler {
	return &Handler{
		gamePlayerService:  gamePlayerService,
		gameLogService:     gameLogService,
		leaderboardService: leaderboardService,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "ledger service is running at port " + os.Getenv("LEDGER_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// GET /v1/games/{id}/summary — the live money totals of one game.
func (h *Handler) PotSummaryHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid game id"})
		return
	}

	pot, err := h.gamePlayerService.PotSummary(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: pot})
}

// GET /v1/games/{id}/logs — the game's narrative, newest first.
func (h *Handler) GameLogsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid game id"})
		return
	}

	logs, err := h.gameLogService.GetLogs(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	type entry struct {
		ID        int64     `json:"id"`
		Action    string    `json:"action"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	}
	entries := make([]entry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, entry{
			ID:        l.ID,
			Action:    l.Action,
			Message:   service.FormatLogMessage(l),
			CreatedAt: l.CreatedAt,
		})
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entries})
}

// GET /v1/tables/{id}/leaderboard?from=RFC3339&to=RFC3339
func (h *Handler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid table id"})
		return
	}

	var windowStart, windowEnd *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid from bound"})
			return
		}
		windowStart = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid to bound"})
			return
		}
		windowEnd = &t
	}

	entries, err := h.leaderboardService.Leaderboard(r.Context(), tableID, windowStart, windowEnd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entries})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var notFound *ledger.NotFoundError
	var validation *ledger.ValidationError
	switch {
	case errors.As(err, &notFound):
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: err.Error()})
	case errors.As(err, &validation):
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: err.Error()})
	default:
		log.Errorf("request failed: %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "internal error"})
	}
}
