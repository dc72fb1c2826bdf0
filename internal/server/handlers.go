package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/engine"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the engine's operation surface over HTTP.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates the handler set for an engine.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

type depositRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Account == "" {
		writeError(w, http.StatusBadRequest, "account is required", nil)
		return
	}

	res, err := h.engine.Deposit(r.Context(), req.Account, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"balance": h.engine.Balance(account),
	})
}

type placeRequest struct {
	Account        string `json:"account"`
	Symbol         string `json:"symbol"`
	Direction      string `json:"direction"`
	Stake          int64  `json:"stake"`
	HorizonSeconds int64  `json:"horizon_seconds"`
}

func (h *Handler) placePrediction(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Account == "" || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "account and symbol are required", nil)
		return
	}

	res, err := h.engine.PlacePrediction(r.Context(), req.Account, req.Symbol, req.Direction, req.Stake, req.HorizonSeconds)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type settleRequest struct {
	Account string `json:"account"`
}

func (h *Handler) settlePrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req settleRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.engine.SettlePrediction(r.Context(), req.Account, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) settleAll(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Account == "" {
		writeError(w, http.StatusBadRequest, "account is required", nil)
		return
	}

	res, err := h.engine.SettleAllReady(r.Context(), req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) predictionDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.engine.PredictionDetails(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) userPredictions(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"counts":  h.engine.UserPredictions(account),
		"active":  h.engine.ActivePredictions(account),
	})
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.UserStats(chi.URLParam(r, "account")))
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.Leaderboard(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) gameStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.GameStats())
}

func (h *Handler) currentPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := h.engine.CurrentPrice(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) advanceClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"instant": h.engine.AdvanceClock(r.Context()),
	})
}

func (h *Handler) currentInstant(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"instant": h.engine.CurrentInstant(),
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id", nil)
		return 0, false
	}
	return id, true
}

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON error with optional context fields.
func writeError(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeDomainError maps the engine's error taxonomy to HTTP status
// codes, attaching the structured context each kind carries.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		insufficient *domain.InsufficientBalanceError
		tooEarly     *domain.TooEarlyError
		settled      *domain.AlreadySettledError
	)

	switch {
	case errors.As(err, &insufficient):
		writeError(w, http.StatusPaymentRequired, err.Error(), map[string]any{
			"have": insufficient.Have,
			"need": insufficient.Need,
		})
	case errors.As(err, &tooEarly):
		writeError(w, http.StatusTooEarly, err.Error(), map[string]any{
			"remaining_ticks": tooEarly.Remaining,
		})
	case errors.As(err, &settled):
		writeError(w, http.StatusConflict, err.Error(), map[string]any{
			"status": settled.Status,
		})
	case errors.Is(err, domain.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrPriceUnavailable):
		writeError(w, http.StatusBadGateway, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	}
}
