package hrhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"apas/internal/domain/audit"
	"apas/internal/domain/cycle"
	"apas/internal/domain/ratings"
	"apas/internal/transport/http/api"
	"apas/internal/transport/http/middleware"
	"apas/internal/transport/http/shared"
)

type Handler struct {
	Cycles  *cycle.Service
	Ratings *ratings.Service
	Audit   *audit.Recorder
}

func NewHandler(cycles *cycle.Service, ratingsSvc *ratings.Service, recorder *audit.Recorder) *Handler {
	return &Handler{Cycles: cycles, Ratings: ratingsSvc, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hr", func(r chi.Router) {
		r.Get("/cycles", h.handleListCycles)
		r.Post("/cycles", h.handleCreateCycle)
		r.Put("/cycles/{cycleID}/status", h.handleSetCycleStatus)
		r.Post("/calculate-ratings", h.handleCalculateRatings)
		r.Get("/final-ratings/{cycleID}", h.handleListFinalRatings)
		r.Put("/final-ratings/{ratingID}", h.handleUpdateFinalRating)
		r.Get("/audit-events", h.handleAuditEvents)
	})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	cycles, err := h.Cycles.List(r.Context())
	if err != nil {
		slog.Error("cycle list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list cycles", reqID)
		return
	}
	api.Success(w, cycles, reqID)
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		CycleName string `json:"cycleName"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("cycleName", payload.CycleName, "cycle name is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Cycles.Create(r.Context(), user.UserID, payload.CycleName, start, end)
	if err != nil {
		if errors.Is(err, cycle.ErrMissingFields) {
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
			return
		}
		slog.Error("cycle create failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to create cycle", reqID)
		return
	}
	api.Created(w, map[string]any{"cycleId": id, "status": cycle.StatusInactive}, reqID)
}

func (h *Handler) handleSetCycleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	cycleID, ok := pathID(r, "cycleID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid cycle id", reqID)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Cycles.SetStatus(r.Context(), user.UserID, cycleID, payload.Status); err != nil {
		switch {
		case errors.Is(err, cycle.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		case errors.Is(err, cycle.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		default:
			slog.Error("cycle status update failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to update cycle", reqID)
		}
		return
	}
	api.Success(w, map[string]any{"cycleId": cycleID, "status": payload.Status}, reqID)
}

func (h *Handler) handleCalculateRatings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		CycleID int64 `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	cycleID := payload.CycleID
	if cycleID == 0 {
		active, err := h.Cycles.ActiveCycleID(r.Context())
		if err != nil {
			if errors.Is(err, cycle.ErrNoActiveCycle) {
				api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
				return
			}
			slog.Error("active cycle lookup failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to resolve cycle", reqID)
			return
		}
		cycleID = active
	}

	count, err := h.Ratings.Calculate(r.Context(), user.UserID, cycleID)
	if err != nil {
		slog.Error("rating calculation failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to calculate ratings", reqID)
		return
	}
	api.Success(w, map[string]any{"cycleId": cycleID, "ratedEmployees": count}, reqID)
}

func (h *Handler) handleListFinalRatings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	cycleID, ok := pathID(r, "cycleID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid cycle id", reqID)
		return
	}

	list, err := h.Ratings.ListFinal(r.Context(), cycleID)
	if err != nil {
		slog.Error("final rating list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list final ratings", reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleUpdateFinalRating(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	ratingID, ok := pathID(r, "ratingID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid rating id", reqID)
		return
	}

	var payload struct {
		Rank     int    `json:"rank"`
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Ratings.UpdateFinal(r.Context(), user.UserID, ratingID, payload.Rank, payload.Comments); err != nil {
		switch {
		case errors.Is(err, ratings.ErrMissingFields):
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		case errors.Is(err, ratings.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		default:
			slog.Error("final rating update failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to update final rating", reqID)
		}
		return
	}
	api.Success(w, map[string]any{"ratingId": ratingID}, reqID)
}

func (h *Handler) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	events, err := h.Audit.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		slog.Error("audit event list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list audit events", reqID)
		return
	}
	api.Success(w, events, reqID)
}
