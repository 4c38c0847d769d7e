package managerhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"apas/internal/domain/cycle"
	"apas/internal/domain/feedback"
	"apas/internal/domain/goals"
	"apas/internal/domain/ratings"
	"apas/internal/transport/http/api"
	"apas/internal/transport/http/middleware"
	"apas/internal/transport/http/shared"
)

type Handler struct {
	Goals    *goals.Service
	Feedback *feedback.Service
	Ratings  *ratings.Service
}

func NewHandler(goalsSvc *goals.Service, feedbackSvc *feedback.Service, ratingsSvc *ratings.Service) *Handler {
	return &Handler{Goals: goalsSvc, Feedback: feedbackSvc, Ratings: ratingsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/manager", func(r chi.Router) {
		r.Get("/team-overview/{managerID}", h.handleTeamOverview)
		r.Get("/goals-for-review/{managerID}", h.handleGoalsForReview)
		r.Post("/approve-goal", h.handleApproveGoal)
		r.Post("/submit-review", h.handleSubmitReview)
		r.Get("/360-feedback/{employeeID}", h.handle360Feedback)
	})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func writeGoalErr(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, goals.ErrFeedbackRequired),
		errors.Is(err, goals.ErrInvalidRating):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, goals.ErrForbiddenTransition):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, cycle.ErrNoActiveCycle):
		api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
	default:
		slog.Error("manager goal operation failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "operation failed", reqID)
	}
}

type teamOverviewRow struct {
	EmployeeID     int64   `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	DepartmentName *string `json:"departmentName"`
	Stage          string  `json:"stage"`
}

// handleTeamOverview joins the manager's directs with each one's appraisal
// stage, plus the pending approval queue.
func (h *Handler) handleTeamOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	managerID, ok := pathID(r, "managerID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid manager id", reqID)
		return
	}

	team, err := h.Goals.Team(r.Context(), managerID)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}

	rows := make([]teamOverviewRow, 0, len(team))
	for _, member := range team {
		progress, err := h.Ratings.EmployeeProgress(r.Context(), member.EmployeeID)
		if err != nil {
			writeGoalErr(w, reqID, err)
			return
		}
		rows = append(rows, teamOverviewRow{
			EmployeeID:     member.EmployeeID,
			EmployeeName:   member.EmployeeName,
			DepartmentName: member.DepartmentName,
			Stage:          progress.Stage,
		})
	}

	pending, err := h.Goals.PendingApprovals(r.Context(), managerID)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}

	api.Success(w, map[string]any{"team": rows, "pendingApprovals": pending}, reqID)
}

func (h *Handler) handleGoalsForReview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	managerID, ok := pathID(r, "managerID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid manager id", reqID)
		return
	}

	list, err := h.Goals.GoalsForReview(r.Context(), managerID)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleApproveGoal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		GoalID   int64  `json:"goalId"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.PositiveID("goalId", payload.GoalID, "goal id is required")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Goals.Approve(r.Context(), payload.GoalID, user.UserID, payload.Feedback); err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"goalId": payload.GoalID, "status": goals.StatusApproved}, reqID)
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		GoalID   int64  `json:"goalId"`
		Rating   int    `json:"rating"`
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.PositiveID("goalId", payload.GoalID, "goal id is required")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Goals.SubmitReview(r.Context(), payload.GoalID, user.UserID, payload.Rating, payload.Comments); err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"goalId": payload.GoalID, "status": goals.StatusCompleted}, reqID)
}

func (h *Handler) handle360Feedback(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	list, err := h.Feedback.ListFor(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, cycle.ErrNoActiveCycle) {
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
			return
		}
		slog.Error("feedback list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list feedback", reqID)
		return
	}
	api.Success(w, list, reqID)
}
