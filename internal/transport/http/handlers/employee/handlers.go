package employeehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"apas/internal/domain/core"
	"apas/internal/domain/cycle"
	"apas/internal/domain/feedback"
	"apas/internal/domain/goals"
	"apas/internal/domain/ratings"
	"apas/internal/transport/http/api"
	"apas/internal/transport/http/middleware"
	"apas/internal/transport/http/shared"
)

type Handler struct {
	Core     *core.Store
	Cycles   *cycle.Service
	Goals    *goals.Service
	Feedback *feedback.Service
	Ratings  *ratings.Service
}

func NewHandler(coreStore *core.Store, cycles *cycle.Service, goalsSvc *goals.Service, feedbackSvc *feedback.Service, ratingsSvc *ratings.Service) *Handler {
	return &Handler{Core: coreStore, Cycles: cycles, Goals: goalsSvc, Feedback: feedbackSvc, Ratings: ratingsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employee", func(r chi.Router) {
		r.Get("/active-cycle-id", h.handleActiveCycleID)
		r.Get("/profile/{employeeID}", h.handleProfile)
		r.Get("/managers-list", h.handleManagersList)
		r.Put("/update-manager", h.handleUpdateManager)
		r.Get("/roles", h.handleRoles)
		r.Get("/departments", h.handleDepartments)
		r.Get("/all-employees", h.handleAllEmployees)
		r.Get("/current-weightage/{employeeID}", h.handleCurrentWeightage)
		r.Post("/goal", h.handleCreateGoal)
		r.Put("/goal/{goalID}", h.handleUpdateGoal)
		r.Delete("/goal/{goalID}", h.handleDeleteGoal)
		r.Get("/goals/{employeeID}", h.handleListGoals)
		r.Post("/self-appraisal", h.handleSelfAppraisal)
		r.Get("/appraisal-progress/{employeeID}", h.handleProgress)
		r.Get("/final-report/{employeeID}", h.handleFinalReport)
		r.Get("/final-report/{employeeID}/pdf", h.handleFinalReportPDF)
		r.Post("/submit-360-feedback", h.handleSubmit360)
	})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// writeGoalErr maps goal-ledger errors onto the response envelope.
func writeGoalErr(w http.ResponseWriter, reqID string, err error) {
	var exceeded goals.WeightageExceededError
	switch {
	case errors.As(err, &exceeded):
		api.FailWithDetails(w, http.StatusBadRequest, "weightage_exceeded", exceeded.Error(),
			map[string]any{"remaining": exceeded.Remaining}, reqID)
	case errors.Is(err, goals.ErrMissingFields),
		errors.Is(err, goals.ErrInvalidWeightage),
		errors.Is(err, goals.ErrInvalidRating),
		errors.Is(err, goals.ErrFeedbackRequired),
		errors.Is(err, goals.ErrCommentsRequired):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, goals.ErrForbiddenTransition):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, goals.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, cycle.ErrNoActiveCycle):
		api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
	default:
		slog.Error("goal operation failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "operation failed", reqID)
	}
}

func (h *Handler) handleActiveCycleID(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	cycleID, err := h.Cycles.ActiveCycleID(r.Context())
	if err != nil {
		if errors.Is(err, cycle.ErrNoActiveCycle) {
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
			return
		}
		slog.Error("active cycle lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to resolve active cycle", reqID)
		return
	}
	api.Success(w, map[string]any{"cycleId": cycleID}, reqID)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	profile, err := h.Core.Profile(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		slog.Error("profile lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to load profile", reqID)
		return
	}
	api.Success(w, profile, reqID)
}

func (h *Handler) handleManagersList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	managers, err := h.Core.ListManagers(r.Context())
	if err != nil {
		slog.Error("manager list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list managers", reqID)
		return
	}
	api.Success(w, managers, reqID)
}

func (h *Handler) handleUpdateManager(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		ManagerID int64 `json:"managerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.PositiveID("managerId", payload.ManagerID, "manager id is required")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Core.UpdateManager(r.Context(), user.UserID, payload.ManagerID); err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		slog.Error("manager update failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to update manager", reqID)
		return
	}
	api.Success(w, map[string]any{"managerId": payload.ManagerID}, reqID)
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	roles, err := h.Core.ListRoles(r.Context())
	if err != nil {
		slog.Error("role list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list roles", reqID)
		return
	}
	api.Success(w, roles, reqID)
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	departments, err := h.Core.ListDepartments(r.Context())
	if err != nil {
		slog.Error("department list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list departments", reqID)
		return
	}
	api.Success(w, departments, reqID)
}

// handleAllEmployees lists 360 review candidates. Admin, HR, and manager
// accounts are excluded; the caller filters themselves out client-side, and
// the service enforces the self-review rule again on submit.
func (h *Handler) handleAllEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	peers, err := h.Core.ListPeers(r.Context())
	if err != nil {
		slog.Error("peer list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to list employees", reqID)
		return
	}
	api.Success(w, peers, reqID)
}

func (h *Handler) handleCurrentWeightage(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	total, err := h.Goals.CurrentWeightage(r.Context(), employeeID)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"totalWeightage": total, "remaining": goals.MaxTotalWeightage - total}, reqID)
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Weightage   float64 `json:"weightage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Goals.Create(r.Context(), user.UserID, payload.Title, payload.Description, payload.Weightage)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Created(w, map[string]any{"goalId": id}, reqID)
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	goalID, ok := pathID(r, "goalID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid goal id", reqID)
		return
	}

	var payload struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Weightage   float64 `json:"weightage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Goals.Update(r.Context(), goalID, user.UserID, payload.Title, payload.Description, payload.Weightage); err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"goalId": goalID}, reqID)
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	goalID, ok := pathID(r, "goalID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid goal id", reqID)
		return
	}

	if err := h.Goals.Delete(r.Context(), goalID, user.UserID); err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"goalId": goalID}, reqID)
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	list, err := h.Goals.List(r.Context(), employeeID)
	if err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleSelfAppraisal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		GoalID       int64   `json:"goalId"`
		Comments     string  `json:"comments"`
		DocumentLink *string `json:"documentLink"`
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

	if err := h.Goals.SubmitSelfAppraisal(r.Context(), payload.GoalID, user.UserID, payload.Comments, payload.DocumentLink); err != nil {
		writeGoalErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"goalId": payload.GoalID, "status": goals.StatusInProgress}, reqID)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	progress, err := h.Ratings.EmployeeProgress(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, cycle.ErrNoActiveCycle) {
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
			return
		}
		slog.Error("progress lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to load progress", reqID)
		return
	}
	api.Success(w, progress, reqID)
}

func (h *Handler) reportCycleID(r *http.Request) (int64, error) {
	if raw := r.URL.Query().Get("cycleId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return h.Cycles.ActiveCycleID(r.Context())
}

func (h *Handler) handleFinalReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	cycleID, err := h.reportCycleID(r)
	if err != nil {
		if errors.Is(err, cycle.ErrNoActiveCycle) {
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
			return
		}
		slog.Error("report cycle resolution failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to load report", reqID)
		return
	}

	report, err := h.Ratings.EmployeeReport(r.Context(), employeeID, cycleID)
	if err != nil {
		if errors.Is(err, ratings.ErrReportNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
			return
		}
		slog.Error("report load failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to load report", reqID)
		return
	}
	api.Success(w, report, reqID)
}

func (h *Handler) handleFinalReportPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid employee id", reqID)
		return
	}

	cycleID, err := h.reportCycleID(r)
	if err != nil {
		if errors.Is(err, cycle.ErrNoActiveCycle) {
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
			return
		}
		slog.Error("report cycle resolution failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to render report", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-report.pdf"`)
	if err := h.Ratings.ReportPDF(r.Context(), w, employeeID, cycleID); err != nil {
		if errors.Is(err, ratings.ErrReportNotFound) {
			w.Header().Del("Content-Type")
			w.Header().Del("Content-Disposition")
			api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
			return
		}
		slog.Error("report pdf render failed", "err", err, "requestId", reqID)
	}
}

func (h *Handler) handleSubmit360(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		EmployeeID int64  `json:"employeeId"`
		Rating     int    `json:"rating"`
		Comments   string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Feedback.Submit(r.Context(), user.UserID, payload.EmployeeID, payload.Rating, payload.Comments)
	if err != nil {
		switch {
		case errors.Is(err, feedback.ErrSelfReview):
			api.Fail(w, http.StatusForbidden, "self_review", err.Error(), reqID)
		case errors.Is(err, feedback.ErrDuplicate):
			api.Fail(w, http.StatusConflict, "duplicate_feedback", err.Error(), reqID)
		case errors.Is(err, feedback.ErrMissingFields), errors.Is(err, feedback.ErrInvalidRating):
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		case errors.Is(err, cycle.ErrNoActiveCycle):
			api.Fail(w, http.StatusNotFound, "no_active_cycle", err.Error(), reqID)
		default:
			slog.Error("feedback submit failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to submit feedback", reqID)
		}
		return
	}
	api.Created(w, map[string]any{"feedbackId": id}, reqID)
}
