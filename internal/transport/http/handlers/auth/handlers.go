package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"apas/internal/domain/auth"
	"apas/internal/domain/core"
	"apas/internal/transport/http/api"
	"apas/internal/transport/http/middleware"
	"apas/internal/transport/http/shared"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	Store  *core.Store
	Secret string
}

func NewHandler(store *core.Store, secret string) *Handler {
	return &Handler{Store: store, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	EmployeeName string `json:"employeeName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RoleID       int64  `json:"roleId"`
	DepartmentID int64  `json:"departmentId"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if v.Reject(w, reqID) {
		return
	}

	account, err := h.Store.AccountByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
			return
		}
		slog.Error("login lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "login failed", reqID)
		return
	}

	if err := auth.CheckPassword(account.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   account.EmployeeID,
		Name:     account.EmployeeName,
		RoleID:   account.RoleID,
		RoleName: account.RoleName,
	}, tokenTTL)
	if err != nil {
		slog.Error("token generation failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"employeeId":   account.EmployeeID,
			"employeeName": account.EmployeeName,
			"roleId":       account.RoleID,
			"roleName":     account.RoleName,
		},
	}, reqID)
}

// HandleSignup registers a self-service account. New accounts start without a
// manager; the employee picks one from the managers list afterwards.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload signupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeName", payload.EmployeeName, "employee name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.PositiveID("roleId", payload.RoleID, "role id is required")
	v.PositiveID("departmentId", payload.DepartmentID, "department id is required")
	if v.Reject(w, reqID) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		slog.Error("password hashing failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to register account", reqID)
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), payload.EmployeeName, payload.Email, hash, payload.RoleID, payload.DepartmentID)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", reqID)
			return
		}
		slog.Error("employee creation failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "storage_error", "failed to register account", reqID)
		return
	}

	api.Created(w, map[string]any{"employeeId": id}, reqID)
}
