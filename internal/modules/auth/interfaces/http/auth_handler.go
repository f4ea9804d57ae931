package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	"github.com/saransh1220/libraria/internal/modules/auth/application"
	"github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

// AuthService defines the interface for auth operations
type AuthService interface {
	Register(ctx context.Context, req application.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req application.LoginRequest) (*application.LoginResult, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: service, logger: logger}
}

// MeResponse restores the client's session state after a reload
type MeResponse struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			utils.WriteError(w, http.StatusConflict, "user already exists", nil)
		case errors.Is(err, domain.ErrRoleNotAllowed), errors.Is(err, domain.ErrAdminExists):
			utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
		default:
			utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			utils.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, domain.ErrAccountDisabled):
			utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
		default:
			h.logger.Error("login failed", zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}

	if err := h.service.Logout(r.Context(), session.ID); err != nil {
		h.logger.Error("logout failed", zap.String("session_id", session.ID.String()), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}

	user, err := h.service.GetUser(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, MeResponse{User: user, Session: session})
}
