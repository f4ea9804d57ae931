package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/user/application"
	"github.com/saransh1220/libraria/internal/modules/user/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

type UserService interface {
	CreateStudent(ctx context.Context, actor *authDomain.Session, req application.CreateStudentRequest) (*application.MemberResponse, error)
	CreateLibrarian(ctx context.Context, actor *authDomain.Session, req application.CreateLibrarianRequest) (*application.MemberResponse, error)
	ListMembers(ctx context.Context, actor *authDomain.Session, role authDomain.Role, limit, offset int) (*application.MemberList, error)
	GetMember(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*application.MemberResponse, error)
	SetMemberActive(ctx context.Context, actor *authDomain.Session, id uuid.UUID, active bool) error
}

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req application.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	member, err := h.service.CreateStudent(r.Context(), session, req)
	if err != nil {
		writeMemberError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, member)
}

func (h *UserHandler) CreateLibrarian(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req application.CreateLibrarianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	member, err := h.service.CreateLibrarian(r.Context(), session, req)
	if err != nil {
		writeMemberError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, member)
}

// ListMembers handles GET /members?role=student|librarian
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	role := authDomain.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = authDomain.RoleStudent
	}
	limit, offset := utils.Pagination(r, 20, 100)

	list, err := h.service.ListMembers(r.Context(), session, role, limit, offset)
	if err != nil {
		writeMemberError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *UserHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid member id", nil)
		return
	}

	member, err := h.service.GetMember(r.Context(), session, id)
	if err != nil {
		writeMemberError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, member)
}

func (h *UserHandler) SetMemberActive(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid member id", nil)
		return
	}

	var req application.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.SetMemberActive(r.Context(), session, id, req.Active); err != nil {
		writeMemberError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeMemberError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, authDomain.ErrUserAlreadyExists):
		utils.WriteError(w, http.StatusConflict, "user already exists", nil)
	case errors.Is(err, domain.ErrInvalidRole):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	}
}
