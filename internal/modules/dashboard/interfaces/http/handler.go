package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/dashboard/application"
	"github.com/saransh1220/libraria/internal/modules/dashboard/domain"
	reminderDomain "github.com/saransh1220/libraria/internal/modules/reminder/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

type DashboardService interface {
	StudentDashboard(ctx context.Context, session *authDomain.Session) (*domain.StudentDashboard, error)
	InstitutionDashboard(ctx context.Context, session *authDomain.Session) (*domain.InstitutionDashboard, error)
	AdminDashboard(ctx context.Context, session *authDomain.Session) (*domain.AdminDashboard, error)
}

type DashboardHandler struct {
	service DashboardService
	logger  *zap.Logger
}

func NewDashboardHandler(service DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{service: service, logger: logger}
}

func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "student", func(ctx context.Context, s *authDomain.Session) (any, error) {
		return h.service.StudentDashboard(ctx, s)
	})
}

func (h *DashboardHandler) Institution(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "institution", func(ctx context.Context, s *authDomain.Session) (any, error) {
		return h.service.InstitutionDashboard(ctx, s)
	})
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "admin", func(ctx context.Context, s *authDomain.Session) (any, error) {
		return h.service.AdminDashboard(ctx, s)
	})
}

func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, view string, load func(context.Context, *authDomain.Session) (any, error)) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	out, err := load(r.Context(), session)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrForbidden):
			utils.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, reminderDomain.ErrDedupUnavailable):
			utils.WriteError(w, http.StatusServiceUnavailable, "notifications temporarily unavailable", err)
		default:
			h.logger.Error("failed to load dashboard", zap.String("view", view), zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to load dashboard", err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, out)
}
