package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/reminder/application"
	"github.com/saransh1220/libraria/internal/modules/reminder/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

type ReminderService interface {
	RunForStudent(ctx context.Context, session *authDomain.Session) (*domain.RunResult, error)
}

type ReminderHandler struct {
	service ReminderService
	logger  *zap.Logger
}

func NewReminderHandler(service ReminderService, logger *zap.Logger) *ReminderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{service: service, logger: logger}
}

// Generate runs the reminder generator for the calling student and returns
// their notifications with the run summary
func (h *ReminderHandler) Generate(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	result, err := h.service.RunForStudent(r.Context(), session)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrStudentsOnly):
			utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
		case errors.Is(err, domain.ErrDedupUnavailable):
			h.logger.Error("reminder run aborted", zap.Error(err))
			utils.WriteError(w, http.StatusServiceUnavailable, "notifications temporarily unavailable", err)
		default:
			h.logger.Error("reminder run failed", zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to generate reminders", err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
