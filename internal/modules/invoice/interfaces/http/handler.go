package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/invoice/application"
	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

type InvoiceService interface {
	ListInvoices(ctx context.Context, actor *authDomain.Session, filter domain.InvoiceFilter) (*application.InvoiceList, error)
	GetInvoice(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error)
	DownloadURL(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (string, error)
	MarkPaid(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error)
}

type InvoiceHandler struct {
	service InvoiceService
	logger  *zap.Logger
}

func NewInvoiceHandler(service InvoiceService, logger *zap.Logger) *InvoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandler{service: service, logger: logger}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit, offset := utils.Pagination(r, 20, 100)
	filter := domain.InvoiceFilter{Limit: limit, Offset: offset}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = domain.InvoiceStatus(s)
		if !filter.Status.Valid() {
			utils.WriteError(w, http.StatusBadRequest, "status must be unpaid or paid", nil)
			return
		}
	}
	if s := r.URL.Query().Get("institution_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid institution_id", err)
			return
		}
		filter.InstitutionID = id
	}
	if s := r.URL.Query().Get("student_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid student_id", err)
			return
		}
		filter.StudentID = id
	}

	out, err := h.service.ListInvoices(r.Context(), session, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.target(w, r)
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(r.Context(), session, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Download(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.target(w, r)
	if !ok {
		return
	}

	url, err := h.service.DownloadURL(r.Context(), session, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	session, id, ok := h.target(w, r)
	if !ok {
		return
	}

	inv, err := h.service.MarkPaid(r.Context(), session, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, inv)
}

// target reads the session and the {id} path value
func (h *InvoiceHandler) target(w http.ResponseWriter, r *http.Request) (*authDomain.Session, uuid.UUID, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid invoice id", err)
		return nil, uuid.Nil, false
	}
	return session, id, true
}

func (h *InvoiceHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrDocumentUnavailable):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	default:
		h.logger.Error("invoice request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", err)
	}
}
