package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	catalogDomain "github.com/saransh1220/libraria/internal/modules/catalog/domain"
	"github.com/saransh1220/libraria/internal/modules/circulation/application"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

// DateLayout is the calendar date format accepted for due and return dates
const DateLayout = "2006-01-02"

type CirculationService interface {
	IssueBook(ctx context.Context, actor *authDomain.Session, req application.IssueRequest) (*application.IssueResponse, error)
	ReturnBook(ctx context.Context, actor *authDomain.Session, issueID uuid.UUID, returnDate time.Time) (*application.IssueResponse, error)
	GetIssue(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*application.IssueResponse, error)
	MyIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error)
	ListInstitutionIssues(ctx context.Context, actor *authDomain.Session, filter domain.IssueFilter) (*application.IssueList, error)
	OverdueIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error)
	DueSoonIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error)
	ExportIssues(ctx context.Context, actor *authDomain.Session, status domain.IssueStatus) (*bytes.Buffer, string, error)
}

type CirculationHandler struct {
	service CirculationService
	logger  *zap.Logger
}

func NewCirculationHandler(service CirculationService, logger *zap.Logger) *CirculationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CirculationHandler{service: service, logger: logger}
}

type issueBody struct {
	BookID    uuid.UUID `json:"book_id"`
	StudentID uuid.UUID `json:"student_id"`
	DueDate   string    `json:"due_date"`
}

type returnBody struct {
	ReturnDate string `json:"return_date"`
}

// parseDate accepts a calendar date in server-local time or a full RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *CirculationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body issueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.BookID == uuid.Nil || body.StudentID == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "book_id and student_id are required", nil)
		return
	}
	due, err := parseDate(body.DueDate)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD", err)
		return
	}

	resp, err := h.service.IssueBook(r.Context(), session, application.IssueRequest{
		BookID:    body.BookID,
		StudentID: body.StudentID,
		DueDate:   due,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// Return closes a loan; the body is optional
func (h *CirculationHandler) Return(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var returnDate time.Time
	var body returnBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}
	if body.ReturnDate != "" {
		if returnDate, err = parseDate(body.ReturnDate); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "return_date must be YYYY-MM-DD", err)
			return
		}
	}

	resp, err := h.service.ReturnBook(r.Context(), session, id, returnDate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *CirculationHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	resp, err := h.service.GetIssue(r.Context(), session, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// List pages through an institution's loans; ?status=issued|returned and
// ?student_id= narrow the result
func (h *CirculationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	q := r.URL.Query()
	limit, offset := utils.Pagination(r, 20, 100)
	filter := domain.IssueFilter{Limit: limit, Offset: offset}

	switch status := domain.IssueStatus(q.Get("status")); status {
	case "", domain.StatusIssued, domain.StatusReturned:
		filter.Status = status
	default:
		utils.WriteError(w, http.StatusBadRequest, "status must be issued or returned", nil)
		return
	}
	if v := q.Get("student_id"); v != "" {
		studentID, err := uuid.Parse(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid student_id", nil)
			return
		}
		filter.StudentID = studentID
	}

	list, err := h.service.ListInstitutionIssues(r.Context(), session, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

// xlsxContentType is the MIME type of an Office Open XML workbook
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export streams the institution's issue register as an xlsx download
func (h *CirculationHandler) Export(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	status := domain.IssueStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.StatusIssued, domain.StatusReturned:
	default:
		utils.WriteError(w, http.StatusBadRequest, "status must be issued or returned", nil)
		return
	}

	buf, filename, err := h.service.ExportIssues(r.Context(), session, status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to stream issue export", zap.Error(err))
	}
}

func (h *CirculationHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, h.service.OverdueIssues)
}

func (h *CirculationHandler) DueSoon(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, h.service.DueSoonIssues)
}

func (h *CirculationHandler) MyIssues(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, h.service.MyIssues)
}

func (h *CirculationHandler) listByState(w http.ResponseWriter, r *http.Request, fetch func(context.Context, *authDomain.Session) ([]application.IssueResponse, error)) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	issues, err := fetch(r.Context(), session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, issues)
}

func (h *CirculationHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrIssueNotFound), errors.Is(err, catalogDomain.ErrBookNotFound),
		errors.Is(err, domain.ErrStudentNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrBookUnavailable), errors.Is(err, domain.ErrAlreadyReturned):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidDueDate):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	default:
		h.logger.Error("circulation request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
