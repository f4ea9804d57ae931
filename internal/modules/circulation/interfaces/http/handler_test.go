package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/circulation/application"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
	circulationHttp "github.com/saransh1220/libraria/internal/modules/circulation/interfaces/http"
)

type mockCirculationService struct {
	mock.Mock
}

func (m *mockCirculationService) IssueBook(ctx context.Context, actor *authDomain.Session, req application.IssueRequest) (*application.IssueResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) ReturnBook(ctx context.Context, actor *authDomain.Session, issueID uuid.UUID, returnDate time.Time) (*application.IssueResponse, error) {
	args := m.Called(ctx, actor, issueID, returnDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) GetIssue(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*application.IssueResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) MyIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) ListInstitutionIssues(ctx context.Context, actor *authDomain.Session, filter domain.IssueFilter) (*application.IssueList, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueList), args.Error(1)
}

func (m *mockCirculationService) OverdueIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) DueSoonIssues(ctx context.Context, actor *authDomain.Session) ([]application.IssueResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.IssueResponse), args.Error(1)
}

func (m *mockCirculationService) ExportIssues(ctx context.Context, actor *authDomain.Session, status domain.IssueStatus) (*bytes.Buffer, string, error) {
	args := m.Called(ctx, actor, status)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*bytes.Buffer), args.String(1), args.Error(2)
}

var librarian = &authDomain.Session{ID: uuid.New(), UserID: uuid.New(), Role: authDomain.RoleLibrarian, InstitutionID: uuid.New()}

func authed(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	return req.WithContext(middleware.WithSession(req.Context(), librarian))
}

func TestIssueHandler(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)
	bookID, studentID := uuid.New(), uuid.New()
	due := time.Date(2024, 6, 20, 0, 0, 0, 0, time.Local)

	svc.On("IssueBook", mock.Anything, librarian, application.IssueRequest{BookID: bookID, StudentID: studentID, DueDate: due}).
		Return(&application.IssueResponse{IssueRecord: domain.IssueRecord{ID: uuid.New()}}, nil).Once()

	w := httptest.NewRecorder()
	h.Issue(w, authed(http.MethodPost, "/issues",
		`{"book_id":"`+bookID.String()+`","student_id":"`+studentID.String()+`","due_date":"2024-06-20"}`))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.Issue(w, authed(http.MethodPost, "/issues",
		`{"book_id":"`+bookID.String()+`","student_id":"`+studentID.String()+`","due_date":"20/06/2024"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Issue(w, authed(http.MethodPost, "/issues", `{"due_date":"2024-06-20"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestIssueHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrBookUnavailable, http.StatusConflict},
		{domain.ErrStudentNotFound, http.StatusNotFound},
		{domain.ErrInvalidDueDate, http.StatusBadRequest},
		{domain.ErrForbidden, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := new(mockCirculationService)
			h := circulationHttp.NewCirculationHandler(svc, nil)
			svc.On("IssueBook", mock.Anything, librarian, mock.Anything).Return(nil, tt.err).Once()

			w := httptest.NewRecorder()
			h.Issue(w, authed(http.MethodPost, "/issues",
				`{"book_id":"`+uuid.NewString()+`","student_id":"`+uuid.NewString()+`","due_date":"2024-06-20"}`))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestReturnHandler(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)
	id := uuid.New()

	svc.On("ReturnBook", mock.Anything, librarian, id, time.Time{}).
		Return(&application.IssueResponse{IssueRecord: domain.IssueRecord{ID: id, Fine: 20}}, nil).Once()
	svc.On("ReturnBook", mock.Anything, librarian, id, time.Date(2024, 6, 25, 0, 0, 0, 0, time.Local)).
		Return(nil, domain.ErrAlreadyReturned).Once()

	req := authed(http.MethodPost, "/issues/"+id.String()+"/return", "")
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.Return(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp application.IssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 20.0, resp.Fine)

	req = authed(http.MethodPost, "/issues/"+id.String()+"/return", `{"return_date":"2024-06-25"}`)
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.Return(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.AssertExpectations(t)
}

func TestListHandler(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)
	studentID := uuid.New()

	svc.On("ListInstitutionIssues", mock.Anything, librarian, domain.IssueFilter{
		Status: domain.StatusIssued, StudentID: studentID, Limit: 20,
	}).Return(&application.IssueList{Total: 1, Issues: []application.IssueResponse{{}}}, nil).Once()

	w := httptest.NewRecorder()
	h.List(w, authed(http.MethodGet, "/issues?status=issued&student_id="+studentID.String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.List(w, authed(http.MethodGet, "/issues?status=overdue", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestStateListHandlers(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)

	svc.On("OverdueIssues", mock.Anything, librarian).Return([]application.IssueResponse{{}, {}}, nil).Once()
	svc.On("DueSoonIssues", mock.Anything, librarian).Return(nil, domain.ErrForbidden).Once()
	svc.On("MyIssues", mock.Anything, librarian).Return([]application.IssueResponse{}, nil).Once()

	w := httptest.NewRecorder()
	h.Overdue(w, authed(http.MethodGet, "/issues/overdue", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var list []application.IssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = httptest.NewRecorder()
	h.DueSoon(w, authed(http.MethodGet, "/issues/due-soon", ""))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.MyIssues(w, authed(http.MethodGet, "/students/me/issues", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Overdue(w, httptest.NewRequest(http.MethodGet, "/issues/overdue", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertExpectations(t)
}

func TestGetHandler(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)
	id := uuid.New()

	svc.On("GetIssue", mock.Anything, librarian, id).Return(nil, domain.ErrIssueNotFound).Once()

	req := authed(http.MethodGet, "/issues/"+id.String(), "")
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = authed(http.MethodGet, "/issues/nope", "")
	req.SetPathValue("id", "nope")
	w = httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler(t *testing.T) {
	svc := new(mockCirculationService)
	h := circulationHttp.NewCirculationHandler(svc, nil)

	svc.On("ExportIssues", mock.Anything, librarian, domain.StatusReturned).
		Return(bytes.NewBufferString("xlsx-bytes"), "issues-20240610.xlsx", nil).Once()
	svc.On("ExportIssues", mock.Anything, librarian, domain.IssueStatus("")).
		Return(nil, "", domain.ErrExportFailed).Once()

	w := httptest.NewRecorder()
	h.Export(w, authed(http.MethodGet, "/issues/export?status=returned", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="issues-20240610.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", w.Body.String())

	w = httptest.NewRecorder()
	h.Export(w, authed(http.MethodGet, "/issues/export", ""))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	h.Export(w, authed(http.MethodGet, "/issues/export?status=lost", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Export(w, httptest.NewRequest(http.MethodGet, "/issues/export", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertExpectations(t)
}
