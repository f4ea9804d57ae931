package http_test

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/invoice/application"
	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
	invoiceHttp "github.com/saransh1220/libraria/internal/modules/invoice/interfaces/http"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) ListInvoices(ctx context.Context, actor *authDomain.Session, f domain.InvoiceFilter) (*application.InvoiceList, error) {
	args := m.Called(ctx, actor, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.InvoiceList), args.Error(1)
}

func (m *mockInvoiceService) GetInvoice(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *mockInvoiceService) DownloadURL(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

func (m *mockInvoiceService) MarkPaid(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

var librarian = &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleLibrarian, InstitutionID: uuid.New()}

// serve routes the request through a mux so path values are populated
func serve(h *invoiceHttp.InvoiceHandler, method, target string, s *authDomain.Session) *httptest.ResponseRecorder {
	mux := stdhttp.NewServeMux()
	mux.HandleFunc("GET /invoices", h.List)
	mux.HandleFunc("GET /invoices/{id}", h.Get)
	mux.HandleFunc("GET /invoices/{id}/download", h.Download)
	mux.HandleFunc("POST /invoices/{id}/pay", h.Pay)

	req := httptest.NewRequest(method, target, nil)
	if s != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), s))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestInvoiceHandler_List(t *testing.T) {
	svc := new(mockInvoiceService)
	h := invoiceHttp.NewInvoiceHandler(svc, nil)
	student := uuid.New()

	svc.On("ListInvoices", mock.Anything, librarian, domain.InvoiceFilter{
		StudentID: student,
		Status:    domain.InvoiceStatusUnpaid,
		Limit:     5,
		Offset:    10,
	}).Return(&application.InvoiceList{Invoices: []domain.Invoice{{Number: "INV-1"}}, Total: 11, Limit: 5, Offset: 10}, nil)

	rr := serve(h, stdhttp.MethodGet, "/invoices?status=unpaid&student_id="+student.String()+"&limit=5&offset=10", librarian)
	require.Equal(t, stdhttp.StatusOK, rr.Code)
	var body application.InvoiceList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 11, body.Total)
	assert.Equal(t, "INV-1", body.Invoices[0].Number)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_List_BadInput(t *testing.T) {
	h := invoiceHttp.NewInvoiceHandler(new(mockInvoiceService), nil)

	assert.Equal(t, stdhttp.StatusBadRequest, serve(h, stdhttp.MethodGet, "/invoices?status=void", librarian).Code)
	assert.Equal(t, stdhttp.StatusBadRequest, serve(h, stdhttp.MethodGet, "/invoices?student_id=nope", librarian).Code)
	assert.Equal(t, stdhttp.StatusBadRequest, serve(h, stdhttp.MethodGet, "/invoices?institution_id=nope", librarian).Code)
	assert.Equal(t, stdhttp.StatusUnauthorized, serve(h, stdhttp.MethodGet, "/invoices", nil).Code)
}

func TestInvoiceHandler_GetDownloadPay(t *testing.T) {
	id := uuid.New()
	inv := &domain.Invoice{ID: id, Number: "INV-20240610-ABCDEF12", Status: domain.InvoiceStatusPaid}

	svc := new(mockInvoiceService)
	svc.On("GetInvoice", mock.Anything, librarian, id).Return(inv, nil)
	svc.On("DownloadURL", mock.Anything, librarian, id).Return("https://signed", nil)
	svc.On("MarkPaid", mock.Anything, librarian, id).Return(inv, nil)
	h := invoiceHttp.NewInvoiceHandler(svc, nil)

	rr := serve(h, stdhttp.MethodGet, "/invoices/"+id.String(), librarian)
	require.Equal(t, stdhttp.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "INV-20240610-ABCDEF12")
	assert.NotContains(t, rr.Body.String(), "document_key")

	rr = serve(h, stdhttp.MethodGet, "/invoices/"+id.String()+"/download", librarian)
	require.Equal(t, stdhttp.StatusOK, rr.Code)
	assert.JSONEq(t, `{"url":"https://signed"}`, rr.Body.String())

	rr = serve(h, stdhttp.MethodPost, "/invoices/"+id.String()+"/pay", librarian)
	require.Equal(t, stdhttp.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"paid"`)

	assert.Equal(t, stdhttp.StatusBadRequest, serve(h, stdhttp.MethodGet, "/invoices/not-a-uuid", librarian).Code)
}

func TestInvoiceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", domain.ErrInvoiceNotFound, stdhttp.StatusNotFound},
		{"already paid", domain.ErrAlreadyPaid, stdhttp.StatusConflict},
		{"no document", domain.ErrDocumentUnavailable, stdhttp.StatusConflict},
		{"forbidden", domain.ErrForbidden, stdhttp.StatusForbidden},
		{"other", errors.New("boom"), stdhttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			svc := new(mockInvoiceService)
			svc.On("MarkPaid", mock.Anything, librarian, id).Return(nil, tt.err)

			rr := serve(invoiceHttp.NewInvoiceHandler(svc, nil), stdhttp.MethodPost, "/invoices/"+id.String()+"/pay", librarian)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}
