package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/invoice/application"
	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
)

type mockInvoiceRepo struct {
	createFn   func(context.Context, *domain.Invoice) error
	getByIDFn  func(context.Context, uuid.UUID) (*domain.Invoice, error)
	listFn     func(context.Context, domain.InvoiceFilter) ([]domain.Invoice, int, error)
	markPaidFn func(context.Context, uuid.UUID, time.Time) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	return m.createFn(ctx, inv)
}
func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockInvoiceRepo) List(ctx context.Context, f domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	return m.listFn(ctx, f)
}
func (m *mockInvoiceRepo) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.markPaidFn(ctx, id, at)
}

type mockDocuments struct {
	uploadFn  func(context.Context, string, any) (string, error)
	presignFn func(context.Context, string, string, time.Duration) (string, error)
}

func (m *mockDocuments) UploadJSON(ctx context.Context, key string, v any) (string, error) {
	return m.uploadFn(ctx, key, v)
}
func (m *mockDocuments) GetPresignedDownloadURL(ctx context.Context, key, filename string, d time.Duration) (string, error) {
	return m.presignFn(ctx, key, filename, d)
}

var (
	inst    = uuid.New()
	student = uuid.New()
	now     = time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
)

func lateReturn() *circulationDomain.IssueRecord {
	returned := now
	return &circulationDomain.IssueRecord{
		ID:            uuid.New(),
		BookID:        uuid.New(),
		StudentID:     student,
		InstitutionID: inst,
		IssueDate:     time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		ReturnDate:    &returned,
		Status:        circulationDomain.StatusReturned,
		Fine:          30,
		BookTitle:     "Dune",
	}
}

func TestInvoiceService_RaiseFineInvoice(t *testing.T) {
	issue := lateReturn()
	var stored *domain.Invoice
	var uploadedKey string
	var doc application.Document

	repo := &mockInvoiceRepo{createFn: func(_ context.Context, inv *domain.Invoice) error {
		stored = inv
		return nil
	}}
	docs := &mockDocuments{uploadFn: func(_ context.Context, key string, v any) (string, error) {
		uploadedKey = key
		doc = v.(application.Document)
		return "http://files/" + key, nil
	}}

	svc := application.NewInvoiceService(repo, docs, nil)
	require.NoError(t, svc.RaiseFineInvoice(context.Background(), issue, 30, "INR", now))

	require.NotNil(t, stored)
	assert.Equal(t, domain.NumberFor(stored.ID, now), stored.Number)
	assert.Regexp(t, `^INV-20240610-[0-9A-F]{8}$`, stored.Number)
	assert.Equal(t, issue.ID, stored.IssueID)
	assert.Equal(t, student, stored.StudentID)
	assert.Equal(t, inst, stored.InstitutionID)
	assert.Equal(t, "Dune", stored.BookTitle)
	assert.Equal(t, 3, stored.DaysLate)
	assert.Equal(t, 30.0, stored.Amount)
	assert.Equal(t, domain.InvoiceStatusUnpaid, stored.Status)
	assert.Equal(t, domain.DocumentKey(inst, stored.ID), stored.DocumentKey)
	assert.Equal(t, stored.DocumentKey, uploadedKey)

	assert.Equal(t, stored.Number, doc.Number)
	assert.Equal(t, issue.DueDate, doc.DueDate)
	assert.Equal(t, 3, doc.DaysLate)
}

func TestInvoiceService_RaiseFineInvoice_UploadFails(t *testing.T) {
	var stored *domain.Invoice
	repo := &mockInvoiceRepo{createFn: func(_ context.Context, inv *domain.Invoice) error {
		stored = inv
		return nil
	}}
	docs := &mockDocuments{uploadFn: func(context.Context, string, any) (string, error) {
		return "", errors.New("bucket gone")
	}}

	svc := application.NewInvoiceService(repo, docs, nil)
	require.NoError(t, svc.RaiseFineInvoice(context.Background(), lateReturn(), 30, "INR", now))
	require.NotNil(t, stored)
	assert.Empty(t, stored.DocumentKey)
}

func TestInvoiceService_RaiseFineInvoice_StoreFails(t *testing.T) {
	repo := &mockInvoiceRepo{createFn: func(context.Context, *domain.Invoice) error { return errors.New("db down") }}
	docs := &mockDocuments{uploadFn: func(context.Context, string, any) (string, error) { return "", nil }}

	svc := application.NewInvoiceService(repo, docs, nil)
	assert.Error(t, svc.RaiseFineInvoice(context.Background(), lateReturn(), 30, "INR", now))
}

func TestInvoiceService_ListInvoices_Scope(t *testing.T) {
	other := uuid.New()
	tests := []struct {
		name    string
		actor   *authDomain.Session
		in      domain.InvoiceFilter
		wantIn  uuid.UUID
		wantStu uuid.UUID
	}{
		{"student sees own", &authDomain.Session{UserID: student, Role: authDomain.RoleStudent, InstitutionID: inst}, domain.InvoiceFilter{StudentID: uuid.New()}, inst, student},
		{"librarian pinned to institution", &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleLibrarian, InstitutionID: inst}, domain.InvoiceFilter{InstitutionID: other}, inst, uuid.Nil},
		{"admin picks institution", &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleAdmin}, domain.InvoiceFilter{InstitutionID: other}, other, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.InvoiceFilter
			repo := &mockInvoiceRepo{listFn: func(_ context.Context, f domain.InvoiceFilter) ([]domain.Invoice, int, error) {
				got = f
				return []domain.Invoice{}, 0, nil
			}}
			tt.in.Limit = 20
			out, err := application.NewInvoiceService(repo, nil, nil).ListInvoices(context.Background(), tt.actor, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIn, got.InstitutionID)
			assert.Equal(t, tt.wantStu, got.StudentID)
			assert.Equal(t, 20, out.Limit)
		})
	}
}

func TestInvoiceService_GetInvoice_Visibility(t *testing.T) {
	inv := &domain.Invoice{ID: uuid.New(), StudentID: student, InstitutionID: inst}
	repo := &mockInvoiceRepo{getByIDFn: func(context.Context, uuid.UUID) (*domain.Invoice, error) {
		c := *inv
		return &c, nil
	}}
	svc := application.NewInvoiceService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.GetInvoice(ctx, &authDomain.Session{UserID: student, Role: authDomain.RoleStudent, InstitutionID: inst}, inv.ID)
	assert.NoError(t, err)

	_, err = svc.GetInvoice(ctx, &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleStudent, InstitutionID: inst}, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = svc.GetInvoice(ctx, &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleLibrarian, InstitutionID: uuid.New()}, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = svc.GetInvoice(ctx, &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleAdmin}, inv.ID)
	assert.NoError(t, err)
}

func TestInvoiceService_DownloadURL(t *testing.T) {
	inv := &domain.Invoice{ID: uuid.New(), Number: "INV-20240610-ABCDEF12", StudentID: student, InstitutionID: inst, DocumentKey: "invoices/x.json"}
	repo := &mockInvoiceRepo{getByIDFn: func(context.Context, uuid.UUID) (*domain.Invoice, error) {
		c := *inv
		return &c, nil
	}}
	docs := &mockDocuments{presignFn: func(_ context.Context, key, filename string, d time.Duration) (string, error) {
		assert.Equal(t, "invoices/x.json", key)
		assert.Equal(t, "INV-20240610-ABCDEF12.json", filename)
		assert.Equal(t, 15*time.Minute, d)
		return "https://signed", nil
	}}
	actor := &authDomain.Session{UserID: student, Role: authDomain.RoleStudent, InstitutionID: inst}
	svc := application.NewInvoiceService(repo, docs, nil)

	url, err := svc.DownloadURL(context.Background(), actor, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)

	inv.DocumentKey = ""
	_, err = svc.DownloadURL(context.Background(), actor, inv.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentUnavailable)
}

func TestInvoiceService_MarkPaid(t *testing.T) {
	librarian := &authDomain.Session{UserID: uuid.New(), Role: authDomain.RoleLibrarian, InstitutionID: inst}
	unpaid := func() *domain.Invoice {
		return &domain.Invoice{ID: uuid.New(), StudentID: student, InstitutionID: inst, Status: domain.InvoiceStatusUnpaid}
	}

	t.Run("ok", func(t *testing.T) {
		inv := unpaid()
		var paidAt time.Time
		repo := &mockInvoiceRepo{
			getByIDFn:  func(context.Context, uuid.UUID) (*domain.Invoice, error) { return inv, nil },
			markPaidFn: func(_ context.Context, _ uuid.UUID, at time.Time) error { paidAt = at; return nil },
		}
		svc := application.NewInvoiceService(repo, nil, nil).WithClock(func() time.Time { return now })

		out, err := svc.MarkPaid(context.Background(), librarian, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, out.Status)
		assert.Equal(t, now, paidAt)
		require.NotNil(t, out.PaidAt)
	})

	t.Run("student forbidden", func(t *testing.T) {
		svc := application.NewInvoiceService(&mockInvoiceRepo{}, nil, nil)
		_, err := svc.MarkPaid(context.Background(), &authDomain.Session{UserID: student, Role: authDomain.RoleStudent, InstitutionID: inst}, uuid.New())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already paid", func(t *testing.T) {
		inv := unpaid()
		inv.Status = domain.InvoiceStatusPaid
		repo := &mockInvoiceRepo{getByIDFn: func(context.Context, uuid.UUID) (*domain.Invoice, error) { return inv, nil }}
		_, err := application.NewInvoiceService(repo, nil, nil).MarkPaid(context.Background(), librarian, inv.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	})

	t.Run("race lost in repository", func(t *testing.T) {
		inv := unpaid()
		repo := &mockInvoiceRepo{
			getByIDFn:  func(context.Context, uuid.UUID) (*domain.Invoice, error) { return inv, nil },
			markPaidFn: func(context.Context, uuid.UUID, time.Time) error { return domain.ErrAlreadyPaid },
		}
		_, err := application.NewInvoiceService(repo, nil, nil).MarkPaid(context.Background(), librarian, inv.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	})
}
