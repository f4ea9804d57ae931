package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/invoice/domain"
)

// DownloadLinkLifetime is how long an invoice download link stays valid
const DownloadLinkLifetime = 15 * time.Minute

// DocumentStore is the part of file storage invoices need
type DocumentStore interface {
	UploadJSON(ctx context.Context, key string, v any) (string, error)
	GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error)
}

type InvoiceList struct {
	Invoices []domain.Invoice `json:"invoices"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type InvoiceService struct {
	repo      domain.InvoiceRepository
	documents DocumentStore
	now       func() time.Time
	logger    *zap.Logger
}

func NewInvoiceService(repo domain.InvoiceRepository, documents DocumentStore, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{repo: repo, documents: documents, now: time.Now, logger: logger}
}

func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// RaiseFineInvoice records an unpaid invoice for a fined return and uploads
// its document. The invoice is kept even when the upload fails; it then has
// no document to download.
func (s *InvoiceService) RaiseFineInvoice(ctx context.Context, issue *circulationDomain.IssueRecord, amount float64, currency string, issuedAt time.Time) error {
	id := uuid.New()
	inv := &domain.Invoice{
		ID:            id,
		Number:        domain.NumberFor(id, issuedAt),
		IssueID:       issue.ID,
		StudentID:     issue.StudentID,
		InstitutionID: issue.InstitutionID,
		BookTitle:     issue.BookTitle,
		Amount:        amount,
		Currency:      currency,
		Status:        domain.InvoiceStatusUnpaid,
		IssuedAt:      issuedAt,
	}
	if issue.ReturnDate != nil {
		inv.DaysLate = circulationDomain.DaysLate(issue.DueDate, *issue.ReturnDate)
	}

	key := domain.DocumentKey(inv.InstitutionID, inv.ID)
	if _, err := s.documents.UploadJSON(ctx, key, newDocument(inv, issue)); err != nil {
		s.logger.Warn("failed to upload invoice document",
			zap.String("invoice", inv.Number),
			zap.Error(err))
	} else {
		inv.DocumentKey = key
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return err
	}

	s.logger.Info("fine invoice raised",
		zap.String("invoice", inv.Number),
		zap.String("issue_id", issue.ID.String()),
		zap.Float64("amount", amount))
	return nil
}

// ListInvoices shows students their own invoices and staff their
// institution's. Admins may pass any institution in the filter.
func (s *InvoiceService) ListInvoices(ctx context.Context, actor *authDomain.Session, filter domain.InvoiceFilter) (*InvoiceList, error) {
	switch actor.Role {
	case authDomain.RoleStudent:
		filter.InstitutionID = actor.InstitutionID
		filter.StudentID = actor.UserID
	case authDomain.RoleAdmin:
	default:
		filter.InstitutionID = actor.InstitutionID
	}

	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InvoiceList{Invoices: invoices, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, inv) {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func visible(actor *authDomain.Session, inv *domain.Invoice) bool {
	if actor.Role == authDomain.RoleStudent {
		return inv.StudentID == actor.UserID
	}
	return actor.CanAccessInstitution(inv.InstitutionID)
}

// DownloadURL returns a short-lived link to the invoice document
func (s *InvoiceService) DownloadURL(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (string, error) {
	inv, err := s.GetInvoice(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if inv.DocumentKey == "" {
		return "", domain.ErrDocumentUnavailable
	}
	return s.documents.GetPresignedDownloadURL(ctx, inv.DocumentKey, inv.Number+".json", DownloadLinkLifetime)
}

// MarkPaid settles an invoice. Only staff of the invoice's institution may do it.
func (s *InvoiceService) MarkPaid(ctx context.Context, actor *authDomain.Session, id uuid.UUID) (*domain.Invoice, error) {
	if !actor.HasRole(authDomain.RoleInstitution, authDomain.RolePrivateLibrary, authDomain.RoleLibrarian) {
		return nil, domain.ErrForbidden
	}

	inv, err := s.GetInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrAlreadyPaid
	}

	paidAt := s.now()
	if err := s.repo.MarkPaid(ctx, id, paidAt); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &paidAt

	s.logger.Info("invoice paid", zap.String("invoice", inv.Number), zap.String("by", actor.UserID.String()))
	return inv, nil
}
