package application

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
)

// CoverUploader stores processed cover images and returns their URL
type CoverUploader interface {
	UploadWithKey(ctx context.Context, file io.Reader, key string, contentType string) (string, error)
}

type BookService interface {
	CreateBook(ctx context.Context, institutionID uuid.UUID, req CreateBookRequest) (*domain.Book, error)
	GetBook(ctx context.Context, institutionID, id uuid.UUID) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int, error)
	GetAllBooks(ctx context.Context, institutionID uuid.UUID) ([]domain.Book, error)
	UpdateBook(ctx context.Context, institutionID, id uuid.UUID, req UpdateBookRequest) (*domain.Book, error)
	DeleteBook(ctx context.Context, institutionID, id uuid.UUID) error
	UploadCover(ctx context.Context, institutionID, id uuid.UUID, image io.Reader) (*domain.Book, error)
}

type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
}

// UpdateBookRequest replaces the editable fields of a book
type UpdateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
}

type bookService struct {
	repo   domain.BookRepository
	covers CoverUploader
	logger *zap.Logger
}

func NewBookService(repo domain.BookRepository, covers CoverUploader, logger *zap.Logger) BookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &bookService{repo: repo, covers: covers, logger: logger}
}

func validateBook(title string, totalCopies int) error {
	if strings.TrimSpace(title) == "" {
		return domain.ErrTitleRequired
	}
	if totalCopies < 1 {
		return domain.ErrInvalidCopies
	}
	return nil
}

func (s *bookService) CreateBook(ctx context.Context, institutionID uuid.UUID, req CreateBookRequest) (*domain.Book, error) {
	if err := validateBook(req.Title, req.TotalCopies); err != nil {
		return nil, err
	}

	book := &domain.Book{
		ID:              uuid.New(),
		InstitutionID:   institutionID,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            strings.TrimSpace(req.ISBN),
		Category:        strings.TrimSpace(req.Category),
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book created",
		zap.String("book_id", book.ID.String()),
		zap.String("institution_id", institutionID.String()),
		zap.Int("copies", book.TotalCopies))
	return book, nil
}

// GetBook returns a book only when it belongs to institutionID; uuid.Nil
// skips the check (admin access)
func (s *bookService) GetBook(ctx context.Context, institutionID, id uuid.UUID) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if institutionID != uuid.Nil && book.InstitutionID != institutionID {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *bookService) GetAllBooks(ctx context.Context, institutionID uuid.UUID) ([]domain.Book, error) {
	return s.repo.ListAllByInstitution(ctx, institutionID)
}

func (s *bookService) UpdateBook(ctx context.Context, institutionID, id uuid.UUID, req UpdateBookRequest) (*domain.Book, error) {
	if err := validateBook(req.Title, req.TotalCopies); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, institutionID, id)
	if err != nil {
		return nil, err
	}
	if req.TotalCopies < book.IssuedCopies() {
		return nil, domain.ErrCopiesInUse
	}

	book.Title = strings.TrimSpace(req.Title)
	book.Author = strings.TrimSpace(req.Author)
	book.ISBN = strings.TrimSpace(req.ISBN)
	book.Category = strings.TrimSpace(req.Category)
	book.TotalCopies = req.TotalCopies

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) DeleteBook(ctx context.Context, institutionID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, institutionID); err != nil {
		return err
	}
	s.logger.Info("book deleted", zap.String("book_id", id.String()))
	return nil
}

// UploadCover thumbnails the image and stores it under covers/<institution>/<book>.jpg
func (s *bookService) UploadCover(ctx context.Context, institutionID, id uuid.UUID, image io.Reader) (*domain.Book, error) {
	book, err := s.GetBook(ctx, institutionID, id)
	if err != nil {
		return nil, err
	}

	thumb, err := MakeThumbnail(image, CoverWidth)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("covers/%s/%s.jpg", book.InstitutionID, book.ID)
	url, err := s.covers.UploadWithKey(ctx, thumb, key, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	if err := s.repo.UpdateCover(ctx, book.ID, url); err != nil {
		return nil, err
	}

	book.CoverURL = &url
	return book, nil
}
