package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/catalog/application"
	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

const (
	bookCacheTTL     = 10 * time.Minute
	coverURLLifetime = time.Hour
	maxCoverBytes    = 10 << 20
)

type BookHandler struct {
	service     application.BookService
	fileService FileService
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewBookHandler(service application.BookService, fileService FileService, redisClient *redis.Client, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{
		service:     service,
		fileService: fileService,
		redisClient: redisClient,
		logger:      logger,
	}
}

func cacheKey(id uuid.UUID) string {
	return "book:" + id.String()
}

func (h *BookHandler) evict(ctx context.Context, id uuid.UUID) {
	if err := h.redisClient.Del(ctx, cacheKey(id)).Err(); err != nil {
		h.logger.Warn("book cache eviction failed", zap.String("book_id", id.String()), zap.Error(err))
	}
}

// scope resolves the institution a request acts on. Admins may pick one with
// ?institution_id=, everyone else is pinned to their session's institution.
func scope(r *http.Request, s *authDomain.Session) (uuid.UUID, error) {
	if s.Role == authDomain.RoleAdmin {
		if v := r.URL.Query().Get("institution_id"); v != "" {
			return uuid.Parse(v)
		}
		return uuid.Nil, nil
	}
	return s.InstitutionID, nil
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req application.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	book, err := h.service.CreateBook(r.Context(), session.InstitutionID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, book)
}

// Get serves a single book, cache-aside through Redis
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	if val, err := h.redisClient.Get(r.Context(), cacheKey(id)).Bytes(); err == nil {
		var cached domain.Book
		if err := json.Unmarshal(val, &cached); err == nil {
			if !session.CanAccessInstitution(cached.InstitutionID) {
				utils.WriteError(w, http.StatusNotFound, domain.ErrBookNotFound.Error(), nil)
				return
			}
			w.Header().Set("X-Cache", "HIT")
			utils.WriteJSON(w, http.StatusOK, &cached)
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		h.logger.Warn("book cache read failed", zap.Error(err))
	}

	book, err := h.service.GetBook(r.Context(), uuid.Nil, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !session.CanAccessInstitution(book.InstitutionID) {
		utils.WriteError(w, http.StatusNotFound, domain.ErrBookNotFound.Error(), nil)
		return
	}

	h.presignCover(r.Context(), book)

	if data, err := json.Marshal(book); err == nil {
		if err := h.redisClient.Set(r.Context(), cacheKey(id), data, bookCacheTTL).Err(); err != nil {
			h.logger.Warn("book cache write failed", zap.Error(err))
		}
	}

	w.Header().Set("X-Cache", "MISS")
	utils.WriteJSON(w, http.StatusOK, book)
}

// BookListResponse is one page of books
type BookListResponse struct {
	Books  []domain.Book `json:"books"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	institutionID, err := scope(r, session)
	if err != nil || institutionID == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "institution_id is required", nil)
		return
	}

	q := r.URL.Query()
	limit, offset := utils.Pagination(r, 20, 100)
	available, _ := strconv.ParseBool(q.Get("available"))

	filter := domain.BookFilter{
		InstitutionID: institutionID,
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		AvailableOnly: available,
		Limit:         limit,
		Offset:        offset,
		Sort:          q.Get("sort"),
	}

	books, total, err := h.service.ListBooks(r.Context(), filter)
	if err != nil {
		h.logger.Error("list books failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list books", nil)
		return
	}
	for i := range books {
		h.presignCover(r.Context(), &books[i])
	}

	utils.WriteJSON(w, http.StatusOK, BookListResponse{Books: books, Total: total, Limit: limit, Offset: offset})
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req application.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), session.InstitutionID, id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.evict(r.Context(), id)
	utils.WriteJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteBook(r.Context(), session.InstitutionID, id); err != nil {
		h.writeError(w, err)
		return
	}
	h.evict(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover accepts a multipart "image" field
func (h *BookHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)
	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "file too large", nil)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "image file is required", nil)
		return
	}
	defer file.Close()

	book, err := h.service.UploadCover(r.Context(), session.InstitutionID, id, file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.evict(r.Context(), id)
	h.presignCover(r.Context(), book)
	utils.WriteJSON(w, http.StatusOK, book)
}

// presignCover swaps the stored cover URL for a temporary signed one. Failures
// leave the stored URL in place.
func (h *BookHandler) presignCover(ctx context.Context, book *domain.Book) {
	if book.CoverURL == nil || *book.CoverURL == "" || h.fileService == nil {
		return
	}
	key, err := h.fileService.GetKeyFromUrl(*book.CoverURL)
	if err != nil {
		return
	}
	if signed, err := h.fileService.GetPresignedURL(ctx, key, coverURLLifetime); err == nil {
		book.CoverURL = &signed
	}
}

func (h *BookHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrBookHasActiveLoans), errors.Is(err, domain.ErrCopiesInUse):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidCopies), errors.Is(err, domain.ErrInvalidCover), errors.Is(err, domain.ErrTitleRequired):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		h.logger.Error("catalog request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
