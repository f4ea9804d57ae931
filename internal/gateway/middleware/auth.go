package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

type contextKey string

const (
	ContextKeyUserId  contextKey = "user_id"
	ContextKeyRole    contextKey = "role"
	ContextKeySession contextKey = "session"
)

// Authenticator turns a bearer token into the session it was issued for
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

type AuthMiddleWare struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthMiddleware creates the middleware that guards authenticated routes
func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleWare {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleWare{auth: auth, logger: logger}
}

// WithSession stores the session and its identity in ctx
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	ctx = context.WithValue(ctx, ContextKeySession, s)
	ctx = context.WithValue(ctx, ContextKeyUserId, s.UserID)
	return context.WithValue(ctx, ContextKeyRole, string(s.Role))
}

// SessionFromContext returns the session placed by RequireAuth
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(*domain.Session)
	return s, ok && s != nil
}

// UserIDFromContext returns the authenticated user id
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserId).(uuid.UUID)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token backed by a live
// session. The token may also come from the token query parameter, which
// browsers need for websocket upgrades.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		session, err := m.auth.Authenticate(r.Context(), tokenStr)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				m.logger.Debug("token rejected", zap.Error(err))
			}
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole only lets sessions with one of roles through. It must run
// after RequireAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !session.HasRole(roles...) {
				utils.WriteError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
