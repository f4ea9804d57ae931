package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/libraria/internal/shared/utils"
)

// RegisterRequest is the public signup payload. Profile is decoded into the
// variant matching Role.
type RegisterRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Profile  json.RawMessage `json:"profile"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

// AuthService provides authentication operations
type AuthService struct {
	repo      domain.UserRepository
	sessions  domain.SessionStore
	jwtSecret string
	jwtExpiry time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(repo domain.UserRepository, sessions domain.SessionStore, jwtSecret string, jwtExpiry time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an institution, private library or the first admin account.
// Students and librarians are created by staff through the member directory.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	role := domain.Role(req.Role)
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if !role.SelfRegistrable() {
		return nil, domain.ErrRoleNotAllowed
	}

	if role == domain.RoleAdmin {
		n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, domain.ErrAdminExists
		}
	}

	profile, err := domain.DecodeProfile(role, req.Profile)
	if err != nil {
		return nil, err
	}

	user, err := NewUser(req.Email, req.Password, req.Name, profile)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return user, nil
}

// NewUser validates the common fields and the profile, hashes the password and
// builds an active user ready to persist.
func NewUser(email, password, name string, profile domain.Profile) (*domain.User, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	if !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email format")
	}
	if name == "" {
		return nil, errors.New("name is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Role:         profile.Role(),
		Profile:      profile,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Login authenticates a user, opens a session and returns a token bound to it
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("missing email or password")
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials // don't reveal user existence
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	institutionID, _ := user.InstitutionID()
	now := s.now()
	session := &domain.Session{
		ID:            uuid.New(),
		UserID:        user.ID,
		Role:          user.Role,
		InstitutionID: institutionID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.jwtExpiry),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	token, err := jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, session.ID, user.ID, string(user.Role), institutionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout ends the session so its token stops working
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session closed", zap.String("session_id", sessionID.String()))
	return nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Authenticate validates a token and restores the session it was issued for
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*domain.Session, error) {
	claims, err := jwt.ValidateToken(tokenStr, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
