package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
)

type NotificationType string

const (
	NotificationTypeOverdue NotificationType = "overdue"
	NotificationTypeDueSoon NotificationType = "due_soon"
	NotificationTypeOther   NotificationType = "other"
)

// Valid reports whether t is a type the notifications table accepts
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeOverdue, NotificationTypeDueSoon, NotificationTypeOther:
		return true
	}
	return false
}

type Notification struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Role          authDomain.Role  `json:"role" db:"role"`
	InstitutionID *uuid.UUID       `json:"institution_id,omitempty" db:"institution_id"`
	Type          NotificationType `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Message       string           `json:"message" db:"message"`
	IsRead        bool             `json:"is_read" db:"is_read"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// Recipient identifies whose inbox a notification belongs to
type Recipient struct {
	UserID        uuid.UUID
	Role          authDomain.Role
	InstitutionID *uuid.UUID
}

// RecipientOf derives the inbox of a signed-in user
func RecipientOf(s *authDomain.Session) Recipient {
	r := Recipient{UserID: s.UserID, Role: s.Role}
	if s.InstitutionID != uuid.Nil {
		id := s.InstitutionID
		r.InstitutionID = &id
	}
	return r
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidType          = errors.New("invalid notification type")
)
