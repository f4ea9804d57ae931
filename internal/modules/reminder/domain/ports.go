package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	catalogDomain "github.com/saransh1220/libraria/internal/modules/catalog/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	notificationDomain "github.com/saransh1220/libraria/internal/modules/notification/domain"
)

// NotificationStore reads and writes a student's inbox
type NotificationStore interface {
	GetUserNotifications(ctx context.Context, userID uuid.UUID, role authDomain.Role, institutionID uuid.UUID) ([]notificationDomain.Notification, error)
	CreateOverdueNotification(ctx context.Context, userID uuid.UUID, bookTitle string, institutionID uuid.UUID) (*notificationDomain.Notification, error)
	CreateDueSoonNotification(ctx context.Context, userID uuid.UUID, bookTitle string, daysUntilDue int, institutionID uuid.UUID) (*notificationDomain.Notification, error)
}

// IssueStore lists a student's loans
type IssueStore interface {
	GetStudentIssues(ctx context.Context, studentID uuid.UUID) ([]circulationDomain.IssueRecord, error)
}

// BookStore lists an institution's catalogue
type BookStore interface {
	GetAllBooks(ctx context.Context, institutionID uuid.UUID) ([]catalogDomain.Book, error)
}

// RunLock serialises generator runs for the same key. When acquired is false
// another run holds the lock; release is then nil.
type RunLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), acquired bool, err error)
}
