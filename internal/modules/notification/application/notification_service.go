package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/notification/domain"
	"github.com/saransh1220/libraria/internal/modules/notification/infrastructure/websocket"
)

const (
	OverdueTitle = "Book Overdue"
	DueSoonTitle = "Book Due Soon"
)

// OverdueMessage is the body of an overdue reminder
func OverdueMessage(bookTitle string) string {
	return fmt.Sprintf("Your borrowed book \"%s\" is overdue. Please return it as soon as possible to avoid additional fines.", bookTitle)
}

// DueSoonMessage is the body of a due-soon reminder
func DueSoonMessage(bookTitle string, days int) string {
	return fmt.Sprintf("Your borrowed book \"%s\" is due in %d day(s). Please return or renew it on time.", bookTitle, days)
}

// NewNotification is the input of a generic notification
type NewNotification struct {
	Recipient domain.Recipient
	Type      domain.NotificationType
	Title     string
	Message   string
}

type NotificationService struct {
	repo   domain.NotificationRepository
	hub    *websocket.Hub
	now    func() time.Time
	logger *zap.Logger
}

func NewNotificationService(repo domain.NotificationRepository, hub *websocket.Hub, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, hub: hub, now: time.Now, logger: logger}
}

// Create stores a notification and pushes it to the recipient's open sockets
func (s *NotificationService) Create(ctx context.Context, in NewNotification) (*domain.Notification, error) {
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidType
	}

	notification := &domain.Notification{
		ID:            uuid.New(),
		UserID:        in.Recipient.UserID,
		Role:          in.Recipient.Role,
		InstitutionID: in.Recipient.InstitutionID,
		Type:          in.Type,
		Title:         in.Title,
		Message:       in.Message,
		IsRead:        false,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.hub != nil {
		if msgBytes, err := json.Marshal(notification); err == nil {
			s.hub.SendToUser(notification.UserID, msgBytes)
		} else {
			s.logger.Warn("failed to encode notification for push", zap.Error(err))
		}
	}

	return notification, nil
}

func studentRecipient(userID, institutionID uuid.UUID) domain.Recipient {
	return domain.Recipient{UserID: userID, Role: authDomain.RoleStudent, InstitutionID: &institutionID}
}

func (s *NotificationService) CreateOverdueNotification(ctx context.Context, userID uuid.UUID, bookTitle string, institutionID uuid.UUID) (*domain.Notification, error) {
	return s.Create(ctx, NewNotification{
		Recipient: studentRecipient(userID, institutionID),
		Type:      domain.NotificationTypeOverdue,
		Title:     OverdueTitle,
		Message:   OverdueMessage(bookTitle),
	})
}

func (s *NotificationService) CreateDueSoonNotification(ctx context.Context, userID uuid.UUID, bookTitle string, daysUntilDue int, institutionID uuid.UUID) (*domain.Notification, error) {
	return s.Create(ctx, NewNotification{
		Recipient: studentRecipient(userID, institutionID),
		Type:      domain.NotificationTypeDueSoon,
		Title:     DueSoonTitle,
		Message:   DueSoonMessage(bookTitle, daysUntilDue),
	})
}

func (s *NotificationService) GetHub() *websocket.Hub {
	return s.hub
}

// GetUserNotifications returns the whole inbox of a user in one role and institution
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, role authDomain.Role, institutionID uuid.UUID) ([]domain.Notification, error) {
	recipient := domain.Recipient{UserID: userID, Role: role}
	if institutionID != uuid.Nil {
		recipient.InstitutionID = &institutionID
	}
	return s.repo.ListForUser(ctx, recipient, 0, 0)
}

// ListNotifications pages through the signed-in user's inbox
func (s *NotificationService) ListNotifications(ctx context.Context, session *authDomain.Session, limit, offset int) ([]domain.Notification, error) {
	return s.repo.ListForUser(ctx, domain.RecipientOf(session), limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
