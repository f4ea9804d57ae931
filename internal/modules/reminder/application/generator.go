package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	catalogDomain "github.com/saransh1220/libraria/internal/modules/catalog/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	notificationDomain "github.com/saransh1220/libraria/internal/modules/notification/domain"
	"github.com/saransh1220/libraria/internal/modules/reminder/domain"
)

// RunInput is everything a run needs about one student
type RunInput struct {
	StudentID     uuid.UUID
	InstitutionID uuid.UUID
	Issues        []circulationDomain.IssueRecord
	Books         []catalogDomain.Book
}

// Generator turns a student's active loans into overdue and due-soon
// notifications, at most one per type and book title per calendar day.
type Generator struct {
	notifications domain.NotificationStore
	lock          domain.RunLock
	lockTTL       time.Duration
	metrics       *Metrics
	now           func() time.Time
	logger        *zap.Logger
}

type GeneratorOption func(*Generator)

// WithClock replaces time.Now
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithRunLock makes concurrent runs for the same student and day skip creation
func WithRunLock(lock domain.RunLock, ttl time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.lock = lock
		g.lockTTL = ttl
	}
}

func WithMetrics(m *Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

func NewGenerator(notifications domain.NotificationStore, logger *zap.Logger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		notifications: notifications,
		lockTTL:       30 * time.Second,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LockKey is the single-flight key of a student's run on day
func LockKey(studentID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("reminder:lock:%s:%s", studentID, day.Format("2006-01-02"))
}

// sentToday holds today's reminders so repeated runs do not re-notify
type sentToday struct {
	messages map[notificationDomain.NotificationType][]string
}

func newSentToday(existing []notificationDomain.Notification, startOfDay time.Time) *sentToday {
	s := &sentToday{messages: map[notificationDomain.NotificationType][]string{}}
	for _, n := range existing {
		if !n.CreatedAt.Before(startOfDay) {
			s.add(n.Type, n.Message)
		}
	}
	return s
}

func (s *sentToday) add(t notificationDomain.NotificationType, message string) {
	s.messages[t] = append(s.messages[t], message)
}

func (s *sentToday) has(t notificationDomain.NotificationType, bookTitle string) bool {
	for _, message := range s.messages[t] {
		if strings.Contains(message, bookTitle) {
			return true
		}
	}
	return false
}

// Run evaluates every active issue and creates the reminders that are due.
// Missing books and failed creations are recorded in the result and do not
// stop the run. The returned result carries the student's full notification
// list as it stands after the run.
func (g *Generator) Run(ctx context.Context, in RunInput) (*domain.RunResult, error) {
	start := time.Now()
	defer func() {
		if g.metrics != nil {
			g.metrics.duration.Observe(time.Since(start).Seconds())
		}
	}()

	now := g.now()
	log := g.logger.With(zap.String("student_id", in.StudentID.String()))
	result := &domain.RunResult{Skipped: []domain.SkippedIssue{}, Failures: []domain.IssueFailure{}}

	if g.lock != nil {
		release, acquired, err := g.lock.Acquire(ctx, LockKey(in.StudentID, now), g.lockTTL)
		switch {
		case err != nil:
			log.Warn("reminder lock unavailable, running without it", zap.Error(err))
		case !acquired:
			log.Info("reminder run already in progress")
			result.LockContended = true
			return g.finish(ctx, in, result)
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	existing, err := g.notifications.GetUserNotifications(ctx, in.StudentID, authDomain.RoleStudent, in.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDedupUnavailable, err)
	}
	sent := newSentToday(existing, circulationDomain.StartOfDay(now, now.Location()))

	books := make(map[uuid.UUID]catalogDomain.Book, len(in.Books))
	for _, b := range in.Books {
		books[b.ID] = b
	}

	for _, issue := range in.Issues {
		if !issue.Active() {
			continue
		}

		book, ok := books[issue.BookID]
		if !ok {
			log.Warn("book not found for issue",
				zap.String("issue_id", issue.ID.String()),
				zap.String("book_id", issue.BookID.String()))
			result.Skipped = append(result.Skipped, domain.SkippedIssue{
				IssueID: issue.ID,
				BookID:  issue.BookID,
				Reason:  domain.SkipReasonBookNotFound,
			})
			g.countFailure(domain.SkipReasonBookNotFound)
			continue
		}

		var (
			kind   notificationDomain.NotificationType
			create func() (*notificationDomain.Notification, error)
		)
		switch circulationDomain.Classify(issue.DueDate, now) {
		case circulationDomain.DueStateOverdue:
			kind = notificationDomain.NotificationTypeOverdue
			create = func() (*notificationDomain.Notification, error) {
				return g.notifications.CreateOverdueNotification(ctx, in.StudentID, book.Title, in.InstitutionID)
			}
		case circulationDomain.DueStateDueSoon:
			kind = notificationDomain.NotificationTypeDueSoon
			days := circulationDomain.DaysUntilDue(issue.DueDate, now)
			create = func() (*notificationDomain.Notification, error) {
				return g.notifications.CreateDueSoonNotification(ctx, in.StudentID, book.Title, days, in.InstitutionID)
			}
		default:
			continue
		}

		if sent.has(kind, book.Title) {
			result.Deduplicated++
			if g.metrics != nil {
				g.metrics.deduplicated.WithLabelValues(string(kind)).Inc()
			}
			continue
		}

		n, err := create()
		if err != nil {
			log.Error("failed to create reminder",
				zap.String("issue_id", issue.ID.String()),
				zap.String("type", string(kind)),
				zap.Error(err))
			result.Failures = append(result.Failures, domain.IssueFailure{
				IssueID:   issue.ID,
				BookTitle: book.Title,
				Type:      kind,
				Error:     err.Error(),
			})
			g.countFailure(domain.FailureReasonCreate)
			continue
		}

		sent.add(n.Type, n.Message)
		result.Created++
		if g.metrics != nil {
			g.metrics.created.WithLabelValues(string(kind)).Inc()
		}
	}

	log.Info("reminder run finished",
		zap.Int("created", result.Created),
		zap.Int("deduplicated", result.Deduplicated),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failures)))

	return g.finish(ctx, in, result)
}

// finish re-reads the inbox so the caller sees the notifications created by
// this run and by any concurrent one
func (g *Generator) finish(ctx context.Context, in RunInput, result *domain.RunResult) (*domain.RunResult, error) {
	notifications, err := g.notifications.GetUserNotifications(ctx, in.StudentID, authDomain.RoleStudent, in.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("reload notifications: %w", err)
	}
	result.Notifications = notifications
	return result, nil
}

func (g *Generator) countFailure(reason string) {
	if g.metrics != nil {
		g.metrics.failures.WithLabelValues(reason).Inc()
	}
}
