package reminder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/reminder/application"
	"github.com/saransh1220/libraria/internal/modules/reminder/domain"
	"github.com/saransh1220/libraria/internal/modules/reminder/infrastructure/lock"
	reminderHttp "github.com/saransh1220/libraria/internal/modules/reminder/interfaces/http"
)

// Module represents the Reminder module
type Module struct {
	service *application.ReminderService
	handler *reminderHttp.ReminderHandler
}

// NewModule wires the generator to the notification, circulation and catalog
// modules. A nil redisClient runs without the per-student lock.
func NewModule(notifications domain.NotificationStore, issues domain.IssueStore, books domain.BookStore, redisClient *redis.Client, lockTTL time.Duration, reg prometheus.Registerer, logger *zap.Logger) *Module {
	opts := []application.GeneratorOption{application.WithMetrics(application.NewMetrics(reg))}
	if redisClient != nil {
		opts = append(opts, application.WithRunLock(lock.NewRedisRunLock(redisClient, logger.Named("reminder_lock")), lockTTL))
	}

	generator := application.NewGenerator(notifications, logger.Named("reminder"), opts...)
	service := application.NewReminderService(issues, books, generator, logger.Named("reminder"))
	handler := reminderHttp.NewReminderHandler(service, logger.Named("reminder_http"))

	return &Module{service: service, handler: handler}
}

// Service returns the reminder service, also used by the student dashboard
func (m *Module) Service() *application.ReminderService {
	return m.service
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *reminderHttp.ReminderHandler {
	return m.handler
}
