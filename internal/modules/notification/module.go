package notification

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/notification/application"
	"github.com/saransh1220/libraria/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/saransh1220/libraria/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/saransh1220/libraria/internal/modules/notification/interfaces/http"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
}

func NewModule(db *sqlx.DB, logger *zap.Logger) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := postgres.NewPgNotificationRepository(db)
	hub := websocket.NewHub(logger.Named("ws_hub"))
	go hub.Run()

	service := application.NewNotificationService(repo, hub, logger.Named("notification"))
	handler := notification_http.NewNotificationHandler(service, hub, logger.Named("notification_http"))

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
	}
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

// Shutdown stops the websocket hub and closes open connections
func (m *Module) Shutdown() {
	m.hub.Stop()
}
