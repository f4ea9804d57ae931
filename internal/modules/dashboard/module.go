package dashboard

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/dashboard/application"
	"github.com/saransh1220/libraria/internal/modules/dashboard/infrastructure/persistence/postgres"
	dashboardHttp "github.com/saransh1220/libraria/internal/modules/dashboard/interfaces/http"
)

type Module struct {
	service *application.DashboardService
	handler *dashboardHttp.DashboardHandler
}

func NewModule(db *sqlx.DB, issues application.IssueReader, unread application.UnreadCounter, reminders application.ReminderRunner, logger *zap.Logger) *Module {
	repo := postgres.NewDashboardRepository(db)
	service := application.NewDashboardService(repo, issues, unread, reminders, logger.Named("dashboard"))
	handler := dashboardHttp.NewDashboardHandler(service, logger.Named("dashboard_http"))

	return &Module{service: service, handler: handler}
}

func (m *Module) Service() *application.DashboardService {
	return m.service
}

func (m *Module) HTTPHandler() *dashboardHttp.DashboardHandler {
	return m.handler
}
