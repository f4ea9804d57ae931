package circulation

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/circulation/application"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
	persistence "github.com/saransh1220/libraria/internal/modules/circulation/infrastructure/persistence/postgres"
	circulationHttp "github.com/saransh1220/libraria/internal/modules/circulation/interfaces/http"
)

// Module represents the Circulation module
type Module struct {
	service *application.CirculationService
	handler *circulationHttp.CirculationHandler
}

// NewModule creates and initializes the Circulation module
func NewModule(db *sqlx.DB, students application.StudentDirectory, invoicer domain.FineInvoicer, policy domain.FinePolicy, logger *zap.Logger) *Module {
	repo := persistence.NewIssueRepository(db)
	service := application.NewCirculationService(repo, students, invoicer, policy, logger.Named("circulation"))
	handler := circulationHttp.NewCirculationHandler(service, logger.Named("circulation_http"))

	return &Module{
		service: service,
		handler: handler,
	}
}

// Service returns the circulation service, also the issue store of the reminder generator
func (m *Module) Service() *application.CirculationService {
	return m.service
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *circulationHttp.CirculationHandler {
	return m.handler
}
