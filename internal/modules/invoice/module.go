package invoice

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/invoice/application"
	persistence "github.com/saransh1220/libraria/internal/modules/invoice/infrastructure/persistence/postgres"
	invoiceHttp "github.com/saransh1220/libraria/internal/modules/invoice/interfaces/http"
)

// Module represents the Invoice module
type Module struct {
	service *application.InvoiceService
	handler *invoiceHttp.InvoiceHandler
}

// NewModule creates and initializes the Invoice module
func NewModule(db *sqlx.DB, documents application.DocumentStore, logger *zap.Logger) *Module {
	repo := persistence.NewInvoiceRepository(db)
	service := application.NewInvoiceService(repo, documents, logger.Named("invoice"))
	handler := invoiceHttp.NewInvoiceHandler(service, logger.Named("invoice_http"))

	return &Module{service: service, handler: handler}
}

// Service returns the invoice service, the fine invoicer of circulation
func (m *Module) Service() *application.InvoiceService {
	return m.service
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *invoiceHttp.InvoiceHandler {
	return m.handler
}
