package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway"
	"github.com/saransh1220/libraria/internal/gateway/middleware"
	"github.com/saransh1220/libraria/internal/modules/auth"
	"github.com/saransh1220/libraria/internal/modules/catalog"
	"github.com/saransh1220/libraria/internal/modules/circulation"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	"github.com/saransh1220/libraria/internal/modules/dashboard"
	"github.com/saransh1220/libraria/internal/modules/filestorage"
	"github.com/saransh1220/libraria/internal/modules/invoice"
	"github.com/saransh1220/libraria/internal/modules/notification"
	"github.com/saransh1220/libraria/internal/modules/reminder"
	"github.com/saransh1220/libraria/internal/modules/user"
	"github.com/saransh1220/libraria/internal/shared/infrastructure/config"
)

// app is the wired module graph behind the HTTP handler
type app struct {
	handler  http.Handler
	shutdown func()
}

// newApp builds every module in dependency order. reg receives the reminder
// metrics; nil means the default prometheus registry.
func newApp(ctx context.Context, cfg config.Config, db *sqlx.DB, rdb *redis.Client, reg prometheus.Registerer, logger *zap.Logger) (*app, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	storageModule, err := filestorage.NewModule(ctx, cfg.FileStorage, cfg.Server.PublicBaseURL, logger)
	if err != nil {
		return nil, err
	}

	authModule, err := auth.NewModule(db, rdb, cfg.JWT.Secret, cfg.JWT.Expiry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	userModule := user.NewModule(authModule.UserRepository(), logger)
	catalogModule := catalog.NewModule(db, storageModule.Service(), rdb, logger)
	notificationModule := notification.NewModule(db, logger)
	invoiceModule := invoice.NewModule(db, storageModule.Service(), logger)

	circulationModule := circulation.NewModule(db, userModule.Service(), invoiceModule.Service(),
		circulationDomain.FinePolicy{PerDay: cfg.Library.FinePerDay, Currency: cfg.Library.Currency}, logger)

	reminderModule := reminder.NewModule(notificationModule.Service(), circulationModule.Service(), catalogModule.Service(),
		rdb, cfg.Library.ReminderLockTTL, reg, logger)

	dashboardModule := dashboard.NewModule(db, circulationModule.Service(), notificationModule.Service(), reminderModule.Service(), logger)

	routes := gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      middleware.NewAuthMiddleware(authModule.Service(), logger),
		UserHandler:         userModule.HTTPHandler(),
		BookHandler:         catalogModule.HTTPHandler(),
		CirculationHandler:  circulationModule.HTTPHandler(),
		NotificationHandler: notificationModule.HTTPHandler(),
		ReminderHandler:     reminderModule.HTTPHandler(),
		DashboardHandler:    dashboardModule.HTTPHandler(),
		InvoiceHandler:      invoiceModule.HTTPHandler(),
	}
	if storageModule.Local() {
		routes.Uploads = http.FileServer(http.Dir(cfg.FileStorage.LocalPath))
	}

	var handler http.Handler = gateway.SetupRoutes(routes)
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	return &app{
		handler:  handler,
		shutdown: notificationModule.Shutdown,
	}, nil
}
