package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saransh1220/libraria/internal/gateway/middleware"
	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	auth_http "github.com/saransh1220/libraria/internal/modules/auth/interfaces/http"
	catalog_http "github.com/saransh1220/libraria/internal/modules/catalog/interfaces/http"
	circulation_http "github.com/saransh1220/libraria/internal/modules/circulation/interfaces/http"
	dashboard_http "github.com/saransh1220/libraria/internal/modules/dashboard/interfaces/http"
	invoice_http "github.com/saransh1220/libraria/internal/modules/invoice/interfaces/http"
	notification_http "github.com/saransh1220/libraria/internal/modules/notification/interfaces/http"
	reminder_http "github.com/saransh1220/libraria/internal/modules/reminder/interfaces/http"
	user_http "github.com/saransh1220/libraria/internal/modules/user/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	UserHandler         *user_http.UserHandler
	BookHandler         *catalog_http.BookHandler
	CirculationHandler  *circulation_http.CirculationHandler
	NotificationHandler *notification_http.NotificationHandler
	ReminderHandler     *reminder_http.ReminderHandler
	DashboardHandler    *dashboard_http.DashboardHandler
	InvoiceHandler      *invoice_http.InvoiceHandler
	// Uploads serves local file storage; nil when files live in S3
	Uploads http.Handler
}

var (
	staffRoles = []authDomain.Role{authDomain.RoleInstitution, authDomain.RolePrivateLibrary, authDomain.RoleLibrarian}
	ownerRoles = []authDomain.Role{authDomain.RoleInstitution, authDomain.RolePrivateLibrary}
)

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	auth := func(h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(h)
	}
	role := func(roles []authDomain.Role, h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(middleware.RequireRole(roles...)(h))
	}
	staff := func(h http.HandlerFunc) http.Handler { return role(staffRoles, h) }
	student := func(h http.HandlerFunc) http.Handler { return role([]authDomain.Role{authDomain.RoleStudent}, h) }

	// Health Check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	if config.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", config.Uploads))
	}

	// Auth Routes
	mux.HandleFunc("POST /register", config.AuthHandler.Register)
	mux.HandleFunc("POST /login", config.AuthHandler.Login)
	mux.Handle("POST /logout", auth(config.AuthHandler.Logout))
	mux.Handle("GET /me", auth(config.AuthHandler.Me))

	// Member Routes
	mux.Handle("POST /students", staff(config.UserHandler.CreateStudent))
	mux.Handle("POST /librarians", role(ownerRoles, config.UserHandler.CreateLibrarian))
	mux.Handle("GET /members", staff(config.UserHandler.ListMembers))
	mux.Handle("GET /members/{id}", staff(config.UserHandler.GetMember))
	mux.Handle("PATCH /members/{id}/active", role(ownerRoles, config.UserHandler.SetMemberActive))

	// Catalog Routes
	mux.Handle("GET /books", auth(config.BookHandler.List))
	mux.Handle("GET /books/{id}", auth(config.BookHandler.Get))
	mux.Handle("POST /books", staff(config.BookHandler.Create))
	mux.Handle("PATCH /books/{id}", staff(config.BookHandler.Update))
	mux.Handle("DELETE /books/{id}", staff(config.BookHandler.Delete))
	mux.Handle("POST /books/{id}/cover", staff(config.BookHandler.UploadCover))

	// Circulation Routes
	mux.Handle("POST /issues", staff(config.CirculationHandler.Issue))
	mux.Handle("POST /issues/{id}/return", staff(config.CirculationHandler.Return))
	mux.Handle("GET /issues", staff(config.CirculationHandler.List))
	mux.Handle("GET /issues/overdue", staff(config.CirculationHandler.Overdue))
	mux.Handle("GET /issues/due-soon", staff(config.CirculationHandler.DueSoon))
	mux.Handle("GET /issues/export", staff(config.CirculationHandler.Export))
	mux.Handle("GET /issues/{id}", auth(config.CirculationHandler.Get))
	mux.Handle("GET /students/me/issues", student(config.CirculationHandler.MyIssues))

	// Reminder Routes
	mux.Handle("POST /students/me/reminders", student(config.ReminderHandler.Generate))

	// Notification Routes
	mux.Handle("GET /notifications", auth(config.NotificationHandler.ListNotifications))
	mux.Handle("PATCH /notifications/{id}/read", auth(config.NotificationHandler.MarkAsRead))
	mux.Handle("PATCH /notifications/read-all", auth(config.NotificationHandler.MarkAllAsRead))
	mux.Handle("GET /notifications/unread-count", auth(config.NotificationHandler.UnreadCount))
	mux.Handle("GET /ws", auth(config.NotificationHandler.Subscribe))

	// Dashboard Routes
	mux.Handle("GET /dashboard/student", student(config.DashboardHandler.Student))
	mux.Handle("GET /dashboard/institution", staff(config.DashboardHandler.Institution))
	mux.Handle("GET /dashboard/admin", role([]authDomain.Role{authDomain.RoleAdmin}, config.DashboardHandler.Admin))

	// Invoice Routes
	mux.Handle("GET /invoices", auth(config.InvoiceHandler.List))
	mux.Handle("GET /invoices/{id}", auth(config.InvoiceHandler.Get))
	mux.Handle("GET /invoices/{id}/download", auth(config.InvoiceHandler.Download))
	mux.Handle("POST /invoices/{id}/pay", staff(config.InvoiceHandler.Pay))

	return mux
}
