package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	"github.com/tesoreria-cl/tesoreria/internal/category"
	"github.com/tesoreria-cl/tesoreria/internal/dashboard"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
	"github.com/tesoreria-cl/tesoreria/internal/obs"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/transaction"
	"github.com/tesoreria-cl/tesoreria/internal/transport/middleware"
	"github.com/tesoreria-cl/tesoreria/internal/transport/swagger"
	"github.com/tesoreria-cl/tesoreria/internal/user"
)

// Handlers collects every feature handler the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	PaymentRequest *paymentrequest.Handler
	Transaction    *transaction.Handler
	Category       *category.Handler
	Notification   *notification.Handler
	User           *user.Handler
	Dashboard      *dashboard.Handler
}

// NewRouter wires middleware and routes. Everything under /api/v1 except
// login and refresh runs behind the auth middleware; write routes carry an
// extra RBAC gate so a wrong role is rejected before the service runs.
func NewRouter(h Handlers, db *sql.DB, logger *slog.Logger, allowedOrigins string, openAPISpec []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(obs.Instrument)

	health := NewHealthHandler(db)
	r.Get("/ping", health.pingHandler)
	r.Get("/healthz", health.healthCheckHandler)
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Get("/openapi.yml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openAPISpec)
	})
	r.Mount("/swagger", swagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.AuthMiddleware)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/users/me", h.User.Me)

			r.Route("/payment-requests", func(r chi.Router) {
				r.Get("/", h.PaymentRequest.List)
				r.Get("/{id}", h.PaymentRequest.Get)
				r.With(h.Auth.RequireAction(auth.ActionCreateRequest)).
					Post("/", h.PaymentRequest.Create)
				r.With(h.Auth.RequireAction(auth.ActionCreateRequest)).
					Patch("/{id}", h.PaymentRequest.Update)
				r.With(h.Auth.RequireAction(auth.ActionSubmitRequest)).
					Post("/{id}/submit", h.PaymentRequest.Submit)
				r.With(h.Auth.RequireAction(auth.ActionApproveRequest)).
					Post("/{id}/approve", h.PaymentRequest.Approve)
				r.With(h.Auth.RequireAction(auth.ActionRejectRequest)).
					Post("/{id}/reject", h.PaymentRequest.Reject)
				r.With(h.Auth.RequireAction(auth.ActionExecuteRequest)).
					Post("/{id}/execute", h.PaymentRequest.Execute)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Transaction.List)
				r.Get("/{id}", h.Transaction.Get)
				r.With(h.Auth.RequireAction(auth.ActionManageTransactions)).
					Post("/", h.Transaction.Create)
				r.With(h.Auth.RequireAction(auth.ActionManageTransactions)).
					Patch("/{id}", h.Transaction.Update)
				r.With(h.Auth.RequireAction(auth.ActionManageTransactions)).
					Delete("/{id}", h.Transaction.Delete)
				r.With(h.Auth.RequireAction(auth.ActionManageTransactions)).
					Get("/{id}/audit", h.Transaction.Audit)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Category.List)
				r.With(h.Auth.RequireAction(auth.ActionManageCategories)).
					Post("/", h.Category.Create)
				r.With(h.Auth.RequireAction(auth.ActionManageCategories)).
					Patch("/{id}", h.Category.Update)
				r.With(h.Auth.RequireAction(auth.ActionManageCategories)).
					Delete("/{id}", h.Category.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/{id}/read", h.Notification.MarkRead)
				r.Post("/read-all", h.Notification.MarkAllRead)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.User.List)
				r.With(h.Auth.RequireAction(auth.ActionManageUsers)).
					Post("/", h.User.Create)
				r.With(h.Auth.RequireAction(auth.ActionManageUsers)).
					Patch("/{id}/role", h.User.ChangeRole)
				r.With(h.Auth.RequireAction(auth.ActionManageUsers)).
					Post("/{id}/activate", h.User.Activate)
				r.With(h.Auth.RequireAction(auth.ActionManageUsers)).
					Post("/{id}/deactivate", h.User.Deactivate)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", h.Dashboard.Summary)
				r.Get("/monthly", h.Dashboard.Monthly)
			})
		})
	})

	return r
}
