package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/unrolled/secure"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// RateLimit is the number of leave mutations one client may send per minute. Zero disables it.
	RateLimit  int
	Production bool

	JWTService jwt.Service
	Metrics    *metrics.Metrics

	LeaveHandler        LeaveHandler
	HolidayHandler      HolidayHandler
	NotificationHandler NotificationHandler
	AuditHandler        AuditHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !cfg.Production,
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))
	r.Use(secureMiddleware.Handler)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	mutationLimiter := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit > 0 {
		mutationLimiter = httprate.Limit(cfg.RateLimit, time.Minute,
			httprate.WithKeyFuncs(rateLimitKey),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				response.TooManyRequests(w, "Too many requests, slow down")
			}),
		)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentEncoding("application/json"))

		// Authenticated by a short-lived query token
		r.Get("/notifications/stream", cfg.NotificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", cfg.LeaveHandler.ListTypes)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(auth.PermissionLeaveManageTypes))
						r.Post("/", cfg.LeaveHandler.CreateType)
						r.Patch("/{id}/active", cfg.LeaveHandler.SetTypeActive)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.Get("/my", cfg.LeaveHandler.GetMyBalances)
					r.Get("/{employeeID}", cfg.LeaveHandler.GetEmployeeBalances)
					r.With(middleware.RequirePermission(auth.PermissionBalanceInit)).
						Post("/initialize", cfg.LeaveHandler.InitializeBalances)
				})

				r.Route("/requests", func(r chi.Router) {
					r.Get("/my", cfg.LeaveHandler.GetMyRequests)
					r.Get("/{id}", cfg.LeaveHandler.GetRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Get("/team", cfg.LeaveHandler.GetTeamRequests)
						r.Get("/pending", cfg.LeaveHandler.GetPendingRequests)
					})

					r.Group(func(r chi.Router) {
						r.Use(mutationLimiter)
						r.Post("/", cfg.LeaveHandler.CreateRequest)
						r.Post("/{id}/cancel", cfg.LeaveHandler.CancelRequest)
						r.With(middleware.RequireManager).Post("/{id}/approve", cfg.LeaveHandler.ApproveRequest)
						r.With(middleware.RequireManager).Post("/{id}/reject", cfg.LeaveHandler.RejectRequest)
					})
				})

				r.Get("/working-days", cfg.LeaveHandler.PreviewWorkingDays)
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", cfg.HolidayHandler.List)
				r.Get("/upcoming", cfg.HolidayHandler.Upcoming)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionHolidayManage))
					r.Post("/", cfg.HolidayHandler.Create)
					r.Delete("/{id}", cfg.HolidayHandler.Delete)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
				r.Post("/read", cfg.NotificationHandler.MarkAsRead)
				r.Post("/read-all", cfg.NotificationHandler.MarkAllAsRead)
				r.Get("/sse-token", cfg.NotificationHandler.GetSSEToken)
			})

			r.With(middleware.RequirePermission(auth.PermissionAuditView)).
				Get("/audit-logs", cfg.AuditHandler.List)
		})
	})
	return r
}

// rateLimitKey limits per employee once authenticated, per IP otherwise.
func rateLimitKey(r *http.Request) (string, error) {
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		return "employee:" + actor.EmployeeID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
