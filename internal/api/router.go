package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventura/server/internal/api/handlers"
	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/audit"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/config"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/eventura/server/internal/domain/recommendations"
	"github.com/eventura/server/internal/metrics"
)

// Deps carries everything the router wires together. The caller owns the
// pool and service lifecycles.
type Deps struct {
	Config          config.Config
	Logger          zerolog.Logger
	Pool            *pgxpool.Pool
	Tokens          *auth.JWTManager
	Accounts        *accounts.Service
	Events          *events.Service
	Recommendations *recommendations.Service
	Version         string
	Commit          string
	BuildDate       string
}

func NewRouter(d Deps) http.Handler {
	auditLog := audit.NewLogger(d.Logger)

	authHandler := handlers.NewAuthHandler(d.Accounts)
	usersHandler := handlers.NewUsersHandler(d.Accounts, auditLog)
	eventsHandler := handlers.NewEventsHandler(d.Events, auditLog)
	recsHandler := handlers.NewRecommendationsHandler(d.Recommendations, auditLog)
	uploadsHandler := handlers.NewUploadsHandler(d.Config.Uploads.Dir)
	healthHandler := handlers.NewHealthHandler(d.Pool, d.Version, d.Commit)

	authed := middleware.Authenticate(d.Tokens)
	adminOnly := func(h http.Handler) http.Handler {
		return authed(middleware.RequireRole(accounts.RoleAdmin)(h))
	}
	serviceKey := middleware.ServiceKey(auth.NewServiceKey(d.Config.Auth.ServiceKey))

	mux := http.NewServeMux()

	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Healthz))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readyz))
	mux.Handle("/version", VersionHandler(d.Version, d.Commit, d.BuildDate))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/register", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Register),
	}))
	mux.Handle("/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/logout", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(authHandler.Logout)),
	}))
	mux.Handle("/me", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(authHandler.Me)),
	}))

	mux.Handle("/users", methodMux(map[string]http.Handler{
		http.MethodGet: adminOnly(http.HandlerFunc(usersHandler.List)),
	}))
	mux.Handle("/users/{id}", methodMux(map[string]http.Handler{
		http.MethodPut: adminOnly(http.HandlerFunc(usersHandler.Update)),
	}))
	mux.Handle("/users/password/{id}", methodMux(map[string]http.Handler{
		http.MethodPut: authed(http.HandlerFunc(usersHandler.ChangePassword)),
	}))
	mux.Handle("/user/delete/{id}", methodMux(map[string]http.Handler{
		http.MethodPut: adminOnly(http.HandlerFunc(usersHandler.Delete)),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  authed(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: authed(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/v1/events/latest", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Latest),
	}))
	mux.Handle("/api/v1/events/category/{category}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.ByCategoryAll),
	}))
	mux.Handle("/api/v1/events/city/{city}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.ByCity),
	}))
	mux.Handle("/api/v1/events/city/{city}/{category}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.ByCategory),
	}))
	mux.Handle("/api/v1/events/city/{city}/{category}/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.BySlug),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    authed(http.HandlerFunc(eventsHandler.Get)),
		http.MethodPut:    authed(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: authed(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("/api/v1/events/{id}/verify", methodMux(map[string]http.Handler{
		http.MethodPut: adminOnly(http.HandlerFunc(eventsHandler.Verify)),
	}))

	mux.Handle("/api/v1/recommendations", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(recsHandler.Create),
		http.MethodGet:  adminOnly(http.HandlerFunc(recsHandler.List)),
	}))
	mux.Handle("/api/v1/recommendations/{id}", methodMux(map[string]http.Handler{
		http.MethodPut:    adminOnly(http.HandlerFunc(recsHandler.Update)),
		http.MethodDelete: adminOnly(http.HandlerFunc(recsHandler.Delete)),
	}))
	// Service-to-service surface: export for the static site generator and
	// the ingestion write path. Gated by the pre-shared key, never by user
	// tokens.
	mux.Handle("/internal/recommendations", methodMux(map[string]http.Handler{
		http.MethodGet:  serviceKey(http.HandlerFunc(recsHandler.List)),
		http.MethodPost: serviceKey(http.HandlerFunc(recsHandler.Create)),
	}))

	mux.Handle("/api/v1/uploads", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(uploadsHandler.Create)),
	}))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(d.Config.Uploads.Dir))))

	var handler http.Handler = mux
	handler = middleware.CORS(d.Config.CORS, d.Logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(d.Logger)(handler)
	handler = middleware.CorrelationID(d.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
