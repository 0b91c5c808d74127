package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/handler"
	"github.com/DragonRU1/silentauth/internal/http/middleware"
	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/service"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ProjectHandler   *handler.ProjectHandler
	SessionHandler   *handler.SessionHandler
	AdminHandler     *handler.AdminHandler
	IdentityVerifier service.IdentityVerifier
	Resolver         service.CredentialResolver
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	ReadyCheck       func() error
	EnableOTelHTTP   bool
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	requireAuth := middleware.RequireAuth(dep.IdentityVerifier)
	requireAPIKey := middleware.RequireAPIKey(dep.Resolver)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.ReadyCheck != nil {
			if err := dep.ReadyCheck(); err != nil {
				response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", err.Error(), nil)
				return
			}
		}
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", dep.ProjectHandler.Create)
			r.Get("/", dep.ProjectHandler.List)
			r.Get("/{id}", dep.ProjectHandler.Get)
			r.Post("/{id}/keys/rotate", dep.ProjectHandler.RotateKey)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(requireAPIKey, middleware.RequireScope(domain.ScopeSessionCreate)).
				Post("/", dep.SessionHandler.Create)
			r.With(requireAPIKey).Get("/", dep.SessionHandler.List)
			// Verification-client routes: authenticated by token possession.
			r.Post("/verify", dep.SessionHandler.Verify)
			r.Get("/{token}", dep.SessionHandler.GetByToken)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireRole(domain.RoleSuperAdmin))
			r.Get("/stats", dep.AdminHandler.Stats)
			r.Get("/sessions", dep.AdminHandler.Sessions)
		})
	})

	if dep.EnableOTelHTTP {
		return otelhttp.NewHandler(r, "silentauth.http")
	}
	return r
}
