package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	CORSOrigin string
	// Tokens guards mutating routes; nil leaves them open.
	Tokens *auth.TokenMaker

	UploadLimitPerMin int
}

const uploadLimitWindow = 60 * time.Second

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))

	if deps.CORSOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{deps.CORSOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.Get("/healthz", healthz)
	r.Get("/readyz", s.ready)
	r.Get("/health", s.health)

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	r.Group(func(wr chi.Router) {
		wr.Use(auth.RequireRole(deps.Tokens, auth.RoleAdmin, deps.Log))

		wr.Post("/products", s.create)
		wr.Post("/products/bulk", s.bulkCreate)
		wr.Put("/products/{id}", s.update)
		wr.Delete("/products/{id}", s.remove)

		if deps.UploadLimitPerMin > 0 {
			limiter := kit.NewIPRateLimiter(deps.UploadLimitPerMin, uploadLimitWindow)
			wr.With(limiter.Middleware).Post("/upload-csv", s.uploadCSV)
		} else {
			wr.Post("/upload-csv", s.uploadCSV)
		}
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
