package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"liquidity/internal/cache"
	"liquidity/internal/log"
	"liquidity/internal/middleware/ratelimit"
	"liquidity/internal/middleware/security"
	"liquidity/internal/middleware/trace"
	"liquidity/internal/services"
)

const (
	forecastCacheSize = 64
	forecastCacheTTL  = 30 * time.Second
)

// Options configures the API server.
type Options struct {
	Logger         *log.Logger
	AllowedOrigins []string
	// TrustedProxies are CIDRs or addresses whose X-Forwarded-For header is believed.
	TrustedProxies []string
	// GenerateRateLimit bounds manual top-up calls per client and minute.
	GenerateRateLimit int
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func(ctx context.Context) error
	// ForecastCacheTTL overrides how long forecast results are reused.
	ForecastCacheTTL time.Duration
}

type Server struct {
	http.Server
	engine  Engine
	router  chi.Router
	log     *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	ready   func(ctx context.Context) error

	forecasts *cache.LRUCache[[]services.ForecastBucket]
	caches    *cache.Manager
}

// NewServer wires the JSON API onto a chi router.
func NewServer(addr string, engine Engine, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	resolver, err := security.NewClientIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	limit := opts.GenerateRateLimit
	if limit <= 0 {
		limit = 6
	}

	ttl := opts.ForecastCacheTTL
	if ttl <= 0 {
		ttl = forecastCacheTTL
	}

	s := &Server{
		engine:    engine,
		router:    chi.NewRouter(),
		log:       logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: limit}),
		tracer:    trace.NewMiddleware(resolver.ExtractClientIP),
		ready:     opts.Ready,
		forecasts: cache.NewLRUCache[[]services.ForecastBucket](forecastCacheSize, ttl),
		caches:    cache.NewManager(logger),
	}
	s.caches.Register(s.forecasts)
	s.caches.StartCleanup(time.Minute)

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes(resolver)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(log.Middleware(s.log))
	s.router.Use(s.tracer.Middleware)
	s.router.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(resolver *security.ClientIPResolver) {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundResponse().Write(w)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedResponse().Write(w)
	})

	s.router.Get("/healthz", handleHealth)
	s.router.Get("/readyz", s.handleReady)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.invalidateOnWrite)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Patch("/", s.handleUpdateTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Post("/pause", s.handlePauseTemplate)
				r.Post("/resume", s.handleResumeTemplate)
				r.Get("/occurrences", s.handleListOccurrences)
			})
		})

		r.Route("/transactions/{id}", func(r chi.Router) {
			r.Patch("/", s.handleUpdateTransaction)
			r.Post("/skip", s.handleSkipTransaction)
			r.Post("/status", s.handleSetStatus)
		})

		r.With(s.limiter.Middleware(resolver.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			TooManyRequestsResponse().Write(w)
		})).Post("/recurring/generate", s.handleGenerate)

		r.Get("/forecast", s.handleForecast)
	})
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// invalidateOnWrite drops cached reads after any request that may have
// changed stored rows.
func (s *Server) invalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			s.forecasts.Purge()
		}
	})
}

// Shutdown stops accepting requests and releases background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	s.log.Info("Shutting down HTTP server")
	return s.Server.Shutdown(ctx)
}
