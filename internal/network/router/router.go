package router

import (
	"github.com/denmor86/ya-payerpoints/internal/config"
	"github.com/denmor86/ya-payerpoints/internal/metrics"
	"github.com/denmor86/ya-payerpoints/internal/network/handlers"
	"github.com/denmor86/ya-payerpoints/internal/network/middleware"
	"github.com/denmor86/ya-payerpoints/internal/services"
	"github.com/denmor86/ya-payerpoints/internal/storage"
	"github.com/denmor86/ya-payerpoints/internal/validators"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Router struct {
	Config    config.Config
	Points    services.PointsService
	Journal   storage.JournalStorage
	Metrics   *metrics.Metrics
	Validator *validators.Validator
	Limiter   *middleware.RateLimiter
}

// NewRouter journal может быть nil, тогда история операций недоступна
func NewRouter(config config.Config, points *services.Points, journal storage.JournalStorage) *Router {
	return &Router{
		Config:    config,
		Points:    points,
		Journal:   journal,
		Metrics:   metrics.New(points),
		Validator: validators.New(),
		Limiter:   middleware.NewRateLimiter(config.Server.RateLimit),
	}
}

func (router *Router) HandleRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(router.Metrics.Middleware)

	r.Handle("/metrics", router.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LogHandle)
		r.Use(middleware.Limit(router.Limiter))
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", handlers.AddTransactionHandler(router.Points, router.Validator))
			r.Post("/spend", handlers.SpendHandler(router.Points, router.Validator))
			r.Get("/getPayers", handlers.GetPayersHandler(router.Points))
			r.Get("/balance", handlers.GetBalanceHandler(router.Points))
			r.Get("/records", handlers.GetRecordsHandler(router.Points))
			if router.Journal != nil {
				r.Get("/history", handlers.GetHistoryHandler(router.Journal))
			}
		})
	})
	return r
}
