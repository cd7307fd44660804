package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/olegbp/cryptofolio/internal/adapter/http/handler"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/infrastructure/auth"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	LedgerHandler    *handler.LedgerHandler
	MarketHandler    *handler.MarketHandler
	PortfolioHandler *handler.PortfolioHandler
	AdminHandler     *handler.AdminHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	Session          middleware.SessionResolver
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
	RateLimit        float64
	RateBurst        int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
		r.Use(limiter.Limit)
	}

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.AuthMiddleware(cfg.JWTManager)
	requireSession := middleware.SessionGate(cfg.Session)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Authentication and profile
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", cfg.AuthHandler.Logout)
				r.Get("/me", cfg.AuthHandler.Me)
				r.With(requireSession).Put("/me", cfg.AuthHandler.UpdateProfile)
			})
		})

		// Ledger. Mutations additionally pass the session gate: a valid
		// token is not enough, the account must be the active session.
		r.Route("/ledger", func(r chi.Router) {
			r.Use(requireAuth)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/deposit", cfg.LedgerHandler.Deposit)
				r.Post("/withdraw", cfg.LedgerHandler.Withdraw)
				r.Post("/buy", cfg.LedgerHandler.Buy)
				r.Post("/sell", cfg.LedgerHandler.Sell)
			})
			r.Get("/entries", cfg.LedgerHandler.List)
			r.Get("/balance", cfg.LedgerHandler.Balance)
		})

		// Portfolio
		r.Route("/portfolio", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", cfg.PortfolioHandler.Get)
			r.Get("/holdings/{coinID}", cfg.PortfolioHandler.Holding)
		})

		// Coin cache
		r.Route("/coins", func(r chi.Router) {
			r.Put("/", cfg.MarketHandler.Refresh)
			r.Get("/search", cfg.MarketHandler.Search)
			r.Get("/top", cfg.MarketHandler.Top)
			r.Get("/gainers", cfg.MarketHandler.Gainers)
			r.Get("/losers", cfg.MarketHandler.Losers)
			r.Get("/{coinID}", cfg.MarketHandler.Get)
			r.Get("/{coinID}/history", cfg.MarketHandler.History)
		})

		// Per-account activity
		r.Route("/activity", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/searches", cfg.MarketHandler.RecentSearches)
			r.Get("/favorites", cfg.MarketHandler.Favorites)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Delete("/searches", cfg.MarketHandler.ClearSearches)
				r.Post("/favorites", cfg.MarketHandler.AddFavorite)
				r.Delete("/favorites/{coinID}", cfg.MarketHandler.RemoveFavorite)
			})
		})

		// Operational endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Post("/cache/evict", cfg.AdminHandler.EvictCache)
			r.Post("/clear-data", cfg.AdminHandler.ClearData)
		})
	})

	return r
}
