package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/debt"
	"shiftswap/internal/domain/notifications"
	"shiftswap/internal/domain/schedule"
	"shiftswap/internal/domain/workflow"
	"shiftswap/internal/platform/config"
	"shiftswap/internal/platform/db"
	"shiftswap/internal/platform/email"
	"shiftswap/internal/platform/metrics"
	authhandler "shiftswap/internal/transport/http/handlers/auth"
	corehandler "shiftswap/internal/transport/http/handlers/core"
	notificationshandler "shiftswap/internal/transport/http/handlers/notifications"
	reportshandler "shiftswap/internal/transport/http/handlers/reports"
	requestshandler "shiftswap/internal/transport/http/handlers/requests"
	schedulehandler "shiftswap/internal/transport/http/handlers/schedule"
	"shiftswap/internal/transport/http/middleware"
)

// App is the composed server. Tests construct it with New and drive the
// router directly; Run serves it over HTTP.
type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Router http.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	coreStore := core.NewStore(pool)
	scheduleStore := schedule.NewStore(pool)
	scheduleService := schedule.NewService(scheduleStore, coreStore)

	notifyStore := notifications.NewStore(pool)
	notifyService := notifications.NewService(notifyStore, coreStore, email.New(cfg), cfg.EmailFrom)

	workflowStore := workflow.NewStore(pool)
	debtStore := debt.NewStore(pool)
	debtService := debt.NewService(debtStore, coreStore, notifyService)

	rules := workflow.NewRules(scheduleService, coreStore, workflowStore)
	registry := workflow.NewRegistry(rules, workflowStore, scheduleService, scheduleStore, coreStore, debtService)
	workflowService := workflow.NewService(workflowStore, registry, coreStore, notifyService)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.With(middleware.RequireAdmin).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		corehandler.NewHandler(coreStore).RegisterRoutes(r)
		schedulehandler.NewHandler(scheduleService).RegisterRoutes(r)
		requestshandler.NewHandler(workflowService, debtService, collector).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		reportshandler.NewHandler(scheduleService, debtService, coreStore).RegisterRoutes(r)
	})

	return &App{Config: cfg, Pool: pool, Router: router}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Pool.Close()

	log.Printf("shift desk server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
