package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"apas/internal/domain/audit"
	"apas/internal/domain/core"
	"apas/internal/domain/cycle"
	"apas/internal/domain/feedback"
	"apas/internal/domain/goals"
	"apas/internal/domain/ratings"
	"apas/internal/platform/config"
	"apas/internal/platform/db"
	authhandler "apas/internal/transport/http/handlers/auth"
	employeehandler "apas/internal/transport/http/handlers/employee"
	hrhandler "apas/internal/transport/http/handlers/hr"
	managerhandler "apas/internal/transport/http/handlers/manager"
	"apas/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New wires stores, services, and routes over an existing pool. Run uses it;
// journey tests use it directly against a test database.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	recorder := audit.New(pool)
	coreStore := core.NewStore(pool)

	cycleSvc := cycle.NewService(cycle.NewStore(pool), recorder)
	goalSvc := goals.NewService(goals.NewStore(pool), cycleSvc, recorder)
	feedbackSvc := feedback.NewService(feedback.NewStore(pool), cycleSvc, recorder)
	ratingSvc := ratings.NewService(ratings.NewStore(pool), cycleSvc, ratings.SQLScorer{}, recorder)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

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

	authHandler := authhandler.NewHandler(coreStore, cfg.JWTSecret)
	router.Post("/login", authHandler.HandleLogin)
	router.Post("/signup", authHandler.HandleSignup)

	router.Route("/api", func(r chi.Router) {
		employeehandler.NewHandler(coreStore, cycleSvc, goalSvc, feedbackSvc, ratingSvc).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(core.RoleSystemAdmin, core.RoleManager))
			managerhandler.NewHandler(goalSvc, feedbackSvc, ratingSvc).RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(core.RoleSystemAdmin, core.RoleHR))
			hrhandler.NewHandler(cycleSvc, ratingSvc, recorder).RegisterRoutes(r)
		})
	})

	return &App{Config: cfg, DB: pool, Router: router}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app := New(cfg, pool)

	slog.Info("appraisal server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
