package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"
	"libraryapi/internal/lending"
	"libraryapi/internal/store"
	"libraryapi/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load(".env.local")

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	serverAddress := getEnv("APP_ADDR", ":3000")
	jwtSecret := mustGetEnv(log, "JWT_SECRET")

	ctx := context.Background()
	persister, ready, cleanup := openPersister(ctx, log)
	defer cleanup()

	st, err := store.Open(ctx, persister)
	if err != nil {
		log.Fatalf("cannot load store: %v", err)
	}

	router := newRouter(st, jwtSecret, ready)

	metrics := httpx.NewMetricsMiddleware(prometheus.DefaultRegisterer)
	rateLimit := httpx.NewRateLimitMiddleware(10, 20)

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.RecoveryMiddleware(log),
		metrics.Middleware,
		httpx.SecurityHeadersMiddleware,
		httpx.RequestSizeLimitMiddleware(1<<20),
		rateLimit.Middleware,
	)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithField("addr", serverAddress).Info("starting server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// newRouter wires every route. Mutating lending and catalog routes sit
// behind the auth middleware; browsing, registration and login do not.
func newRouter(st *store.Store, jwtSecret string, ready func(context.Context) error) *http.ServeMux {
	userHandler := user.NewHTTPHandler(user.NewService(st), jwtSecret)
	catalogHandler := catalog.NewHTTPHandler(catalog.NewService(st))
	lendingHandler := lending.NewHTTPHandler(lending.NewService(st))

	authRequired := httpx.AuthMiddleware(jwtSecret, st)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(checkCtx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.Handler())

	router.HandleFunc("POST /register", userHandler.RegisterUser)
	router.HandleFunc("POST /login", userHandler.LoginUser)
	router.HandleFunc("GET /books", catalogHandler.List)

	router.Handle("POST /books/borrow/{id}", authRequired(http.HandlerFunc(lendingHandler.Borrow)))
	router.Handle("POST /books/return/{id}", authRequired(http.HandlerFunc(lendingHandler.Return)))

	router.Handle("POST /books", authRequired(http.HandlerFunc(catalogHandler.Create)))
	router.Handle("PUT /books/{id}", authRequired(http.HandlerFunc(catalogHandler.Update)))
	router.Handle("DELETE /books/{id}", authRequired(http.HandlerFunc(catalogHandler.Delete)))

	return router
}

// openPersister picks the persistence backend: Postgres when DB_DSN is set,
// JSON files under DATA_DIR otherwise (the default).
func openPersister(ctx context.Context, log *logrus.Logger) (store.Persister, func(context.Context) error, func()) {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		pool := mustOpenDB(ctx, log, dsn)
		persister := store.NewPostgresPersister(pool, 2*time.Second)
		return persister, pool.Ping, pool.Close
	}

	dataDir := getEnv("DATA_DIR", "data")
	persister, err := store.NewFilePersister(dataDir)
	if err != nil {
		log.Fatalf("cannot open data dir: %v", err)
	}
	noop := func(context.Context) error { return nil }
	return persister, noop, func() {}
}

func mustOpenDB(ctx context.Context, log *logrus.Logger, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database: %v", err)
	}
	log.Info("database connection OK")
	return pool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(log *logrus.Logger, key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}
