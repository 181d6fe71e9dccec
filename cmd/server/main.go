package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/soaringjerry/Cortex/internal/api"
	"github.com/soaringjerry/Cortex/internal/catalog"
	"github.com/soaringjerry/Cortex/internal/config"
	"github.com/soaringjerry/Cortex/internal/metrics"
	"github.com/soaringjerry/Cortex/internal/middleware"
	"github.com/soaringjerry/Cortex/internal/realtime"
	"github.com/soaringjerry/Cortex/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("cortex: %v", err)
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFromFile(cfg.CatalogPath); err != nil {
			config.Exitf("cortex: %v", err)
		}
		log.Printf("loaded catalog from %s", cfg.CatalogPath)
	}

	m := metrics.New()
	store := api.NewMemoryStore()
	registry := realtime.NewRegistry(m)

	mux := http.NewServeMux()
	api.NewRouter(api.Options{
		Store:         store,
		Catalog:       cat,
		Registry:      registry,
		Metrics:       m,
		AllowedOrigin: cfg.AllowedOrigin,
	}).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Cortex API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
			"stats":      store.Stats(),
			"live_users": registry.Users(),
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	handler := middleware.NoStore(middleware.LocaleMiddleware(middleware.CORS(cfg.AllowedOrigin)(middleware.SecureHeaders(mux))))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Cortex server listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
