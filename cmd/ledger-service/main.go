package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/httpapi"
	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/session"
	"smartpark/ledger-service/internal/store/backend"
	"smartpark/ledger-service/internal/telemetry"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("ledger-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}

	st, err := backend.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	l, err := ledger.Open(context.Background(), st, seed, ledger.Options{ActivityLogLimit: cfg.ActivityLogLimit})
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}
	sessions := session.NewManager(l, session.Options{TTL: cfg.SessionTTL})

	handler := httpapi.NewHandler(l, sessions)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:       cfg.RateLimitPerMinute,
		IPBurst:           cfg.RateLimitBurst,
		OperatorPerMinute: cfg.OperatorRateLimitPerMinute,
		OperatorBurst:     cfg.OperatorRateLimitBurst,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(handler.Routes())), "ledger-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("ledger-service listening on %s driver=%s", server.Addr, cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		if cfg.SessionSweepInterval <= 0 {
			return
		}
		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if count := sessions.Sweep(); count > 0 {
					log.Printf("session sweep expired=%d", count)
				}
				limiter.Prune(cfg.SessionSweepInterval)
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
