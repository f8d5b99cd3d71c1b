package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/healthportal-app/portal-client/internal/adapters/devapi"
	"github.com/healthportal-app/portal-client/internal/platform/auth/devtoken"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
)

// Dev-only stand-in for the remote health portal API.
//
// It keeps everything in memory and signs HS256 tokens with SIGNING_KEY. It is
// not a production server.

func main() {
	port := getenv("PORT", "8000")
	key := getenv("SIGNING_KEY", "dev-signing-key")
	ttl := getenvDuration("TTL", 30*time.Minute)

	log := logging.SetupDefault(os.Stderr, logging.Options{
		Level:  getenv("LOG_LEVEL", "info"),
		Format: getenv("LOG_FORMAT", "text"),
	})

	issuer, err := devtoken.NewIssuer([]byte(key), ttl)
	if err != nil {
		log.Error("invalid signing config", slog.Any("err", err))
		os.Exit(1)
	}
	api := devapi.NewServer(issuer, devapi.Options{Logger: log})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("devapi listening", slog.String("addr", srv.Addr), slog.Duration("ttl", ttl))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
