package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/healthportal-app/portal-client/internal/adapters/cli"
	filestore "github.com/healthportal-app/portal-client/internal/adapters/file/credentialstore"
	"github.com/healthportal-app/portal-client/internal/adapters/httpapi"
	memstore "github.com/healthportal-app/portal-client/internal/adapters/memory/credentialstore"
	portalclient "github.com/healthportal-app/portal-client/internal/adapters/portalapi"
	postgres "github.com/healthportal-app/portal-client/internal/adapters/postgres"
	pgstore "github.com/healthportal-app/portal-client/internal/adapters/postgres/credentialstore"
	redisstore "github.com/healthportal-app/portal-client/internal/adapters/redis/credentialstore"
	"github.com/healthportal-app/portal-client/internal/app/access"
	"github.com/healthportal-app/portal-client/internal/app/patient"
	"github.com/healthportal-app/portal-client/internal/app/profile"
	"github.com/healthportal-app/portal-client/internal/app/provider"
	"github.com/healthportal-app/portal-client/internal/app/session"
	platformclock "github.com/healthportal-app/portal-client/internal/platform/clock"
	"github.com/healthportal-app/portal-client/internal/platform/config"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
	"github.com/healthportal-app/portal-client/internal/platform/metrics"
	credentialstoreport "github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadPortalConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return cli.ExitUsage
	}
	log := logging.SetupDefault(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openCredentialStore(ctx, cfg)
	if err != nil {
		log.Error("credential store unavailable", slog.String("backend", string(cfg.CredentialBackend)), slog.Any("err", err))
		return cli.ExitError
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	client := portalclient.New(cfg.APIBaseURL, portalclient.Options{
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
		Logger:    log,
		Metrics:   rec,
	})
	sessions := session.NewManager(store, client, session.Options{Logger: log, Metrics: rec})
	caller := session.NewAuthorizedCaller(client, sessions)

	patientSvc := patient.NewService(caller, platformclock.NewSystemClock())
	providerSvc := provider.NewService(caller)
	profileSvc := profile.NewService(caller)

	app := cli.App{
		Sessions: sessions,
		Patient:  patientSvc,
		Provider: providerSvc,
		Profile:  profileSvc,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Serve: func(ctx context.Context) error {
			api := httpapi.NewServer(httpapi.Deps{
				Sessions: sessions,
				Access:   access.NewRouter(),
				Patient:  patientSvc,
				Provider: providerSvc,
				Profile:  profileSvc,
				Metrics:  metrics.Handler(reg),
				Logger:   log,
			})
			return serve(ctx, log, cfg.Port, httpapi.NewRouter(api), sessions)
		},
	}
	return cli.Run(ctx, app, os.Args[1:])
}

// serve hydrates the session in the background and runs the HTTP surface until
// ctx is done. Gated views answer 503 until hydration resolves.
func serve(ctx context.Context, log *slog.Logger, port string, handler http.Handler, sessions *session.Manager) error {
	go sessions.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("portal listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCredentialStore(ctx context.Context, cfg config.PortalConfig) (credentialstoreport.Store, func(), error) {
	noop := func() {}
	switch cfg.CredentialBackend {
	case config.BackendMemory:
		return memstore.NewStore(cfg.StorageKey), noop, nil
	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, noop, err
		}
		pool, err := postgres.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return pgstore.NewStore(pool, cfg.StorageKey), pool.Close, nil
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return redisstore.NewStore(rdb, cfg.StorageKey), func() { _ = rdb.Close() }, nil
	default:
		return filestore.NewStore(cfg.CredentialFile, cfg.StorageKey), noop, nil
	}
}
