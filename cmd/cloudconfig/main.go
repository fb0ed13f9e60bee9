// Package main provides the entry point for the CloudConfig server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/cloudconfig/cloudconfig/internal/admin"
	"github.com/cloudconfig/cloudconfig/internal/api"
	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/config"
	"github.com/cloudconfig/cloudconfig/internal/metrics"
	"github.com/cloudconfig/cloudconfig/internal/middleware"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

const version = "1.0.0"

const usage = `cloudconfig - secure configuration distribution server

Usage:
  cloudconfig [flags] [command]

Commands:
  init    initialize the database and print bootstrap admin credentials
  start   run the server (default)
  reset   regenerate the bootstrap admin keypair
  status  probe a running server's health endpoint

Flags:
  --config string        path to YAML config file
  --listen-addr string   override the listen address
`

func main() {
	flags := pflag.NewFlagSet("cloudconfig", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	listenAddr := flags.String("listen-addr", "", "override the listen address")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	command := "start"
	if args := flags.Args(); len(args) > 0 {
		command = args[0]
	}

	cfg, err := loadConfig(*configPath, *listenAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudconfig: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "init":
		err = runInit(cfg)
	case "start":
		err = runStart(cfg)
	case "reset":
		err = runReset(cfg)
	case "status":
		err = runStatus(cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudconfig: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath, listenAddr string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger with a runtime-adjustable level.
func newLogger(cfg *config.Config) (*slog.Logger, *slog.LevelVar) {
	logLevel := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger, logLevel
}

func runInit(cfg *config.Config) error {
	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	ctx := context.Background()
	result, err := auth.BootstrapAdminIfMissing(ctx, store)
	if err != nil {
		return err
	}

	if result != nil {
		fmt.Println("Bootstrap admin created.")
		fmt.Printf("Client ID: %s\n", result.Client.ID)
		fmt.Println("Private key (store this safely, shown once):")
		fmt.Println(result.PrivateKeyPEM)
		return nil
	}

	existing, err := store.GetAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap admin expected but not found: %w", err)
	}
	fmt.Println("Bootstrap admin already exists.")
	fmt.Printf("Client ID: %s\n", existing.ID)
	fmt.Println("Run `cloudconfig reset` to generate and print a new private key.")
	return nil
}

func runReset(cfg *config.Config) error {
	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	result, err := auth.ResetAdmin(context.Background(), store)
	if err != nil {
		return err
	}

	fmt.Println("Admin credentials regenerated.")
	fmt.Printf("Client ID: %s\n", result.Client.ID)
	fmt.Println("Private key (store this safely, shown once):")
	fmt.Println(result.PrivateKeyPEM)
	return nil
}

func runStart(cfg *config.Config) error {
	logger, logLevel := newLogger(cfg)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	result, err := auth.BootstrapAdminIfMissing(context.Background(), store)
	if err != nil {
		return err
	}
	if result != nil {
		logger.Warn("bootstrap admin auto-created during start; run `cloudconfig reset` to print a new private key",
			"client_id", result.Client.ID)
	}

	if err := metrics.Init(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	router := buildRouter(store, cfg, logger, logLevel)

	apiServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("cloudconfig server listening", "addr", cfg.ListenAddr, "version", version)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsListenAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}
	return nil
}

// buildRouter assembles the full HTTP surface: public health endpoints and
// the signature-gated admin and client APIs.
func buildRouter(store *storage.SQLiteStorage, cfg *config.Config, logger *slog.Logger, logLevel *slog.LevelVar) chi.Router {
	gate := auth.NewGate(store, store, cfg.MaxClockDriftSeconds, cfg.MaxBodySizeBytes, logger)
	adminHandler := admin.NewHandler(store, logLevel, logger)
	apiHandler := api.NewHandler(store, auth.NewEvaluator(store), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", adminHandler.HandleHealth)
	r.Get("/ready", adminHandler.HandleReady)

	r.Route("/admin", func(r chi.Router) {
		r.Use(gate.RequireSignature)
		r.Mount("/", adminHandler.Routes())
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(gate.RequireSignature)
		r.Mount("/", apiHandler.Routes())
	})

	return r
}

func metricsRouter() chi.Router {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	return r
}

func runStatus(cfg *config.Config) error {
	addr := statusConnectAddr(cfg.ListenAddr)
	url := fmt.Sprintf("http://%s/health", addr)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("status: not running at %s\n", url)
		return fmt.Errorf("cloudconfig is not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("status: unhealthy response from %s\n", url)
		return fmt.Errorf("cloudconfig responded but /health was not 200 at %s", url)
	}

	fmt.Printf("status: running (healthy) at %s\n", url)
	return nil
}

// statusConnectAddr turns a listen address into a connectable one:
// an unspecified host (":8080", "0.0.0.0:8080") probes loopback.
func statusConnectAddr(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	if host == "" {
		return net.JoinHostPort("127.0.0.1", port)
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		return net.JoinHostPort("127.0.0.1", port)
	}
	return listenAddr
}
