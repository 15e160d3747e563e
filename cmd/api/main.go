package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/melih/podman-remote/internal/adapters/docker"
	"github.com/melih/podman-remote/internal/adapters/http"
	"github.com/melih/podman-remote/internal/adapters/secrets"
	"github.com/melih/podman-remote/internal/adapters/systemd"
	"github.com/melih/podman-remote/internal/config"
	"github.com/melih/podman-remote/internal/core/services"
	"github.com/melih/podman-remote/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	cmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	cfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:           "podman-remote",
		Short:         "Authenticated REST gateway for containers and systemd user services",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address ($"+config.EnvListenAddr+")")
	f.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "file holding the bearer token ($"+config.EnvTokenFile+")")
	f.StringVar(&cfg.ContainerHost, "container-host", cfg.ContainerHost, "container engine endpoint ($"+config.EnvContainerHost+")")
	f.StringVar(&cfg.ContainerAPIVersion, "container-api-version", cfg.ContainerAPIVersion, "pin the engine API version, empty negotiates ($"+config.EnvAPIVersion+")")
	f.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "container engine connect timeout")
	f.DurationVar(&cfg.JobTimeout, "job-timeout", cfg.JobTimeout, "how long start/stop/restart wait for the systemd job")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error ($"+config.EnvLogLevel+")")
	f.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON ($"+config.EnvLogJSON+")")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")

	return cmd, nil
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: level, Output: os.Stderr, JSON: cfg.LogJSON})
	logging.SetDefault(logger)

	tokens := loadToken(logger, cfg.TokenFile)

	// 1. Initialize Adapters (Infrastructure)
	dockerAdapter, err := docker.NewAdapter(docker.Options{
		Host:           cfg.ContainerHost,
		APIVersion:     cfg.ContainerAPIVersion,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize container adapter: %w", err)
	}
	systemdAdapter := systemd.NewAdapter(systemd.Options{JobTimeout: cfg.JobTimeout})

	// 2. Core services own session scoping and the error taxonomy.
	containerService := services.NewContainerService(dockerAdapter, logger)
	unitService := services.NewUnitService(systemdAdapter, logger)

	// 3. Routes
	app := http.NewRouter(http.RouterConfig{
		Containers: containerService,
		Services:   unitService,
		Tokens:     tokens,
		Logger:     logger,
	})

	// 4. Start Server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "container_host", cfg.ContainerHost)
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("stopped")
	return nil
}

// loadToken reads the shared token. A missing or unreadable file is not
// fatal: the gateway runs and rejects every authenticated request.
func loadToken(logger *logging.Logger, path string) *secrets.StaticToken {
	token, err := secrets.ReadTokenFile(path)
	if err != nil {
		logger.Warn("failed to read API token, using empty token", "path", path, "error", err)
		return secrets.NewStaticToken("")
	}
	if token == "" {
		logger.Warn("API token is empty, all authenticated requests will fail", "path", path)
	} else {
		logger.Info("API token loaded", "path", path)
	}
	return secrets.NewStaticToken(token)
}
