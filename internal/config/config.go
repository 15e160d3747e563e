package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Environment variables consulted by FromEnv.
const (
	EnvListenAddr    = "PODMAN_REMOTE_LISTEN"
	EnvTokenFile     = "API_TOKEN_FILE"
	EnvContainerHost = "DOCKER_HOST"
	EnvAPIVersion    = "DOCKER_API_VERSION"
	EnvLogLevel      = "PODMAN_REMOTE_LOG_LEVEL"
	EnvLogJSON       = "PODMAN_REMOTE_LOG_JSON"
)

const (
	DefaultListenAddr      = "0.0.0.0:3000"
	DefaultTokenFile       = "/run/secrets/api_token"
	DefaultContainerHost   = "unix:///var/run/docker.sock"
	DefaultConnectTimeout  = 5 * time.Second
	DefaultJobTimeout      = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "info"
)

// Config is the process configuration of the gateway.
type Config struct {
	ListenAddr string
	TokenFile  string

	// ContainerHost is the engine endpoint, e.g. unix:///run/podman/podman.sock.
	ContainerHost string
	// ContainerAPIVersion pins the engine API version; empty negotiates.
	ContainerAPIVersion string
	ConnectTimeout      time.Duration

	// JobTimeout bounds how long a start/stop/restart waits for its job.
	JobTimeout time.Duration

	LogLevel string
	LogJSON  bool

	ShutdownTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:      DefaultListenAddr,
		TokenFile:       DefaultTokenFile,
		ContainerHost:   DefaultContainerHost,
		ConnectTimeout:  DefaultConnectTimeout,
		JobTimeout:      DefaultJobTimeout,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// FromEnv returns the defaults overridden by any environment variables
// that lookup reports as set and non-empty. Pass os.LookupEnv in production.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get(EnvListenAddr); ok {
		cfg.ListenAddr = v
	}
	if v, ok := get(EnvTokenFile); ok {
		cfg.TokenFile = v
	}
	if v, ok := get(EnvContainerHost); ok {
		cfg.ContainerHost = v
	}
	if v, ok := get(EnvAPIVersion); ok {
		cfg.ContainerAPIVersion = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := get(EnvLogJSON); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvLogJSON, err)
		}
		cfg.LogJSON = b
	}

	return cfg, nil
}

// Validate checks the configuration for values the gateway cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.ContainerHost == "" {
		errs = append(errs, errors.New("container host is empty"))
	}
	if c.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout))
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, fmt.Errorf("job timeout must be positive, got %s", c.JobTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}
