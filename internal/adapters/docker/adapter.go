package docker

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports"
)

// Options configures how the adapter reaches the engine.
type Options struct {
	// Host is the engine endpoint, e.g. unix:///var/run/docker.sock.
	Host string
	// APIVersion pins the API version. Empty negotiates with the engine.
	APIVersion string
	// ConnectTimeout bounds establishing the socket connection.
	ConnectTimeout time.Duration
}

// Adapter implements ports.ContainerEngine using the Docker SDK. It speaks
// the Docker-compatible API, so a Podman socket works as well.
type Adapter struct {
	opts Options
	dial func(ctx context.Context) (net.Conn, error)
}

var _ ports.ContainerEngine = (*Adapter)(nil)

// NewAdapter creates a new Docker adapter instance. No connection is made
// until Connect is called.
func NewAdapter(opts Options) (*Adapter, error) {
	if opts.Host == "" {
		opts.Host = client.DefaultDockerHost
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	u, err := client.ParseHostURL(opts.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid container host %q: %w", opts.Host, err)
	}
	// ParseHostURL keeps the socket path of unix:// hosts in Host.
	network, address := u.Scheme, u.Host
	if network != "unix" && network != "tcp" {
		return nil, fmt.Errorf("unsupported container host scheme %q", network)
	}

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	return &Adapter{
		opts: opts,
		dial: func(ctx context.Context) (net.Conn, error) {
			return dialer.DialContext(ctx, network, address)
		},
	}, nil
}

// Connect opens a fresh client for one request. The caller must Close it.
func (a *Adapter) Connect(ctx context.Context) (ports.ContainerSession, error) {
	clientOpts := []client.Opt{
		client.WithHost(a.opts.Host),
		client.WithDialContext(func(ctx context.Context, _, _ string) (net.Conn, error) {
			return a.dial(ctx)
		}),
	}
	if a.opts.APIVersion != "" {
		clientOpts = append(clientOpts, client.WithVersion(a.opts.APIVersion))
	} else {
		clientOpts = append(clientOpts, client.WithAPIVersionNegotiation())
	}

	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// NewClientWithOpts is lazy; probe the socket so an unreachable engine
	// surfaces here rather than on the first call.
	conn, err := a.dial(ctx)
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnavailable, a.opts.Host, err)
	}
	conn.Close()

	return &session{cli: cli}, nil
}

type session struct {
	cli *client.Client
}

// ListContainers returns every container, stopped ones included.
func (s *session) ListContainers(ctx context.Context) ([]domain.ContainerSummary, error) {
	containers, err := s.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", translate(err))
	}
	return containers, nil
}

func (s *session) InspectContainer(ctx context.Context, id string) (domain.ContainerDetail, error) {
	detail, err := s.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.ContainerDetail{}, fmt.Errorf("failed to inspect container: %w", translate(err))
	}
	return detail, nil
}

// StartContainer starts a container. An already running container reports
// 304 Not Modified, which counts as success.
func (s *session) StartContainer(ctx context.Context, id string) error {
	if err := s.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil && !errdefs.IsNotModified(err) {
		return fmt.Errorf("failed to start container: %w", translate(err))
	}
	return nil
}

// StopContainer stops a container using the engine's default grace period.
func (s *session) StopContainer(ctx context.Context, id string) error {
	if err := s.cli.ContainerStop(ctx, id, container.StopOptions{}); err != nil && !errdefs.IsNotModified(err) {
		return fmt.Errorf("failed to stop container: %w", translate(err))
	}
	return nil
}

func (s *session) Close() error {
	return s.cli.Close()
}

// translate tags engine errors with the matching domain sentinel while
// keeping the original error in the chain.
func translate(err error) error {
	switch {
	case errdefs.IsNotFound(err):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case client.IsErrConnectionFailed(err):
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrBackend, err)
	}
}
