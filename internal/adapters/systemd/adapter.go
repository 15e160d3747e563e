package systemd

import (
	"context"
	"fmt"
	"os"
	"time"

	sddbus "github.com/coreos/go-systemd/v22/dbus"
	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports"
)

// SessionBusEnv must point at the user's session bus, e.g.
// unix:path=/run/user/1000/bus.
const SessionBusEnv = "DBUS_SESSION_BUS_ADDRESS"

// jobModeReplace replaces any conflicting job already queued for the unit.
const jobModeReplace = "replace"

// jobDone is the result systemd reports for a job that completed successfully.
const jobDone = "done"

// busConn is the part of the go-systemd connection the adapter uses.
type busConn interface {
	ListUnitsContext(ctx context.Context) ([]sddbus.UnitStatus, error)
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []sddbus.EnableUnitFileChange, error)
	DisableUnitFilesContext(ctx context.Context, files []string, runtime bool) ([]sddbus.DisableUnitFileChange, error)
	Close()
}

// Options configures the adapter.
type Options struct {
	// JobTimeout bounds how long a lifecycle call waits for its job.
	JobTimeout time.Duration
}

// Adapter implements ports.UnitManager against the systemd user manager on
// the session bus.
type Adapter struct {
	jobTimeout time.Duration
	lookupEnv  func(string) (string, bool)
	dial       func(ctx context.Context) (busConn, error)
}

var _ ports.UnitManager = (*Adapter)(nil)

// NewAdapter creates a systemd adapter. No connection is made until Connect.
func NewAdapter(opts Options) *Adapter {
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 30 * time.Second
	}
	return &Adapter{
		jobTimeout: opts.JobTimeout,
		lookupEnv:  os.LookupEnv,
		dial: func(ctx context.Context) (busConn, error) {
			conn, err := sddbus.NewUserConnectionContext(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// Connect opens a private session bus connection for one request. It fails
// without touching the bus when the session bus address is not set.
func (a *Adapter) Connect(ctx context.Context) (ports.UnitSession, error) {
	if v, ok := a.lookupEnv(SessionBusEnv); !ok || v == "" {
		return nil, fmt.Errorf("%w: %s is not set (e.g. unix:path=/run/user/1000/bus)", domain.ErrUnavailable, SessionBusEnv)
	}

	conn, err := a.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to session bus: %w", domain.ErrUnavailable, err)
	}
	return &session{conn: conn, jobTimeout: a.jobTimeout}, nil
}

type session struct {
	conn       busConn
	jobTimeout time.Duration
}

func (s *session) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	statuses, err := s.conn.ListUnitsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list units: %w", domain.ErrBackend, err)
	}

	units := make([]domain.Unit, 0, len(statuses))
	for _, st := range statuses {
		units = append(units, domain.Unit{
			Name:        st.Name,
			Description: st.Description,
			LoadState:   st.LoadState,
			ActiveState: st.ActiveState,
			SubState:    st.SubState,
		})
	}
	return units, nil
}

func (s *session) StartUnit(ctx context.Context, name string) error {
	return s.runJob(ctx, "start", s.conn.StartUnitContext, name)
}

func (s *session) StopUnit(ctx context.Context, name string) error {
	return s.runJob(ctx, "stop", s.conn.StopUnitContext, name)
}

func (s *session) RestartUnit(ctx context.Context, name string) error {
	return s.runJob(ctx, "restart", s.conn.RestartUnitContext, name)
}

// EnableUnit enables the unit file persistently, overwriting conflicting
// symlinks.
func (s *session) EnableUnit(ctx context.Context, name string) error {
	if _, _, err := s.conn.EnableUnitFilesContext(ctx, []string{name}, false, true); err != nil {
		return fmt.Errorf("%w: failed to enable %s: %w", domain.ErrBackend, name, err)
	}
	return nil
}

func (s *session) DisableUnit(ctx context.Context, name string) error {
	if _, err := s.conn.DisableUnitFilesContext(ctx, []string{name}, false); err != nil {
		return fmt.Errorf("%w: failed to disable %s: %w", domain.ErrBackend, name, err)
	}
	return nil
}

func (s *session) Close() error {
	s.conn.Close()
	return nil
}

type jobFunc func(ctx context.Context, name string, mode string, ch chan<- string) (int, error)

// runJob enqueues a lifecycle job in replace mode and waits for systemd to
// report its result, so a following unit listing reflects the outcome.
func (s *session) runJob(ctx context.Context, verb string, enqueue jobFunc, name string) error {
	// go-systemd delivers the result from its signal loop; the buffer keeps
	// that loop from blocking if we stop waiting.
	result := make(chan string, 1)
	if _, err := enqueue(ctx, name, jobModeReplace, result); err != nil {
		return fmt.Errorf("%w: failed to %s %s: %w", domain.ErrBackend, verb, name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	select {
	case r := <-result:
		if r != jobDone {
			return fmt.Errorf("%w: %s job for %s finished with result %q", domain.ErrBackend, verb, name, r)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for %s job of %s: %w", domain.ErrBackend, verb, name, ctx.Err())
	}
}
