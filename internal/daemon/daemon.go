// Package daemon ties the configuration store, state machine, and process
// controller together behind the surface the IPC layer dispatches into.
// Exactly one daemon instance runs per data directory, enforced with a
// file lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"onyxminer/internal/config"
	"onyxminer/internal/logging"
	"onyxminer/internal/miner"
	"onyxminer/internal/resource"
	"onyxminer/internal/state"
	"onyxminer/internal/sysinfo"
)

// Version is reported in ping and status responses.
const Version = "1.0.0"

// ErrLockHeld is returned when another daemon owns the data directory.
var ErrLockHeld = errors.New("another daemon instance is already running")

// Daemon is the long-running control core.
type Daemon struct {
	store      *config.Store
	machine    *state.Machine
	controller *miner.Controller
	logger     *slog.Logger
	lock       *flock.Flock
	sessionID  string
	startedAt  time.Time
}

// New acquires the single-instance lock and assembles the daemon. The
// caller owns the passed-in components; Close releases only the lock and
// the worker.
func New(store *config.Store, machine *state.Machine, controller *miner.Controller, logger *slog.Logger) (*Daemon, error) {
	if store == nil || machine == nil || controller == nil {
		return nil, errors.New("daemon requires store, machine, and controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lock := flock.New(store.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock %q: %w", store.LockPath(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %q)", ErrLockHeld, store.LockPath())
	}

	d := &Daemon{
		store:      store,
		machine:    machine,
		controller: controller,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		lock:       lock,
		sessionID:  uuid.NewString(),
		startedAt:  time.Now(),
	}
	d.logger.Info("daemon session opened",
		logging.String("session_id", d.sessionID),
		logging.String("data_dir", store.Dir()))
	return d, nil
}

// SessionID identifies this daemon run in logs and responses.
func (d *Daemon) SessionID() string { return d.sessionID }

// Uptime reports how long this daemon process has been up.
func (d *Daemon) Uptime() time.Duration { return time.Since(d.startedAt) }

// Status returns a snapshot of the worker lifecycle state.
func (d *Daemon) Status() state.Snapshot { return d.machine.Get() }

// StartMiner launches the worker in the given mode.
func (d *Daemon) StartMiner(ctx context.Context, mode resource.Mode) error {
	return d.controller.Start(ctx, mode)
}

// StopMiner terminates the worker if one is running.
func (d *Daemon) StopMiner(ctx context.Context) error {
	return d.controller.Stop(ctx)
}

// Config returns the current configuration document.
func (d *Daemon) Config() config.Mining { return d.store.Snapshot() }

// UpdateConfig validates and persists a partial configuration update. A
// running worker keeps its launch-time settings; the update applies on the
// next start.
func (d *Daemon) UpdateConfig(patch config.Patch) (config.Mining, error) {
	doc, err := d.store.Update(patch)
	if err != nil {
		return doc, err
	}
	d.logger.Info("configuration updated", logging.String("path", d.store.Path()))
	return doc, nil
}

// ConfigPath returns the location of the persisted configuration document.
func (d *Daemon) ConfigPath() string { return d.store.Path() }

// SystemInfo gathers host CPU and memory facts.
func (d *Daemon) SystemInfo(ctx context.Context) sysinfo.Info {
	return sysinfo.Collect(ctx)
}

// Close stops any running worker and releases the single-instance lock.
func (d *Daemon) Close(ctx context.Context) error {
	var firstErr error
	if err := d.controller.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := d.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("release daemon lock: %w", err)
	}
	d.logger.Info("daemon session closed", logging.String("session_id", d.sessionID))
	return firstErr
}
