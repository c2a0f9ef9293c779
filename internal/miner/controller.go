package miner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"onyxminer/internal/config"
	"onyxminer/internal/logging"
	"onyxminer/internal/resource"
	"onyxminer/internal/state"
)

const (
	defaultGracePeriod = 5 * time.Second
	defaultKillWait    = 2 * time.Second
)

// Controller supervises the single worker process. All lifecycle mutations
// go through its mutex, so concurrent start and stop requests serialize
// into one coherent sequence of state transitions.
type Controller struct {
	store   *config.Store
	machine *state.Machine
	logger  *slog.Logger

	binary   string
	grace    time.Duration
	killWait time.Duration

	mu            sync.Mutex
	cmd           *exec.Cmd
	generation    int
	stopRequested bool
	done          chan struct{}
}

// Option customizes controller construction.
type Option func(*Controller)

// WithBinary overrides the worker executable.
func WithBinary(binary string) Option {
	return func(c *Controller) {
		c.binary = binary
	}
}

// WithGracePeriod overrides how long a graceful stop waits before the
// SIGKILL escalation.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithKillWait overrides how long a stop waits for the reap after SIGKILL.
func WithKillWait(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.killWait = d
		}
	}
}

// NewController creates a controller bound to the given config store and
// state machine.
func NewController(store *config.Store, machine *state.Machine, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		machine:  machine,
		logger:   logging.NewComponentLogger(logger, "controller"),
		binary:   workerBinary(),
		grace:    defaultGracePeriod,
		killWait: defaultKillWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the worker in the given mode. It validates the current
// configuration snapshot, computes the thread budget from live CPU
// detection, and spawns the worker in its own process group. The call
// returns once the worker is observably running; it does not wait for
// pool acceptance.
func (c *Controller) Start(ctx context.Context, mode resource.Mode) error {
	profile, err := resource.ProfileFor(mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch phase := c.machine.Get().Phase; phase {
	case state.PhaseStopped, state.PhaseFailed:
	default:
		return fmt.Errorf("%w: worker is %s", ErrAlreadyRunning, phase)
	}

	cfg := c.store.Snapshot()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c.machine.SetStarting(mode)

	units := resource.DetectUnits(ctx)
	threads := profile.Threads(units)
	args := buildArgs(cfg, profile, threads)

	cmd := exec.Command(c.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.machine.SetFailed("open worker output pipe: "+err.Error(), time.Now())
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		c.machine.SetFailed("spawn worker: "+err.Error(), time.Now())
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	c.generation++
	c.cmd = cmd
	c.stopRequested = false
	done := make(chan struct{})
	c.done = done

	pid := cmd.Process.Pid
	c.machine.SetRunning(mode, pid, threads, units, time.Now())
	c.applyNiceness(pid, profile.Niceness)

	go c.monitor(c.generation, cmd, stdout, done)

	c.logger.Info("worker started",
		logging.String("mode", string(mode)),
		logging.Int("pid", pid),
		logging.Int("threads", threads),
		logging.Int("total_units", units))
	return nil
}

// Stop terminates a running worker: SIGTERM to the process group, a
// bounded grace wait, then SIGKILL escalation. Stopping an idle worker is
// a no-op; a lingering failure is cleared back to stopped.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.cmd == nil {
		if c.machine.Get().Phase == state.PhaseFailed {
			c.machine.SetStopped("")
		}
		c.mu.Unlock()
		return nil
	}

	cmd := c.cmd
	done := c.done
	c.stopRequested = true
	c.machine.SetStopping()
	pid := cmd.Process.Pid
	c.signalGroup(pid, unix.SIGTERM)
	c.mu.Unlock()

	c.logger.Info("stopping worker", logging.Int("pid", pid))

	graceTimer := time.NewTimer(c.grace)
	defer graceTimer.Stop()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
	case <-graceTimer.C:
	}

	c.logger.Warn("worker ignored SIGTERM, escalating to SIGKILL",
		logging.Int("pid", pid),
		logging.Duration("grace", c.grace))
	c.signalGroup(pid, unix.SIGKILL)

	killTimer := time.NewTimer(c.killWait)
	defer killTimer.Stop()
	select {
	case <-done:
		return nil
	case <-killTimer.C:
		return fmt.Errorf("%w: pid %d", ErrStopTimeout, pid)
	}
}

// Shutdown stops any running worker during daemon teardown.
func (c *Controller) Shutdown(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil {
		c.logger.Warn("worker did not stop cleanly during shutdown", logging.Error(err))
		return err
	}
	return nil
}

// monitor is the only goroutine that waits on the worker. It streams
// output into the session log until the pipe closes, then reaps the
// process and records the terminal state transition. The generation guard
// keeps a slow monitor for a dead worker from clobbering the state of a
// newer one.
func (c *Controller) monitor(generation int, cmd *exec.Cmd, stdout io.Reader, done chan struct{}) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.machine.AppendLog(line)
		if hashrate, ok := parseHashrate(line); ok {
			c.machine.SetHashrate(hashrate)
		}
	}

	waitErr := cmd.Wait()

	// The terminal transition happens inside the same critical section
	// that clears the handle. A Stop acquiring the mutex afterwards must
	// never observe a cleared handle with the phase still running.
	c.mu.Lock()
	stale := generation != c.generation
	requested := c.stopRequested
	var reason string
	if !stale {
		c.cmd = nil
		c.done = nil
		if requested {
			c.machine.SetStopped("requested")
		} else {
			reason = exitReason(waitErr)
			c.machine.SetFailed(reason, time.Now())
		}
	}
	c.mu.Unlock()
	close(done)

	if !stale {
		if requested {
			c.logger.Info("worker stopped")
		} else {
			c.logger.Warn("worker exited unexpectedly",
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, "check the session log tail for worker errors"))
		}
	}
}

// applyNiceness lowers the worker process group's scheduling priority.
// Failure is logged and tolerated; the worker still runs, just unniced.
func (c *Controller) applyNiceness(pid, niceness int) {
	if niceness == 0 {
		return
	}
	if err := unix.Setpriority(unix.PRIO_PGRP, pid, niceness); err != nil {
		c.logger.Warn("set worker niceness failed",
			logging.Int("pid", pid),
			logging.Int("niceness", niceness),
			logging.Error(err))
	}
}

// signalGroup delivers sig to the worker's process group. ESRCH means the
// group is already gone, which every caller treats as success.
func (c *Controller) signalGroup(pid int, sig unix.Signal) {
	if err := unix.Kill(-pid, sig); err != nil && err != unix.ESRCH {
		c.logger.Warn("signal worker group failed",
			logging.Int("pid", pid),
			logging.String("signal", sig.String()),
			logging.Error(err))
	}
}

func exitReason(waitErr error) string {
	if waitErr == nil {
		return "worker exited unexpectedly with status 0"
	}
	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return "worker wait failed: " + waitErr.Error()
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return "worker terminated by signal " + status.Signal().String()
	}
	return fmt.Sprintf("worker exited unexpectedly with code %d", exitErr.ExitCode())
}
