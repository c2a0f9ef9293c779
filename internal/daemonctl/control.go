// Package daemonctl orchestrates the daemon process from the CLI side:
// detached launch, readiness waits, and terminate-with-escalation.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"onyxminer/internal/ipc"
)

// ErrDaemonNotRunning indicates the daemon control socket is unavailable
// and no live daemon process could be found.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	DataDir  string
	LogLevel string
}

// Launch starts a detached daemon process and releases the handle so the
// CLI can exit while the daemon keeps running.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon"}
	if dir := strings.TrimSpace(opts.DataDir); dir != "" {
		args = append(args, "--data-dir", dir)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for control socket availability and returns a
// connected client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			lastErr = err
			time.Sleep(200 * time.Millisecond)
			continue
		}
		_, pingErr := client.Ping()
		if pingErr == nil {
			return client, nil
		}
		lastErr = pingErr
		_ = client.Close()
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureRunning returns a connected client, launching the daemon first if
// the socket is not reachable. The boolean reports whether a launch
// happened.
func EnsureRunning(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (*ipc.Client, bool, error) {
	client, err := ipc.Dial(socketPath)
	if err == nil {
		if _, pingErr := client.Ping(); pingErr == nil {
			return client, false, nil
		}
		_ = client.Close()
	}

	if launchErr := Launch(executablePath, opts); launchErr != nil {
		return nil, false, launchErr
	}
	client, err = WaitForClient(socketPath, waitTimeout)
	if err != nil {
		return nil, false, err
	}
	return client, true, nil
}

// ReadPID reads the daemon pid file.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %q", pidPath)
	}
	return pid, nil
}

// Terminate shuts the daemon process down: SIGTERM, a bounded wait for
// exit, then SIGKILL with stale-file cleanup. Returns the pid that was
// signaled.
func Terminate(socketPath, pidPath string, grace time.Duration) (int, error) {
	pid, err := ReadPID(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrDaemonNotRunning
		}
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			cleanupRuntimeFiles(socketPath, pidPath)
			return 0, ErrDaemonNotRunning
		}
		return 0, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := unix.Kill(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return pid, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	cleanupRuntimeFiles(socketPath, pidPath)
	return pid, nil
}

// IsRunning reports whether a daemon answers on the control socket.
func IsRunning(socketPath string) bool {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return false
	}
	defer client.Close()
	_, err = client.Ping()
	return err == nil
}

func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

func cleanupRuntimeFiles(socketPath, pidPath string) {
	if socketPath != "" {
		_ = os.Remove(socketPath)
	}
	if pidPath != "" {
		_ = os.Remove(pidPath)
	}
}
