// Package daemonrun wires the daemon runtime: config store, logger, state
// machine, process controller, and control socket, torn down in reverse
// order on SIGINT or SIGTERM.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"onyxminer/internal/config"
	"onyxminer/internal/daemon"
	"onyxminer/internal/ipc"
	"onyxminer/internal/logging"
	"onyxminer/internal/miner"
	"onyxminer/internal/resource"
	"onyxminer/internal/state"
)

// Options configures daemon process runtime behavior.
type Options struct {
	DataDir  string
	LogLevel string
	Format   string
}

// Run starts the daemon runtime loop and blocks until shutdown.
func Run(cmdCtx context.Context, opts Options) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := config.Open(opts.DataDir)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       opts.LogLevel,
		Format:      opts.Format,
		OutputPaths: []string{"stdout", store.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := writePIDFile(store.PIDPath()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(store.PIDPath())

	units := resource.DetectUnits(signalCtx)
	machine := state.NewMachine(units)
	controller := miner.NewController(store, machine, logger)

	d, err := daemon.New(store, machine, controller, logger)
	if err != nil {
		return err
	}
	defer d.Close(context.Background())

	server, err := ipc.NewServer(signalCtx, store.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start control socket: %w", err)
	}
	defer server.Close()
	server.Serve()

	logger.Info("daemon ready",
		logging.String("socket", store.SocketPath()),
		logging.String("config", store.Path()),
		logging.Int("total_units", units),
		logging.String("version", daemon.Version))

	<-signalCtx.Done()
	logger.Info("daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
