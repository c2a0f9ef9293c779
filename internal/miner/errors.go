package miner

import "errors"

var (
	// ErrAlreadyRunning is returned when a start races a live or
	// transitioning worker. Safe to surface directly to clients.
	ErrAlreadyRunning = errors.New("worker already running")

	// ErrInvalidConfig is returned when the configuration snapshot cannot
	// drive a start.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSpawn is returned when the worker executable cannot be launched.
	// The daemon stays failed until an operator intervenes.
	ErrSpawn = errors.New("spawn worker")

	// ErrStopTimeout is returned when the worker survives the SIGKILL
	// escalation window.
	ErrStopTimeout = errors.New("worker did not exit after kill")
)
