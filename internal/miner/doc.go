// Package miner owns the external worker process.
//
// The Controller is the only component that issues process-control system
// calls. It spawns the worker in its own process group, streams its output
// into the state machine's session log, and guarantees the child is reaped
// on every exit path: graceful stop, forced kill, unexpected crash, and
// daemon shutdown.
package miner
