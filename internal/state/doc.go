// Package state holds the daemon's single source of truth for the worker
// lifecycle.
//
// The Machine is a mutex-guarded snapshot holder. Only the process
// controller mutates it; everything else reads deep-copy snapshots that are
// safe to use without holding any lock.
package state
