// Package config persists and validates the mining configuration document.
//
// The document is a small JSON object stored with owner-only permissions
// under the onyx data directory. The Store hands out immutable snapshots;
// updates are all-or-nothing and never affect a worker that is already
// running — the controller re-snapshots on every start.
package config
