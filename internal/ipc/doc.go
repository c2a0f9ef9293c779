// Package ipc implements the local control protocol: newline-delimited
// JSON over an owner-only Unix domain socket. Each request is one object
// of the shape {"cmd": <name>, ...args}; each response is one object with
// an "ok" flag and either a payload or an error code and message.
//
// Protocol failures are connection-scoped. A malformed request produces a
// structured error response and the connection stays usable; nothing a
// client sends can move the worker state machine on its own.
package ipc
