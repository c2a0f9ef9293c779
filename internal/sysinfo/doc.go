// Package sysinfo collects the host facts reported by the system_info
// command. All probes are best effort: a failing sensor leaves its fields
// zeroed rather than failing the command.
package sysinfo
