package ipc

import (
	"onyxminer/internal/config"
	"onyxminer/internal/state"
	"onyxminer/internal/sysinfo"
)

// Error codes carried in the "error" field of failure responses.
const (
	CodeInvalidConfig  = "invalid_config"
	CodeAlreadyRunning = "already_running"
	CodeNotRunning     = "not_running"
	CodeSpawnError     = "spawn_error"
	CodeUnexpectedExit = "unexpected_exit"
	CodeDecodeError    = "decode_error"
	CodeUnknownCommand = "unknown_command"
	CodeTimeout        = "timeout"
	CodeInternal       = "internal"
)

// Command names accepted on the wire.
const (
	CmdPing       = "ping"
	CmdStatus     = "status"
	CmdStart      = "start"
	CmdStop       = "stop"
	CmdConfigGet  = "config_get"
	CmdConfigSet  = "config_set"
	CmdSystemInfo = "system_info"
)

// PingResponse answers a liveness probe.
type PingResponse struct {
	OK        bool   `json:"ok"`
	Version   string `json:"version"`
	SessionID string `json:"session_id"`
}

// StatusPayload is the wire rendering of a state snapshot.
type StatusPayload struct {
	Phase         string   `json:"phase"`
	Mode          string   `json:"mode,omitempty"`
	PID           int      `json:"pid,omitempty"`
	Threads       int      `json:"threads,omitempty"`
	TotalUnits    int      `json:"total_units"`
	UptimeSeconds int64    `json:"uptime_seconds,omitempty"`
	Hashrate      string   `json:"hashrate,omitempty"`
	LastError     string   `json:"last_error,omitempty"`
	LogTail       []string `json:"log_tail,omitempty"`
}

// StatusResponse answers status, start, and stop commands.
type StatusResponse struct {
	OK     bool          `json:"ok"`
	Status StatusPayload `json:"status"`
}

// ConfigPayload is the wire rendering of the configuration document.
type ConfigPayload struct {
	WalletAddress string `json:"wallet_address"`
	PoolURL       string `json:"pool_url"`
	WorkerName    string `json:"worker_name"`
	UseSSL        bool   `json:"use_ssl"`
	ProfileName   string `json:"profile_name"`
	Path          string `json:"path,omitempty"`
}

// ConfigResponse answers config_get and config_set.
type ConfigResponse struct {
	OK     bool          `json:"ok"`
	Config ConfigPayload `json:"config"`
}

// SystemInfoResponse answers system_info.
type SystemInfoResponse struct {
	OK     bool         `json:"ok"`
	System sysinfo.Info `json:"system"`
}

// ErrorResponse is the uniform failure shape.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func statusPayload(snap state.Snapshot, uptimeSeconds int64) StatusPayload {
	return StatusPayload{
		Phase:         string(snap.Phase),
		Mode:          string(snap.Mode),
		PID:           snap.PID,
		Threads:       snap.Threads,
		TotalUnits:    snap.TotalUnits,
		UptimeSeconds: uptimeSeconds,
		Hashrate:      snap.Hashrate,
		LastError:     snap.LastError,
		LogTail:       snap.LogTail,
	}
}

func configPayload(doc config.Mining, path string) ConfigPayload {
	return ConfigPayload{
		WalletAddress: doc.WalletAddress,
		PoolURL:       doc.PoolURL,
		WorkerName:    doc.WorkerName,
		UseSSL:        doc.UseSSL,
		ProfileName:   doc.ProfileName,
		Path:          path,
	}
}
