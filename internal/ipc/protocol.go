package ipc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"onyxminer/internal/config"
	"onyxminer/internal/resource"
)

// Command is the decoded form of one wire request. The strict decoder
// produces exactly one variant per recognized command name, so dispatch
// can switch exhaustively.
type Command interface {
	commandName() string
}

type PingCommand struct{}

type StatusCommand struct{}

type StartCommand struct {
	Mode resource.Mode
}

type StopCommand struct{}

type ConfigGetCommand struct{}

type ConfigSetCommand struct {
	Patch config.Patch
}

type SystemInfoCommand struct{}

func (PingCommand) commandName() string       { return CmdPing }
func (StatusCommand) commandName() string     { return CmdStatus }
func (StartCommand) commandName() string      { return CmdStart }
func (StopCommand) commandName() string       { return CmdStop }
func (ConfigGetCommand) commandName() string  { return CmdConfigGet }
func (ConfigSetCommand) commandName() string  { return CmdConfigSet }
func (SystemInfoCommand) commandName() string { return CmdSystemInfo }

// WireError is a protocol-level failure to be encoded as an error response.
type WireError struct {
	Code    string
	Message string
}

func decodeError(format string, args ...any) *WireError {
	return &WireError{Code: CodeDecodeError, Message: fmt.Sprintf(format, args...)}
}

type bareRequest struct {
	Cmd string `json:"cmd"`
}

type startRequest struct {
	Cmd  string `json:"cmd"`
	Mode string `json:"mode"`
}

type configSetRequest struct {
	Cmd           string  `json:"cmd"`
	WalletAddress *string `json:"wallet_address"`
	PoolURL       *string `json:"pool_url"`
	WorkerName    *string `json:"worker_name"`
	UseSSL        *bool   `json:"use_ssl"`
	ProfileName   *string `json:"profile_name"`
}

// ParseRequest decodes one request line into a Command. Unknown fields,
// unknown commands, and malformed payloads are rejected so a typo never
// silently degrades into a default.
func ParseRequest(line []byte) (Command, *WireError) {
	var probe bareRequest
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, decodeError("malformed request: %v", err)
	}
	if probe.Cmd == "" {
		return nil, decodeError("request is missing the cmd field")
	}

	switch probe.Cmd {
	case CmdPing:
		if werr := strictUnmarshal(line, &bareRequest{}); werr != nil {
			return nil, werr
		}
		return PingCommand{}, nil
	case CmdStatus:
		if werr := strictUnmarshal(line, &bareRequest{}); werr != nil {
			return nil, werr
		}
		return StatusCommand{}, nil
	case CmdStart:
		var req startRequest
		if werr := strictUnmarshal(line, &req); werr != nil {
			return nil, werr
		}
		mode, err := resource.ParseMode(req.Mode)
		if err != nil {
			return nil, decodeError("%v", err)
		}
		return StartCommand{Mode: mode}, nil
	case CmdStop:
		if werr := strictUnmarshal(line, &bareRequest{}); werr != nil {
			return nil, werr
		}
		return StopCommand{}, nil
	case CmdConfigGet:
		if werr := strictUnmarshal(line, &bareRequest{}); werr != nil {
			return nil, werr
		}
		return ConfigGetCommand{}, nil
	case CmdConfigSet:
		var req configSetRequest
		if werr := strictUnmarshal(line, &req); werr != nil {
			return nil, werr
		}
		patch := config.Patch{
			WalletAddress: req.WalletAddress,
			PoolURL:       req.PoolURL,
			WorkerName:    req.WorkerName,
			UseSSL:        req.UseSSL,
			ProfileName:   req.ProfileName,
		}
		if patch.Empty() {
			return nil, decodeError("config_set requires at least one field")
		}
		return ConfigSetCommand{Patch: patch}, nil
	default:
		return nil, &WireError{
			Code:    CodeUnknownCommand,
			Message: fmt.Sprintf("unknown command %q", probe.Cmd),
		}
	}
}

func strictUnmarshal(data []byte, v any) *WireError {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError("malformed request: %v", err)
	}
	if dec.More() {
		return decodeError("trailing data after request object")
	}
	return nil
}
