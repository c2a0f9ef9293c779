package ipc

import (
	"testing"

	"onyxminer/internal/resource"
)

func TestParseRequestVariants(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"ping", `{"cmd":"ping"}`, CmdPing},
		{"status", `{"cmd":"status"}`, CmdStatus},
		{"stop", `{"cmd":"stop"}`, CmdStop},
		{"config get", `{"cmd":"config_get"}`, CmdConfigGet},
		{"system info", `{"cmd":"system_info"}`, CmdSystemInfo},
		{"start background", `{"cmd":"start","mode":"background"}`, CmdStart},
		{"config set wallet", `{"cmd":"config_set","wallet_address":"44abc"}`, CmdConfigSet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, werr := ParseRequest([]byte(tc.line))
			if werr != nil {
				t.Fatalf("ParseRequest(%s) rejected: %s: %s", tc.line, werr.Code, werr.Message)
			}
			if cmd.commandName() != tc.want {
				t.Fatalf("command = %q, want %q", cmd.commandName(), tc.want)
			}
		})
	}
}

func TestParseRequestStartMode(t *testing.T) {
	cmd, werr := ParseRequest([]byte(`{"cmd":"start","mode":"money_hunter"}`))
	if werr != nil {
		t.Fatalf("rejected: %s: %s", werr.Code, werr.Message)
	}
	start, ok := cmd.(StartCommand)
	if !ok {
		t.Fatalf("command type = %T, want StartCommand", cmd)
	}
	if start.Mode != resource.ModeMoneyHunter {
		t.Fatalf("mode = %s, want money_hunter", start.Mode)
	}
}

func TestParseRequestRejections(t *testing.T) {
	cases := []struct {
		name string
		line string
		code string
	}{
		{"malformed json", `{not json`, CodeDecodeError},
		{"missing cmd", `{"mode":"background"}`, CodeDecodeError},
		{"empty cmd", `{"cmd":""}`, CodeDecodeError},
		{"unknown command", `{"cmd":"frobnicate"}`, CodeUnknownCommand},
		{"invalid mode", `{"cmd":"start","mode":"turbo"}`, CodeDecodeError},
		{"missing mode", `{"cmd":"start"}`, CodeDecodeError},
		{"unknown field", `{"cmd":"ping","extra":1}`, CodeDecodeError},
		{"stray field on start", `{"cmd":"start","mode":"background","threads":64}`, CodeDecodeError},
		{"empty config set", `{"cmd":"config_set"}`, CodeDecodeError},
		{"trailing data", `{"cmd":"ping"} {"cmd":"ping"}`, CodeDecodeError},
		{"wrong field type", `{"cmd":"config_set","use_ssl":"yes"}`, CodeDecodeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, werr := ParseRequest([]byte(tc.line))
			if werr == nil {
				t.Fatalf("ParseRequest(%s) accepted as %q, want rejection", tc.line, cmd.commandName())
			}
			if werr.Code != tc.code {
				t.Fatalf("code = %q, want %q (message %q)", werr.Code, tc.code, werr.Message)
			}
		})
	}
}
