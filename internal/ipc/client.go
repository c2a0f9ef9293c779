package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// clientTimeout bounds one request/response round trip. Stop can take a
// full grace period plus the kill escalation, so this stays generous.
const clientTimeout = 15 * time.Second

// ServerError is a structured failure reported by the daemon.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Client speaks the control protocol over a Unix domain socket. A client
// holds one connection and reuses it across commands.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// Dial connects to the control socket at the given path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)
	return &Client{conn: conn, scanner: scanner}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// request is the client-side wire shape. Optional fields are emitted only
// when set, so the strict server decoder accepts every variant.
type request struct {
	Cmd           string  `json:"cmd"`
	Mode          string  `json:"mode,omitempty"`
	WalletAddress *string `json:"wallet_address,omitempty"`
	PoolURL       *string `json:"pool_url,omitempty"`
	WorkerName    *string `json:"worker_name,omitempty"`
	UseSSL        *bool   `json:"use_ssl,omitempty"`
	ProfileName   *string `json:"profile_name,omitempty"`
}

// ConfigSetArgs carries the optional fields of a config_set command.
type ConfigSetArgs struct {
	WalletAddress *string
	PoolURL       *string
	WorkerName    *string
	UseSSL        *bool
	ProfileName   *string
}

func (c *Client) roundTrip(req request, resp any) error {
	if err := c.conn.SetDeadline(time.Now().Add(clientTimeout)); err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	payload = append(payload, '\n')
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return fmt.Errorf("connection closed by daemon")
	}
	line := c.scanner.Bytes()

	var probe struct {
		OK      bool   `json:"ok"`
		Code    string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !probe.OK {
		return &ServerError{Code: probe.Code, Message: probe.Message}
	}
	if err := json.Unmarshal(line, resp); err != nil {
		return fmt.Errorf("decode response payload: %w", err)
	}
	return nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.roundTrip(request{Cmd: CmdPing}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status queries the current worker state.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.roundTrip(request{Cmd: CmdStatus}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start launches the worker in the given mode and returns the resulting
// status.
func (c *Client) Start(mode string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.roundTrip(request{Cmd: CmdStart, Mode: mode}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop terminates the worker and returns the resulting status.
func (c *Client) Stop() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.roundTrip(request{Cmd: CmdStop}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigGet fetches the persisted configuration.
func (c *Client) ConfigGet() (*ConfigResponse, error) {
	var resp ConfigResponse
	if err := c.roundTrip(request{Cmd: CmdConfigGet}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigSet applies a partial configuration update and returns the new
// document.
func (c *Client) ConfigSet(args ConfigSetArgs) (*ConfigResponse, error) {
	var resp ConfigResponse
	req := request{
		Cmd:           CmdConfigSet,
		WalletAddress: args.WalletAddress,
		PoolURL:       args.PoolURL,
		WorkerName:    args.WorkerName,
		UseSSL:        args.UseSSL,
		ProfileName:   args.ProfileName,
	}
	if err := c.roundTrip(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SystemInfo fetches host CPU and memory facts.
func (c *Client) SystemInfo() (*SystemInfoResponse, error) {
	var resp SystemInfoResponse
	if err := c.roundTrip(request{Cmd: CmdSystemInfo}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
