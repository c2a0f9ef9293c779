package ipc_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"onyxminer/internal/daemon"
	"onyxminer/internal/ipc"
	"onyxminer/internal/logging"
	"onyxminer/internal/miner"
	"onyxminer/internal/state"
	"onyxminer/internal/testsupport"
)

func newTestServer(t *testing.T, script string) (*ipc.Client, string) {
	t.Helper()

	store := testsupport.NewStore(t)
	machine := state.NewMachine(8)
	controller := miner.NewController(store, machine, logging.NewNop(),
		miner.WithBinary(testsupport.WriteWorkerScript(t, script)),
		miner.WithGracePeriod(time.Second))
	d, err := daemon.New(store, machine, controller, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}

	socket := filepath.Join(store.Dir(), "test.sock")
	ctx, cancel := context.WithCancel(context.Background())
	server, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	server.Serve()

	t.Cleanup(func() {
		server.Close()
		_ = d.Close(context.Background())
		cancel()
	})

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, socket
}

func TestPing(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	resp, err := client.Ping()
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !resp.OK {
		t.Fatal("ping not ok")
	}
	if resp.Version != daemon.Version {
		t.Fatalf("version = %q, want %q", resp.Version, daemon.Version)
	}
	if resp.SessionID == "" {
		t.Fatal("empty session id")
	}
}

func TestStartStopScenario(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status.Phase != string(state.PhaseStopped) {
		t.Fatalf("fresh phase = %q, want stopped", status.Status.Phase)
	}

	started, err := client.Start("background")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status.Phase != string(state.PhaseRunning) {
		t.Fatalf("phase after start = %q, want running", started.Status.Phase)
	}
	if started.Status.Mode != "background" {
		t.Fatalf("mode = %q, want background", started.Status.Mode)
	}
	if started.Status.PID <= 0 {
		t.Fatalf("pid = %d, want positive", started.Status.PID)
	}
	if started.Status.Threads < 1 {
		t.Fatalf("threads = %d, want at least 1", started.Status.Threads)
	}

	stopped, err := client.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.Status.Phase != string(state.PhaseStopped) {
		t.Fatalf("phase after stop = %q, want stopped", stopped.Status.Phase)
	}
	if stopped.Status.PID != 0 {
		t.Fatalf("pid after stop = %d, want 0", stopped.Status.PID)
	}
}

func TestSecondStartReportsAlreadyRunning(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	if _, err := client.Start("background"); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := client.Start("money_hunter")
	var serr *ipc.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("second start error = %v, want ServerError", err)
	}
	if serr.Code != ipc.CodeAlreadyRunning {
		t.Fatalf("code = %q, want already_running", serr.Code)
	}
}

func TestConfigSetRejectionPreservesPrior(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	before, err := client.ConfigGet()
	if err != nil {
		t.Fatalf("config_get: %v", err)
	}

	empty := ""
	_, err = client.ConfigSet(ipc.ConfigSetArgs{WalletAddress: &empty})
	var serr *ipc.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("config_set error = %v, want ServerError", err)
	}
	if serr.Code != ipc.CodeInvalidConfig {
		t.Fatalf("code = %q, want invalid_config", serr.Code)
	}

	after, err := client.ConfigGet()
	if err != nil {
		t.Fatalf("config_get after rejection: %v", err)
	}
	if after.Config.WalletAddress != before.Config.WalletAddress {
		t.Fatalf("wallet changed after rejected update: %q -> %q",
			before.Config.WalletAddress, after.Config.WalletAddress)
	}
}

func TestConfigSetPersistsUpdate(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	worker := "rig-42"
	resp, err := client.ConfigSet(ipc.ConfigSetArgs{WorkerName: &worker})
	if err != nil {
		t.Fatalf("config_set: %v", err)
	}
	if resp.Config.WorkerName != "rig-42" {
		t.Fatalf("worker name = %q, want rig-42", resp.Config.WorkerName)
	}

	got, err := client.ConfigGet()
	if err != nil {
		t.Fatalf("config_get: %v", err)
	}
	if got.Config.WorkerName != "rig-42" {
		t.Fatalf("persisted worker name = %q, want rig-42", got.Config.WorkerName)
	}
}

func TestInvalidModeIsRejected(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	_, err := client.Start("turbo")
	var serr *ipc.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("start error = %v, want ServerError", err)
	}
	if serr.Code != ipc.CodeDecodeError {
		t.Fatalf("code = %q, want decode_error", serr.Code)
	}
}

func TestSystemInfo(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	resp, err := client.SystemInfo()
	if err != nil {
		t.Fatalf("system_info: %v", err)
	}
	if resp.System.CPU.LogicalCores < 1 {
		t.Fatalf("logical cores = %d, want at least 1", resp.System.CPU.LogicalCores)
	}
}

func TestMalformedRequestKeepsConnectionUsable(t *testing.T) {
	_, socket := newTestServer(t, testsupport.SleepingWorker)

	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatalf("dial raw: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewScanner(conn)

	if _, err := conn.Write([]byte("{this is not json\n")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if !reader.Scan() {
		t.Fatalf("no response to garbage: %v", reader.Err())
	}
	var errResp struct {
		OK   bool   `json:"ok"`
		Code string `json:"error"`
	}
	if err := json.Unmarshal(reader.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.OK || errResp.Code != ipc.CodeDecodeError {
		t.Fatalf("garbage response = %s", reader.Text())
	}

	// Same connection must still serve a well-formed ping.
	if _, err := conn.Write([]byte(`{"cmd":"ping"}` + "\n")); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if !reader.Scan() {
		t.Fatalf("no response to ping: %v", reader.Err())
	}
	var pingResp struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(reader.Bytes(), &pingResp); err != nil {
		t.Fatalf("decode ping response: %v", err)
	}
	if !pingResp.OK {
		t.Fatalf("ping after garbage failed: %s", reader.Text())
	}
}

func TestOversizedRequestGetsDecodeError(t *testing.T) {
	_, socket := newTestServer(t, testsupport.SleepingWorker)

	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatalf("dial raw: %v", err)
	}
	defer conn.Close()

	// One line well past the request size limit, never terminated.
	oversized := bytes.Repeat([]byte("a"), 96*1024)
	if _, err := conn.Write(oversized); err != nil {
		t.Fatalf("write oversized request: %v", err)
	}

	reader := bufio.NewScanner(conn)
	if !reader.Scan() {
		t.Fatalf("no response to oversized request: %v", reader.Err())
	}
	var errResp struct {
		OK   bool   `json:"ok"`
		Code string `json:"error"`
	}
	if err := json.Unmarshal(reader.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.OK || errResp.Code != ipc.CodeDecodeError {
		t.Fatalf("oversized response = %s", reader.Text())
	}

	// The stream cannot be resynced, so the server hangs up afterwards.
	if reader.Scan() {
		t.Fatalf("unexpected extra response: %s", reader.Text())
	}
}

func TestExternalKillSurfacesFailure(t *testing.T) {
	client, _ := newTestServer(t, testsupport.SleepingWorker)

	started, err := client.Start("background")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Simulate the worker dying outside the daemon's control.
	if err := unix.Kill(started.Status.PID, unix.SIGKILL); err != nil {
		t.Fatalf("kill worker: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := client.Status()
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.Status.Phase == string(state.PhaseFailed) {
			if status.Status.LastError == "" {
				t.Fatal("failed phase without a reason")
			}
			if status.Status.PID != 0 {
				t.Fatalf("failed phase reports pid %d", status.Status.PID)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("status never reported failed after external kill")
}
