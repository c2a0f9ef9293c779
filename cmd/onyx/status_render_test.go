package main

import (
	"strings"
	"testing"

	"onyxminer/internal/ipc"
)

func TestRenderStatusRunning(t *testing.T) {
	status := ipc.StatusPayload{
		Phase:         "running",
		Mode:          "background",
		PID:           4242,
		Threads:       4,
		TotalUnits:    8,
		UptimeSeconds: 61,
		Hashrate:      "1234.5 H/s",
		LogTail:       []string{"[10:00:00] mining started"},
	}
	out := strings.Join(renderStatus(status, false), "\n")

	for _, want := range []string{
		"[OK] running",
		"background",
		"4242",
		"4 of 8 units",
		"1m1s",
		"1234.5 H/s",
		"mining started",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered status missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatusFailedShowsReason(t *testing.T) {
	status := ipc.StatusPayload{
		Phase:     "failed",
		LastError: "worker exited unexpectedly with code 3",
	}
	out := strings.Join(renderStatus(status, false), "\n")
	if !strings.Contains(out, "[ERROR] failed (worker exited unexpectedly with code 3)") {
		t.Fatalf("rendered status missing failure reason:\n%s", out)
	}
}

func TestRenderStatusStoppedOmitsRuntimeFields(t *testing.T) {
	status := ipc.StatusPayload{Phase: "stopped", TotalUnits: 8}
	out := strings.Join(renderStatus(status, false), "\n")
	if strings.Contains(out, "PID") || strings.Contains(out, "Hashrate") {
		t.Fatalf("stopped status should not render runtime fields:\n%s", out)
	}
}

func TestRedactWallet(t *testing.T) {
	long := "44TestWalletAddressThatIsQuiteLongIndeed"
	got := redactWallet(long)
	if got == long || !strings.Contains(got, "...") {
		t.Fatalf("redactWallet(%q) = %q, want shortened form", long, got)
	}
	short := "short"
	if redactWallet(short) != short {
		t.Fatalf("short wallet should pass through unchanged")
	}
}

func TestRenderStatusLineColor(t *testing.T) {
	plain := renderStatusLine("State", statusOK, "running", false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("uncolored line contains escape codes: %q", plain)
	}
	colored := renderStatusLine("State", statusOK, "running", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colored line missing ANSI wrapping: %q", colored)
	}
}
