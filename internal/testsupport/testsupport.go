// Package testsupport provides shared helpers for package tests: temp
// config stores with a usable wallet and stub worker executables with
// scripted exit behavior.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"onyxminer/internal/config"
)

// TestWallet is a syntactically plausible wallet address for tests.
const TestWallet = "44TestWalletAddressUsedOnlyInUnitTestsXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX1"

// NewStore creates a config store in a fresh temp directory and replaces
// the placeholder wallet so the document validates.
func NewStore(t *testing.T) *config.Store {
	t.Helper()
	store, err := config.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open config store: %v", err)
	}
	wallet := TestWallet
	if _, err := store.Update(config.Patch{WalletAddress: &wallet}); err != nil {
		t.Fatalf("seed test wallet: %v", err)
	}
	return store
}

// WriteWorkerScript writes an executable shell script and returns its path.
// Tests use these as stand-ins for the real worker binary.
func WriteWorkerScript(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write worker script: %v", err)
	}
	return path
}

// SleepingWorker emits one speed report, then idles until SIGTERM.
const SleepingWorker = `#!/bin/sh
trap 'exit 0' TERM
echo "speed 10s/60s/15m 1234.5 n/a n/a H/s max 1300.0 H/s"
while true; do sleep 0.1; done
`

// StubbornWorker ignores SIGTERM and only dies to SIGKILL.
const StubbornWorker = `#!/bin/sh
trap '' TERM
echo "miner starting"
while true; do sleep 0.1; done
`

// CrashingWorker exits with a nonzero status almost immediately.
const CrashingWorker = `#!/bin/sh
echo "fatal: no huge pages"
exit 3
`
