package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"onyxminer/internal/config"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestOpenCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	store, err := config.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	snap := store.Snapshot()
	if snap.WalletAddress != config.PlaceholderWallet {
		t.Fatalf("expected placeholder wallet, got %q", snap.WalletAddress)
	}
	if err := snap.Validate(); err == nil {
		t.Fatal("template config must not pass validation")
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("expected 0600 config permissions, got %o", perm)
		}
	}
}

func TestOpenLoadsExistingDocument(t *testing.T) {
	dir := t.TempDir()
	doc := config.Mining{
		WalletAddress: "44wallet",
		PoolURL:       "pool.example.com:3333",
		WorkerName:    "rig-1",
		UseSSL:        false,
		ProfileName:   "Custom",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store, err := config.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := store.Snapshot(); got != doc {
		t.Fatalf("snapshot mismatch: got %+v want %+v", got, doc)
	}
}

func TestUpdatePersistsValidPatch(t *testing.T) {
	dir := t.TempDir()
	store, err := config.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	updated, err := store.Update(config.Patch{
		WalletAddress: strPtr("44wallet"),
		PoolURL:       strPtr("pool.example.com:443"),
		UseSSL:        boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.WalletAddress != "44wallet" || updated.PoolURL != "pool.example.com:443" || updated.UseSSL {
		t.Fatalf("unexpected updated document: %+v", updated)
	}

	// Reopen to prove the change hit disk.
	reopened, err := config.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Snapshot(); got != updated {
		t.Fatalf("persisted mismatch: got %+v want %+v", got, updated)
	}
}

func TestUpdateRejectedPatchLeavesPriorDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := config.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	valid, err := store.Update(config.Patch{WalletAddress: strPtr("44wallet")})
	if err != nil {
		t.Fatalf("seed valid config: %v", err)
	}

	if _, err := store.Update(config.Patch{WalletAddress: strPtr("")}); err == nil {
		t.Fatal("expected empty wallet to be rejected")
	}
	if got := store.Snapshot(); got != valid {
		t.Fatalf("rejected patch mutated snapshot: got %+v want %+v", got, valid)
	}

	reopened, err := config.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Snapshot(); got != valid {
		t.Fatalf("rejected patch mutated disk: got %+v want %+v", got, valid)
	}
}

func TestValidate(t *testing.T) {
	base := config.Mining{
		WalletAddress: "44wallet",
		PoolURL:       "pool.example.com:443",
		WorkerName:    "onyx-miner",
		UseSSL:        true,
		ProfileName:   "Default Profile",
	}

	cases := []struct {
		name    string
		mutate  func(*config.Mining)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Mining) {}},
		{name: "empty wallet", mutate: func(m *config.Mining) { m.WalletAddress = "" }, wantErr: true},
		{name: "placeholder wallet", mutate: func(m *config.Mining) { m.WalletAddress = config.PlaceholderWallet }, wantErr: true},
		{name: "empty pool", mutate: func(m *config.Mining) { m.PoolURL = "" }, wantErr: true},
		{name: "pool without port", mutate: func(m *config.Mining) { m.PoolURL = "pool.example.com" }, wantErr: true},
		{name: "pool without host", mutate: func(m *config.Mining) { m.PoolURL = ":443" }, wantErr: true},
		{name: "empty worker", mutate: func(m *config.Mining) { m.WorkerName = " " }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := base
			tc.mutate(&doc)
			err := doc.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(config.Patch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	if (config.Patch{UseSSL: boolPtr(true)}).Empty() {
		t.Fatal("patch with field should not be empty")
	}
}
