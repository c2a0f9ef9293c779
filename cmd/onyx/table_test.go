package main

import (
	"strings"
	"testing"
)

func TestRenderPairs(t *testing.T) {
	out := renderPairs("Setting", "Value", []settingRow{
		{"Wallet", "44TestWa...XXXXXXX1"},
		{"SSL", "yes"},
	}, false)

	for _, want := range []string{"Setting", "Value", "Wallet", "44TestWa...XXXXXXX1", "SSL", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) < 4 {
		t.Fatalf("table has %d lines, want bordered header plus rows:\n%s", len(lines), out)
	}
}

func TestRenderConfigTableRedactsWallet(t *testing.T) {
	wallet := "44TestWalletAddressThatIsQuiteLongIndeed"
	out := renderConfigTable(wallet, "pool.example.net:443", "rig-1", true, "Default Profile", "/tmp/config.json")
	if strings.Contains(out, wallet) {
		t.Fatalf("config table prints the full wallet:\n%s", out)
	}
	for _, want := range []string{"Pool", "pool.example.net:443", "rig-1", "yes", "Default Profile"} {
		if !strings.Contains(out, want) {
			t.Errorf("config table missing %q:\n%s", want, out)
		}
	}
}
