package sysinfo

import (
	"context"
	"testing"
)

func TestCollectReportsCores(t *testing.T) {
	info := Collect(context.Background())
	if info.CPU.LogicalCores < 1 {
		t.Fatalf("expected at least one logical core, got %d", info.CPU.LogicalCores)
	}
	if info.Memory.TotalMB == 0 {
		t.Fatal("expected non-zero total memory")
	}
	if info.Memory.AvailableMB > info.Memory.TotalMB {
		t.Fatalf("available %d MB exceeds total %d MB", info.Memory.AvailableMB, info.Memory.TotalMB)
	}
}
