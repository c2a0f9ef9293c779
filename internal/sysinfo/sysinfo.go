package sysinfo

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPU describes the host processor.
type CPU struct {
	LogicalCores  int     `json:"logical_cores"`
	PhysicalCores int     `json:"physical_cores"`
	ModelName     string  `json:"model_name,omitempty"`
	UsagePercent  float64 `json:"usage_percent"`
	Load1         float64 `json:"load_1,omitempty"`
	Load5         float64 `json:"load_5,omitempty"`
	Load15        float64 `json:"load_15,omitempty"`
}

// Memory describes host memory in megabytes.
type Memory struct {
	TotalMB     uint64  `json:"total_mb"`
	AvailableMB uint64  `json:"available_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// Info is the system_info payload.
type Info struct {
	CPU    CPU    `json:"cpu"`
	Memory Memory `json:"memory"`
}

// Collect gathers host facts. Individual probe failures are tolerated.
func Collect(ctx context.Context) Info {
	var info Info

	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPU.LogicalCores = logical
	}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.CPU.PhysicalCores = physical
	}
	if entries, err := cpu.InfoWithContext(ctx); err == nil && len(entries) > 0 {
		info.CPU.ModelName = entries[0].ModelName
	}
	// Interval zero compares against the previous call instead of blocking.
	if usage, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(usage) > 0 {
		info.CPU.UsagePercent = usage[0]
	}
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		info.CPU.Load1 = avg.Load1
		info.CPU.Load5 = avg.Load5
		info.CPU.Load15 = avg.Load15
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		info.Memory.TotalMB = vm.Total / (1024 * 1024)
		info.Memory.AvailableMB = vm.Available / (1024 * 1024)
		info.Memory.UsedPercent = vm.UsedPercent
	}

	return info
}
