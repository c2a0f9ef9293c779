package resource

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Mode names a mining operation preset.
type Mode string

const (
	// ModeBackground leaves roughly half the machine to the user.
	ModeBackground Mode = "background"
	// ModeMoneyHunter dedicates most of the machine to mining.
	ModeMoneyHunter Mode = "money_hunter"
)

// ParseMode validates a wire-level mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeBackground:
		return ModeBackground, nil
	case ModeMoneyHunter:
		return ModeMoneyHunter, nil
	default:
		return "", fmt.Errorf("invalid mode %q: use %q or %q", value, ModeBackground, ModeMoneyHunter)
	}
}

// Profile is a named preset controlling the worker's CPU share and
// scheduling priority.
type Profile struct {
	Mode Mode
	// CPUFraction is the share of detected CPU units to request, 0 < f <= 1.
	CPUFraction float64
	// WorkerPriority is the priority hint passed on the worker's argv
	// (xmrig scale, 0 lowest to 5 highest).
	WorkerPriority int
	// Niceness is the relative OS scheduling priority applied to the
	// worker's process group after spawn.
	Niceness int
}

var profiles = map[Mode]Profile{
	ModeBackground:  {Mode: ModeBackground, CPUFraction: 0.5, WorkerPriority: 1, Niceness: 10},
	ModeMoneyHunter: {Mode: ModeMoneyHunter, CPUFraction: 0.8, WorkerPriority: 3, Niceness: 0},
}

// ProfileFor returns the preset for mode.
func ProfileFor(mode Mode) (Profile, error) {
	profile, ok := profiles[mode]
	if !ok {
		return Profile{}, fmt.Errorf("unknown mode %q", mode)
	}
	return profile, nil
}

// Threads computes the worker thread count for the given number of detected
// CPU units: max(1, floor(units * fraction)).
func (p Profile) Threads(units int) int {
	if units < 1 {
		units = 1
	}
	threads := int(math.Floor(float64(units) * p.CPUFraction))
	if threads < 1 {
		threads = 1
	}
	return threads
}

// DetectUnits counts logical CPU units. gopsutil handles containerized and
// exotic topologies better than runtime.NumCPU, which remains the fallback.
func DetectUnits(ctx context.Context) int {
	if count, err := cpu.CountsWithContext(ctx, true); err == nil && count > 0 {
		return count
	}
	return runtime.NumCPU()
}
