package state

import (
	"fmt"
	"sync"
	"time"

	"onyxminer/internal/resource"
)

// Phase names the worker lifecycle state. Exactly one phase is active at a
// time; only PhaseRunning ever carries a pid.
type Phase string

const (
	PhaseStopped  Phase = "stopped"
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseStopping Phase = "stopping"
	PhaseFailed   Phase = "failed"
)

// logTailLimit bounds the worker output ring kept for status queries.
const logTailLimit = 50

// Snapshot is a deep copy of the machine's payload, safe to hand to readers.
type Snapshot struct {
	Phase      Phase
	Mode       resource.Mode
	PID        int
	Threads    int
	TotalUnits int
	StartedAt  time.Time
	Hashrate   string
	LastError  string
	FailedAt   time.Time
	LogTail    []string
}

// Uptime returns how long the worker has been running, zero otherwise.
func (s Snapshot) Uptime(now time.Time) time.Duration {
	if s.Phase != PhaseRunning || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Machine is the mutex-guarded state holder. Mutators are called only by
// the process controller; critical sections stay short so snapshot reads
// never block for long.
type Machine struct {
	mu   sync.Mutex
	cur  Snapshot
	logs []string
}

// NewMachine returns a machine in PhaseStopped with the given detected
// CPU-unit count recorded for status reporting.
func NewMachine(totalUnits int) *Machine {
	if totalUnits < 1 {
		totalUnits = 1
	}
	return &Machine{cur: Snapshot{Phase: PhaseStopped, TotalUnits: totalUnits}}
}

// Get returns a deep copy of the current snapshot.
func (m *Machine) Get() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.cur
	snap.LogTail = append([]string(nil), m.logs...)
	return snap
}

// SetStarting marks a start in flight. Clears any previous failure.
func (m *Machine) SetStarting(mode resource.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Phase = PhaseStarting
	m.cur.Mode = mode
	m.cur.PID = 0
	m.cur.Threads = 0
	m.cur.StartedAt = time.Time{}
	m.cur.Hashrate = ""
	m.cur.LastError = ""
	m.cur.FailedAt = time.Time{}
}

// SetRunning records a successful spawn.
func (m *Machine) SetRunning(mode resource.Mode, pid, threads, totalUnits int, startedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Phase = PhaseRunning
	m.cur.Mode = mode
	m.cur.PID = pid
	m.cur.Threads = threads
	if totalUnits > 0 {
		m.cur.TotalUnits = totalUnits
	}
	m.cur.StartedAt = startedAt
	m.cur.Hashrate = ""
	m.cur.LastError = ""
	m.cur.FailedAt = time.Time{}
	m.appendLogLocked(fmt.Sprintf("mining started: %s mode, %d threads (pid %d)", mode, threads, pid))
}

// SetStopping marks a graceful stop in flight. The pid is cleared so no
// reader observes a pid that is about to be reaped.
func (m *Machine) SetStopping() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Phase = PhaseStopping
	m.cur.PID = 0
}

// SetStopped resets to the idle state.
func (m *Machine) SetStopped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Phase = PhaseStopped
	m.cur.Mode = ""
	m.cur.PID = 0
	m.cur.Threads = 0
	m.cur.StartedAt = time.Time{}
	m.cur.Hashrate = ""
	if reason != "" {
		m.appendLogLocked("mining stopped: " + reason)
	}
}

// SetFailed records a failure with a human-readable reason.
func (m *Machine) SetFailed(reason string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Phase = PhaseFailed
	m.cur.PID = 0
	m.cur.Threads = 0
	m.cur.StartedAt = time.Time{}
	m.cur.Hashrate = ""
	m.cur.LastError = reason
	m.cur.FailedAt = at
	m.appendLogLocked("error: " + reason)
}

// SetHashrate updates the last parsed hashrate report.
func (m *Machine) SetHashrate(hashrate string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Hashrate = hashrate
}

// AppendLog adds a worker output line to the bounded session log ring.
func (m *Machine) AppendLog(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLogLocked(line)
}

func (m *Machine) appendLogLocked(line string) {
	stamped := time.Now().Format("[15:04:05] ") + line
	m.logs = append(m.logs, stamped)
	if overflow := len(m.logs) - logTailLimit; overflow > 0 {
		m.logs = m.logs[overflow:]
	}
}
