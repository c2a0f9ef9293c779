package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"onyxminer/internal/ipc"
	"onyxminer/internal/state"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
	logTailLines     = 10
)

// renderStatus formats a status payload as aligned label/value lines with
// a short tail of recent worker output.
func renderStatus(status ipc.StatusPayload, colorize bool) []string {
	lines := make([]string, 0, 12)
	lines = append(lines, renderSectionHeader("Miner Status", colorize)...)
	lines = append(lines, renderStatusLine("State", phaseKind(status.Phase), phaseDetail(status), colorize))

	if status.Phase == string(state.PhaseRunning) {
		lines = append(lines, renderStatusLine("Mode", statusInfo, status.Mode, colorize))
		lines = append(lines, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
		lines = append(lines, renderStatusLine("Threads", statusInfo,
			fmt.Sprintf("%d of %d units", status.Threads, status.TotalUnits), colorize))
		lines = append(lines, renderStatusLine("Uptime", statusInfo,
			(time.Duration(status.UptimeSeconds) * time.Second).String(), colorize))
		hashrate := status.Hashrate
		if hashrate == "" {
			hashrate = "warming up"
		}
		lines = append(lines, renderStatusLine("Hashrate", statusInfo, hashrate, colorize))
	}

	if tail := lastLines(status.LogTail, logTailLines); len(tail) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Recent Output", colorize)...)
		for _, line := range tail {
			lines = append(lines, statusIndent+line)
		}
	}
	return lines
}

func phaseKind(phase string) statusKind {
	switch state.Phase(phase) {
	case state.PhaseRunning:
		return statusOK
	case state.PhaseStarting, state.PhaseStopping:
		return statusWarn
	case state.PhaseFailed:
		return statusError
	default:
		return statusInfo
	}
}

func phaseDetail(status ipc.StatusPayload) string {
	if state.Phase(status.Phase) == state.PhaseFailed && status.LastError != "" {
		return fmt.Sprintf("%s (%s)", status.Phase, status.LastError)
	}
	return status.Phase
}

func lastLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
