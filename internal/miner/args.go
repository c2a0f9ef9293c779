package miner

import (
	"os"
	"strconv"
	"strings"

	"onyxminer/internal/config"
	"onyxminer/internal/resource"
)

// defaultBinary is the worker executable looked up on PATH when no
// override is configured.
const defaultBinary = "xmrig"

// binaryEnv overrides the worker executable, mainly for packaging layouts
// that ship the worker outside PATH.
const binaryEnv = "ONYXD_WORKER"

func workerBinary() string {
	if bin := strings.TrimSpace(os.Getenv(binaryEnv)); bin != "" {
		return bin
	}
	return defaultBinary
}

// buildArgs renders the worker argv for one launch. The order is fixed so
// the same config and profile always produce the same command line.
func buildArgs(cfg config.Mining, profile resource.Profile, threads int) []string {
	args := []string{
		"--url", cfg.PoolURL,
		"--user", cfg.WalletAddress,
		"--pass", cfg.WorkerName,
		"--threads", strconv.Itoa(threads),
		"--cpu-priority", strconv.Itoa(profile.WorkerPriority),
		"--keepalive",
	}
	if cfg.UseSSL {
		args = append(args, "--tls")
	}
	return args
}

// parseHashrate extracts a hashrate figure from a worker speed report such
// as "speed 10s/60s/15m 1234.5 1230.1 n/a H/s max 1300.0 H/s". It returns
// the first number immediately preceding an H/s unit token.
func parseHashrate(line string) (string, bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "speed") || !strings.Contains(lower, "h/s") {
		return "", false
	}
	fields := strings.Fields(line)
	for i, field := range fields {
		if i == 0 || !strings.Contains(strings.ToLower(field), "h/s") {
			continue
		}
		value := fields[i-1]
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return value + " H/s", true
		}
	}
	return "", false
}
