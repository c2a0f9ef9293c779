package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"onyxminer/internal/daemonrun"
)

func main() {
	dataDir := flag.String("data-dir", "", "Data directory (default ~/.onyx-miner)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "console", "Log format: console or json")
	flag.Parse()

	err := daemonrun.Run(context.Background(), daemonrun.Options{
		DataDir:  *dataDir,
		LogLevel: *logLevel,
		Format:   *logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "onyxd: %v\n", err)
		os.Exit(1)
	}
}
