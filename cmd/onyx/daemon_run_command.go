package main

import (
	"github.com/spf13/cobra"

	"onyxminer/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonrun.Run(cmd.Context(), daemonrun.Options{
				DataDir:  ctx.dataDir(),
				LogLevel: logLevel,
				Format:   logFormat,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	return cmd
}
