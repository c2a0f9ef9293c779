package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"onyxminer/internal/daemonctl"
	"onyxminer/internal/ipc"
)

func newMinerCommands(ctx *commandContext) []*cobra.Command {
	var startMode string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start mining, launching the daemon first if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}

			client, launched, err := daemonctl.EnsureRunning(socket, exe,
				daemonctl.LaunchOptions{DataDir: ctx.dataDir()}, 10*time.Second)
			if err != nil {
				return err
			}
			defer client.Close()
			if launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			resp, err := client.Start(startMode)
			var serr *ipc.ServerError
			if errors.As(err, &serr) {
				switch serr.Code {
				case ipc.CodeAlreadyRunning:
					fmt.Fprintln(stdout, "Mining is already running")
					return nil
				case ipc.CodeInvalidConfig:
					return fmt.Errorf("%s\nSet your wallet first: onyx config set --wallet <address>", serr.Message)
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Mining started: %s mode, %d threads (pid %d)\n",
				resp.Status.Mode, resp.Status.Threads, resp.Status.PID)
			return nil
		},
	}
	startCmd.Flags().StringVar(&startMode, "mode", "background",
		`Mining mode: "background" (lighter) or "money_hunter" (aggressive)`)

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop mining (the daemon keeps running)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "Mining stopped")
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show miner status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				colorize := shouldColorize(stdout)
				for _, line := range renderStatus(resp.Status, colorize) {
					fmt.Fprintln(stdout, line)
				}
				return nil
			})
			if err != nil {
				colorize := shouldColorize(stdout)
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusWarn, "Not running (run `onyx start`)", colorize))
			}
			return nil
		},
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check daemon liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Ping()
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Daemon alive (version %s, session %s)\n", resp.Version, resp.SessionID)
				return nil
			})
		},
	}

	shutdownCmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Stop mining and terminate the daemon process",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			pidPath, err := ctx.pidPath()
			if err != nil {
				return err
			}

			// Best effort worker stop first so the daemon exits cleanly.
			if client, dialErr := ipc.Dial(socket); dialErr == nil {
				_, _ = client.Stop()
				_ = client.Close()
			}

			pid, err := daemonctl.Terminate(socket, pidPath, 10*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", pid)
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd, pingCmd, shutdownCmd}
}
