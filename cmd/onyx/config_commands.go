package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onyxminer/internal/ipc"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update mining configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			// Prefer the daemon's view; fall back to reading the document
			// directly when no daemon is running.
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ConfigGet()
				if err != nil {
					return err
				}
				fmt.Fprint(stdout, renderConfigTable(
					resp.Config.WalletAddress,
					resp.Config.PoolURL,
					resp.Config.WorkerName,
					resp.Config.UseSSL,
					resp.Config.ProfileName,
					resp.Config.Path))
				fmt.Fprintln(stdout)
				return nil
			})
			if err == nil {
				return nil
			}

			store, storeErr := ctx.ensureStore()
			if storeErr != nil {
				return storeErr
			}
			doc := store.Snapshot()
			fmt.Fprint(stdout, renderConfigTable(
				doc.WalletAddress, doc.PoolURL, doc.WorkerName,
				doc.UseSSL, doc.ProfileName, store.Path()))
			fmt.Fprintln(stdout)
			return nil
		},
	}

	var (
		walletFlag  string
		poolFlag    string
		workerFlag  string
		sslFlag     bool
		profileFlag string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration fields (applies on the next start)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			patch := ipc.ConfigSetArgs{}
			if cmd.Flags().Changed("wallet") {
				patch.WalletAddress = &walletFlag
			}
			if cmd.Flags().Changed("pool") {
				patch.PoolURL = &poolFlag
			}
			if cmd.Flags().Changed("worker") {
				patch.WorkerName = &workerFlag
			}
			if cmd.Flags().Changed("ssl") {
				patch.UseSSL = &sslFlag
			}
			if cmd.Flags().Changed("profile-name") {
				patch.ProfileName = &profileFlag
			}
			if patch.WalletAddress == nil && patch.PoolURL == nil && patch.WorkerName == nil &&
				patch.UseSSL == nil && patch.ProfileName == nil {
				return fmt.Errorf("nothing to update: pass at least one of --wallet, --pool, --worker, --ssl, --profile-name")
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ConfigSet(patch)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, "Configuration updated")
				fmt.Fprint(stdout, renderConfigTable(
					resp.Config.WalletAddress,
					resp.Config.PoolURL,
					resp.Config.WorkerName,
					resp.Config.UseSSL,
					resp.Config.ProfileName,
					resp.Config.Path))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&walletFlag, "wallet", "", "Wallet address mining rewards are paid to")
	setCmd.Flags().StringVar(&poolFlag, "pool", "", "Pool endpoint as host:port")
	setCmd.Flags().StringVar(&workerFlag, "worker", "", "Worker name reported to the pool")
	setCmd.Flags().BoolVar(&sslFlag, "ssl", true, "Use TLS for the pool connection")
	setCmd.Flags().StringVar(&profileFlag, "profile-name", "", "Display name for this configuration")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration template if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration at %s\n", store.Path())
			return nil
		},
	}

	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(setCmd)
	configCmd.AddCommand(initCmd)
	return configCmd
}

func renderConfigTable(wallet, pool, worker string, useSSL bool, profileName, path string) string {
	rows := []settingRow{
		{"Wallet", redactWallet(wallet)},
		{"Pool", pool},
		{"Worker", worker},
		{"SSL", yesNo(useSSL)},
		{"Profile", profileName},
		{"Path", path},
	}
	return renderPairs("Setting", "Value", rows, false)
}

// redactWallet keeps enough of the address to recognize it without
// printing the whole thing into scrollback.
func redactWallet(wallet string) string {
	if len(wallet) <= 16 {
		return wallet
	}
	return wallet[:8] + "..." + wallet[len(wallet)-8:]
}
