package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onyxminer/internal/ipc"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show host CPU and memory facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SystemInfo()
				if err != nil {
					return err
				}
				sys := resp.System

				rows := []settingRow{
					{"CPU Model", sys.CPU.ModelName},
					{"Logical Cores", strconv.Itoa(sys.CPU.LogicalCores)},
					{"Physical Cores", strconv.Itoa(sys.CPU.PhysicalCores)},
					{"CPU Usage", fmt.Sprintf("%.1f%%", sys.CPU.UsagePercent)},
					{"Load Avg", fmt.Sprintf("%.2f / %.2f / %.2f", sys.CPU.Load1, sys.CPU.Load5, sys.CPU.Load15)},
					{"Memory Total", fmt.Sprintf("%d MB", sys.Memory.TotalMB)},
					{"Memory Available", fmt.Sprintf("%d MB", sys.Memory.AvailableMB)},
					{"Memory Used", fmt.Sprintf("%.1f%%", sys.Memory.UsedPercent)},
				}
				fmt.Fprint(stdout, renderPairs("Resource", "Value", rows, true))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
}
