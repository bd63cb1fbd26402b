package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modoterra/cursorboost/pkg/daemon/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the cursorboostd systemd user service",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start cursorboostd as a systemd user service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		u := service.Unit{EnvFile: service.DefaultEnvFile()}
		if _, err := os.Stat(configPath); err == nil {
			abs, err := filepath.Abs(configPath)
			if err != nil {
				return err
			}
			u.ConfigPath = abs
			// Relative output paths in the config resolve from here.
			u.WorkDir = filepath.Dir(abs)
		}
		if err := service.Install(u); err != nil {
			return err
		}
		unitPath, _ := service.UnitPath()
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", unitPath)
		if u.EnvFile != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "put API keys in %s\n", u.EnvFile)
		}
		return nil
	},
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the systemd user service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := service.Uninstall(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "service removed")
		return nil
	},
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show socket and systemd service state",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), service.Status(cmd.Context(), loadConfig(cmd).Socket))
	},
}

func init() {
	serviceCmd.AddCommand(serviceInstallCmd)
	serviceCmd.AddCommand(serviceUninstallCmd)
	serviceCmd.AddCommand(serviceStatusCmd)
}
