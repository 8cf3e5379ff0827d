package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/app"
	"github.com/corey/vlink/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows vault root, store paths, socket path, daemon status and the effective settings. No daemon required.",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := vaultRoot()
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ vlink config%s\n", colorBold, colorReset)
	fmt.Printf("  Vault:      %s\n", root)
	fmt.Printf("  Vault ID:   %s\n", app.VaultID(root))
	fmt.Printf("  Settings:   %s\n", paths.Config)
	fmt.Printf("  Snapshots:  %s\n", paths.DB)
	fmt.Printf("  Mentions:   %s\n", paths.MentionsDB)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  HTTP API:   http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}

	settings, err := config.Load(paths.Config)
	if err != nil {
		fmt.Printf("  %s%v%s\n", colorYellow, err, colorReset)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s# effective settings%s\n%s", colorGray, colorReset, data)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(vaultRoot())
	if _, err := os.Stat(paths.Config); err == nil {
		fmt.Printf("⚡ %s already exists\n", paths.Config)
		return nil
	}
	if err := config.Save(paths.Config, config.Default()); err != nil {
		return err
	}
	fmt.Printf("⚡ wrote %s\n", paths.Config)
	return nil
}
