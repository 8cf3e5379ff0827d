package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/app"
	"github.com/spf13/cobra"
)

var daemonHTTPPort int

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the vlink daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long:  "Runs in the foreground: watches the vault, serves the socket and the HTTP API until interrupted.",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().IntVar(&daemonHTTPPort, "http-port", 0, "HTTP API port (default: derived from the vault path)")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := vaultRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create .vlink dirs: %w", err)
	}
	logFile, err := os.OpenFile(paths.DaemonLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	var out io.Writer = logFile
	if verboseFlag {
		out = io.MultiWriter(logFile, os.Stderr)
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	a, err := app.New(app.Config{VaultRoot: root, HTTPPort: daemonHTTPPort, Logger: log})
	if err != nil {
		if store := lockedStore(err); store != "" {
			return fmt.Errorf("cannot start: %w", lockError(root, store))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Close()
		return err
	}
	os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644)
	defer os.Remove(paths.PIDFile)

	fmt.Printf("⚡ vlink daemon started at %s\n", sockPath)
	if url := a.WebServer.URL(); a.WebServer.Port() != 0 {
		fmt.Printf("⚡ HTTP API at %s\n", url)
	}

	// Wait for a signal or a shutdown request over the socket.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := vaultRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}
