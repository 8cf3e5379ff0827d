package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	vaultFlag   string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "vlink",
	Short: "vlink — virtual links for markdown vaults",
	Long:  "Finds mentions of glossary notes in markdown documents and renders them as links, without touching the files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verboseFlag {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

// vaultRoot returns the vault root (--vault, else cwd).
func vaultRoot() string {
	dir := vaultFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return abs
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(mentionsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(configCmd)
}
