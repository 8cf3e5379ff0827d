package cmd

import (
	"fmt"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the linkable entries",
	RunE:  runCatalog,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog now",
	Long:  "Forces a catalog rebuild in the running daemon, or builds one locally and persists it.",
	RunE:  runRebuild,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print entries as JSON")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	root := vaultRoot()

	var result *socket.CatalogResult
	if client, ok := daemonClient(root); ok {
		r, err := client.Catalog()
		if err != nil {
			return fmt.Errorf("catalog via daemon: %w", err)
		}
		result = r
	} else {
		a, err := openLocal(root)
		if err != nil {
			return err
		}
		defer a.Close()
		result = a.CatalogInfo()
	}

	if catalogJSON {
		return printJSON(result)
	}
	fmt.Print(formatCatalog(result))
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := vaultRoot()

	var result *socket.RebuildResult
	if client, ok := daemonClient(root); ok {
		fmt.Println("⚡ Daemon running — delegating rebuild...")
		r, err := client.Rebuild()
		if err != nil {
			return fmt.Errorf("rebuild via daemon: %w", err)
		}
		result = r
	} else {
		a, err := openLocal(root)
		if err != nil {
			return err
		}
		defer a.Close()
		r, err := a.Rebuild()
		if err != nil {
			return err
		}
		result = r
	}

	fmt.Printf("⚡ vlink catalog: %d entries, generation %d (%dms)\n",
		result.EntryCount, result.Generation, result.ElapsedMs)
	return nil
}
