package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var mentionsJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the mention index",
	Long:  "Annotates every note of the vault and records where each entry is mentioned. The daemon keeps the index current once it exists.",
	RunE:  runIndex,
}

var mentionsCmd = &cobra.Command{
	Use:   "mentions <target>",
	Short: "Show where an entry is mentioned",
	Long:  "Lists the unlinked mentions of an entry. The target is an entry path or any link text resolving to one.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMentions,
}

func init() {
	mentionsCmd.Flags().BoolVar(&mentionsJSON, "json", false, "Print mentions as JSON")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := vaultRoot()
	a, err := openLocal(root)
	if err != nil {
		return fmt.Errorf("cannot index: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := a.IndexMentions(ctx)
	if err != nil {
		return err
	}
	fmt.Print(formatIndexStats(stats))
	return nil
}

func runMentions(cmd *cobra.Command, args []string) error {
	root := vaultRoot()

	var result *socket.MentionsResult
	if client, ok := daemonClient(root); ok {
		r, err := client.Mentions(args[0])
		if err != nil {
			return fmt.Errorf("mentions via daemon: %w", err)
		}
		result = r
	} else {
		a, err := openLocal(root)
		if err != nil {
			return err
		}
		defer a.Close()
		r, err := a.Mentions(args[0])
		if err != nil {
			return err
		}
		result = r
	}

	if mentionsJSON {
		return printJSON(result)
	}
	fmt.Print(formatMentions(result))
	return nil
}
