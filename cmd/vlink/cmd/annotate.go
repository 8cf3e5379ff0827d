package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	annotateCursor int
	annotateActive bool
	annotateJSON   bool
	annotateStdin  bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "List the virtual links of a note",
	Long:  "Annotates a markdown note the way the editor draws it. Uses the daemon when it is running.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().IntVar(&annotateCursor, "cursor", -1, "Caret byte offset (default: no caret)")
	annotateCmd.Flags().BoolVar(&annotateActive, "active", false, "Treat the view as focused")
	annotateCmd.Flags().BoolVar(&annotateJSON, "json", false, "Print link requests as JSON")
	annotateCmd.Flags().BoolVar(&annotateStdin, "stdin", false, "Annotate the buffer read from stdin instead of the saved file")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	root := vaultRoot()
	params := socket.AnnotateParams{Path: vaultRel(root, args[0]), Active: annotateActive}
	if annotateCursor >= 0 {
		params.Cursor = &annotateCursor
	}
	if annotateStdin {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text := string(buf)
		params.Text = &text
	}

	var result *socket.AnnotateResult
	if client, ok := daemonClient(root); ok {
		r, err := client.Annotate(params)
		if err != nil {
			return fmt.Errorf("annotate via daemon: %w", err)
		}
		result = r
	} else {
		a, err := openLocal(root)
		if err != nil {
			return err
		}
		defer a.Close()
		r, err := a.Annotate(params)
		if err != nil {
			return err
		}
		result = r
	}

	if annotateJSON {
		return printJSON(result)
	}
	fmt.Print(formatAnnotate(result))
	return nil
}
