package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	renderDoc      string
	renderReadable bool
	renderURL      string
	renderOutput   string
)

var renderCmd = &cobra.Command{
	Use:   "render <html-file|->",
	Short: "Insert virtual links into rendered HTML",
	Long: "Reads an HTML fragment (or, with --readable, a full web page) and writes it back\n" +
		"with virtual links inserted. Uses the daemon when it is running.",
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderDoc, "doc", "", "Vault-relative note the HTML was rendered from")
	renderCmd.Flags().BoolVar(&renderReadable, "readable", false, "Extract the article body of a full page first")
	renderCmd.Flags().StringVar(&renderURL, "url", "", "Page URL, for resolving relative links with --readable")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write to file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	root := vaultRoot()

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	params := socket.RenderParams{HTML: string(data), Readable: renderReadable, URL: renderURL}
	if renderDoc != "" {
		params.Path = vaultRel(root, renderDoc)
	}

	var result *socket.RenderResult
	if client, ok := daemonClient(root); ok {
		r, err := client.Render(params)
		if err != nil {
			return fmt.Errorf("render via daemon: %w", err)
		}
		result = r
	} else {
		a, err := openLocal(root)
		if err != nil {
			return err
		}
		defer a.Close()
		r, err := a.Render(params)
		if err != nil {
			return err
		}
		result = r
	}

	if renderOutput != "" {
		if err := os.WriteFile(renderOutput, []byte(result.HTML), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "⚡ %d links → %s\n", result.Links, renderOutput)
		return nil
	}
	fmt.Println(result.HTML)
	return nil
}
