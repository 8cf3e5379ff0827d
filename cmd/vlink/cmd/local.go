package cmd

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/app"
)

// daemonClient returns a client for the vault's daemon and whether it is up.
func daemonClient(root string) (*socket.Client, bool) {
	client := socket.NewClient(socket.SocketPath(root))
	return client, client.Ping()
}

// openLocal builds a one-shot app over the vault. The caller closes it.
func openLocal(root string) (*app.App, error) {
	a, err := app.New(app.Config{VaultRoot: root, Logger: slog.Default()})
	if err != nil {
		return nil, openError(root, err)
	}
	return a, nil
}

// vaultRel converts a document argument to its vault-relative form. Paths
// that resolve inside the vault from the working directory are converted;
// anything else is taken as already vault-relative.
func vaultRel(root, arg string) string {
	abs, err := filepath.Abs(arg)
	if err == nil {
		if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(strings.TrimPrefix(arg, "./"))
}
