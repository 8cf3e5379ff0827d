package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-sqlite3"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/corey/vlink/internal/app"
)

// lockedStore names the store a startup error is contending for, or "" when
// err is not lock contention. bbolt gives up after its open timeout; SQLite
// reports busy once its busy timeout expires.
func lockedStore(err error) string {
	if errors.Is(err, bolterrors.ErrTimeout) {
		return "catalog snapshot store (.vlink/vlink.db)"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && (sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked) {
		return "mention index (.vlink/mentions.db)"
	}
	return ""
}

// lockError explains who holds the vault's stores. Every vlink process that
// opens a vault takes both, so the holder is the daemon or another one-shot
// command.
func lockError(root, store string) error {
	if _, up := daemonClient(root); up {
		return fmt.Errorf("%s is held by the running daemon\n"+
			"  → commands normally go through it; retry, or stop it with: vlink daemon stop", store)
	}

	paths := app.NewPaths(root)
	if pid, err := os.ReadFile(paths.PIDFile); err == nil {
		return fmt.Errorf("%s is held by an unresponsive daemon (pid %s)\n"+
			"  → kill it:          kill %s\n"+
			"  → clean up:         rm %s",
			store, strings.TrimSpace(string(pid)), strings.TrimSpace(string(pid)), paths.PIDFile)
	}
	return fmt.Errorf("%s is held by another vlink command (an index run?)\n"+
		"  → wait for it to finish, then retry", store)
}

// openError maps a store lock failure to lockError and passes anything
// else through.
func openError(root string, err error) error {
	if store := lockedStore(err); store != "" {
		return lockError(root, store)
	}
	return err
}
