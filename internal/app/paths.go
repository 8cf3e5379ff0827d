package app

import (
	"os"
	"path/filepath"

	"github.com/corey/vlink/internal/config"
)

// Paths holds all resolved filesystem paths for the vault's .vlink/ directory.
type Paths struct {
	Root       string // .vlink/
	Config     string // .vlink/config.yaml
	DB         string // .vlink/vlink.db (catalog snapshots)
	MentionsDB string // .vlink/mentions.db

	LogDir    string // .vlink/log/
	DaemonLog string // .vlink/log/daemon.log

	PIDFile  string // .vlink/daemon.pid
	PortFile string // .vlink/http.port
}

// NewPaths constructs all resolved paths from a vault root directory.
func NewPaths(vaultRoot string) *Paths {
	root := filepath.Join(vaultRoot, ".vlink")
	return &Paths{
		Root:       root,
		Config:     filepath.Join(root, config.FileName),
		DB:         filepath.Join(root, "vlink.db"),
		MentionsDB: filepath.Join(root, "mentions.db"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		PIDFile:  filepath.Join(root, "daemon.pid"),
		PortFile: filepath.Join(root, "http.port"),
	}
}

// EnsureDirs creates .vlink/ and its subdirectories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
