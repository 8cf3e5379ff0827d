package socket

import (
	"crypto/sha256"
	"fmt"

	"github.com/corey/vlink/internal/ports"
)

// SocketPath computes the Unix socket path for a vault root.
// Uses /tmp/vlink-{sha256(root)[:12]}.sock for per-vault isolation.
func SocketPath(vaultRoot string) string {
	h := sha256.Sum256([]byte(vaultRoot))
	return fmt.Sprintf("/tmp/vlink-%x.sock", h[:6])
}

// Method names for the JSON-over-socket protocol.
const (
	MethodAnnotate = "annotate"
	MethodRender   = "render"
	MethodCatalog  = "catalog"
	MethodRebuild  = "rebuild"
	MethodHealth   = "health"
	MethodMentions = "mentions"
	MethodShutdown = "shutdown"
)

// Request is a JSON-RPC-style request sent over the socket.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is a JSON-RPC-style response sent back over the socket.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// AnnotateParams asks for the virtual links of one markdown document.
// A nil Text means "read the document from the vault"; a non-nil one is the
// unsaved buffer, possibly empty. A nil Cursor disables the cursor
// post-filter. Empty Visible means the whole document.
type AnnotateParams struct {
	Path    string        `json:"path"`
	Text    *string       `json:"text,omitempty"`
	Cursor  *int          `json:"cursor,omitempty"`
	Active  bool          `json:"active,omitempty"`
	Visible []ports.Range `json:"visible,omitempty"`
}

// AnnotateResult holds the link requests for one document.
type AnnotateResult struct {
	Path       string              `json:"path"`
	Generation uint64              `json:"generation"`
	Links      []ports.LinkRequest `json:"links"`
	ElapsedUs  int64               `json:"elapsed_us"`
}

// RenderParams asks for an HTML fragment with virtual links inserted.
// With Readable set, HTML is a full web page and its article body is
// extracted first; URL resolves the page's relative links.
type RenderParams struct {
	Path     string `json:"path"`
	HTML     string `json:"html"`
	Readable bool   `json:"readable,omitempty"`
	URL      string `json:"url,omitempty"`
}

// RenderResult is the rewritten fragment.
type RenderResult struct {
	HTML       string `json:"html"`
	Title      string `json:"title,omitempty"`
	Links      int    `json:"links"`
	Generation uint64 `json:"generation"`
}

// CatalogResult describes the current catalog snapshot.
type CatalogResult struct {
	Generation   uint64        `json:"generation"`
	BuiltAt      int64         `json:"built_at"`
	SurfaceCount int           `json:"surface_count"`
	Entries      []ports.Entry `json:"entries"`
}

// RebuildResult reports a forced catalog rebuild.
type RebuildResult struct {
	Generation uint64 `json:"generation"`
	EntryCount int    `json:"entry_count"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

// HealthResult is the response for a health check.
type HealthResult struct {
	Status     string `json:"status"`
	Vault      string `json:"vault"`
	Generation uint64 `json:"generation"`
	EntryCount int    `json:"entry_count"`
	Uptime     string `json:"uptime"`
}

// MentionsParams selects the entry whose mentions are listed.
type MentionsParams struct {
	Target string `json:"target"`
}

// MentionsResult lists every recorded mention of one entry.
type MentionsResult struct {
	Target   string          `json:"target"`
	Mentions []ports.Mention `json:"mentions"`
	Count    int             `json:"count"`
}
