package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/app"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatAnnotate formats an AnnotateResult for terminal display.
//
//	⚡ 2 links │ gen 3 │ 41µs
//	  12-17  Paris → Glossary/Paris.md
//	  30-45  French Republic → Glossary/France.md  alias
func formatAnnotate(result *socket.AnnotateResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d links%s │ %s │ gen %d │ %dµs\n",
		colorBold, len(result.Links), colorReset, result.Path, result.Generation, result.ElapsedUs))

	for _, l := range result.Links {
		sb.WriteString(fmt.Sprintf("  %s%d-%d%s  %s → %s%s%s",
			colorGray, l.From, l.To, colorReset,
			l.Text, colorCyan, l.Target, colorReset))
		if l.IsAlias {
			sb.WriteString(fmt.Sprintf("  %salias%s", colorMagenta, colorReset))
		}
		if l.IsSubWord {
			sb.WriteString(fmt.Sprintf("  %ssub-word%s", colorYellow, colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatCatalog formats a CatalogResult for terminal display.
func formatCatalog(result *socket.CatalogResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d entries%s │ %d surfaces │ gen %d\n",
		colorBold, len(result.Entries), colorReset, result.SurfaceCount, result.Generation))
	for _, e := range result.Entries {
		sb.WriteString(fmt.Sprintf("  %s%s%s  %s", colorCyan, e.ID, colorReset, e.Name))
		if len(e.Aliases) > 0 {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorMagenta, strings.Join(e.Aliases, ", "), colorReset))
		}
		if e.CaseSensitive {
			sb.WriteString(fmt.Sprintf("  %smatch-case%s", colorYellow, colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatMentions formats a MentionsResult for terminal display.
func formatMentions(result *socket.MentionsResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d mentions%s of %s%s%s\n",
		colorBold, result.Count, colorReset, colorCyan, result.Target, colorReset))
	for _, m := range result.Mentions {
		sb.WriteString(fmt.Sprintf("  %s%s%s:%d-%d  %s%s%s\n",
			colorCyan, m.Source, colorReset, m.From, m.To, colorGray, m.Text, colorReset))
	}
	return sb.String()
}

// formatIndexStats formats one mention indexing pass.
func formatIndexStats(s app.IndexStats) string {
	out := fmt.Sprintf("⚡ vlink indexed %d documents, %d mentions (%dms)",
		s.Documents, s.Mentions, s.Elapsed.Milliseconds())
	if s.Pruned > 0 {
		out += fmt.Sprintf(", pruned %d", s.Pruned)
	}
	if s.Failed > 0 {
		out += fmt.Sprintf(" %s%d failed%s", colorYellow, s.Failed, colorReset)
	}
	return out + "\n"
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ vlink daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:      %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Vault:       %s\n", h.Vault))
	sb.WriteString(fmt.Sprintf("  Generation:  %d\n", h.Generation))
	sb.WriteString(fmt.Sprintf("  Entries:     %d\n", h.EntryCount))
	sb.WriteString(fmt.Sprintf("  Uptime:      %s\n", h.Uptime))
	return sb.String()
}
