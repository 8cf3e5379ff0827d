package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/vlink/internal/config"
)

// =============================================================================
// Static linker — rendered HTML annotation
// Expectation: mentions in prose elements become virtual link spans; code,
// existing links and (optionally) headings are left alone; one snapshot is
// used for the whole render.
// =============================================================================

func newTestStatic(t *testing.T, s config.Settings) *StaticLinker {
	t.Helper()
	c, _ := newTestCache(t, glossary(), s)
	return NewStaticLinker(c.Snapshot(), s)
}

func TestStatic_RenderHTML(t *testing.T) {
	st := newTestStatic(t, config.Default())
	assert.Equal(t, uint64(1), st.Generation())

	out, stats, err := st.RenderHTML("Notes/trip.md", "<p>Paris is in France.</p>")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Links)
	assert.Equal(t, 1, stats.TextNodes)

	assert.Contains(t, out, `<span class="glossary-entry virtual-link virtual-link-default">`)
	assert.Contains(t, out, `data-href="Glossary/Paris.md"`)
	assert.Contains(t, out, `data-href="Glossary/France.md"`)
	assert.Contains(t, out, `class="internal-link virtual-link-a"`)
	assert.Contains(t, out, `<sup class="linker-suffix-icon">🔗</sup>`)
	assert.Contains(t, out, " is in ")
	assert.True(t, strings.HasPrefix(out, "<p>"))
	assert.True(t, strings.HasSuffix(out, ".</p>"))
}

func TestStatic_SkipsCodeAndLinks(t *testing.T) {
	st := newTestStatic(t, config.Default())

	out, stats, err := st.RenderHTML("Notes/trip.md", "<p><code>Paris</code> and <code>France</code></p><pre>Paris</pre>")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Links)
	assert.NotContains(t, out, "virtual-link")
}

func TestStatic_ExistingLinkSuppressesTarget(t *testing.T) {
	st := newTestStatic(t, config.Default())

	out, stats, err := st.RenderHTML("Notes/trip.md",
		`<p><a class="internal-link" data-href="Paris" href="Paris">Paris</a> is lovely. Paris again, and France.</p>`)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Links)
	assert.Contains(t, out, `data-href="Glossary/France.md"`)
	assert.NotContains(t, out, `data-href="Glossary/Paris.md"`)
}

func TestStatic_OnlyLinkOnceAcrossDocument(t *testing.T) {
	st := newTestStatic(t, config.Default())
	_, stats, err := st.RenderHTML("Notes/trip.md", "<p>Paris</p><ul><li>Paris</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Links)

	s := config.Default()
	s.OnlyLinkOnce = false
	st = newTestStatic(t, s)
	_, stats, err = st.RenderHTML("Notes/trip.md", "<p>Paris</p><ul><li>Paris</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Links)
}

func TestStatic_Headings(t *testing.T) {
	st := newTestStatic(t, config.Default())
	_, stats, err := st.RenderHTML("Notes/trip.md", "<h2>Paris</h2>")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Links)

	s := config.Default()
	s.IncludeHeaders = false
	st = newTestStatic(t, s)
	out, stats, err := st.RenderHTML("Notes/trip.md", "<h2>Paris</h2>")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Links)
	assert.Equal(t, "<h2>Paris</h2>", out)
}

func TestStatic_OwnNote(t *testing.T) {
	st := newTestStatic(t, config.Default())
	out, stats, err := st.RenderHTML("Glossary/Paris.md", "<p>Paris and France</p>")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Links)
	assert.NotContains(t, out, `data-href="Glossary/Paris.md"`)
}

func TestStatic_OwnNoteScopedGlossary(t *testing.T) {
	// A scoped glossary never links a note to itself, even when the general
	// own-note switch is off.
	s := config.Default()
	s.IncludeAllFiles = false
	s.ExcludeLinksToOwnNote = false
	st := newTestStatic(t, s)
	assert.Len(t, st.AnnotateText("Glossary/Paris.md", "Paris and France"), 1)

	s.IncludeAllFiles = true
	st = newTestStatic(t, s)
	assert.Len(t, st.AnnotateText("Glossary/Paris.md", "Paris and France"), 2)
}

func TestStatic_AnnotateText(t *testing.T) {
	st := newTestStatic(t, config.Default())
	anns := st.AnnotateText("Notes/trip.md", "The French Republic borders Paris")
	require.Len(t, anns, 2)
	assert.Equal(t, "Glossary/France.md", anns[0].EntryID)
	assert.True(t, anns[0].IsAlias)
	assert.Equal(t, "Glossary/Paris.md", anns[1].EntryID)
}

func TestStatic_Deactivated(t *testing.T) {
	s := config.Default()
	s.LinkerActivated = false
	st := newTestStatic(t, s)

	out, stats, err := st.RenderHTML("Notes/trip.md", "<p>Paris</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>Paris</p>", out)
	assert.Zero(t, stats.Links)
	assert.Nil(t, st.AnnotateText("Notes/trip.md", "Paris"))
}

func TestStatic_NoSnapshot(t *testing.T) {
	st := NewStaticLinker(nil, config.Default())
	assert.Equal(t, uint64(0), st.Generation())
	_, _, err := st.RenderHTML("Notes/trip.md", "<p>Paris</p>")
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Nil(t, st.AnnotateText("Notes/trip.md", "Paris"))
}
