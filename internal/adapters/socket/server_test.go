package socket

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/vlink/internal/ports"
)

// =============================================================================
// Unix Socket Daemon — JSON-over-socket protocol for annotate, render, catalog,
// rebuild, mentions, health, shutdown
// =============================================================================

// mockQueries implements AppQueries with canned answers.
type mockQueries struct {
	mu        sync.Mutex
	lastParam AnnotateParams
	rebuilds  int
}

func (m *mockQueries) Annotate(p AnnotateParams) (*AnnotateResult, error) {
	m.mu.Lock()
	m.lastParam = p
	m.mu.Unlock()
	if p.Path == "missing.md" {
		return nil, ports.ErrNotFound
	}
	return &AnnotateResult{
		Path:       p.Path,
		Generation: 3,
		Links: []ports.LinkRequest{
			{From: 10, To: 15, Text: "Paris", Target: "Glossary/Paris.md", Suffix: "🔗", Classes: []string{"virtual-link"}},
		},
	}, nil
}

func (m *mockQueries) Render(p RenderParams) (*RenderResult, error) {
	return &RenderResult{HTML: "<p>" + p.HTML + "</p>", Links: 1, Generation: 3}, nil
}

func (m *mockQueries) CatalogInfo() *CatalogResult {
	return &CatalogResult{
		Generation:   3,
		SurfaceCount: 2,
		Entries:      []ports.Entry{{ID: "Glossary/Paris.md", Name: "Paris"}},
	}
}

func (m *mockQueries) Rebuild() (*RebuildResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	if m.rebuilds > 1 {
		return nil, errors.New("catalog source unavailable")
	}
	return &RebuildResult{Generation: 4, EntryCount: 1}, nil
}

func (m *mockQueries) Mentions(target string) (*MentionsResult, error) {
	return &MentionsResult{
		Target:   target,
		Mentions: []ports.Mention{{Source: "Trips.md", Target: target, From: 0, To: 5, Text: "Paris"}},
		Count:    1,
	}, nil
}

func (m *mockQueries) Health() *HealthResult {
	return &HealthResult{Status: "ok", Vault: "/vault", Generation: 3, EntryCount: 1}
}

// testSocketPath returns a unique socket path for a test.
func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func startServer(t *testing.T, q AppQueries) (*Server, *Client) {
	t.Helper()
	sockPath := testSocketPath(t)
	srv := NewServer(q, sockPath)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, NewClient(sockPath)
}

func TestServer_AnnotateRoundtrip(t *testing.T) {
	q := &mockQueries{}
	_, client := startServer(t, q)

	cursor := 12
	text := "Trip to a Paris"
	result, err := client.Annotate(AnnotateParams{
		Path:    "Trips.md",
		Text:    &text,
		Cursor:  &cursor,
		Active:  true,
		Visible: []ports.Range{{From: 0, To: 15}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Trips.md", result.Path)
	assert.Equal(t, uint64(3), result.Generation)
	require.Len(t, result.Links, 1)
	assert.Equal(t, "Glossary/Paris.md", result.Links[0].Target)
	assert.Equal(t, []string{"virtual-link"}, result.Links[0].Classes)

	q.mu.Lock()
	got := q.lastParam
	q.mu.Unlock()
	require.NotNil(t, got.Cursor)
	assert.Equal(t, 12, *got.Cursor)
	assert.True(t, got.Active)
	assert.Equal(t, []ports.Range{{From: 0, To: 15}}, got.Visible)
	require.NotNil(t, got.Text)
	assert.Equal(t, text, *got.Text)

	empty := ""
	_, err = client.Annotate(AnnotateParams{Path: "Trips.md", Text: &empty})
	require.NoError(t, err)
	q.mu.Lock()
	defer q.mu.Unlock()
	require.NotNil(t, q.lastParam.Text, "an empty buffer still travels as text")
	assert.Equal(t, "", *q.lastParam.Text)
}

func TestServer_AnnotateErrors(t *testing.T) {
	_, client := startServer(t, &mockQueries{})

	_, err := client.Annotate(AnnotateParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")

	_, err = client.Annotate(AnnotateParams{Path: "missing.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestServer_RenderCatalogMentions(t *testing.T) {
	_, client := startServer(t, &mockQueries{})

	render, err := client.Render(RenderParams{Path: "a.md", HTML: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Paris</p>", render.HTML)
	assert.Equal(t, 1, render.Links)

	cat, err := client.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 2, cat.SurfaceCount)
	require.Len(t, cat.Entries, 1)
	assert.Equal(t, "Paris", cat.Entries[0].Name)

	mentions, err := client.Mentions("Glossary/Paris.md")
	require.NoError(t, err)
	assert.Equal(t, 1, mentions.Count)
	assert.Equal(t, "Trips.md", mentions.Mentions[0].Source)

	_, err = client.Mentions("")
	assert.Error(t, err)
}

func TestServer_RebuildPropagatesError(t *testing.T) {
	_, client := startServer(t, &mockQueries{})

	result, err := client.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result.Generation)

	_, err = client.Rebuild()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestServer_Health(t *testing.T) {
	_, client := startServer(t, &mockQueries{})

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "/vault", health.Vault)
	assert.Equal(t, 1, health.EntryCount)
	assert.NotEmpty(t, health.Uptime)
}

func TestServer_NilQueries(t *testing.T) {
	_, client := startServer(t, nil)

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	_, err = client.Catalog()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog not available")
}

func TestServer_InvalidJSONAndUnknownMethod(t *testing.T) {
	srv, client := startServer(t, &mockQueries{})

	conn, err := net.Dial("unix", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "invalid request JSON")

	var out struct{}
	err = client.do("frobnicate", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method: frobnicate")
}

func TestServer_Shutdown(t *testing.T) {
	sockPath := testSocketPath(t)
	srv := NewServer(&mockQueries{}, sockPath)
	require.NoError(t, srv.Start())

	client := NewClient(sockPath)
	assert.True(t, client.Ping())

	require.NoError(t, client.Shutdown())

	select {
	case <-srv.ShutdownCh():
	default:
		t.Fatal("ShutdownCh should be closed after Shutdown request")
	}

	srv.Stop()
	srv.Stop()

	_, err := os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err), "socket file should be removed after shutdown")
	assert.False(t, client.Ping())
}

func TestServer_ConcurrentClients(t *testing.T) {
	srv, _ := startServer(t, &mockQueries{})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := NewClient(srv.Addr())
			for j := 0; j < 10; j++ {
				result, err := client.Annotate(AnnotateParams{Path: "Trips.md"})
				if err != nil {
					errs <- err
					return
				}
				if len(result.Links) != 1 {
					errs <- assert.AnError
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent client error: %v", err)
	}
}

func TestServer_StaleSocket(t *testing.T) {
	sockPath := testSocketPath(t)
	require.NoError(t, os.WriteFile(sockPath, []byte("stale"), 0600))

	srv := NewServer(&mockQueries{}, sockPath)
	require.NoError(t, srv.Start(), "should replace stale socket")
	defer srv.Stop()

	health, err := NewClient(sockPath).Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestServer_AlreadyRunning(t *testing.T) {
	srv, _ := startServer(t, &mockQueries{})

	second := NewServer(&mockQueries{}, srv.Addr())
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestSocketPath_PerVault(t *testing.T) {
	a := SocketPath("/home/u/vault-a")
	b := SocketPath("/home/u/vault-b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, SocketPath("/home/u/vault-a"))
	assert.Regexp(t, `^/tmp/vlink-[0-9a-f]{12}\.sock$`, a)
}
