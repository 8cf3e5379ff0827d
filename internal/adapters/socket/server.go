package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// AppQueries provides access to app state for server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	Annotate(params AnnotateParams) (*AnnotateResult, error)
	Render(params RenderParams) (*RenderResult, error)
	CatalogInfo() *CatalogResult
	Rebuild() (*RebuildResult, error)
	Mentions(target string) (*MentionsResult, error)
	Health() *HealthResult
}

// Server is the daemon that listens on a Unix socket and serves link requests.
type Server struct {
	queries  AppQueries
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server answering from queries.
func NewServer(queries AppQueries, sockPath string) *Server {
	return &Server{
		queries:    queries,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first: if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener, waits for open connections and removes the socket
// file. Idempotent (remote shutdown followed by a signal calls it twice).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine selects on it alongside OS signals.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 8*1024*1024) // documents can be large

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodHealth:
		return s.handleHealth(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	}

	if s.queries == nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("%s not available", req.Method)}
	}

	switch req.Method {
	case MethodAnnotate:
		return s.handleAnnotate(req)
	case MethodRender:
		return s.handleRender(req)
	case MethodCatalog:
		return Response{ID: req.ID, Result: s.queries.CatalogInfo()}
	case MethodRebuild:
		return s.handleRebuild(req)
	case MethodMentions:
		return s.handleMentions(req)
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the generic params map into a typed struct.
func decodeParams(raw interface{}, dst interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (s *Server) handleAnnotate(req Request) Response {
	var params AnnotateParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid annotate params"}
	}
	if params.Path == "" {
		return Response{ID: req.ID, Error: "annotate: path is required"}
	}
	result, err := s.queries.Annotate(params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleRender(req Request) Response {
	var params RenderParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid render params"}
	}
	result, err := s.queries.Render(params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleRebuild(req Request) Response {
	result, err := s.queries.Rebuild()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleMentions(req Request) Response {
	var params MentionsParams
	if err := decodeParams(req.Params, &params); err != nil || params.Target == "" {
		return Response{ID: req.ID, Error: "invalid mentions params"}
	}
	result, err := s.queries.Mentions(params.Target)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleHealth(req Request) Response {
	result := &HealthResult{Status: "ok"}
	if s.queries != nil {
		result = s.queries.Health()
	}
	result.Uptime = time.Since(s.started).Round(time.Second).String()
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
