package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client connects to the vlink daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Annotate asks the daemon for the virtual links of one document.
func (c *Client) Annotate(params AnnotateParams) (*AnnotateResult, error) {
	var result AnnotateResult
	if err := c.do(MethodAnnotate, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Render asks the daemon to rewrite an HTML fragment.
func (c *Client) Render(params RenderParams) (*RenderResult, error) {
	var result RenderResult
	if err := c.do(MethodRender, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Catalog fetches the daemon's current catalog.
func (c *Client) Catalog() (*CatalogResult, error) {
	var result CatalogResult
	if err := c.do(MethodCatalog, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rebuild forces a synchronous catalog rebuild.
func (c *Client) Rebuild() (*RebuildResult, error) {
	var result RebuildResult
	if err := c.doWithTimeout(MethodRebuild, nil, &result, 30*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Mentions lists the recorded mentions of target.
func (c *Client) Mentions(target string) (*MentionsResult, error) {
	var result MentionsResult
	if err := c.do(MethodMentions, MentionsParams{Target: target}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: uuid.NewString(), Method: MethodShutdown})
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) do(method string, params, out interface{}) error {
	return c.doWithTimeout(method, params, out, 5*time.Second)
}

func (c *Client) doWithTimeout(method string, params, out interface{}, timeout time.Duration) error {
	id := uuid.NewString()
	resp, err := c.callWithTimeout(Request{ID: id, Method: method, Params: params}, timeout)
	if err != nil {
		return err
	}
	if resp.ID != id {
		return fmt.Errorf("response id mismatch: sent %s, got %s", id, resp.ID)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 8*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
