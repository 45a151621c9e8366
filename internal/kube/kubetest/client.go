// Package kubetest provides an in-memory kube.Client for tests.
package kubetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aonescu/kubelens/internal/kube"
)

type response struct {
	obj any
	err error
}

// Request is one call observed by Client.
type Request struct {
	Path    string
	Options kube.RequestOptions
}

// Client answers requests from canned responses keyed by exact path. Requests
// for unknown paths fail, so tests implicitly assert which paths are used.
type Client struct {
	mu        sync.Mutex
	responses map[string]response
	requests  []Request
}

func New() *Client {
	return &Client{responses: make(map[string]response)}
}

// On makes requests for path decode obj.
func (c *Client) On(path string, obj any) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[path] = response{obj: obj}
	return c
}

// Fail makes requests for path return err.
func (c *Client) Fail(path string, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[path] = response{err: err}
	return c
}

// Requests returns the calls seen so far, in arrival order.
func (c *Client) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// Paths returns the requested paths, in arrival order.
func (c *Client) Paths() []string {
	reqs := c.Requests()
	paths := make([]string, 0, len(reqs))
	for _, r := range reqs {
		paths = append(paths, r.Path)
	}
	return paths
}

func (c *Client) Request(ctx context.Context, path string, into any, opts ...kube.RequestOption) error {
	c.mu.Lock()
	c.requests = append(c.requests, Request{Path: path, Options: kube.BuildOptions(opts...)})
	resp, ok := c.responses[path]
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("kubetest: unexpected request for %q", path)
	}
	if resp.err != nil {
		return resp.err
	}

	// Round-trip through JSON so callers never share memory with the fixture.
	data, err := json.Marshal(resp.obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}
