// Package fakeremote is an in-memory remote.Client that records every call
// and answers from a per-endpoint script.
package fakeremote

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
)

var ErrUnreachable = errors.New("fakeremote: endpoint unreachable")

type Call struct {
	Method string
	URL    string
	Body   []byte
}

type reply struct {
	status int
	body   []byte
	fail   bool
}

// Client answers 200 with an empty body unless an endpoint is scripted.
type Client struct {
	mu      sync.Mutex
	calls   []Call
	replies map[string]reply
}

func New() *Client {
	return &Client{replies: make(map[string]reply)}
}

func key(method, url string) string {
	return strings.ToUpper(method) + " " + url
}

// Respond scripts a status and body for method and url.
func (c *Client) Respond(method, url string, status int, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[key(method, url)] = reply{status: status, body: body}
}

// Fail makes method and url return a transport error.
func (c *Client) Fail(method, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[key(method, url)] = reply{fail: true}
}

// Reset drops the script for method and url.
func (c *Client) Reset(method, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.replies, key(method, url))
}

func (c *Client) Call(ctx context.Context, req remote.Request) (remote.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{
		Method: strings.ToUpper(req.Method),
		URL:    req.URL,
		Body:   append([]byte(nil), req.Body...),
	})
	r, ok := c.replies[key(req.Method, req.URL)]
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return remote.Response{}, &remote.TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	if !ok {
		return remote.Response{StatusCode: 200}, nil
	}
	if r.fail {
		return remote.Response{}, &remote.TransportError{Method: req.Method, URL: req.URL, Err: ErrUnreachable}
	}
	return remote.Response{StatusCode: r.status, Body: r.body}, nil
}

// Calls returns every recorded call in order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsTo returns recorded calls matching method and url.
func (c *Client) CallsTo(method, url string) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if call.Method == strings.ToUpper(method) && call.URL == url {
			out = append(out, call)
		}
	}
	return out
}

// Clear forgets recorded calls but keeps the script.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
