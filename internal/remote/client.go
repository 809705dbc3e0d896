package remote

import (
	"context"
	"fmt"
	"net/http"
)

// Request is one outbound call.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
}

// Response is the status and body of a completed call.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Client performs outbound calls. Implementations must be safe for
// concurrent use.
type Client interface {
	Call(ctx context.Context, req Request) (Response, error)
}

// TransportError reports a call that produced no response: connection
// refused, timeout, cancelled context or rate limiter refusal.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a completed call with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Check converts a non-2xx response into a *StatusError.
func Check(req Request, resp Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Method: req.Method, URL: req.URL, StatusCode: resp.StatusCode}
	}
	return nil
}
