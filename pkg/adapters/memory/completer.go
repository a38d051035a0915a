package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/architect/pkg/ports"
)

// ErrScriptExhausted is returned when a Completer runs out of scripted responses.
var ErrScriptExhausted = errors.New("memory: no scripted response left")

// Response is one scripted model answer.
type Response struct {
	Text  string
	Err   error
	Delay time.Duration
}

// Text scripts a successful answer.
func Text(s string) Response { return Response{Text: s} }

// Fail scripts a failed call.
func Fail(err error) Response { return Response{Err: err} }

// CompleterFunc adapts a function to ports.Completer.
type CompleterFunc func(ctx context.Context, req ports.CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	return f(ctx, req)
}

// Completer is a scripted ports.Completer. Responses are consumed in order,
// across models. Every request is recorded.
type Completer struct {
	mu        sync.Mutex
	responses []Response
	calls     []ports.CompletionRequest
}

// NewCompleter creates a Completer that answers with responses in order.
func NewCompleter(responses ...Response) *Completer {
	return &Completer{responses: responses}
}

// Push appends scripted responses.
func (c *Completer) Push(responses ...Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responses...)
}

// Complete records req and returns the next scripted response.
func (c *Completer) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	if len(c.responses) == 0 {
		c.mu.Unlock()
		return "", ErrScriptExhausted
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	c.mu.Unlock()

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return resp.Text, resp.Err
}

// Calls returns a copy of the recorded requests.
func (c *Completer) Calls() []ports.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.CompletionRequest(nil), c.calls...)
}
