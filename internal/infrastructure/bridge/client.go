package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Client is the page-side end of the bridge. It correlates responses to requests by id.
type Client struct {
	mu      sync.Mutex
	pending map[string]chan Response
	submit  func(context.Context, Message) error
	timeout time.Duration
	logger  ports.Logger
}

// NewClient builds a client that sends through submit and waits at most timeout per call.
func NewClient(submit func(context.Context, Message) error, timeout time.Duration, logger ports.Logger) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultBridgeTimeout
	}
	return &Client{
		pending: make(map[string]chan Response),
		submit:  submit,
		timeout: timeout,
		logger:  logger,
	}
}

// Call sends msg with a fresh id and waits for its response or the timeout.
func (c *Client) Call(ctx context.Context, msg Message) (Response, error) {
	msg.ID = uuid.NewString()
	ch := make(chan Response, 1)

	c.mu.Lock()
	c.pending[msg.ID] = ch
	c.mu.Unlock()
	defer c.forget(msg.ID)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	if err := c.submit(ctx, msg); err != nil {
		return Response{}, fmt.Errorf("%w: submit: %v", domain.ErrTransport, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-timer.C:
		return Response{}, fmt.Errorf("%w: no bridge response after %s", domain.ErrTimeout, c.timeout)
	case <-ctx.Done():
		return Response{}, fmt.Errorf("%w: %v", domain.ErrTimeout, ctx.Err())
	}
}

// Resolve routes a response to its waiting call. Responses nobody waits for are dropped.
func (c *Client) Resolve(resp Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("late bridge response dropped", map[string]interface{}{"id": resp.ID})
		return
	}
	ch <- resp
}

// Pending reports how many calls are awaiting a response.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
