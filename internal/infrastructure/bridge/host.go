package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Completer is the privileged LLM client.
type Completer interface {
	Analysis(ctx context.Context, text, replyingTo string) (string, error)
	Pattern(ctx context.Context, text, conversation, platform string) (string, error)
}

// Resolver returns the completer bound to a settings revision, so a run keeps the model,
// key and endpoint it started with across a reload.
type Resolver interface {
	CompleterFor(revision uint64) (Completer, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(revision uint64) (Completer, error)

// CompleterFor implements Resolver.
func (f ResolverFunc) CompleterFor(revision uint64) (Completer, error) {
	return f(revision)
}

// Fixed resolves every revision to completer. A nil completer means no credential.
func Fixed(completer Completer) Resolver {
	return ResolverFunc(func(uint64) (Completer, error) {
		if completer == nil {
			return nil, fmt.Errorf("%w: llm credential not configured", domain.ErrConfig)
		}
		return completer, nil
	})
}

// Host receives messages from the page side, performs the LLM call off the page loop and
// hands exactly one Response to deliver per message.
type Host struct {
	resolver Resolver
	deliver  func(Response)
	inbox    chan Message
	logger   ports.Logger
	wg       sync.WaitGroup
}

// NewHost builds a host. Each message is answered by the completer resolver returns for
// the message's revision; a resolver error becomes an error marker.
func NewHost(resolver Resolver, deliver func(Response), logger ports.Logger) *Host {
	return &Host{
		resolver: resolver,
		deliver:  deliver,
		inbox:    make(chan Message, 16),
		logger:   logger,
	}
}

// Submit hands msg to the host. It blocks only if the inbox is full.
func (h *Host) Submit(ctx context.Context, msg Message) error {
	select {
	case h.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves the inbox until ctx is done. Each message is handled on its own goroutine.
func (h *Host) Run(ctx context.Context) {
	defer h.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.inbox:
			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				h.deliver(h.handle(ctx, msg))
			}()
		}
	}
}

func (h *Host) handle(ctx context.Context, msg Message) Response {
	completer, err := h.resolver.CompleterFor(msg.Revision)
	if err != nil {
		return Response{ID: msg.ID, Payload: errorPayload(statusFor(err), err.Error())}
	}

	var out string
	switch msg.Kind {
	case KindAnalysis:
		out, err = completer.Analysis(ctx, msg.Text, msg.Context)
	case KindPattern:
		out, err = completer.Pattern(ctx, msg.Text, msg.Context, msg.Platform)
	default:
		return Response{ID: msg.ID, Payload: errorPayload(http.StatusBadRequest, "unknown kind "+string(msg.Kind))}
	}
	if err != nil {
		h.logger.Warn("bridge llm call failed", map[string]interface{}{
			"id":   msg.ID,
			"kind": msg.Kind,
			"err":  domain.ClassifyError(err),
		})
		return Response{ID: msg.ID, Payload: errorPayload(statusFor(err), err.Error())}
	}

	if json.Valid([]byte(out)) {
		return Response{ID: msg.ID, Payload: json.RawMessage(out)}
	}
	// Non-JSON model text travels as a JSON string so the payload stays well formed.
	quoted, _ := json.Marshal(out)
	return Response{ID: msg.ID, Payload: quoted}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrConfig):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
