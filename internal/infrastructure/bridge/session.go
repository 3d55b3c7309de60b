package bridge

import (
	"context"
	"sync/atomic"

	"github.com/doeshing/sns-guardian/internal/domain"
)

// Session scopes bridge use to one pipeline run. At most one call is in flight;
// a concurrent second call fails with ErrBusy instead of waiting.
type Session struct {
	client   *Client
	revision uint64
	busy     atomic.Bool
}

// NewSession starts a session on client. Every message carries revision, the settings
// revision the run was started with.
func NewSession(client *Client, revision uint64) *Session {
	return &Session{client: client, revision: revision}
}

// Analyze requests a risk analysis and decodes the reply.
func (s *Session) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	resp, err := s.call(ctx, Message{Kind: KindAnalysis, Text: req.Text, Context: req.ReplyingTo, Platform: req.Platform})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return DecodeAnalysis(resp.Payload)
}

// DetectPattern requests pattern detection and decodes the reply.
func (s *Session) DetectPattern(ctx context.Context, req domain.PatternRequest) (domain.PatternResult, error) {
	resp, err := s.call(ctx, Message{Kind: KindPattern, Text: req.Text, Context: req.Context, Platform: req.Platform})
	if err != nil {
		return domain.PatternResult{}, err
	}
	return DecodePattern(resp.Payload)
}

func (s *Session) call(ctx context.Context, msg Message) (Response, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Response{}, ErrBusy
	}
	defer s.busy.Store(false)
	msg.Revision = s.revision
	return s.client.Call(ctx, msg)
}
