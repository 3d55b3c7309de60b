package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/bridge"
	"github.com/doeshing/sns-guardian/internal/infrastructure/config"
	"github.com/doeshing/sns-guardian/internal/infrastructure/llm"
)

// maxCachedClients bounds the LLM clients kept across reloads.
const maxCachedClients = 8

// settingsCompleters resolves the LLM client for a settings revision. A run is bound to
// the revision it snapshotted, so a reload never changes the model, key or endpoint
// under an in-flight call.
type settingsCompleters struct {
	store *config.Store

	mu      sync.Mutex
	clients map[llm.Config]*llm.Client
}

func newSettingsCompleters(store *config.Store) *settingsCompleters {
	return &settingsCompleters{store: store, clients: make(map[llm.Config]*llm.Client)}
}

// CompleterFor implements bridge.Resolver.
func (c *settingsCompleters) CompleterFor(revision uint64) (bridge.Completer, error) {
	settings, ok := c.store.SettingsAt(revision)
	if !ok {
		return nil, fmt.Errorf("%w: settings revision %d no longer available", domain.ErrConfig, revision)
	}
	client, err := c.client(llm.Config{
		APIKey:  settings.LLMAPIKey,
		Model:   settings.LLMModel,
		BaseURL: settings.LLMBaseURL,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Current resolves the completer for the settings installed right now.
func (c *settingsCompleters) Current() (bridge.Completer, error) {
	return c.CompleterFor(c.store.Settings().Revision)
}

func (c *settingsCompleters) client(want llm.Config) (*llm.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[want]; ok {
		return client, nil
	}
	client, err := llm.NewClient(want)
	if err != nil {
		return nil, err
	}
	if len(c.clients) >= maxCachedClients {
		c.clients = make(map[llm.Config]*llm.Client)
	}
	c.clients[want] = client
	return client, nil
}

// latestCompleter follows the current settings on every call. The analysis server uses
// it; it has no runs to bind to.
type latestCompleter struct {
	completers *settingsCompleters
}

func (l latestCompleter) Analysis(ctx context.Context, text, replyingTo string) (string, error) {
	completer, err := l.completers.Current()
	if err != nil {
		return "", err
	}
	return completer.Analysis(ctx, text, replyingTo)
}

func (l latestCompleter) Pattern(ctx context.Context, text, conversation, platform string) (string, error) {
	completer, err := l.completers.Current()
	if err != nil {
		return "", err
	}
	return completer.Pattern(ctx, text, conversation, platform)
}

var (
	_ bridge.Resolver  = (*settingsCompleters)(nil)
	_ bridge.Completer = latestCompleter{}
)
