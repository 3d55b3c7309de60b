package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/dom"
)

func TestDetectEmbeddedPlatforms(t *testing.T) {
	registry, err := NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	cases := []struct {
		host string
		want string
	}{
		{"x.com", "x"},
		{"mobile.twitter.com", "x"},
		{"mastodon.social", "mastodon"},
		{"fosstodon.mastodon.example", "mastodon"},
		{"bsky.app", "bluesky"},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			adapter, err := registry.Detect(tc.host)
			if err != nil {
				t.Fatalf("Detect(%q) error = %v", tc.host, err)
			}
			if adapter.Name != tc.want {
				t.Fatalf("Detect(%q) = %s, want %s", tc.host, adapter.Name, tc.want)
			}
			if len(adapter.SubmitSelectors) == 0 || len(adapter.ComposeSelectors) == 0 {
				t.Fatalf("adapter %s missing selectors", adapter.Name)
			}
		})
	}

	if _, err := registry.Detect("example.com"); !errors.Is(err, domain.ErrPlatformUnsupported) {
		t.Fatalf("Detect(example.com) error = %v", err)
	}
}

func TestRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.yaml")
	raw := []byte("platforms:\n  - name: local\n    domains: [localhost]\n    submit_selectors: ['#post']\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	registry, err := NewRegistry(path)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if names := registry.Names(); len(names) != 1 || names[0] != "local" {
		t.Fatalf("Names() = %v", names)
	}
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	if _, err := Parse([]byte("platforms:\n  - name: bad\n    domains: [a.b]\n")); err == nil {
		t.Fatal("expected error for missing submit selectors")
	}
}

func TestFirstTextSkipsBlankAndFollowsOrder(t *testing.T) {
	doc := dom.NewDocument("x.com")
	doc.Add("   ", "#first")
	doc.Add("second match", "#second")
	doc.Add("later match", "#first")

	if got := FirstText(doc, []string{"#first", "#second"}); got != "later match" {
		t.Fatalf("FirstText() = %q", got)
	}
	if got := FirstText(doc, []string{"#missing", "#second"}); got != "second match" {
		t.Fatalf("FirstText() = %q", got)
	}
	if got := FirstText(doc, nil); got != "" {
		t.Fatalf("FirstText(nil) = %q", got)
	}
}
