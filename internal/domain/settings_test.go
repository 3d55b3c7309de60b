package domain

import "testing"

func TestForPageDropsCredential(t *testing.T) {
	s := Settings{Provider: ProviderLLM, LLMAPIKey: "sk-secret", EnableAnalysis: true}
	page := s.ForPage()
	if !page.LLMConfigured {
		t.Fatal("LLMConfigured should be true when a key is present")
	}
	if !page.RemoteEnabled() {
		t.Fatal("remote analysis should be enabled")
	}

	empty := Settings{Provider: ProviderLLM, LLMAPIKey: "  "}.ForPage()
	if empty.LLMConfigured {
		t.Fatal("blank key reported as configured")
	}
}

func TestParseProviderKind(t *testing.T) {
	cases := map[string]ProviderKind{
		"api":       ProviderAPI,
		"REST":      ProviderAPI,
		"gemini":    ProviderLLM,
		"llm":       ProviderLLM,
		"heuristic": ProviderLocal,
		"":          ProviderLocal,
		"bogus":     ProviderLocal,
	}
	for in, want := range cases {
		if got := ParseProviderKind(in); got != want {
			t.Fatalf("ParseProviderKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMaskedHidesSecrets(t *testing.T) {
	got := Settings{LLMAPIKey: "abcdefgh1234", APIToken: "xy"}.Masked()
	if got.LLMAPIKey != "****1234" || got.APIToken != "****" {
		t.Fatalf("Masked() = %+v", got)
	}
}

func TestPlatformMatches(t *testing.T) {
	x := PlatformAdapter{Domains: []string{"x.com", "twitter.com"}}
	masto := PlatformAdapter{HostContains: []string{"mastodon"}}

	if !x.Matches("x.com") || !x.Matches("mobile.twitter.com") {
		t.Fatal("expected x/twitter hosts to match")
	}
	if x.Matches("notx.com") || x.Matches("x.com.evil.io") {
		t.Fatal("lookalike host matched")
	}
	if !masto.Matches("mastodon.social") || !masto.Matches("MASTODON.example.org") {
		t.Fatal("expected mastodon substring match")
	}
}
