package domain

import "strings"

// PlatformAdapter describes how to find the submit controls, compose box and reply
// context on one social platform. Selector lists are ordered by preference.
type PlatformAdapter struct {
	Name             string   `yaml:"name"`
	Domains          []string `yaml:"domains"`
	HostContains     []string `yaml:"host_contains,omitempty"`
	SubmitSelectors  []string `yaml:"submit_selectors"`
	ComposeSelectors []string `yaml:"compose_selectors"`
	ContextSelectors []string `yaml:"context_selectors"`
}

// Matches reports whether hostname belongs to the platform: an exact or subdomain match
// against Domains, or a substring match against HostContains.
func (p PlatformAdapter) Matches(hostname string) bool {
	host := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(hostname), "."))
	if host == "" {
		return false
	}
	for _, d := range p.Domains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, fragment := range p.HostContains {
		if fragment != "" && strings.Contains(host, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}

// Capture is the content read from the page when a submit control is clicked.
type Capture struct {
	Text       string
	ReplyingTo string
	Platform   string
}

// HasContext reports whether a reply target was found.
func (c Capture) HasContext() bool {
	return strings.TrimSpace(c.ReplyingTo) != ""
}
