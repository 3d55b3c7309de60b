package platform

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/sns-guardian/assets"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/pkg/filesystem"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Registry resolves the adapter for a page host.
type Registry struct {
	adapters []domain.PlatformAdapter
}

// File is the YAML schema root.
type File struct {
	Platforms []domain.PlatformAdapter `yaml:"platforms"`
}

// NewRegistry loads adapters from path, or from the embedded table when path is empty.
func NewRegistry(path string) (*Registry, error) {
	raw := assets.DefaultPlatformsYAML
	if path != "" {
		data, err := os.ReadFile(filesystem.ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("read platforms file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Parse builds a registry from YAML.
func Parse(raw []byte) (*Registry, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse platforms: %w", err)
	}
	for _, adapter := range file.Platforms {
		if adapter.Name == "" {
			return nil, fmt.Errorf("platform entry missing name")
		}
		if len(adapter.Domains) == 0 && len(adapter.HostContains) == 0 {
			return nil, fmt.Errorf("platform %s has no domains", adapter.Name)
		}
		if len(adapter.SubmitSelectors) == 0 {
			return nil, fmt.Errorf("platform %s has no submit selectors", adapter.Name)
		}
	}
	return &Registry{adapters: file.Platforms}, nil
}

// Detect returns the first adapter matching hostname, or domain.ErrPlatformUnsupported.
func (r *Registry) Detect(hostname string) (domain.PlatformAdapter, error) {
	for _, adapter := range r.adapters {
		if adapter.Matches(hostname) {
			return adapter, nil
		}
	}
	return domain.PlatformAdapter{}, fmt.Errorf("%w: %s", domain.ErrPlatformUnsupported, hostname)
}

// Names lists the known platforms in table order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		names = append(names, adapter.Name)
	}
	return names
}

// FirstText returns the trimmed text of the first element, across selectors in order,
// whose text is non-empty.
func FirstText(doc ports.Document, selectors []string) string {
	for _, selector := range selectors {
		for _, el := range doc.QueryAll(selector) {
			if text := strings.TrimSpace(el.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}
