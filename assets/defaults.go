package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultPlatformsYAML contains the embedded platform adapter table.
//
//go:embed defaults/platforms.yaml
var DefaultPlatformsYAML []byte
