package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = ".sri.yaml"

type Config struct {
	// Layout
	AssetRoot string `yaml:"asset_root"`
	URLPrefix string `yaml:"url_prefix"`
	ScriptDir string `yaml:"script_dir"`
	StyleDir  string `yaml:"style_dir"`

	// Digest
	DigestEncoding string `yaml:"digest_encoding"`
	ChunkSize      int    `yaml:"chunk_size"`

	// Network. Zero means the client never times out.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`

	// Output
	WriteManifest bool   `yaml:"write_manifest"`
	Progress      bool   `yaml:"progress"`
	ColorTheme    string `yaml:"color_theme"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		AssetRoot:          "assets",
		URLPrefix:          "assets",
		ScriptDir:          "js",
		StyleDir:           "css",
		DigestEncoding:     "hex",
		ChunkSize:          8192,
		HTTPTimeoutSeconds: 0,
		WriteManifest:      true,
		Progress:           true,
		ColorTheme:         "auto",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file is not an error: run with defaults
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = "assets"
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "assets"
	}
	if cfg.ScriptDir == "" {
		cfg.ScriptDir = "js"
	}
	if cfg.StyleDir == "" {
		cfg.StyleDir = "css"
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8192
	}
	if cfg.HTTPTimeoutSeconds < 0 {
		cfg.HTTPTimeoutSeconds = 0
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = "auto"
	}

	if !isValidEncoding(cfg.DigestEncoding) {
		cfg.DigestEncoding = "hex"
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidEncoding checks if the digest encoding is supported
func isValidEncoding(encoding string) bool {
	validEncodings := []string{"hex", "base64"}
	for _, valid := range validEncodings {
		if encoding == valid {
			return true
		}
	}
	return false
}
