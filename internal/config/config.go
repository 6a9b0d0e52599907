// Package config loads the optional server configuration document.
//
// The document is JSON (YAML when the file name ends in .yaml or .yml) with
// environment variables expanded before parsing. It can only widen the
// built-in defaults: additional_blocked and additional_extensions are
// appended, never substituted.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

const (
	// DefaultPath is looked up in the working directory.
	DefaultPath = "mcp_config.json"
	// EnvPath overrides DefaultPath when no explicit path is given.
	EnvPath = "VOID_MCP_CONFIG"
)

// File mirrors the configuration document.
type File struct {
	AllowedRoot          string   `json:"allowed_root" yaml:"allowed_root"`
	AdditionalBlocked    []string `json:"additional_blocked" yaml:"additional_blocked"`
	AdditionalExtensions []string `json:"additional_extensions" yaml:"additional_extensions"`
	MaxFileSize          int64    `json:"max_file_size" yaml:"max_file_size"`
}

// ResolvePath picks the config path: an explicit flag value, then the
// VOID_MCP_CONFIG environment variable, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// LoadFromBytes parses a document with environment variable expansion.
// isYAML selects the YAML decoder.
func LoadFromBytes(data []byte, isYAML bool) (File, error) {
	var f File
	expanded := []byte(os.ExpandEnv(string(data)))
	if isYAML {
		if err := yaml.Unmarshal(expanded, &f); err != nil {
			return File{}, err
		}
		return f, nil
	}
	if err := json.Unmarshal(expanded, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Apply layers the document over base.
func (f File) Apply(base policy.Config) policy.Config {
	out := base
	if strings.TrimSpace(f.AllowedRoot) != "" {
		out.AllowedRoot = f.AllowedRoot
	}
	out.BlockedPatterns = append(append([]string(nil), base.BlockedPatterns...), f.AdditionalBlocked...)
	out.AllowedExtensions = append(append([]string(nil), base.AllowedExtensions...), f.AdditionalExtensions...)
	if f.MaxFileSize > 0 {
		out.MaxFileSize = f.MaxFileSize
	}
	return out
}

// Load builds the policy configuration. The allowed root defaults to the
// working directory. A missing file is not an error. Any other problem is
// returned together with the defaults, which are always usable.
func Load(path string) (policy.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return policy.Config{}, fmt.Errorf("determine working directory: %w", err)
	}
	defaults := policy.DefaultConfig(cwd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("could not load config %s: %w", path, err)
	}

	f, err := LoadFromBytes(data, isYAML(path))
	if err != nil {
		return defaults, fmt.Errorf("could not load config %s: %w", path, err)
	}
	return f.Apply(defaults), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
