// Package defaults provides the embedded sample configuration and the
// platform data directory that holds the audit database.
//
// Platform paths:
//
//	macOS:   ~/Library/Application Support/VoidMCP/
//	Windows: %AppData%\VoidMCP\
//	Linux:   ~/.config/void-mcp/
//
// Override with VOID_MCP_DATA_DIR environment variable.
package defaults

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

//go:embed files/*
var defaultFiles embed.FS

// DataDirEnv overrides DataDir.
const DataDirEnv = "VOID_MCP_DATA_DIR"

// AuditDBFile is the audit database name inside the data directory.
const AuditDBFile = "audit.db"

// ErrExists is returned by WriteSample when the destination exists.
var ErrExists = errors.New("file already exists")

// DataDir returns the platform-appropriate data directory.
func DataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	// macOS/Windows: title case per platform convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "void-mcp"), nil
	}
	return filepath.Join(configDir, "VoidMCP"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// AuditDBPath returns the default audit database location, creating the
// data directory if needed.
func AuditDBPath() (string, error) {
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AuditDBFile), nil
}

// GetDefault returns the content of an embedded file by name.
// Example: GetDefault("mcp_config.json")
func GetDefault(name string) ([]byte, error) {
	return defaultFiles.ReadFile("files/" + name)
}

// ListDefaults returns the names of all embedded files.
func ListDefaults() ([]string, error) {
	var files []string
	err := fs.WalkDir(defaultFiles, "files", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			// embed.FS always uses forward slashes.
			files = append(files, strings.TrimPrefix(path, "files/"))
		}
		return nil
	})
	return files, err
}

// WriteSample writes the embedded sample matching dest's format (YAML for
// .yaml/.yml, JSON otherwise) to dest. An existing file is only replaced
// when overwrite is set.
func WriteSample(dest string, overwrite bool) error {
	name := "mcp_config.json"
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".yaml", ".yml":
		name = "mcp_config.yaml"
	}

	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s: %w", dest, ErrExists)
		}
	}

	data, err := GetDefault(name)
	if err != nil {
		return fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
