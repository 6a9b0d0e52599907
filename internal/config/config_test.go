package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	cwd, _ := os.Getwd()
	assert.Equal(t, cwd, cfg.AllowedRoot)
	assert.Equal(t, policy.DefaultBlockedPatterns, cfg.BlockedPatterns)
	assert.Equal(t, policy.DefaultAllowedExtensions, cfg.AllowedExtensions)
	assert.Equal(t, policy.DefaultMaxFileSize, cfg.MaxFileSize)
}

func TestLoad_JSONAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"allowed_root": "`+dir+`",
		"additional_blocked": ["secrets", "*.bak"],
		"additional_extensions": [".proto"],
		"max_file_size": 2048
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.AllowedRoot)
	assert.Equal(t, len(policy.DefaultBlockedPatterns)+2, len(cfg.BlockedPatterns))
	assert.Equal(t, "*.bak", cfg.BlockedPatterns[len(cfg.BlockedPatterns)-1])
	assert.Contains(t, cfg.AllowedExtensions, ".proto")
	assert.Contains(t, cfg.AllowedExtensions, ".py")
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOID_TEST_ROOT", dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allowed_root: ${VOID_TEST_ROOT}\nadditional_extensions:\n  - .sql\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.AllowedRoot)
	assert.Contains(t, cfg.AllowedExtensions, ".sql")
}

func TestLoad_ParseErrorFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed_root": `), 0o644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, policy.DefaultBlockedPatterns, cfg.BlockedPatterns)
	assert.NotEmpty(t, cfg.AllowedRoot)
}

func TestApply_DoesNotAliasDefaults(t *testing.T) {
	base := policy.DefaultConfig("/srv")
	before := len(policy.DefaultBlockedPatterns)
	_ = File{AdditionalBlocked: []string{"x"}}.Apply(base)
	assert.Equal(t, before, len(policy.DefaultBlockedPatterns))
	assert.Equal(t, before, len(base.BlockedPatterns))
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, ResolvePath(""))
	t.Setenv(EnvPath, "/etc/void.json")
	assert.Equal(t, "/etc/void.json", ResolvePath(""))
	assert.Equal(t, "flag.json", ResolvePath("flag.json"))
}

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event, 8)
	require.NoError(t, Watch(ctx, path, func(ev fsnotify.Event) { events <- ev }))

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed_root": "/tmp"}`), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, filepath.Base(path), filepath.Base(ev.Name))
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}
