package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdibleTuber/void-mcp-server/internal/audit"
	"github.com/EdibleTuber/void-mcp-server/internal/defaults"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := SetupRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig creates a config file rooting the sandbox at a fresh directory.
func writeConfig(t *testing.T) (cfgPath, root string) {
	t.Helper()
	dir := t.TempDir()
	root = filepath.Join(dir, "work")
	require.NoError(t, os.Mkdir(root, 0o755))
	cfgPath = filepath.Join(dir, "mcp_config.json")
	doc := `{"allowed_root": "` + filepath.ToSlash(root) + `", "additional_extensions": [".sql"]}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0o644))
	return cfgPath, root
}

func TestCheckCommand(t *testing.T) {
	cfgPath, root := writeConfig(t)
	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "check", "schema.sql", "main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "allow  schema.sql -> "+filepath.Join(realRoot, "schema.sql"))
	assert.Contains(t, out, "allow  main.go")

	out, err = execute(t, "--config", cfgPath, "check", "main.go", ".env", "../x.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 paths denied")
	assert.Contains(t, out, "deny   .env: Blocked pattern: .env")
	assert.Contains(t, out, "deny   ../x.go: Path outside allowed directory")
}

func TestCheckRequiresArgs(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, err := execute(t, "--config", cfgPath, "check")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	cfgPath, root := writeConfig(t)
	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Security Configuration:\n")
	assert.Contains(t, out, "Allowed Root: "+realRoot+"\n")
	assert.Contains(t, out, "Max File Size: 10.0 MB")
}

func TestInvalidRootFailsStartup(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcp_config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"allowed_root": "`+filepath.ToSlash(filepath.Join(dir, "missing"))+`"}`), 0o644))

	_, err := execute(t, "--config", cfgPath, "serve", "--no-audit", "--heartbeat", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "mcp_config.json")

	out, err := execute(t, "--config", jsonPath, "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+jsonPath+"\n", out)
	assert.FileExists(t, jsonPath)

	_, err = execute(t, "--config", jsonPath, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "--config", jsonPath, "init", "--force")
	assert.NoError(t, err)

	yamlPath := filepath.Join(dir, "nested", "mcp_config.yaml")
	_, err = execute(t, "--config", yamlPath, "init")
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "allowed_root:")
}

func TestAuditCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, "audit", "--audit-db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No operations recorded.\n", out)

	ctx := context.Background()
	store, err := audit.Open(ctx, dbPath)
	require.NoError(t, err)
	base := time.Now().Add(-time.Minute)
	_, err = store.Add(ctx, audit.Entry{Time: base, Operation: "read", Path: "/w/a.txt", Outcome: audit.OutcomeOK})
	require.NoError(t, err)
	_, err = store.Add(ctx, audit.Entry{Time: base.Add(time.Second), Operation: "move", Path: "/w/a.txt", Target: "/w/b.txt", Outcome: "already_exists"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err = execute(t, "audit", "--audit-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "OPERATION")
	assert.Contains(t, out, "/w/a.txt -> /w/b.txt")
	assert.Less(t, bytes.Index([]byte(out), []byte("move")), bytes.Index([]byte(out), []byte("read")))

	out, err = execute(t, "audit", "--audit-db", dbPath, "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "move")
	assert.NotContains(t, out, "read ")
}

func TestInitList(t *testing.T) {
	out, err := execute(t, "init", "--list")
	require.NoError(t, err)
	assert.Equal(t, "mcp_config.json\nmcp_config.yaml\n", out)
}

func TestQuietSuppressesLogs(t *testing.T) {
	var logs bytes.Buffer
	logging.Setup(&logs, slog.LevelInfo, true)
	t.Cleanup(func() {
		logging.Enable()
		logging.Setup(os.Stderr, slog.LevelInfo, false)
	})

	dir := t.TempDir()
	broken := filepath.Join(dir, "mcp_config.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	t.Chdir(dir)

	_, err := execute(t, "--config", broken, "-q", "config")
	require.NoError(t, err)
	assert.Empty(t, logs.String())

	_, err = execute(t, "--config", broken, "config")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "using defaults")
}

func TestAuditDefaultsToDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "state")
	t.Setenv(defaults.DataDirEnv, dataDir)

	out, err := execute(t, "audit")
	require.NoError(t, err)
	assert.Equal(t, "No operations recorded.\n", out)
	assert.FileExists(t, filepath.Join(dataDir, defaults.AuditDBFile))
}
