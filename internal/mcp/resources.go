package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

const (
	ConfigResourceURI    = "security://config"
	WorkspaceResourceURI = "workspace://info"

	summaryPatterns   = 10
	summaryExtensions = 20
)

func (s *Server) registerResources() {
	p := s.engine.Policy()

	s.server.AddResource(&mcp.Resource{
		URI:         ConfigResourceURI,
		Name:        "security_config",
		Title:       "Security Configuration",
		Description: "Display current security configuration",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return textResource(ConfigResourceURI, ConfigSummary(p)), nil
	})

	s.server.AddResource(&mcp.Resource{
		URI:         WorkspaceResourceURI,
		Name:        "workspace_info",
		Title:       "Workspace Information",
		Description: "Get information about the current workspace",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		text, err := WorkspaceSummary(p.Root())
		if err != nil {
			return nil, err
		}
		return textResource(WorkspaceResourceURI, text), nil
	})
}

func textResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/plain", Text: text}},
	}
}

// ConfigSummary renders the policy the way the security://config resource
// shows it. Long lists are truncated with a count of what was left out.
func ConfigSummary(p *policy.Policy) string {
	var b strings.Builder
	b.WriteString("Security Configuration:\n")
	b.WriteString("======================\n")
	fmt.Fprintf(&b, "Allowed Root: %s\n", p.Root())
	fmt.Fprintf(&b, "Max File Size: %.1f MB\n\n", float64(p.MaxFileSize())/(1024*1024))
	writeTruncated(&b, "Blocked Patterns", p.BlockedPatterns(), summaryPatterns)
	b.WriteString("\n")
	writeTruncated(&b, "Allowed Extensions", p.AllowedExtensions(), summaryExtensions)
	return b.String()
}

func writeTruncated(b *strings.Builder, label string, items []string, limit int) {
	shown := items
	if len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(shown, ", "))
	if extra := len(items) - limit; extra > 0 {
		fmt.Fprintf(b, "... and %d more\n", extra)
	}
}

// WorkspaceSummary counts the files and directories directly under root.
// Symlinks are counted as what they point to.
func WorkspaceSummary(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("error getting workspace info: %w", err)
	}
	var files, dirs int
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		switch {
		case info.IsDir():
			dirs++
		case info.Mode().IsRegular():
			files++
		}
	}
	return fmt.Sprintf("Workspace: %s\nFiles: %d\nDirectories: %d\n", root, files, dirs), nil
}
