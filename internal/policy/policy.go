// Package policy decides whether a filesystem path may be touched.
//
// A Policy is built once from a Config and never changes afterwards. Every
// decision is made on the canonical form of the candidate path: absolute,
// cleaned and with all symlinks followed. Checks run in a fixed order and the
// first failure wins:
//
//  1. canonicalisation (invalid paths are denied)
//  2. containment inside the allowed root
//  3. blocked patterns (literal segments and *.ext globs)
//  4. extension allow-list, for regular files and paths that do not exist yet
package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the read/edit ceiling used when none is configured.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// DefaultBlockedPatterns keeps VCS metadata, environments and key material out of reach.
var DefaultBlockedPatterns = []string{
	".git",
	".env",
	".ssh",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	"*.key",
	"*.pem",
	"*.p12",
	"id_rsa",
	"id_ed25519",
}

// DefaultAllowedExtensions lists the text formats file-producing operations accept.
var DefaultAllowedExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx",
	".java", ".c", ".cpp", ".h", ".hpp",
	".go", ".rs", ".rb", ".php",
	".html", ".css", ".scss", ".json",
	".md", ".txt", ".yaml", ".yml",
	".toml", ".ini", ".cfg", ".xml",
}

// Config is the raw policy configuration.
type Config struct {
	AllowedRoot       string
	BlockedPatterns   []string
	AllowedExtensions []string
	MaxFileSize       int64
}

// DefaultConfig returns the built-in configuration rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		AllowedRoot:       root,
		BlockedPatterns:   append([]string(nil), DefaultBlockedPatterns...),
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		MaxFileSize:       DefaultMaxFileSize,
	}
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
	// Path is the canonical path the decision was made on. Callers must act
	// on this path rather than the one they passed in.
	Path string
}

func allow(path string) Decision {
	return Decision{Allowed: true, Reason: "OK", Path: path}
}

func deny(path, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Path: path}
}

// Policy evaluates candidate paths against an immutable configuration.
type Policy struct {
	root        string
	patterns    []Pattern
	extensions  map[string]struct{}
	extList     []string
	maxFileSize int64
}

// New canonicalises the allowed root and freezes the configuration.
// The root must exist and be a directory.
func New(cfg Config) (*Policy, error) {
	if strings.TrimSpace(cfg.AllowedRoot) == "" {
		return nil, errors.New("allowed root is required")
	}
	abs, err := filepath.Abs(cfg.AllowedRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve allowed root: %w", err)
	}
	root, err := realpath(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve allowed root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("allowed root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("allowed root %s is not a directory", root)
	}

	p := &Policy{
		root:        root,
		patterns:    ParsePatterns(cfg.BlockedPatterns),
		extensions:  make(map[string]struct{}, len(cfg.AllowedExtensions)),
		maxFileSize: cfg.MaxFileSize,
	}
	if p.maxFileSize <= 0 {
		p.maxFileSize = DefaultMaxFileSize
	}
	for _, ext := range cfg.AllowedExtensions {
		ext = NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, dup := p.extensions[ext]; dup {
			continue
		}
		p.extensions[ext] = struct{}{}
		p.extList = append(p.extList, ext)
	}
	return p, nil
}

// NormalizeExtension lower-cases ext and ensures a single leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// Root returns the canonical allowed root.
func (p *Policy) Root() string { return p.root }

// MaxFileSize returns the read/edit size ceiling in bytes.
func (p *Policy) MaxFileSize() int64 { return p.maxFileSize }

// BlockedPatterns returns the blocked patterns as configured, in order.
func (p *Policy) BlockedPatterns() []string {
	out := make([]string, len(p.patterns))
	for i, pat := range p.patterns {
		out[i] = pat.String()
	}
	return out
}

// AllowedExtensions returns the allowed extensions, in configuration order.
func (p *Policy) AllowedExtensions() []string {
	return append([]string(nil), p.extList...)
}

// Evaluate decides whether path may be operated on.
func (p *Policy) Evaluate(path string) Decision {
	canonical, err := canonicalize(p.root, path)
	if err != nil {
		return deny(path, fmt.Sprintf("Path validation error: %v", err))
	}

	if !within(p.root, canonical) {
		return deny(canonical, "Path outside allowed directory: "+p.root)
	}

	segments := strings.Split(canonical, string(filepath.Separator))
	for _, pat := range p.patterns {
		if reason, blocked := pat.match(canonical, segments); blocked {
			return deny(canonical, reason)
		}
	}

	info, err := os.Stat(canonical)
	if err != nil || info.Mode().IsRegular() {
		ext := strings.ToLower(extension(filepath.Base(canonical)))
		if ext != "" {
			if _, ok := p.extensions[ext]; !ok {
				return deny(canonical, "File extension not allowed: "+ext)
			}
		}
	}

	return allow(canonical)
}

// CheckSize denies an existing file whose size exceeds the configured ceiling.
func (p *Policy) CheckSize(path string) Decision {
	info, err := os.Stat(path)
	if err != nil {
		return deny(path, fmt.Sprintf("Size check error: %v", err))
	}
	if info.Size() > p.maxFileSize {
		return deny(path, fmt.Sprintf("File too large: %d bytes (max: %d)", info.Size(), p.maxFileSize))
	}
	return allow(path)
}

// Rel returns canonical relative to the root, "." for the root itself.
func (p *Policy) Rel(canonical string) string {
	rel, err := filepath.Rel(p.root, canonical)
	if err != nil {
		return canonical
	}
	return rel
}
