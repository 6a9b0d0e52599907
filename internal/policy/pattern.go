package policy

import (
	"strings"
)

// PatternKind distinguishes the two forms a blocked pattern can take.
type PatternKind int

const (
	// LiteralSegment blocks any path containing a segment equal to the pattern.
	LiteralSegment PatternKind = iota
	// ExtensionGlob blocks any path ending in the pattern's extension ("*.key").
	ExtensionGlob
)

func (k PatternKind) String() string {
	switch k {
	case ExtensionGlob:
		return "extension"
	default:
		return "segment"
	}
}

// Pattern is a blocked pattern decided once at load time.
type Pattern struct {
	Kind PatternKind
	// Value is the segment name, or the extension including its dot for ExtensionGlob.
	Value string
	raw   string
}

// ParsePattern classifies a raw pattern string. "*.ext" becomes an
// ExtensionGlob for ".ext"; anything else is a literal segment name.
func ParsePattern(raw string) Pattern {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "*.") {
		return Pattern{Kind: ExtensionGlob, Value: raw[1:], raw: raw}
	}
	return Pattern{Kind: LiteralSegment, Value: raw, raw: raw}
}

// ParsePatterns parses a list of raw patterns, dropping blanks and duplicates
// while keeping the first occurrence's position.
func ParsePatterns(raw []string) []Pattern {
	seen := make(map[string]bool, len(raw))
	out := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p := ParsePattern(r)
		if p.raw == "" || seen[p.raw] {
			continue
		}
		seen[p.raw] = true
		out = append(out, p)
	}
	return out
}

// String returns the pattern as it was written in configuration.
func (p Pattern) String() string {
	return p.raw
}

// match reports whether the canonical path (already split into segments) is
// blocked by this pattern, and the reason to report if so.
func (p Pattern) match(canonical string, segments []string) (string, bool) {
	switch p.Kind {
	case ExtensionGlob:
		if strings.HasSuffix(strings.ToLower(canonical), strings.ToLower(p.Value)) {
			return "Blocked file extension: " + p.raw, true
		}
	case LiteralSegment:
		for _, seg := range segments {
			if seg == p.Value {
				return "Blocked pattern: " + p.raw, true
			}
		}
	}
	return "", false
}
