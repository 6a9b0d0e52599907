package fsops

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Search looks for req.Term, case-insensitively, in every file below
// req.Directory whose path matches req.Pattern at any depth. Each candidate
// file is checked against the policy again; refused files are skipped and
// counted. Unreadable, oversized and undecodable files are skipped as well.
// Symlinked directories are not descended into.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (res *SearchResult, err error) {
	dir := req.Directory
	if dir == "" {
		dir = "."
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = DefaultSearchPattern
	}
	defer func(start time.Time) { e.observe(ctx, OpSearch, dir, pattern, start, err) }(time.Now())

	base, err := e.check(OpSearch, dir, SideNone)
	if err != nil {
		return nil, err
	}
	glob := "**/" + strings.TrimPrefix(filepath.ToSlash(pattern), "/")
	if !doublestar.ValidatePattern(glob) {
		return nil, &Error{Op: OpSearch, Kind: KindInvalidInput, Path: dir, Reason: "invalid file pattern: " + pattern}
	}

	res = &SearchResult{Term: req.Term}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return res, nil
	}

	needle := strings.ToLower(req.Term)
	walkErr := doublestar.GlobWalk(os.DirFS(base), glob, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		full := filepath.Join(base, filepath.FromSlash(p))
		decision := e.policy.Evaluate(full)
		if !decision.Allowed {
			res.Skipped++
			e.logger.Debug("search skipped file", "path", full, "reason", decision.Reason)
			return nil
		}
		fi, err := os.Stat(decision.Path)
		if err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		if fi.Size() > e.policy.MaxFileSize() {
			res.Skipped++
			return nil
		}
		data, err := os.ReadFile(decision.Path)
		if err != nil || !utf8.Valid(data) {
			return nil
		}
		res.FilesScanned++
		scanLines(res, filepath.FromSlash(p), string(data), needle)
		return nil
	}, doublestar.WithNoFollow())
	if walkErr != nil {
		return nil, failed(OpSearch, dir, walkErr)
	}
	return res, nil
}

func scanLines(res *SearchResult, rel, content, needle string) {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		if len(res.Matches) >= MaxSearchResults {
			res.Omitted++
			continue
		}
		res.Matches = append(res.Matches, SearchMatch{
			Rel:  rel,
			Line: i + 1,
			Text: strings.TrimSpace(line),
		})
	}
}
