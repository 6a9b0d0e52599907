package fsops

import (
	"context"
	"os"
	"strings"
	"time"
)

// Edit replaces exact occurrences of req.OldText. Without ReplaceAll the text
// must occur exactly once; an ambiguous match leaves the file untouched.
func (e *Engine) Edit(ctx context.Context, req EditRequest) (res *EditResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpEdit, req.Path, "", start, err) }(time.Now())

	canonical, err := e.check(OpEdit, req.Path, SideNone)
	if err != nil {
		return nil, err
	}
	if req.OldText == "" {
		return nil, &Error{Op: OpEdit, Kind: KindInvalidInput, Path: req.Path, Reason: "old_string must not be empty"}
	}
	unlock := e.locks.lock(canonical)
	defer unlock()

	data, err := e.readText(OpEdit, req.Path, canonical)
	if err != nil {
		return nil, err
	}
	content := string(data)

	if !strings.Contains(content, req.OldText) {
		return nil, newError(OpEdit, KindNotFoundInFile, req.Path)
	}

	count := strings.Count(content, req.OldText)
	if count > 1 && !req.ReplaceAll {
		return nil, &Error{Op: OpEdit, Kind: KindAmbiguous, Path: req.Path, Count: count}
	}

	var updated string
	if req.ReplaceAll {
		updated = strings.ReplaceAll(content, req.OldText, req.NewText)
	} else {
		updated = strings.Replace(content, req.OldText, req.NewText, 1)
		count = 1
	}

	if err := os.WriteFile(canonical, []byte(updated), fileMode); err != nil {
		return nil, failed(OpEdit, req.Path, err)
	}
	return &EditResult{Path: canonical, Rel: e.policy.Rel(canonical), Replacements: count}, nil
}
