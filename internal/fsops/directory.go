package fsops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// List returns the immediate subdirectories and regular files of a directory.
// Symlinked entries are classified by what they point to.
func (e *Engine) List(ctx context.Context, path string) (res *ListResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpList, path, "", start, err) }(time.Now())

	if path == "" {
		path = "."
	}
	canonical, err := e.check(OpList, path, SideNone)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(canonical)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(OpList, KindNotFound, path)
		}
		return nil, failed(OpList, path, err)
	}
	if !info.IsDir() {
		return nil, newError(OpList, KindNotADirectory, path)
	}

	entries, err := os.ReadDir(canonical)
	if err != nil {
		return nil, failed(OpList, path, err)
	}

	res = &ListResult{Path: canonical, Rel: e.policy.Rel(canonical)}
	for _, entry := range entries {
		fi, err := os.Stat(filepath.Join(canonical, entry.Name()))
		if err != nil {
			continue
		}
		switch {
		case fi.IsDir():
			res.Dirs = append(res.Dirs, entry.Name())
		case fi.Mode().IsRegular():
			res.Files = append(res.Files, FileEntry{Name: entry.Name(), Size: fi.Size()})
		}
	}
	return res, nil
}

// CreateDirectory creates a directory and any missing parents.
func (e *Engine) CreateDirectory(ctx context.Context, path string) (res *DirResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpCreateDirectory, path, "", start, err) }(time.Now())

	canonical, err := e.check(OpCreateDirectory, path, SideNone)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.lock(canonical)
	defer unlock()

	if _, err := os.Lstat(canonical); err == nil {
		return nil, newError(OpCreateDirectory, KindAlreadyExists, path)
	}
	if err := os.MkdirAll(canonical, dirMode); err != nil {
		return nil, failed(OpCreateDirectory, path, err)
	}
	return &DirResult{Path: canonical, Rel: e.policy.Rel(canonical)}, nil
}

// Move renames source to destination. Both paths must pass the policy and
// the destination must not exist. Missing destination parents are created.
func (e *Engine) Move(ctx context.Context, source, destination string) (res *MoveResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpMove, source, destination, start, err) }(time.Now())

	from, err := e.check(OpMove, source, SideSource)
	if err != nil {
		return nil, err
	}
	to, err := e.check(OpMove, destination, SideDestination)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.lock(from, to)
	defer unlock()

	if _, err := os.Lstat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Op: OpMove, Kind: KindNotFound, Path: source, Side: SideSource}
		}
		return nil, failed(OpMove, source, err)
	}
	if _, err := os.Lstat(to); err == nil {
		return nil, &Error{Op: OpMove, Kind: KindAlreadyExists, Path: destination, Side: SideDestination}
	}
	if err := os.MkdirAll(filepath.Dir(to), dirMode); err != nil {
		return nil, failed(OpMove, source, err)
	}
	if err := os.Rename(from, to); err != nil {
		return nil, failed(OpMove, source, err)
	}
	return &MoveResult{Source: source, Destination: destination, From: from, To: to}, nil
}
