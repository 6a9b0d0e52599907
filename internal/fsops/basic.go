package fsops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// Read returns the UTF-8 content of a regular file within the size limit.
func (e *Engine) Read(ctx context.Context, path string) (res *ReadResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpRead, path, "", start, err) }(time.Now())

	canonical, err := e.check(OpRead, path, SideNone)
	if err != nil {
		return nil, err
	}
	data, err := e.readText(OpRead, path, canonical)
	if err != nil {
		return nil, err
	}
	return &ReadResult{
		Path:    canonical,
		Rel:     e.policy.Rel(canonical),
		Content: string(data),
		Size:    int64(len(data)),
	}, nil
}

// readText runs the shared checks of read and edit: the file must exist, be
// regular, fit the size limit and decode as UTF-8.
func (e *Engine) readText(op Op, path, canonical string) ([]byte, error) {
	info, err := os.Stat(canonical)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(op, KindNotFound, path)
		}
		return nil, failed(op, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(op, KindNotAFile, path)
	}
	if d := e.policy.CheckSize(canonical); !d.Allowed {
		return nil, &Error{Op: op, Kind: KindTooLarge, Path: path, Reason: d.Reason}
	}
	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, failed(op, path, err)
	}
	if !utf8.Valid(data) {
		return nil, newError(op, KindDecode, path)
	}
	return data, nil
}

// Write creates or overwrites a file, creating parent directories as needed.
func (e *Engine) Write(ctx context.Context, path, content string) (res *WriteResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpWrite, path, "", start, err) }(time.Now())

	canonical, err := e.check(OpWrite, path, SideNone)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.lock(canonical)
	defer unlock()

	_, statErr := os.Stat(canonical)
	existed := statErr == nil

	if err := os.MkdirAll(filepath.Dir(canonical), dirMode); err != nil {
		return nil, failed(OpWrite, path, err)
	}
	if err := os.WriteFile(canonical, []byte(content), fileMode); err != nil {
		return nil, failed(OpWrite, path, err)
	}
	return &WriteResult{
		Path:    canonical,
		Rel:     e.policy.Rel(canonical),
		Created: !existed,
		Bytes:   len(content),
	}, nil
}

// Create writes a new file and refuses to touch one that already exists.
func (e *Engine) Create(ctx context.Context, path, content string) (res *WriteResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpCreate, path, "", start, err) }(time.Now())

	canonical, err := e.check(OpCreate, path, SideNone)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.lock(canonical)
	defer unlock()

	if _, err := os.Lstat(canonical); err == nil {
		return nil, newError(OpCreate, KindAlreadyExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(canonical), dirMode); err != nil {
		return nil, failed(OpCreate, path, err)
	}

	// O_EXCL closes the window against writers outside this process.
	f, err := os.OpenFile(canonical, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, newError(OpCreate, KindAlreadyExists, path)
		}
		return nil, failed(OpCreate, path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return nil, failed(OpCreate, path, err)
	}
	if err := f.Close(); err != nil {
		return nil, failed(OpCreate, path, err)
	}
	return &WriteResult{
		Path:    canonical,
		Rel:     e.policy.Rel(canonical),
		Created: true,
		Bytes:   len(content),
	}, nil
}

// Delete removes a regular file. Directories are never removed.
func (e *Engine) Delete(ctx context.Context, path string) (res *DeleteResult, err error) {
	defer func(start time.Time) { e.observe(ctx, OpDelete, path, "", start, err) }(time.Now())

	canonical, err := e.check(OpDelete, path, SideNone)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.lock(canonical)
	defer unlock()

	info, err := os.Stat(canonical)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(OpDelete, KindNotFound, path)
		}
		return nil, failed(OpDelete, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(OpDelete, KindNotAFile, path)
	}
	if err := os.Remove(canonical); err != nil {
		return nil, failed(OpDelete, path, err)
	}
	return &DeleteResult{Path: path, Rel: e.policy.Rel(canonical)}, nil
}
