package fsops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

type memRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *memRecorder) Record(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, string) {
	t.Helper()
	cfg := policy.DefaultConfig(t.TempDir())
	cfg.MaxFileSize = 1024
	p, err := policy.New(cfg)
	require.NoError(t, err)
	return New(p, opts...), p.Root()
}

func seed(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func content(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var fe *Error
	require.True(t, errors.As(err, &fe), "expected *Error, got %T", err)
	require.Equal(t, kind, fe.Kind, fe.Error())
	return fe
}

func TestWriteThenRead(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	inputs := []string{"", "hello", "line1\nline2\n", "unicode: héllo 世界\r\n", strings.Repeat("a", 1024)}
	for i, in := range inputs {
		path := filepath.Join(root, "dir", "file.txt")
		wr, err := e.Write(ctx, path, in)
		require.NoError(t, err)
		assert.Equal(t, i == 0, wr.Created)
		assert.Equal(t, filepath.Join("dir", "file.txt"), wr.Rel)

		rd, err := e.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, in, rd.Content)
	}
}

func TestRead_Failures(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	seed(t, root, "sub/keep.txt", "x")
	seed(t, root, "big.txt", strings.Repeat("x", 1025))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.txt"), []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := e.Read(ctx, "missing.txt")
	fe := requireKind(t, err, KindNotFound)
	assert.Equal(t, "File not found: missing.txt", fe.Error())

	_, err = e.Read(ctx, "sub")
	fe = requireKind(t, err, KindNotAFile)
	assert.Equal(t, "Not a file: sub", fe.Error())

	_, err = e.Read(ctx, "big.txt")
	fe = requireKind(t, err, KindTooLarge)
	assert.Equal(t, "File too large: 1025 bytes (max: 1024)", fe.Error())

	_, err = e.Read(ctx, "bin.txt")
	fe = requireKind(t, err, KindDecode)
	assert.Equal(t, "File appears to be binary or uses unsupported encoding: bin.txt", fe.Error())
	assert.True(t, errors.Is(err, ErrDecode))
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = e.Read(ctx, "../outside.txt")
	fe = requireKind(t, err, KindDenied)
	assert.Equal(t, "Access denied: Path outside allowed directory: "+root, fe.Error())
}

func TestWrite_Denied(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	cases := map[string]string{
		".git/config":     "Access denied: Blocked pattern: .git",
		"keys/server.key": "Access denied: Blocked file extension: *.key",
		"image.png":       "Access denied: File extension not allowed: .png",
	}
	for path, msg := range cases {
		_, err := e.Write(ctx, path, "x")
		fe := requireKind(t, err, KindDenied)
		assert.Equal(t, msg, fe.Error())
		_, statErr := os.Stat(filepath.Join(root, path))
		assert.True(t, os.IsNotExist(statErr), path)
	}
}

func TestCreate(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	res, err := e.Create(ctx, "pkg/new.go", "package pkg\n")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, filepath.Join("pkg", "new.go"), res.Rel)
	assert.Equal(t, "package pkg\n", content(t, filepath.Join(root, "pkg", "new.go")))

	empty, err := e.Create(ctx, "empty.txt", "")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Bytes)
}

func TestCreate_ExistingIsUntouched(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	path := seed(t, root, "a.txt", "original")

	for range 3 {
		_, err := e.Create(ctx, "a.txt", "replacement")
		fe := requireKind(t, err, KindAlreadyExists)
		assert.Equal(t, "File already exists: a.txt. Use write_file to update it.", fe.Error())
		assert.Equal(t, "original", content(t, path))
	}
}

func TestDelete(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	path := seed(t, root, "gone.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder"), 0o755))

	res, err := e.Delete(ctx, "gone.txt")
	require.NoError(t, err)
	assert.Equal(t, "gone.txt", res.Path)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = e.Delete(ctx, "gone.txt")
	requireKind(t, err, KindNotFound)

	_, err = e.Delete(ctx, "folder")
	fe := requireKind(t, err, KindNotAFile)
	assert.Contains(t, fe.Error(), "folder")
	assert.DirExists(t, filepath.Join(root, "folder"))
}

func TestList(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	seed(t, root, "b.txt", "bb")
	seed(t, root, "a.txt", "a")
	seed(t, root, "zdir/x.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(root, "adir"), 0o755))

	res, err := e.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ".", res.Rel)
	assert.Equal(t, []string{"adir", "zdir"}, res.Dirs)
	assert.Equal(t, []FileEntry{{Name: "a.txt", Size: 1}, {Name: "b.txt", Size: 2}}, res.Files)

	_, err = e.List(ctx, "nope")
	fe := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Directory not found: nope", fe.Error())

	_, err = e.List(ctx, "a.txt")
	fe = requireKind(t, err, KindNotADirectory)
	assert.Equal(t, "Not a directory: a.txt", fe.Error())
}

func TestCreateDirectory(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateDirectory(ctx, "a/b/c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a", "b", "c"), res.Rel)
	assert.DirExists(t, filepath.Join(root, "a", "b", "c"))

	_, err = e.CreateDirectory(ctx, "a/b")
	fe := requireKind(t, err, KindAlreadyExists)
	assert.Equal(t, "Directory already exists: a/b", fe.Error())
}

func TestMove(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	seed(t, root, "src.txt", "payload")

	res, err := e.Move(ctx, "src.txt", "nested/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "nested", "dst.txt"), res.To)
	assert.Equal(t, "payload", content(t, filepath.Join(root, "nested", "dst.txt")))
	assert.NoFileExists(t, filepath.Join(root, "src.txt"))

	_, err = e.Move(ctx, "src.txt", "other.txt")
	fe := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Source file not found: src.txt", fe.Error())
}

func TestMove_DestinationExists(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	src := seed(t, root, "src.txt", "source")
	dst := seed(t, root, "dst.txt", "destination")

	_, err := e.Move(ctx, "src.txt", "dst.txt")
	fe := requireKind(t, err, KindAlreadyExists)
	assert.Equal(t, SideDestination, fe.Side)
	assert.Equal(t, "Destination already exists: dst.txt", fe.Error())
	assert.Equal(t, "source", content(t, src))
	assert.Equal(t, "destination", content(t, dst))
}

func TestMove_DeniedSide(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()
	seed(t, root, "src.txt", "x")

	_, err := e.Move(ctx, "../escape.txt", "dst.txt")
	fe := requireKind(t, err, KindDenied)
	assert.Equal(t, SideSource, fe.Side)
	assert.True(t, strings.HasPrefix(fe.Error(), "Source access denied: "))

	_, err = e.Move(ctx, "src.txt", ".git/src.txt")
	fe = requireKind(t, err, KindDenied)
	assert.Equal(t, SideDestination, fe.Side)
	assert.Equal(t, "Destination access denied: Blocked pattern: .git", fe.Error())
	assert.FileExists(t, filepath.Join(root, "src.txt"))
}

func TestGenericFailureMessage(t *testing.T) {
	err := failed(OpWrite, "a.txt", errors.New("disk full"))
	assert.Equal(t, "Error writing file: disk full", err.Error())
	assert.True(t, errors.Is(err, ErrFailed))
	assert.Equal(t, KindFailed, KindOf(err))
	assert.Equal(t, KindFailed, KindOf(errors.New("plain")))
}

func TestRecorderSeesEveryOperation(t *testing.T) {
	rec := &memRecorder{}
	e, _ := newTestEngine(t, WithRecorder(rec))
	ctx := context.Background()

	_, _ = e.Write(ctx, "a.txt", "x")
	_, _ = e.Read(ctx, "missing.txt")
	_, _ = e.Move(ctx, "a.txt", "b.txt")

	require.Len(t, rec.events, 3)
	assert.Equal(t, OpWrite, rec.events[0].Op)
	assert.NoError(t, rec.events[0].Err)
	assert.Equal(t, OpRead, rec.events[1].Op)
	assert.Equal(t, KindNotFound, KindOf(rec.events[1].Err))
	assert.Equal(t, "a.txt", rec.events[2].Path)
	assert.Equal(t, "b.txt", rec.events[2].Target)
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := e.Create(ctx, "race.txt", strings.Repeat("x", i)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 0, e.locks.size())
}
