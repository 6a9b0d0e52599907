package policy

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxSymlinks bounds link expansion, matching the usual ELOOP limit.
const maxSymlinks = 40

var (
	errNullByte  = errors.New("embedded null byte")
	errLinkLoop  = errors.New("too many levels of symbolic links")
	errEmptyPath = errors.New("empty path")
)

// canonicalize turns path into an absolute, symlink-free form. Relative paths
// are taken relative to base. Components that do not exist yet are kept
// lexically, so paths for files about to be created still canonicalize.
func canonicalize(base, path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	if strings.IndexByte(path, 0) >= 0 {
		return "", errNullByte
	}
	// No lexical cleaning here: ".." must apply to the resolved parent, not
	// to a symlink's name.
	if !filepath.IsAbs(path) {
		path = base + string(filepath.Separator) + path
	}
	return realpath(path)
}

// realpath resolves every symlink in abs one component at a time. Unlike
// filepath.EvalSymlinks it tolerates a missing tail, and a dangling link is
// still followed to its target so callers never act through it.
func realpath(abs string) (string, error) {
	sep := string(filepath.Separator)
	vol := filepath.VolumeName(abs)
	resolved := vol + sep
	rest := abs[len(vol):]
	links := 0

	for rest != "" {
		var comp string
		rest = strings.TrimLeft(rest, sep)
		if i := strings.Index(rest, sep); i >= 0 {
			comp, rest = rest[:i], rest[i:]
		} else {
			comp, rest = rest, ""
		}

		switch comp {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, comp)
		info, err := os.Lstat(next)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
				resolved = next
				continue
			}
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		links++
		if links > maxSymlinks {
			return "", errLinkLoop
		}
		target, err := os.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(target) {
			tvol := filepath.VolumeName(target)
			resolved = tvol + sep
			target = target[len(tvol):]
		}
		rest = target + sep + rest
	}

	return filepath.Clean(resolved), nil
}

// within reports whether path equals root or sits beneath it.
func within(root, path string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// extension returns the final suffix of name using the last-dot rule:
// dotfiles such as ".env" and names ending in a dot have no extension.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
