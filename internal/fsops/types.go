package fsops

// ReadResult is the decoded content of a file.
type ReadResult struct {
	Path    string
	Rel     string
	Content string
	Size    int64
}

// WriteResult describes a write or create.
type WriteResult struct {
	Path string
	Rel  string
	// Created is false when an existing file was overwritten.
	Created bool
	Bytes   int
}

// DeleteResult names the file that was removed.
type DeleteResult struct {
	// Path is the path as the caller supplied it.
	Path string
	Rel  string
}

// FileEntry is a regular file in a directory listing.
type FileEntry struct {
	Name string
	Size int64
}

// ListResult holds the immediate children of a directory, each group sorted
// by name. Entries that are neither files nor directories are left out.
type ListResult struct {
	Path  string
	Rel   string
	Dirs  []string
	Files []FileEntry
}

// DirResult describes a created directory.
type DirResult struct {
	Path string
	Rel  string
}

// MoveResult describes a completed move. Source and Destination are the
// caller's paths.
type MoveResult struct {
	Source      string
	Destination string
	From        string
	To          string
}

// SearchRequest parameters. Empty Directory means the root and empty
// Pattern means DefaultSearchPattern.
type SearchRequest struct {
	Term      string
	Directory string
	Pattern   string
}

// SearchMatch is a single matching line.
type SearchMatch struct {
	// Rel is the file path relative to the searched directory.
	Rel  string
	Line int
	Text string
}

// SearchResult holds at most MaxSearchResults matches. Omitted counts the
// matches found beyond that, and Skipped the files the policy refused.
type SearchResult struct {
	Term         string
	Matches      []SearchMatch
	Omitted      int
	Skipped      int
	FilesScanned int
}

// Total is the number of matching lines found, including omitted ones.
func (r *SearchResult) Total() int {
	return len(r.Matches) + r.Omitted
}

// EditRequest replaces OldText with NewText in the file at Path.
type EditRequest struct {
	Path       string
	OldText    string
	NewText    string
	ReplaceAll bool
}

// EditResult reports how many occurrences were replaced.
type EditResult struct {
	Path         string
	Rel          string
	Replacements int
}
