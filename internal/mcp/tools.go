package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/EdibleTuber/void-mcp-server/internal/fsops"
)

// ReadFileInput defines input for read_file.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"Path to the file to read"`
}

// WriteFileInput defines input for write_file.
type WriteFileInput struct {
	Path    string `json:"path" jsonschema:"Path to the file"`
	Content string `json:"content" jsonschema:"Content to write"`
}

// CreateFileInput defines input for create_file.
type CreateFileInput struct {
	Path    string `json:"path" jsonschema:"Path to the file"`
	Content string `json:"content,omitempty" jsonschema:"Initial content (optional)"`
}

// DeleteFileInput defines input for delete_file.
type DeleteFileInput struct {
	Path string `json:"path" jsonschema:"Path to the file to delete"`
}

// EditFileInput defines input for edit_file.
type EditFileInput struct {
	FilePath   string `json:"file_path" jsonschema:"Path to the file to edit"`
	OldString  string `json:"old_string" jsonschema:"Exact text to find and replace, including whitespace"`
	NewString  string `json:"new_string" jsonschema:"Replacement text"`
	ReplaceAll bool   `json:"replace_all,omitempty" jsonschema:"Replace every occurrence. When false old_string must be unique."`
}

// ListDirectoryInput defines input for list_directory.
type ListDirectoryInput struct {
	Path string `json:"path,omitempty" jsonschema:"Directory path (default: the root)"`
}

// CreateDirectoryInput defines input for create_directory.
type CreateDirectoryInput struct {
	Path string `json:"path" jsonschema:"Path of the directory to create"`
}

// MoveFileInput defines input for move_file.
type MoveFileInput struct {
	Source      string `json:"source" jsonschema:"Current file path"`
	Destination string `json:"destination" jsonschema:"New file path"`
}

// SearchInFilesInput defines input for search_in_files.
type SearchInFilesInput struct {
	SearchTerm  string `json:"search_term" jsonschema:"Text to search for (case-insensitive)"`
	Directory   string `json:"directory,omitempty" jsonschema:"Directory to search in (default: the root)"`
	FilePattern string `json:"file_pattern,omitempty" jsonschema:"File glob matched at any depth, e.g. *.py or *.js (default: *.py)"`
}

func boolPtr(b bool) *bool { return &b }

func (s *Server) registerTools() {
	e := s.engine

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_file",
		Title:       "Read File",
		Description: "Read and return the complete contents of a text file. Use this to examine existing files before modifying them.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, textHandler(s, "read_file", func(ctx context.Context, in ReadFileInput) (string, error) {
		res, err := e.Read(ctx, in.Path)
		if err != nil {
			return "", err
		}
		return res.Content, nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "write_file",
		Title:       "Write File",
		Description: "Write or overwrite a file with new content. Creates parent directories if needed. Use read_file first to see current content.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true), IdempotentHint: true},
	}, textHandler(s, "write_file", func(ctx context.Context, in WriteFileInput) (string, error) {
		res, err := e.Write(ctx, in.Path, in.Content)
		if err != nil {
			return "", err
		}
		return formatWrite(res), nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_file",
		Title:       "Create File",
		Description: "Create a new file with initial content. Fails safely if file already exists (use write_file to overwrite). Creates parent directories automatically.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(false)},
	}, textHandler(s, "create_file", func(ctx context.Context, in CreateFileInput) (string, error) {
		res, err := e.Create(ctx, in.Path, in.Content)
		if err != nil {
			return "", err
		}
		return formatWrite(res), nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_file",
		Title:       "Delete File",
		Description: "Permanently delete a file. This is destructive and cannot be undone. Always confirm with user before calling.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)},
	}, textHandler(s, "delete_file", func(ctx context.Context, in DeleteFileInput) (string, error) {
		res, err := e.Delete(ctx, in.Path)
		if err != nil {
			return "", err
		}
		return "Deleted file: " + res.Path, nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "edit_file",
		Title:       "Edit File",
		Description: "Make precise edits to a file by replacing exact text. Safer than rewriting entire file. Validates text exists and is unique. Preserves formatting and indentation.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true), IdempotentHint: true},
	}, textHandler(s, "edit_file", func(ctx context.Context, in EditFileInput) (string, error) {
		res, err := e.Edit(ctx, fsops.EditRequest{
			Path:       in.FilePath,
			OldText:    in.OldString,
			NewText:    in.NewString,
			ReplaceAll: in.ReplaceAll,
		})
		if err != nil {
			return "", err
		}
		return formatEdit(res), nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_directory",
		Title:       "List Directory",
		Description: "List all files and subdirectories in a directory. Shows file sizes. Use this to explore project structure or verify file existence.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, textHandler(s, "list_directory", func(ctx context.Context, in ListDirectoryInput) (string, error) {
		res, err := e.List(ctx, in.Path)
		if err != nil {
			return "", err
		}
		return formatList(res), nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_directory",
		Title:       "Create Directory",
		Description: "Create a new directory and any necessary parent directories. Safe operation that reports if directory already exists.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true},
	}, textHandler(s, "create_directory", func(ctx context.Context, in CreateDirectoryInput) (string, error) {
		res, err := e.CreateDirectory(ctx, in.Path)
		if err != nil {
			return "", err
		}
		return "Created directory: " + res.Rel, nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "move_file",
		Title:       "Move/Rename File",
		Description: "Move or rename a file. Creates destination parent directories if needed. Fails if destination already exists.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(false)},
	}, textHandler(s, "move_file", func(ctx context.Context, in MoveFileInput) (string, error) {
		res, err := e.Move(ctx, in.Source, in.Destination)
		if err != nil {
			return "", err
		}
		return "Moved: " + res.Source + " to " + res.Destination, nil
	}))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_in_files",
		Title:       "Search in Files",
		Description: "Search for text across multiple files using glob patterns. Returns up to 50 matches with line numbers. Case-insensitive search.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, textHandler(s, "search_in_files", func(ctx context.Context, in SearchInFilesInput) (string, error) {
		res, err := e.Search(ctx, fsops.SearchRequest{
			Term:      in.SearchTerm,
			Directory: in.Directory,
			Pattern:   in.FilePattern,
		})
		if err != nil {
			return "", err
		}
		return formatSearch(res), nil
	}))
}
