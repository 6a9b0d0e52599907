package fsops

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	KindFailed Kind = iota
	KindDenied
	KindNotFound
	KindNotAFile
	KindNotADirectory
	KindAlreadyExists
	KindTooLarge
	KindDecode
	KindAmbiguous
	KindNotFoundInFile
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindFailed:         "failed",
	KindDenied:         "denied",
	KindNotFound:       "not_found",
	KindNotAFile:       "not_a_file",
	KindNotADirectory:  "not_a_directory",
	KindAlreadyExists:  "already_exists",
	KindTooLarge:       "too_large",
	KindDecode:         "decode",
	KindAmbiguous:      "ambiguous",
	KindNotFoundInFile: "not_found_in_file",
	KindInvalidInput:   "invalid_input",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrFailed         = errors.New("operation failed")
	ErrDenied         = errors.New("access denied")
	ErrNotFound       = errors.New("not found")
	ErrNotAFile       = errors.New("not a file")
	ErrNotADirectory  = errors.New("not a directory")
	ErrAlreadyExists  = errors.New("already exists")
	ErrTooLarge       = errors.New("file too large")
	ErrDecode         = errors.New("undecodable content")
	ErrAmbiguous      = errors.New("ambiguous match")
	ErrNotFoundInFile = errors.New("text not found in file")
	ErrInvalidInput   = errors.New("invalid input")
)

var sentinels = map[Kind]error{
	KindFailed:         ErrFailed,
	KindDenied:         ErrDenied,
	KindNotFound:       ErrNotFound,
	KindNotAFile:       ErrNotAFile,
	KindNotADirectory:  ErrNotADirectory,
	KindAlreadyExists:  ErrAlreadyExists,
	KindTooLarge:       ErrTooLarge,
	KindDecode:         ErrDecode,
	KindAmbiguous:      ErrAmbiguous,
	KindNotFoundInFile: ErrNotFoundInFile,
	KindInvalidInput:   ErrInvalidInput,
}

// Side tells which path of a two-path operation an error refers to.
type Side int

const (
	SideNone Side = iota
	SideSource
	SideDestination
)

// Op names an engine operation.
type Op string

const (
	OpRead            Op = "read"
	OpWrite           Op = "write"
	OpCreate          Op = "create"
	OpDelete          Op = "delete"
	OpList            Op = "list"
	OpCreateDirectory Op = "create_directory"
	OpMove            Op = "move"
	OpSearch          Op = "search"
	OpEdit            Op = "edit"
)

// verb is the word used in "Error <verb> file" messages.
func (o Op) verb() string {
	switch o {
	case OpRead:
		return "reading file"
	case OpWrite:
		return "writing file"
	case OpCreate:
		return "creating file"
	case OpDelete:
		return "deleting file"
	case OpList:
		return "listing directory"
	case OpCreateDirectory:
		return "creating directory"
	case OpMove:
		return "moving file"
	case OpSearch:
		return "searching files"
	case OpEdit:
		return "editing file"
	default:
		return string(o)
	}
}

// Error is returned by every engine operation that does not succeed. Its
// message is the text shown to the caller.
type Error struct {
	Op   Op
	Kind Kind
	// Path is the path as the caller supplied it.
	Path string
	Side Side
	// Reason carries the policy explanation for KindDenied and KindTooLarge.
	Reason string
	// Count is the number of occurrences for KindAmbiguous.
	Count int
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDenied:
		switch e.Side {
		case SideSource:
			return "Source access denied: " + e.Reason
		case SideDestination:
			return "Destination access denied: " + e.Reason
		}
		return "Access denied: " + e.Reason
	case KindTooLarge:
		return e.Reason
	case KindNotFound:
		switch e.Op {
		case OpList:
			return "Directory not found: " + e.Path
		case OpMove:
			return "Source file not found: " + e.Path
		}
		return "File not found: " + e.Path
	case KindNotAFile:
		if e.Op == OpDelete {
			return "Not a file (directories cannot be deleted): " + e.Path
		}
		return "Not a file: " + e.Path
	case KindNotADirectory:
		return "Not a directory: " + e.Path
	case KindAlreadyExists:
		switch e.Op {
		case OpCreate:
			return fmt.Sprintf("File already exists: %s. Use write_file to update it.", e.Path)
		case OpCreateDirectory:
			return "Directory already exists: " + e.Path
		}
		return "Destination already exists: " + e.Path
	case KindDecode:
		return "File appears to be binary or uses unsupported encoding: " + e.Path
	case KindNotFoundInFile:
		return "Error: old_string not found in " + e.Path
	case KindAmbiguous:
		return fmt.Sprintf("Error: old_string appears %d times in %s. "+
			"Use replace_all=true to replace all occurrences, or provide "+
			"more context to make old_string unique.", e.Count, e.Path)
	case KindInvalidInput:
		return "Error: " + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("Error %s: %v", e.Op.verb(), e.Err)
	}
	return "Error " + e.Op.verb()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf reports the Kind of err, or KindFailed if err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindFailed
}

func denied(op Op, path string, side Side, reason string) *Error {
	return &Error{Op: op, Kind: KindDenied, Path: path, Side: side, Reason: reason}
}

func failed(op Op, path string, err error) *Error {
	return &Error{Op: op, Kind: KindFailed, Path: path, Err: err}
}

func newError(op Op, kind Kind, path string) *Error {
	return &Error{Op: op, Kind: kind, Path: path}
}
