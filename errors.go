package anydir

import (
	"errors"
	"io/fs"
)

var (
	// ErrInvalidData is returned by ReadString if the content is not valid
	// UTF-8.
	ErrInvalidData = errors.New("invalid data")

	// ErrNotRegular is returned if a looked up path exists but is not a
	// regular file.
	ErrNotRegular = errors.New("not a regular file")

	// ErrNotEmbedded is returned if no embedded directory is registered for a
	// path literal.
	ErrNotEmbedded = errors.New("directory not embedded")

	// ErrAmbiguous is returned if a bare path literal was embedded by more than
	// one package.
	ErrAmbiguous = errors.New("directory embedded by several packages")

	// ErrUnknownKind is returned for kind tags other than ct and rt, and by
	// operations on zero value handles.
	ErrUnknownKind = errors.New("unknown kind")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError

func invalidData(path string) error {
	return &PathError{Op: "read", Path: path, Err: ErrInvalidData}
}
