package anydir

import (
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

// FileEntry is a single file of a directory.
type FileEntry interface {
	// Path returns the path relative to the directory the entry belongs to.
	Path() string

	// AbsolutePath returns the filesystem path of the entry. Embedded entries
	// have none.
	AbsolutePath() (string, bool)

	// ReadBytes returns the full content.
	ReadBytes() ([]byte, error)

	// ReadString returns the content as string. It fails with ErrInvalidData
	// if the content is not valid UTF-8.
	ReadString() (string, error)

	// String returns the relative path.
	String() string
}

var (
	_ FileEntry = CtFileEntry{}
	_ FileEntry = RtFileEntry{}
	_ FileEntry = AnyFileEntry{}
)

// CtFileEntry is a file embedded into the binary at build time. Its content
// never changes during the life of the process.
type CtFileEntry struct {
	relativePath string
	fsys         fs.FS
	name         string
}

// Path returns the path of the file inside the embedded tree.
func (e CtFileEntry) Path() string {
	return e.relativePath
}

// AbsolutePath always reports false. The content lives inside the executable.
func (e CtFileEntry) AbsolutePath() (string, bool) {
	return "", false
}

// ReadBytes returns a copy of the embedded content.
func (e CtFileEntry) ReadBytes() ([]byte, error) {
	if e.fsys == nil {
		return nil, &PathError{Op: "read", Path: e.relativePath, Err: fs.ErrInvalid}
	}

	return fs.ReadFile(e.fsys, e.name)
}

// ReadString returns the embedded content as string.
func (e CtFileEntry) ReadString() (string, error) {
	b, err := e.ReadBytes()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", invalidData(e.relativePath)
	}

	return string(b), nil
}

// String returns the relative path.
func (e CtFileEntry) String() string {
	return e.relativePath
}

// RtFileEntry is a file on the host filesystem. Every read goes to the
// filesystem again.
type RtFileEntry struct {
	absolutePath string
	relativePath string
}

// NewRtFileEntry creates a [RtFileEntry] for the file at path. The relative
// path is path with the current working directory stripped, or path itself
// if it does not lie below the working directory.
func NewRtFileEntry(path string) (RtFileEntry, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return RtFileEntry{}, &PathError{Op: "getwd", Path: path, Err: err}
	}

	return RtFileEntry{
		absolutePath: path,
		relativePath: stripPrefix(path, cwd),
	}, nil
}

// Path returns the path relative to the directory the entry was listed from.
func (e RtFileEntry) Path() string {
	return e.relativePath
}

// AbsolutePath returns the path the content is read from.
func (e RtFileEntry) AbsolutePath() (string, bool) {
	return e.absolutePath, true
}

// ReadBytes reads the file.
func (e RtFileEntry) ReadBytes() ([]byte, error) {
	return os.ReadFile(e.absolutePath)
}

// ReadString reads the file as string.
func (e RtFileEntry) ReadString() (string, error) {
	b, err := e.ReadBytes()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", invalidData(e.absolutePath)
	}

	return string(b), nil
}

// String returns the relative path.
func (e RtFileEntry) String() string {
	return e.relativePath
}

// AnyFileEntry is either a [CtFileEntry] or a [RtFileEntry]. Its methods
// forward to the wrapped entry.
type AnyFileEntry struct {
	kind Kind
	ct   CtFileEntry
	rt   RtFileEntry
}

// FileFromPath creates an [AnyFileEntry] for a file on the host filesystem.
// See [NewRtFileEntry].
func FileFromPath(path string) (AnyFileEntry, error) {
	e, err := NewRtFileEntry(path)
	if err != nil {
		return AnyFileEntry{}, err
	}

	return AnyFileEntry{kind: KindRt, rt: e}, nil
}

func ctEntry(e CtFileEntry) AnyFileEntry {
	return AnyFileEntry{kind: KindCt, ct: e}
}

func rtEntry(e RtFileEntry) AnyFileEntry {
	return AnyFileEntry{kind: KindRt, rt: e}
}

// Kind returns the kind of the wrapped entry.
func (e AnyFileEntry) Kind() Kind {
	return e.kind
}

// Ct returns the wrapped entry if it is embedded.
func (e AnyFileEntry) Ct() (CtFileEntry, bool) {
	return e.ct, e.kind == KindCt
}

// Rt returns the wrapped entry if it is read from the filesystem.
func (e AnyFileEntry) Rt() (RtFileEntry, bool) {
	return e.rt, e.kind == KindRt
}

// Path returns the relative path of the wrapped entry.
func (e AnyFileEntry) Path() string {
	switch e.kind {
	case KindCt:
		return e.ct.Path()
	case KindRt:
		return e.rt.Path()
	default:
		return ""
	}
}

// AbsolutePath returns the filesystem path of the wrapped entry, if any.
func (e AnyFileEntry) AbsolutePath() (string, bool) {
	switch e.kind {
	case KindCt:
		return e.ct.AbsolutePath()
	case KindRt:
		return e.rt.AbsolutePath()
	default:
		return "", false
	}
}

// ReadBytes returns the content of the wrapped entry.
func (e AnyFileEntry) ReadBytes() ([]byte, error) {
	switch e.kind {
	case KindCt:
		return e.ct.ReadBytes()
	case KindRt:
		return e.rt.ReadBytes()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(e.kind))
	}
}

// ReadString returns the content of the wrapped entry as string.
func (e AnyFileEntry) ReadString() (string, error) {
	switch e.kind {
	case KindCt:
		return e.ct.ReadString()
	case KindRt:
		return e.rt.ReadString()
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownKind, int(e.kind))
	}
}

// String returns the relative path of the wrapped entry.
func (e AnyFileEntry) String() string {
	return e.Path()
}
