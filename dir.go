package anydir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// DirOps lists the files of a directory.
type DirOps interface {
	// FileEntries returns the immediate regular files of the directory.
	FileEntries() []AnyFileEntry
}

var (
	_ DirOps = CtDir{}
	_ DirOps = RtDir{}
	_ DirOps = AnyDir{}
)

// CtDir is a directory embedded into the binary at build time.
type CtDir struct {
	fsys fs.FS
	root string
	dir  string
}

// NewCtDir creates a [CtDir] for the directory root inside fsys. Paths of its
// entries are relative to root.
func NewCtDir(fsys fs.FS, root string) (CtDir, error) {
	root = path.Clean(root)

	info, err := fs.Stat(fsys, root)
	if err != nil {
		return CtDir{}, err
	}

	if !info.IsDir() {
		return CtDir{}, &PathError{Op: "embed", Path: root, Err: fs.ErrInvalid}
	}

	return CtDir{fsys: fsys, root: root, dir: root}, nil
}

// EmbedDir is like [NewCtDir] but panics on error. It is meant for package
// level variables initialized from an //go:embed file system, where a missing
// root is a build defect.
func EmbedDir(fsys fs.FS, root string) CtDir {
	d, err := NewCtDir(fsys, root)
	if err != nil {
		panic(fmt.Sprintf("anydir: embed %s: %v", root, err))
	}

	return d
}

// Path returns the path of the directory inside the embedded tree.
func (d CtDir) Path() string {
	return d.dir
}

// FS returns the embedded directory as [fs.FS] rooted at the directory.
func (d CtDir) FS() fs.FS {
	if d.dir == "." {
		return d.fsys
	}

	sub, err := fs.Sub(d.fsys, d.dir)
	if err != nil {
		// d.dir is a valid path, checked on construction.
		panic(err)
	}

	return sub
}

// FileEntries returns the embedded files directly in the directory in lexical
// order.
func (d CtDir) FileEntries() []AnyFileEntry {
	if d.fsys == nil {
		return nil
	}

	entries, err := fs.ReadDir(d.fsys, d.dir)
	if err != nil {
		logger().Warn("could not read embedded directory",
			zap.String("path", d.dir), zap.Error(err))

		return nil
	}

	result := make([]AnyFileEntry, 0, len(entries))

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		result = append(result, ctEntry(d.entry(e.Name())))
	}

	return result
}

// Open returns the embedded regular file at name, a slash separated path
// relative to the directory.
func (d CtDir) Open(name string) (CtFileEntry, error) {
	full, err := d.resolve("open", name)
	if err != nil {
		return CtFileEntry{}, err
	}

	info, err := fs.Stat(d.fsys, full)
	if err != nil {
		return CtFileEntry{}, err
	}

	if !info.Mode().IsRegular() {
		return CtFileEntry{}, &PathError{Op: "open", Path: name, Err: ErrNotRegular}
	}

	return d.entry(name), nil
}

// Sub returns the embedded directory at name. Entries of the returned
// directory keep paths relative to the root of the embedded tree.
func (d CtDir) Sub(name string) (CtDir, error) {
	full, err := d.resolve("sub", name)
	if err != nil {
		return CtDir{}, err
	}

	info, err := fs.Stat(d.fsys, full)
	if err != nil {
		return CtDir{}, err
	}

	if !info.IsDir() {
		return CtDir{}, &PathError{Op: "sub", Path: name, Err: fs.ErrInvalid}
	}

	return CtDir{fsys: d.fsys, root: d.root, dir: full}, nil
}

func (d CtDir) resolve(op, name string) (string, error) {
	if d.fsys == nil {
		return "", &PathError{Op: op, Path: name, Err: ErrUnknownKind}
	}

	if !fs.ValidPath(name) {
		return "", &PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	return path.Join(d.dir, name), nil
}

func (d CtDir) entry(name string) CtFileEntry {
	full := path.Join(d.dir, name)

	rel := full
	if d.root != "." {
		rel = strings.TrimPrefix(full, d.root+"/")
	}

	return CtFileEntry{relativePath: rel, fsys: d.fsys, name: full}
}

// RtDir is a directory on the host filesystem. It is listed again on every
// call.
type RtDir struct {
	path string
}

// NewRtDir creates a [RtDir] for the directory at path. The path is not
// checked.
func NewRtDir(path string) RtDir {
	return RtDir{path: path}
}

// Path returns the base path of the directory.
func (d RtDir) Path() string {
	return d.path
}

// FileEntries returns the regular files directly in the directory. Symbolic
// links to regular files are included. If the directory cannot be read, a
// warning is logged and no entries are returned.
func (d RtDir) FileEntries() []AnyFileEntry {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		logger().Warn("could not read directory",
			zap.String("path", d.path), zap.Error(err))

		if len(entries) == 0 {
			return nil
		}
	}

	result := make([]AnyFileEntry, 0, len(entries))

	for _, e := range entries {
		abs := joinRaw(d.path, e.Name())
		if !isRegularFile(e.Type(), abs) {
			continue
		}

		result = append(result, rtEntry(RtFileEntry{
			absolutePath: abs,
			relativePath: stripPrefix(abs, d.path),
		}))
	}

	return result
}

// Open returns the regular file at name, a slash separated path relative to
// the directory.
func (d RtDir) Open(name string) (RtFileEntry, error) {
	if !fs.ValidPath(name) {
		return RtFileEntry{}, &PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	abs := joinRaw(d.path, filepath.FromSlash(name))

	info, err := os.Stat(abs)
	if errors.Is(err, syscall.ENOTDIR) {
		// A file where name expects a directory: name does not exist here.
		return RtFileEntry{}, &PathError{Op: "open", Path: abs, Err: fs.ErrNotExist}
	}

	if err != nil {
		return RtFileEntry{}, err
	}

	if !info.Mode().IsRegular() {
		return RtFileEntry{}, &PathError{Op: "open", Path: abs, Err: ErrNotRegular}
	}

	return RtFileEntry{
		absolutePath: abs,
		relativePath: stripPrefix(abs, d.path),
	}, nil
}

// AnyDir is either a [CtDir] or a [RtDir].
type AnyDir struct {
	kind Kind
	ct   CtDir
	rt   RtDir
}

// Ct wraps an embedded directory.
func Ct(d CtDir) AnyDir {
	return AnyDir{kind: KindCt, ct: d}
}

// Rt returns a runtime directory rooted at path.
func Rt(path string) AnyDir {
	return AnyDir{kind: KindRt, rt: NewRtDir(path)}
}

// Kind returns the kind of the wrapped directory.
func (d AnyDir) Kind() Kind {
	return d.kind
}

// Ct returns the wrapped directory if it is embedded.
func (d AnyDir) Ct() (CtDir, bool) {
	return d.ct, d.kind == KindCt
}

// Rt returns the wrapped directory if it is read from the filesystem.
func (d AnyDir) Rt() (RtDir, bool) {
	return d.rt, d.kind == KindRt
}

// FileEntries returns the immediate regular files of the wrapped directory.
func (d AnyDir) FileEntries() []AnyFileEntry {
	switch d.kind {
	case KindCt:
		return d.ct.FileEntries()
	case KindRt:
		return d.rt.FileEntries()
	default:
		return nil
	}
}

// Open returns the regular file at name in the wrapped directory.
func (d AnyDir) Open(name string) (AnyFileEntry, error) {
	switch d.kind {
	case KindCt:
		e, err := d.ct.Open(name)
		if err != nil {
			return AnyFileEntry{}, err
		}

		return ctEntry(e), nil
	case KindRt:
		e, err := d.rt.Open(name)
		if err != nil {
			return AnyFileEntry{}, err
		}

		return rtEntry(e), nil
	default:
		return AnyFileEntry{}, &PathError{Op: "open", Path: name, Err: ErrUnknownKind}
	}
}

// String returns the kind tag and the path of the wrapped directory, like
// "rt:./web".
func (d AnyDir) String() string {
	switch d.kind {
	case KindCt:
		return "ct:" + d.ct.Path()
	case KindRt:
		return "rt:" + d.rt.Path()
	default:
		return d.kind.String()
	}
}
