package anydir

import (
	"errors"
	"io/fs"
	"slices"
	"sync"
)

var _ DirOps = (*Overlay)(nil)

// Overlay stacks directories. Files in earlier layers shadow files with the
// same relative path in later ones, which lets a runtime directory override
// single files of an embedded one. An Overlay is safe for concurrent use.
type Overlay struct {
	mu     sync.RWMutex
	layers []AnyDir
}

// NewOverlay creates an [Overlay] from layers, topmost first.
func NewOverlay(layers ...AnyDir) *Overlay {
	return &Overlay{layers: slices.Clone(layers)}
}

// Layers returns the layers, topmost first.
func (o *Overlay) Layers() []AnyDir {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return slices.Clone(o.layers)
}

// SetLayers replaces the layers, topmost first.
func (o *Overlay) SetLayers(layers ...AnyDir) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.layers = slices.Clone(layers)
}

// Open returns the file at name from the topmost layer that has it. A layer
// where name is missing or is not a regular file is skipped.
func (o *Overlay) Open(name string) (AnyFileEntry, error) {
	var notRegular error

	for _, layer := range o.Layers() {
		e, err := layer.Open(name)
		if err == nil {
			return e, nil
		}

		switch {
		case errors.Is(err, fs.ErrNotExist):
		case errors.Is(err, ErrNotRegular):
			if notRegular == nil {
				notRegular = err
			}
		default:
			return AnyFileEntry{}, err
		}
	}

	if notRegular != nil {
		return AnyFileEntry{}, notRegular
	}

	return AnyFileEntry{}, &PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// FileEntries returns the union of the layers' entries by relative path.
// Entries are ordered by layer, then by the order of the layer.
func (o *Overlay) FileEntries() []AnyFileEntry {
	var result []AnyFileEntry

	seen := make(map[string]struct{})

	for _, layer := range o.Layers() {
		for _, e := range layer.FileEntries() {
			if _, shadowed := seen[e.Path()]; shadowed {
				continue
			}

			seen[e.Path()] = struct{}{}
			result = append(result, e)
		}
	}

	return result
}
