package anydir

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]CtDir)

	// byLiteral maps a bare path literal to the qualified keys registered
	// for it.
	byLiteral = make(map[string][]string)
)

// Register makes an embedded directory available to [New] under key. Code
// written by cmd/embeddir registers "<import path>:<literal>", so packages
// embedding the same literal do not collide, and the directory can also be
// found by the bare literal as long as only one package embedded it. Register
// panics if key is already registered.
func Register(key string, d CtDir) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[key]; dup {
		panic("anydir: Register called twice for " + key)
	}

	registry[key] = d

	// Import paths never contain a colon.
	if _, literal, ok := strings.Cut(key, ":"); ok {
		byLiteral[literal] = append(byLiteral[literal], key)
	}
}

// Lookup returns the embedded directory registered under key, or under the
// only qualified key for the bare literal key.
func Lookup(key string) (CtDir, bool) {
	d, err := lookup(key)
	return d, err == nil
}

func lookup(key string) (CtDir, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if d, ok := registry[key]; ok {
		return d, nil
	}

	switch keys := byLiteral[key]; len(keys) {
	case 0:
		return CtDir{}, ErrNotEmbedded
	case 1:
		return registry[keys[0]], nil
	default:
		return CtDir{}, fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(keys, ", "))
	}
}

// Registered returns the sorted keys of all registered embedded directories.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return slices.Sorted(maps.Keys(registry))
}

// New returns the directory of the given kind for path. For [KindCt], path is
// a registry key or the literal the directory was embedded from. For
// [KindRt], path is any filesystem path.
func New(kind Kind, path string) (AnyDir, error) {
	switch kind {
	case KindCt:
		d, err := lookup(path)
		if err != nil {
			return AnyDir{}, &PathError{Op: "embed", Path: path, Err: err}
		}

		return Ct(d), nil
	case KindRt:
		return Rt(path), nil
	default:
		return AnyDir{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// MustNew is like [New] but panics on error.
func MustNew(kind Kind, path string) AnyDir {
	d, err := New(kind, path)
	if err != nil {
		panic(err)
	}

	return d
}
