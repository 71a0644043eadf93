// Package workspace provides the named registry that processing steps
// read arrays from and write arrays into. A Workspace maps string keys to
// either *nd.Array values or nested Parameters maps (raw acquisition
// parameter dictionaries); no other value kind is accepted.
//
// Each Workspace carries its own processing-buffer name, the key that
// processing steps target by default. It is instance state, never a
// package-wide global, and purely a naming convenience rather than an
// execution gate.
//
// A Workspace is not safe for concurrent use; embedders must serialize
// access externally.
package workspace

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-odnp/nd"
)

const defaultProcessingBuffer = "proc"

var (
	// ErrKeyNotFound indicates a lookup for an unknown entry.
	ErrKeyNotFound = errors.New("workspace: key not found")
	// ErrEmptyKey indicates an empty entry key or buffer name.
	ErrEmptyKey = errors.New("workspace: key must be a non-empty string")
	// ErrValueType indicates a value that is neither *nd.Array nor Parameters.
	ErrValueType = errors.New("workspace: value must be *nd.Array or Parameters")
	// ErrNotArray indicates an entry holding parameters where an array was
	// expected.
	ErrNotArray = errors.New("workspace: entry is not an array")
)

// Parameters is a nested free-form parameter dictionary entry.
type Parameters map[string]any

// Workspace is an insertion-ordered registry of named data buffers.
type Workspace struct {
	keys    []string
	entries map[string]any
	procBuf string
}

// Option configures Workspace construction.
type Option func(*Workspace)

// WithProcessingBuffer sets the initial processing-buffer name.
func WithProcessingBuffer(name string) Option {
	return func(w *Workspace) {
		if name != "" {
			w.procBuf = name
		}
	}
}

// New returns an empty Workspace. The processing buffer defaults to
// "proc".
func New(opts ...Option) *Workspace {
	w := &Workspace{
		entries: make(map[string]any),
		procBuf: defaultProcessingBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Set stores value under key. value must be an *nd.Array or a Parameters
// map (a plain map[string]any is accepted and stored as Parameters).
func (w *Workspace) Set(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}

	switch v := value.(type) {
	case *nd.Array:
		if v == nil {
			return fmt.Errorf("%w: got nil *nd.Array", ErrValueType)
		}
		w.put(key, v)
	case Parameters:
		w.put(key, v)
	case map[string]any:
		w.put(key, Parameters(v))
	default:
		return fmt.Errorf("%w: got %T", ErrValueType, value)
	}
	return nil
}

func (w *Workspace) put(key string, value any) {
	if _, ok := w.entries[key]; !ok {
		w.keys = append(w.keys, key)
	}
	w.entries[key] = value
}

// Get returns the entry under key.
func (w *Workspace) Get(key string) (any, error) {
	v, ok := w.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

// GetArray returns the array entry under key, failing when the entry
// holds parameters instead.
func (w *Workspace) GetArray(key string) (*nd.Array, error) {
	v, err := w.Get(key)
	if err != nil {
		return nil, err
	}
	a, ok := v.(*nd.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, key)
	}
	return a, nil
}

// Delete removes the entry under key.
func (w *Workspace) Delete(key string) error {
	if _, ok := w.entries[key]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(w.entries, key)
	for i, k := range w.keys {
		if k == key {
			w.keys = append(w.keys[:i], w.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Pop removes and returns the entry under key.
func (w *Workspace) Pop(key string) (any, error) {
	v, err := w.Get(key)
	if err != nil {
		return nil, err
	}
	_ = w.Delete(key)
	return v, nil
}

// Clear removes every entry.
func (w *Workspace) Clear() {
	w.keys = nil
	w.entries = make(map[string]any)
}

// CopyEntry deep-copies the entry under src into dst. Arrays are copied
// via their deep Copy; Parameters maps are copied entry by entry.
func (w *Workspace) CopyEntry(src, dst string) error {
	v, err := w.Get(src)
	if err != nil {
		return err
	}
	switch e := v.(type) {
	case *nd.Array:
		return w.Set(dst, e.Copy())
	case Parameters:
		cp := make(Parameters, len(e))
		for k, val := range e {
			cp[k] = val
		}
		return w.Set(dst, cp)
	default:
		return fmt.Errorf("%w: got %T", ErrValueType, v)
	}
}

// MoveEntry removes the entry under src and reinserts the same object
// under dst.
func (w *Workspace) MoveEntry(src, dst string) error {
	v, err := w.Pop(src)
	if err != nil {
		return err
	}
	return w.Set(dst, v)
}

// Keys returns the entry keys in insertion order.
func (w *Workspace) Keys() []string {
	return append([]string(nil), w.keys...)
}

// Len returns the number of entries.
func (w *Workspace) Len() int { return len(w.keys) }

// Has reports whether an entry exists under key.
func (w *Workspace) Has(key string) bool {
	_, ok := w.entries[key]
	return ok
}

// ProcessingBuffer returns the key processing steps target by default.
func (w *Workspace) ProcessingBuffer() string { return w.procBuf }

// SetProcessingBuffer renames the default processing target.
func (w *Workspace) SetProcessingBuffer(name string) error {
	if name == "" {
		return ErrEmptyKey
	}
	w.procBuf = name
	return nil
}

// Proc returns the array stored under the processing buffer key.
func (w *Workspace) Proc() (*nd.Array, error) {
	return w.GetArray(w.procBuf)
}
