package ffframe

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
	"github.com/eleven-am/ffframe/internal/probe"
)

// newCountingManager builds a Manager whose open function hands out fresh
// fake-decoder Streams without touching a real ffmpeg subprocess, counting
// how many times a given path was actually opened.
func newCountingManager(t *testing.T) (*Manager, *int32) {
	t.Helper()
	var opens int32
	m := NewManager(Options{BufferLength: 4})
	m.open = func(ctx context.Context, path string) (*Stream, error) {
		atomic.AddInt32(&opens, 1)
		info := domain.StreamInfo{
			TimeBase:  domain.Rational{Num: 1, Den: 90000},
			FrameRate: domain.Rational{Num: 30, Den: 1},
			Width:     4,
			Height:    4,
		}
		dec := decode.NewFakeDecoder(info, 50, true)
		result := probe.Result{TotalFrames: 50}
		opts := Options{BufferLength: 4}
		opts.setDefaults()
		return newStreamFromDecoder(ctx, path, slog.Default(), dec, info, result, opts)
	}
	return m, &opens
}

func TestManager_AcquireSharesOneStreamPerPath(t *testing.T) {
	ctx := context.Background()
	m, opens := newCountingManager(t)

	s1, err := m.Acquire(ctx, "video.mp4")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s2, err := m.Acquire(ctx, "video.mp4")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected the same Stream for repeated Acquire calls on the same path")
	}
	if atomic.LoadInt32(opens) != 1 {
		t.Fatalf("expected exactly one open, got %d", atomic.LoadInt32(opens))
	}
}

func TestManager_ReleaseClosesOnLastReference(t *testing.T) {
	ctx := context.Background()
	m, _ := newCountingManager(t)

	if _, err := m.Acquire(ctx, "video.mp4"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := m.Acquire(ctx, "video.mp4"); err != nil {
		t.Fatalf("Acquire (again): %v", err)
	}

	if err := m.Release("video.mp4"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := m.Acquire(ctx, "video.mp4"); err != nil {
		t.Fatalf("Acquire after one release should still share the live stream: %v", err)
	}

	if err := m.Release("video.mp4"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := m.Release("video.mp4"); err != nil {
		t.Fatalf("final Release: %v", err)
	}

	if err := m.Release("video.mp4"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument releasing an already-closed path, got %v", err)
	}
}

func TestManager_ReleaseUnknownPathIsInvalidArgument(t *testing.T) {
	m, _ := newCountingManager(t)
	if err := m.Release("never-acquired.mp4"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestManager_AcquireReopensAfterFullRelease(t *testing.T) {
	ctx := context.Background()
	m, opens := newCountingManager(t)

	if _, err := m.Acquire(ctx, "video.mp4"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := m.Release("video.mp4"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := m.Acquire(ctx, "video.mp4"); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	if got := atomic.LoadInt32(opens); got != 2 {
		t.Fatalf("expected a fresh open after the stream was fully released, got %d opens", got)
	}
}
