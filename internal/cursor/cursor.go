// Package cursor implements spec.md §4.3-§4.5's RingCursor, DecodePump and
// Seeker as one type, the way FFFRStream.cpp keeps them as methods of a
// single Stream class operating on the same ping/pong buffers (see
// SPEC_FULL.md's module-5 note on why this isn't split across two Go types).
package cursor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
)

// ErrNonAscendingIndices is returned by GetSequence when indices is not
// strictly ascending, or contains a value that precedes the cursor's
// accumulated position (spec.md §7 invalid_argument).
var ErrNonAscendingIndices = errors.New("cursor: get_sequence indices must be strictly ascending")

// Cursor is the double-buffered frame cursor driving one Decoder. None of
// its methods lock: callers (ffframe.Stream) hold one exclusive lock
// across every public call and every internal recursive call, which is
// this rewrite's idiomatic-Go equivalent of the original's reentrant
// mutex.
type Cursor struct {
	decoder decode.Decoder
	tm      domain.TimeMap
	log     *slog.Logger

	bufferLength int
	ping         []*domain.Frame
	pong         []*domain.Frame
	pingHead     int

	frameSeekSupported bool
}

// New constructs a Cursor and performs its first decode block so that
// PeekNext/GetNext have something to return immediately.
func New(ctx context.Context, dec decode.Decoder, tm domain.TimeMap, bufferLength int, log *slog.Logger) (*Cursor, error) {
	if bufferLength < 1 {
		bufferLength = 1
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Cursor{
		decoder:            dec,
		tm:                 tm,
		log:                log,
		bufferLength:       bufferLength,
		frameSeekSupported: dec.FrameSeekSupported(),
	}
	if err := c.fillPing(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cursor) fillPing(ctx context.Context) error {
	ping, eof, err := decodeBlock(ctx, c.decoder, c.ping[:0], c.bufferLength, c.tm, c.log)
	if err != nil {
		return err
	}
	c.ping = ping
	c.pingHead = 0
	_ = eof
	return nil
}

// swapBuffers makes pong the new ping (after decoding into it) once ping
// is exhausted.
func (c *Cursor) swapBuffers(ctx context.Context) error {
	if len(c.pong) == 0 {
		pong, _, err := decodeBlock(ctx, c.decoder, c.pong[:0], c.bufferLength, c.tm, c.log)
		if err != nil {
			return err
		}
		c.pong = pong
	}
	c.ping, c.pong = c.pong, c.ping[:0]
	c.pingHead = 0
	return nil
}

// PeekNext returns the next frame without consuming it. Calling it
// repeatedly with no intervening GetNext/Pop returns the same frame
// (spec.md §8 P1).
func (c *Cursor) PeekNext(ctx context.Context) (*domain.Frame, bool, error) {
	if c.pingHead < len(c.ping) {
		return c.ping[c.pingHead], false, nil
	}
	if err := c.swapBuffers(ctx); err != nil {
		return nil, false, err
	}
	if c.pingHead < len(c.ping) {
		return c.ping[c.pingHead], false, nil
	}
	return nil, true, nil
}

// Pop advances the cursor past the current frame without returning it.
func (c *Cursor) Pop(ctx context.Context) error {
	_, eof, err := c.PeekNext(ctx)
	if err != nil || eof {
		return err
	}
	c.pingHead++
	return nil
}

// GetNext is PeekNext followed by Pop: the returned frame equals what a
// prior PeekNext would have returned (spec.md §8 P2).
func (c *Cursor) GetNext(ctx context.Context) (*domain.Frame, bool, error) {
	frame, eof, err := c.PeekNext(ctx)
	if err != nil || eof {
		return nil, eof, err
	}
	c.pingHead++
	return frame, false, nil
}

// GetSequence walks indices, an ascending list of relative frame offsets
// from the cursor's current position, and returns one frame per index
// (spec.md §4.4, §8 P7/S3). Holding start = 0, each index i is taken as:
// reject if i < start; PeekNext+Pop for every position in [start, i) to
// skip over it; then GetNext for the frame at i itself; then start = i + 1.
// indices must be strictly ascending — ErrNonAscendingIndices otherwise.
func (c *Cursor) GetSequence(ctx context.Context, indices []int64) ([]*domain.Frame, error) {
	out := make([]*domain.Frame, 0, len(indices))
	start := int64(0)
	for _, i := range indices {
		if i < start {
			return nil, fmt.Errorf("%w: index %d precedes cursor position %d", ErrNonAscendingIndices, i, start)
		}
		for j := start; j < i; j++ {
			if _, eof, err := c.PeekNext(ctx); err != nil {
				return out, fmt.Errorf("get sequence skip to offset %d: %w", i, err)
			} else if eof {
				return out, nil
			}
			if err := c.Pop(ctx); err != nil {
				return out, fmt.Errorf("get sequence skip to offset %d: %w", i, err)
			}
		}
		frame, eof, err := c.GetNext(ctx)
		if err != nil {
			return out, fmt.Errorf("get sequence at offset %d: %w", i, err)
		}
		if eof {
			return out, nil
		}
		out = append(out, frame)
		start = i + 1
	}
	return out, nil
}

// FrameSeekSupported reports the current (possibly latched-false) state
// of frame-index seeking, spec.md §9's permanent fallback latch.
func (c *Cursor) FrameSeekSupported() bool {
	return c.frameSeekSupported
}
