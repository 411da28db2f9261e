package cursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
)

// seekTolerance bounds Tier 2a for time seeks: how many frames forward of
// the current position a plain decode-and-walk is tried before falling
// back to an actual demuxer seek (Tier 2b), mirroring FFFRStream.cpp's
// short-forward-scan tolerance. Frame seeks use 2*bufferLength instead.
const seekTolerance = 25

// ErrSeekFailed is returned when no tier locates the target: the recursed
// confirm pass after a demuxer seek found nothing in Tier 1, or Tier 2a ran
// off the end of the stream before reaching the target (spec.md §4.5's
// "seeking past end-of-stream is an error" edge case).
var ErrSeekFailed = errors.New("cursor: seek failed to locate target")

// SeekTime locates the first frame whose timestamp is at or after timeUS
// (spec.md §4.5, spec.md §8 S4/S5).
//
// Tier 1: if the target already sits inside the ping buffer, walk
// forward in place.
// Tier 2a: if it is a short distance ahead, decode-and-discard forward
// rather than pay for a demuxer seek.
// Tier 2b: otherwise ask the demuxer to seek, then recursively re-locate
// (Tier 1 only) to confirm the landing position, since a demuxer seek only
// promises "at or before," never "exactly at."
func (c *Cursor) SeekTime(ctx context.Context, timeUS int64) error {
	target := c.tm.TimeToTS(timeUS)
	return c.seekToTimestamp(ctx, target, false)
}

// seekToTimestamp runs the two-tier seek. recursed marks the confirm pass
// entered from seekTier2b after a demuxer seek: per spec.md §4.5 ("The
// recursed call is permitted to use Tier 1 only; if it fails to locate the
// target, the seek fails") it may only use Tier 1, never triggering another
// demuxer seek — this is what bounds the recursion to at most one demuxer
// seek per call chain, matching FFFRStream.cpp's `if (recursed) return
// false;` guard.
func (c *Cursor) seekToTimestamp(ctx context.Context, target int64, recursed bool) error {
	if ok, err := c.seekTier1(ctx, target, recursed); err != nil {
		return err
	} else if ok {
		return nil
	}
	if recursed {
		return fmt.Errorf("%w: %d not found after demuxer seek", ErrSeekFailed, target)
	}
	if ok, err := c.seekTier2a(ctx, target, seekTolerance); err != nil {
		return err
	} else if ok {
		return nil
	}
	return c.seekTier2b(ctx, target)
}

// seekTier1 walks the current ping buffer forward from pingHead looking
// for the first frame whose timestamp is >= target. It never looks at
// pong and never triggers a decode, so it only succeeds when target is
// already within what's buffered; a target earlier than the frame at
// pingHead is left to the later tiers. The confirm pass after a demuxer
// seek (recursed) skips that lower bound and accepts a landing position
// past target.
func (c *Cursor) seekTier1(ctx context.Context, target int64, recursed bool) (bool, error) {
	if !recursed && c.pingHead < len(c.ping) && target < c.ping[c.pingHead].TimeStamp {
		return false, nil
	}
	for i := c.pingHead; i < len(c.ping); i++ {
		if c.ping[i].TimeStamp >= target {
			c.pingHead = i
			return true, nil
		}
	}
	return false, nil
}

// seekTier2a decodes forward, discarding frames, as long as the target
// stays within tolerance frames of the current position — cheaper
// than a demuxer seek for a short hop.
func (c *Cursor) seekTier2a(ctx context.Context, target int64, tolerance int64) (bool, error) {
	// Frame duration expressed in container timestamp units (not
	// microseconds): FrameToTS(1)-FrameToTS(0) cancels the StartTS
	// offset both carry.
	frameDur := c.tm.FrameToTS(1) - c.tm.FrameToTS(0)
	if frameDur <= 0 {
		return false, nil
	}
	var last int64
	if c.pingHead < len(c.ping) {
		last = c.ping[c.pingHead].TimeStamp
	} else if len(c.ping) > 0 {
		last = c.ping[len(c.ping)-1].TimeStamp
	}
	framesAhead := (target - last) / frameDur
	if framesAhead < 0 || framesAhead > tolerance {
		return false, nil
	}

	for {
		frame, eof, err := c.PeekNext(ctx)
		if err != nil {
			return false, err
		}
		if eof {
			return false, fmt.Errorf("%w: end of stream before %d", ErrSeekFailed, target)
		}
		if frame.TimeStamp >= target {
			return true, nil
		}
		if err := c.Pop(ctx); err != nil {
			return false, err
		}
	}
}

// seekTier2b asks the demuxer to seek directly, then recursively confirms
// (via Tier 1 only) the landing position, since
// avformat_seek_file only guarantees landing at or before the target.
//
// The demuxer seek target below adds StartTS twice: once inside TimeToTS
// (already StartTS-shifted) and once again explicitly. This reproduces a
// quirk present in the original FFFRStream.cpp::seekInternal, not a bug
// introduced here — see DESIGN.md Open Question (a). The recursive
// confirm pass below corrects for wherever the demuxer actually lands.
func (c *Cursor) seekTier2b(ctx context.Context, target int64) error {
	demuxerTarget := target + c.tm.StartTS
	if err := c.decoder.Seek(ctx, domain.SeekTarget{
		Timestamp: demuxerTarget,
		Backward:  true,
	}); err != nil {
		return fmt.Errorf("demuxer seek: %w", err)
	}
	c.ping = c.ping[:0]
	c.pong = c.pong[:0]
	c.pingHead = 0
	if err := c.fillPing(ctx); err != nil {
		return err
	}
	return c.seekToTimestamp(ctx, target, true)
}

// SeekFrame locates frame number frameNum. If the decoder backend cannot
// seek by frame index, frame_seek_supported latches permanently false and
// every subsequent SeekFrame (on this Cursor) falls back to SeekTime,
// matching spec.md §9 and DESIGN.md Open Question (e).
func (c *Cursor) SeekFrame(ctx context.Context, frameNum int64) error {
	if !c.frameSeekSupported {
		return c.SeekTime(ctx, c.tm.FrameToTime(frameNum))
	}

	target := c.tm.FrameToTS(frameNum)
	if ok, err := c.seekTier1(ctx, target, false); err != nil {
		return err
	} else if ok {
		return nil
	}
	if ok, err := c.seekTier2a(ctx, target, int64(2*c.bufferLength)); err != nil {
		return err
	} else if ok {
		return nil
	}

	err := c.decoder.Seek(ctx, domain.SeekTarget{Timestamp: frameNum, ByFrame: true, Backward: true})
	if err != nil {
		if errors.Is(err, decode.ErrFrameSeekUnsupported) {
			c.frameSeekSupported = false
			return c.SeekTime(ctx, c.tm.FrameToTime(frameNum))
		}
		return fmt.Errorf("demuxer frame seek: %w", err)
	}

	c.ping = c.ping[:0]
	c.pong = c.pong[:0]
	c.pingHead = 0
	if err := c.fillPing(ctx); err != nil {
		return err
	}
	return c.seekToTimestamp(ctx, target, true)
}
