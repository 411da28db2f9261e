// Package ffframe provides random-access, frame-indexed or time-indexed
// reading of a video substream on top of an external demuxer+decoder
// (concretely, an ffmpeg/ffprobe subprocess pair — see SPEC_FULL.md §2).
//
// # Basic usage
//
//	stream, err := ffframe.NewStream(ctx, "file:///path/to/video.mp4", ffframe.Options{
//	    BufferLength: 16,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	frame, err := stream.GetNext(ctx)
//	if err := stream.SeekTime(ctx, 5_000_000); err != nil { // 5s in
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Every exported Stream method that touches the cursor or decoder takes the
// same exclusive lock (the metadata and conversion accessors read fields
// fixed at construction and take no lock), so a single Stream is safe to
// call from multiple goroutines but sees no concurrency benefit from it
// (spec.md §5) — distinct Streams over distinct files are fully
// independent.
package ffframe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eleven-am/ffframe/internal/cursor"
	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
	"github.com/eleven-am/ffframe/internal/probe"

	"github.com/google/uuid"
)

// Stream is a random-access cursor over one video substream.
type Stream struct {
	id  string
	log *slog.Logger

	decoder decode.Decoder
	cur     *cursor.Cursor
	tm      domain.TimeMap
	info    domain.StreamInfo

	totalFrames   int64
	totalDuration int64

	mu sync.Mutex
}

// NewStream opens url, probes its video substream once (spec.md §4.6), and
// returns a Stream positioned at the first frame. Every Stream is tagged
// with a uuid (the teacher's own instance-identification idiom, see
// DESIGN.md) so its log lines are distinguishable from any other Stream's.
func NewStream(ctx context.Context, url string, opts Options) (*Stream, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	log := slog.Default().With("stream_id", id, "url", url)

	dec, err := decode.OpenFFmpegDecoder(ctx, url, opts.Accelerator, opts.OutputHost, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	info := dec.Info()
	result, err := probe.Probe(ctx, url, info, log)
	if err != nil {
		_ = dec.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	dec.SetStartTS(result.StartTS)

	return newStreamFromDecoder(ctx, id, log, dec, info, result, opts)
}

// newStreamFromDecoder builds a Stream around an already-open, already-
// probed decoder. Split out of NewStream so tests can substitute
// decode.NewFakeDecoder in place of a real ffmpeg subprocess, the same
// dependency-injection shape controller_test.go uses to exercise
// Controller against stubStorage/stubCoordinator instead of the real
// collaborators.
func newStreamFromDecoder(ctx context.Context, id string, log *slog.Logger, dec decode.Decoder, info domain.StreamInfo, result probe.Result, opts Options) (*Stream, error) {
	tm := domain.TimeMap{TimeBase: info.TimeBase, FrameRate: info.FrameRate, StartTS: result.StartTS}

	cur, err := cursor.New(ctx, dec, tm, opts.BufferLength, log)
	if err != nil {
		_ = dec.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	log.Info("stream opened",
		"width", info.Width, "height", info.Height,
		"total_frames", result.TotalFrames, "total_duration_us", result.TotalDuration)

	return &Stream{
		id:            id,
		log:           log,
		decoder:       dec,
		cur:           cur,
		tm:            tm,
		info:          info,
		totalFrames:   result.TotalFrames,
		totalDuration: result.TotalDuration,
	}, nil
}

// Close releases the underlying decoder's resources.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoder.Close()
}

// PeekNext returns the next frame without consuming it (spec.md §8 P1).
func (s *Stream) PeekNext(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, eof, err := s.cur.PeekNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if eof {
		return nil, ErrEndOfStream
	}
	return newFrame(raw, s.tm), nil
}

// GetNext returns the next frame and advances past it.
func (s *Stream) GetNext(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, eof, err := s.cur.GetNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if eof {
		return nil, ErrEndOfStream
	}
	return newFrame(raw, s.tm), nil
}

// GetSequence returns one frame per entry in indices, an ascending list of
// frame offsets relative to the cursor's current position (spec.md §4.4,
// §8 P7). indices[0]==0 means "the frame about to be peeked"; every entry
// counts frames from the cursor's position when GetSequence was called, so
// {0, 5, 11} on a fresh Stream returns frames 0, 5 and 11. A non-ascending
// list is rejected as ErrInvalidArgument (spec.md §7).
func (s *Stream) GetSequence(ctx context.Context, indices []int64) ([]*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raws, err := s.cur.GetSequence(ctx, indices)
	if err != nil {
		if errors.Is(err, cursor.ErrNonAscendingIndices) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	out := make([]*Frame, len(raws))
	for i, r := range raws {
		out[i] = newFrame(r, s.tm)
	}
	return out, nil
}

// Pop advances past the current frame without returning it.
func (s *Stream) Pop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cur.Pop(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return nil
}

// SeekTime repositions the cursor at the first frame whose timestamp is at
// or after timeUS (microseconds), spec.md §4.5.
func (s *Stream) SeekTime(ctx context.Context, timeUS int64) error {
	if timeUS < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cur.SeekTime(ctx, timeUS); err != nil {
		return fmt.Errorf("%w: %v", ErrSeekFailed, err)
	}
	return nil
}

// SeekFrame repositions the cursor at frame number frameNum. Falls back to
// SeekTime, permanently, the first time the decoder backend reports it
// cannot seek by frame index (spec.md §9).
func (s *Stream) SeekFrame(ctx context.Context, frameNum int64) error {
	if frameNum < 0 {
		return fmt.Errorf("%w: negative frame number", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cur.SeekFrame(ctx, frameNum); err != nil {
		return fmt.Errorf("%w: %v", ErrSeekFailed, err)
	}
	return nil
}

// FrameSeekSupported reports whether SeekFrame currently seeks by frame
// index rather than falling back to SeekTime.
func (s *Stream) FrameSeekSupported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.FrameSeekSupported()
}

// Width is the video substream's pixel width.
func (s *Stream) Width() int { return s.info.Width }

// Height is the video substream's pixel height.
func (s *Stream) Height() int { return s.info.Height }

// AspectRatio prefers the container's reported display aspect ratio,
// falling back to Width()/Height() when none was reported. Distinct from
// Frame.AspectRatio, which never consults the container (DESIGN.md Open
// Question (f)).
func (s *Stream) AspectRatio() float64 {
	if !s.info.DisplayAspect.IsZero() {
		return s.info.DisplayAspect.Float64()
	}
	if s.info.Height == 0 {
		return 0
	}
	return float64(s.info.Width) / float64(s.info.Height)
}

// TotalFrames is the Prober's discovered frame count (spec.md §4.6).
func (s *Stream) TotalFrames() int64 { return s.totalFrames }

// Duration is the Prober's discovered total duration, in microseconds.
func (s *Stream) Duration() int64 { return s.totalDuration }

// FrameRate is the stream's nominal frame rate.
func (s *Stream) FrameRate() float64 { return s.info.FrameRate.Float64() }

// FrameTime is the duration, in microseconds, of a single frame at
// FrameRate.
func (s *Stream) FrameTime() int64 { return s.tm.FrameDuration() }

// TimeToTS converts a microsecond time into a container timestamp
// (spec.md §4.1).
func (s *Stream) TimeToTS(timeUS int64) int64 { return s.tm.TimeToTS(timeUS) }

// TSToTime converts a container timestamp into microseconds.
func (s *Stream) TSToTime(ts int64) int64 { return s.tm.TSToTime(ts) }

// FrameToTS converts a 0-based frame number into a container timestamp.
func (s *Stream) FrameToTS(frame int64) int64 { return s.tm.FrameToTS(frame) }

// TSToFrame converts a container timestamp into a 0-based frame number.
func (s *Stream) TSToFrame(ts int64) int64 { return s.tm.TSToFrame(ts) }

// FrameToTime converts a 0-based frame number directly into microseconds.
func (s *Stream) FrameToTime(frame int64) int64 { return s.tm.FrameToTime(frame) }

// TimeToFrame converts microseconds directly into a 0-based frame number.
func (s *Stream) TimeToFrame(timeUS int64) int64 { return s.tm.TimeToFrame(timeUS) }
