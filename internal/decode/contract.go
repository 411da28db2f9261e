// Package decode binds spec.md §6's external demuxer+decoder collaborator
// to a concrete FFmpeg/ffprobe subprocess backend (see SPEC_FULL.md §2 and
// DESIGN.md for why: the corpus never links a cgo FFmpeg binding, every
// repo that touches FFmpeg shells out to the CLI).
package decode

import (
	"context"
	"errors"

	"github.com/eleven-am/ffframe/internal/domain"
)

// errFrameSeekUnsupported is returned by a Decoder.Seek implementation
// whose backend cannot honor SeekTarget.ByFrame. internal/cursor uses this
// to latch frame_seek_supported permanently false (spec.md §9).
var errFrameSeekUnsupported = errors.New("decode: frame seek not supported by this backend")

// ErrFrameSeekUnsupported is the exported form internal/cursor compares
// against with errors.Is.
var ErrFrameSeekUnsupported = errFrameSeekUnsupported

// Decoder is the demuxer+decoder collaborator spec.md §6 leaves
// unspecified: open a substream, describe it, and produce decoded frames
// one at a time, seekable by container timestamp. Packet-read, packet-
// submit and frame-drain collapse into one NextFrame call because the
// concrete backend (a running ffmpeg subprocess emitting raw frames on a
// pipe) cannot expose those as separate steps — see DESIGN.md.
type Decoder interface {
	// Info returns the stream metadata discovered at open time.
	Info() domain.StreamInfo

	// NextFrame reads and decodes the next frame. StatusEOF means the
	// demuxer has nothing left; StatusAgain means try again (the
	// concrete FFmpegDecoder never returns this, fakeDecoder can).
	NextFrame(ctx context.Context) (domain.DecodedFrame, domain.DecodeStatus, error)

	// Seek flushes decoder state and repositions the demuxer at target,
	// equivalent to avcodec_flush_buffers + avformat_seek_file.
	Seek(ctx context.Context, target domain.SeekTarget) error

	// FrameSeekSupported reports whether this backend can seek by frame
	// index (AVSEEK_FLAG_FRAME) rather than by timestamp. The FFmpeg CLI
	// backend always returns false.
	FrameSeekSupported() bool

	// Close releases any resources (subprocess, pipes) held by the
	// decoder.
	Close() error
}
