package decode

import (
	"context"

	"github.com/eleven-am/ffframe/internal/domain"
)

// FakeDecoder is an in-memory Decoder test double, grounded on
// controller_test.go's stubStorage pattern: no subprocess, no real media,
// deterministic output so Cursor/Seeker/Prober tests don't depend on
// ffmpeg/ffprobe being installed.
type FakeDecoder struct {
	info     domain.StreamInfo
	total    int64 // total frames available before EOF
	pos      int64 // next frame index to emit
	seekable bool  // FrameSeekSupported() return value
	closed   bool

	// AgainEvery, if > 0, makes NextFrame return StatusAgain once every
	// N calls before producing a frame, exercising the cursor's retry
	// loop (the real FFmpegDecoder never does this).
	AgainEvery int
	callCount  int

	// AlwaysFailFrameSeek makes Seek report errFrameSeekUnsupported for
	// every ByFrame request regardless of the seekable flag, so tests
	// can exercise the latch transition on a decoder that otherwise
	// claims frame-seek support (FrameSeekSupported() == true).
	AlwaysFailFrameSeek bool
}

// NewFakeDecoder builds a decoder that will emit exactly total frames at
// info's frame rate/time base before reporting EOF.
func NewFakeDecoder(info domain.StreamInfo, total int64, frameSeekSupported bool) *FakeDecoder {
	return &FakeDecoder{info: info, total: total, seekable: frameSeekSupported}
}

func (f *FakeDecoder) Info() domain.StreamInfo { return f.info }

func (f *FakeDecoder) FrameSeekSupported() bool { return f.seekable }

func (f *FakeDecoder) NextFrame(ctx context.Context) (domain.DecodedFrame, domain.DecodeStatus, error) {
	f.callCount++
	if f.AgainEvery > 0 && f.callCount%f.AgainEvery == 0 {
		return domain.DecodedFrame{}, domain.StatusAgain, nil
	}
	if f.closed || f.pos >= f.total {
		return domain.DecodedFrame{}, domain.StatusEOF, nil
	}
	tm := domain.TimeMap{TimeBase: f.info.TimeBase, FrameRate: f.info.FrameRate}
	ts := tm.FrameToTS(f.pos)
	f.pos++
	return domain.DecodedFrame{
		PTS:         ts,
		Width:       f.info.Width,
		Height:      f.info.Height,
		PixelFormat: "rgb24",
		Planes:      [][]byte{make([]byte, f.info.Width*f.info.Height*3)},
		Strides:     []int{f.info.Width * 3},
		DataType:    domain.AccelSoftware,
	}, domain.StatusFrame, nil
}

func (f *FakeDecoder) Seek(ctx context.Context, target domain.SeekTarget) error {
	tm := domain.TimeMap{TimeBase: f.info.TimeBase, FrameRate: f.info.FrameRate}
	frame := tm.TSToFrame(target.Timestamp)
	if target.ByFrame {
		if !f.seekable || f.AlwaysFailFrameSeek {
			return errFrameSeekUnsupported
		}
		frame = target.Timestamp
	}
	if frame < 0 {
		frame = 0
	}
	f.pos = frame
	return nil
}

func (f *FakeDecoder) Close() error {
	f.closed = true
	return nil
}
