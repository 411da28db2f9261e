// Package domain holds the types shared between the decode, cursor and
// probe packages: the rational time-base arithmetic, the stream metadata a
// Prober discovers once, and the frame a Cursor hands back.
package domain

import "github.com/eleven-am/ffframe/internal/timebase"

// Rational is a fraction expressed as numerator/denominator, the same shape
// FFmpeg's AVRational uses for time bases and frame rates.
type Rational = timebase.Rational

// DecodeStatus is the outcome of one Decoder.NextFrame call.
type DecodeStatus int

const (
	// StatusFrame means a frame was produced.
	StatusFrame DecodeStatus = iota
	// StatusAgain means the decoder needs more packets before it can
	// produce a frame. The concrete subprocess backend never returns
	// this (reads block until data or EOF) but fakeDecoder can, so the
	// cursor's decode loop must handle it.
	StatusAgain
	// StatusEOF means the demuxer is exhausted.
	StatusEOF
)

// DecodedFrame is the raw payload a Decoder hands back for one decoded
// picture: presentation timestamp in the stream's own time base, geometry,
// and one byte slice per plane.
type DecodedFrame struct {
	PTS         int64
	Width       int
	Height      int
	PixelFormat string
	Planes      [][]byte
	Strides     []int
	DataType    Accelerator
}

// StreamInfo is everything the Prober and TimeMap need about the selected
// video substream, discovered once at Stream construction.
type StreamInfo struct {
	TimeBase      Rational
	FrameRate     Rational
	Width         int
	Height        int
	DisplayAspect Rational // zero value means "not reported, fall back to Width/Height"
	HasBFrames    int
	NBFrames      int64 // 0 means "not reported by the container"
	Duration      int64 // stream-level duration in TimeBase units, 0 means "not reported"
	FormatStartUS int64 // video stream's reported start_time in microseconds, may be negative/unset
	FormatDurUS   int64 // container-level duration in microseconds, 0 means "not reported"
}

// CodecDelay is max(1, delay-contributed-frames), the number of extra
// frames a decoder may buffer internally before it starts emitting output
// (spec.md §4.3).
func (s StreamInfo) CodecDelay() int64 {
	delay := int64(s.HasBFrames)
	if delay < 1 {
		delay = 1
	}
	return delay
}

// Frame is the immutable carrier a Cursor hands out: a DecodedFrame plus
// the two derived addresses (container timestamp and 0-based frame number)
// computed once at decode time.
type Frame struct {
	TimeStamp   int64
	FrameNumber int64
	Raw         DecodedFrame
}

// AspectRatio always reports width/height, matching the original decoded
// frame's own accessor (display_aspect_ratio correction lives on the
// stream, not the frame).
// TODO: Handle this with anamorphic content.
func (f *Frame) AspectRatio() float64 {
	if f.Raw.Height == 0 {
		return 0
	}
	return float64(f.Raw.Width) / float64(f.Raw.Height)
}

// SeekTarget describes one demuxer-level seek request.
type SeekTarget struct {
	TimestampMin int64
	Timestamp    int64
	TimestampMax int64
	Backward     bool
	ByFrame      bool
}
