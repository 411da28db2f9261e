package ffframe

import (
	"fmt"

	"github.com/eleven-am/ffframe/internal/domain"
)

// Frame is an immutable decoded picture handed out by a Stream. It is
// created once by the DecodePump and never mutated afterward (spec.md
// §3's Frame lifecycle invariant).
type Frame struct {
	raw         *domain.Frame
	timestampUS int64
}

// Timestamp is the frame's presentation time in microseconds.
func (f *Frame) Timestamp() int64 {
	return f.timestampUS
}

// newFrame wraps an internal domain.Frame, pre-computing its microsecond
// timestamp so Frame.Timestamp never needs the stream's TimeMap again.
func newFrame(raw *domain.Frame, tm domain.TimeMap) *Frame {
	return &Frame{raw: raw, timestampUS: tm.TSToTime(raw.TimeStamp)}
}

// FrameNumber is the frame's 0-based index, derived from its presentation
// timestamp.
func (f *Frame) FrameNumber() int64 {
	return f.raw.FrameNumber
}

// Width is the frame's pixel width.
func (f *Frame) Width() int {
	return f.raw.Raw.Width
}

// Height is the frame's pixel height.
func (f *Frame) Height() int {
	return f.raw.Raw.Height
}

// AspectRatio always reports Width()/Height() — unlike Stream.AspectRatio,
// it does not consult the container's display aspect ratio. This mirrors
// FFFRFrame.cpp's getAspectRatio, anamorphic content and all (DESIGN.md
// Open Question (f)).
// TODO: Handle this with anamorphic content.
func (f *Frame) AspectRatio() float64 {
	return f.raw.AspectRatio()
}

// PixelFormat names the frame's pixel layout (e.g. "rgb24").
func (f *Frame) PixelFormat() string {
	return f.raw.Raw.PixelFormat
}

// PlaneCount is the number of data planes this frame carries.
func (f *Frame) PlaneCount() int {
	return len(f.raw.Raw.Planes)
}

// Plane returns the raw bytes and row stride for plane index i.
func (f *Frame) Plane(i int) ([]byte, int, error) {
	if i < 0 || i >= len(f.raw.Raw.Planes) {
		return nil, 0, fmt.Errorf("%w: plane %d out of range (have %d)", ErrInvalidArgument, i, len(f.raw.Raw.Planes))
	}
	return f.raw.Raw.Planes[i], f.raw.Raw.Strides[i], nil
}

// DataType reports whether this frame's bytes came from a software or CUDA
// decode path (FFFRFrame.cpp's getDataType, simplified per DESIGN.md: a
// CLI subprocess can't be introspected for a live hw_frames_ctx, so this
// reflects the Stream's configured Accelerator instead).
func (f *Frame) DataType() Accelerator {
	return f.raw.Raw.DataType
}
