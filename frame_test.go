package ffframe

import (
	"testing"

	"github.com/eleven-am/ffframe/internal/domain"
)

func testFrameTimeMap() domain.TimeMap {
	return domain.TimeMap{
		TimeBase:  domain.Rational{Num: 1, Den: 90000},
		FrameRate: domain.Rational{Num: 30, Den: 1},
		StartTS:   90000,
	}
}

func TestFrame_TimestampUsesStreamTimeMap(t *testing.T) {
	tm := testFrameTimeMap()
	raw := &domain.Frame{
		TimeStamp:   tm.FrameToTS(10),
		FrameNumber: 10,
		Raw: domain.DecodedFrame{
			Width: 4, Height: 4, PixelFormat: "rgb24",
			Planes: [][]byte{make([]byte, 48)}, Strides: []int{12},
		},
	}
	f := newFrame(raw, tm)

	if got, want := f.Timestamp(), tm.TSToTime(raw.TimeStamp); got != want {
		t.Fatalf("Timestamp() = %d, want %d", got, want)
	}
	if f.FrameNumber() != 10 {
		t.Fatalf("FrameNumber() = %d, want 10", f.FrameNumber())
	}
}

func TestFrame_PlaneReturnsBytesAndStride(t *testing.T) {
	raw := &domain.Frame{
		Raw: domain.DecodedFrame{
			Width: 2, Height: 2, PixelFormat: "rgb24",
			Planes:  [][]byte{{1, 2, 3, 4, 5, 6}},
			Strides: []int{6},
		},
	}
	f := newFrame(raw, testFrameTimeMap())

	data, stride, err := f.Plane(0)
	if err != nil {
		t.Fatalf("Plane(0): %v", err)
	}
	if stride != 6 || len(data) != 6 {
		t.Fatalf("unexpected plane: stride=%d len=%d", stride, len(data))
	}
	if f.PlaneCount() != 1 {
		t.Fatalf("PlaneCount() = %d, want 1", f.PlaneCount())
	}
}

func TestFrame_PlaneOutOfRangeIsInvalidArgument(t *testing.T) {
	raw := &domain.Frame{Raw: domain.DecodedFrame{Planes: [][]byte{{1}}, Strides: []int{1}}}
	f := newFrame(raw, testFrameTimeMap())

	if _, _, err := f.Plane(1); err == nil {
		t.Fatalf("expected an error for an out-of-range plane index")
	}
}

func TestFrame_AspectRatioIgnoresContainerDisplayAspect(t *testing.T) {
	raw := &domain.Frame{Raw: domain.DecodedFrame{Width: 16, Height: 9}}
	f := newFrame(raw, testFrameTimeMap())

	if got, want := f.AspectRatio(), 16.0/9.0; got != want {
		t.Fatalf("AspectRatio() = %v, want %v", got, want)
	}
}

func TestFrame_DataTypeReflectsDecodedAccelerator(t *testing.T) {
	raw := &domain.Frame{Raw: domain.DecodedFrame{DataType: domain.AccelCUDA}}
	f := newFrame(raw, testFrameTimeMap())

	if f.DataType() != AccelCUDA {
		t.Fatalf("DataType() = %v, want AccelCUDA", f.DataType())
	}
}
