package domain

import "github.com/eleven-am/ffframe/internal/timebase"

// TimeMap implements spec.md §4.1's six pure conversions between the three
// time domains a Stream exposes: container timestamp (TimeBase units),
// microseconds, and 0-based frame number (FrameRate units). Grounded on
// FFFRStream.cpp's timeToTimeStamp/timeStampToTime/frameToTimeStamp/
// timeStampToFrame/frameToTime/timeToFrame, which all route through
// av_rescale_q plus a StartTimeStamp offset.
type TimeMap struct {
	TimeBase  Rational
	FrameRate Rational
	StartTS   int64
}

// TimeToTS converts a microsecond time into a container timestamp.
func (m TimeMap) TimeToTS(timeUS int64) int64 {
	return timebase.Rescale(timeUS, timebase.Microsecond, m.TimeBase) + m.StartTS
}

// TSToTime converts a container timestamp into microseconds.
func (m TimeMap) TSToTime(ts int64) int64 {
	return timebase.Rescale(ts-m.StartTS, m.TimeBase, timebase.Microsecond)
}

// FrameToTS converts a 0-based frame number into a container timestamp.
func (m TimeMap) FrameToTS(frame int64) int64 {
	inverseRate := Rational{Num: m.FrameRate.Den, Den: m.FrameRate.Num}
	return timebase.Rescale(frame, inverseRate, m.TimeBase) + m.StartTS
}

// TSToFrame converts a container timestamp into a 0-based frame number.
func (m TimeMap) TSToFrame(ts int64) int64 {
	inverseRate := Rational{Num: m.FrameRate.Den, Den: m.FrameRate.Num}
	return timebase.Rescale(ts-m.StartTS, m.TimeBase, inverseRate)
}

// FrameToTime converts a 0-based frame number directly into microseconds.
func (m TimeMap) FrameToTime(frame int64) int64 {
	inverseRate := Rational{Num: m.FrameRate.Den, Den: m.FrameRate.Num}
	return timebase.Rescale(frame, inverseRate, timebase.Microsecond)
}

// TimeToFrame converts microseconds directly into a 0-based frame number.
func (m TimeMap) TimeToFrame(timeUS int64) int64 {
	inverseRate := Rational{Num: m.FrameRate.Den, Den: m.FrameRate.Num}
	return timebase.Rescale(timeUS, timebase.Microsecond, inverseRate)
}

// FrameDuration is the duration, in microseconds, of a single frame at
// this stream's frame rate — FrameToTime(1).
func (m TimeMap) FrameDuration() int64 {
	return m.FrameToTime(1)
}
