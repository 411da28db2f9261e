// Package probe implements spec.md §4.6's Prober: one-shot discovery, at
// Stream construction, of a stream's start timestamp, total frame count
// and total duration. Grounded on FFFRStream.cpp's getStreamStartTime/
// getStreamFrames/getStreamDuration fallback chains, with the
// ffprobe-metadata-first, full-packet-scan-last structure the teacher uses
// in internal/probe/prober.go (cache-then-compute) and
// internal/decode/ffprobe.go's ScanPackets (packet-level CSV scan).
package probe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
)

// Result is everything NewStream needs from a one-time probe.
type Result struct {
	StartTS       int64
	TotalFrames   int64
	TotalDuration int64 // microseconds
}

// Probe runs the discovery chains described in spec.md §4.6 against url,
// using info (already fetched via decode.ProbeStreamInfo) for the fast
// paths and falling back to decode.ScanPackets only when the container
// doesn't report enough on its own.
func Probe(ctx context.Context, url string, info domain.StreamInfo, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}

	startTS, err := probeStartTS(ctx, url, info, log)
	if err != nil {
		return Result{}, fmt.Errorf("probe start timestamp: %w", err)
	}

	tm := domain.TimeMap{TimeBase: info.TimeBase, FrameRate: info.FrameRate, StartTS: startTS}

	totalFrames, err := probeTotalFrames(ctx, url, info, tm, log)
	if err != nil {
		return Result{}, fmt.Errorf("probe total frames: %w", err)
	}

	totalDuration, err := probeTotalDuration(ctx, url, info, tm, log)
	if err != nil {
		return Result{}, fmt.Errorf("probe total duration: %w", err)
	}

	return Result{StartTS: startTS, TotalFrames: totalFrames, TotalDuration: totalDuration}, nil
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// probeStartTS is spec.md §4.6's first discovery: prefer the container's
// own reported start_time; otherwise scan packets for the first one with
// a valid dts and take its pts (DESIGN.md Open Question (d)). The
// original restores the demuxer's read position after this scan because
// it shares the live decode Decoder; a stateless ffprobe invocation here
// makes that restore moot (SPEC_FULL.md §2).
func probeStartTS(ctx context.Context, url string, info domain.StreamInfo, log *slog.Logger) (int64, error) {
	if info.FormatStartUS != decode.NoStartTimeReported {
		tm := domain.TimeMap{TimeBase: info.TimeBase}
		return tm.TimeToTS(info.FormatStartUS), nil
	}

	log = orDefault(log)
	log.Debug("no start_time reported, scanning packets", "url", url)
	pts, err := decode.ScanPackets(ctx, url)
	if err != nil {
		return 0, err
	}
	if len(pts) == 0 {
		return 0, nil
	}
	tm := domain.TimeMap{TimeBase: info.TimeBase}
	return tm.TimeToTS(int64(pts[0] * 1_000_000)), nil
}

// probeTotalFrames implements the 4-tier chain from spec.md §4.6:
// container duration (used when nb_frames is absent or agrees with it to
// within one frame, otherwise falling through), nb_frames alone, stream
// duration converted through the frame rate, and finally a full packet
// scan returning one more than the frame index of the largest scanned
// presentation timestamp. Tiers (a) and (b) both subtract a
// correction of ts_to_frame(2*start_ts) to compensate for the subtraction
// already folded into ts_to_frame/time_to_frame (spec.md §4.6).
func probeTotalFrames(ctx context.Context, url string, info domain.StreamInfo, tm domain.TimeMap, log *slog.Logger) (int64, error) {
	correction := tm.TSToFrame(2 * tm.StartTS)

	if info.FormatDurUS > 0 {
		computed := tm.TimeToFrame(info.FormatDurUS) - correction
		if info.NBFrames <= 0 {
			return computed, nil
		}
		diff := computed - info.NBFrames
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			return computed, nil
		}
	}
	if info.NBFrames > 0 {
		return info.NBFrames - correction, nil
	}
	if info.Duration > 0 {
		return tm.TSToFrame(info.Duration), nil
	}

	log = orDefault(log)
	log.Debug("falling back to full packet scan for total frames", "url", url)
	pts, err := decode.ScanPackets(ctx, url)
	if err != nil {
		return 0, err
	}
	if len(pts) == 0 {
		return 0, nil
	}
	maxPTS := pts[0]
	for _, p := range pts[1:] {
		if p > maxPTS {
			maxPTS = p
		}
	}
	maxTS := domain.TimeMap{TimeBase: info.TimeBase}.TimeToTS(int64(maxPTS * 1_000_000))
	return 1 + tm.TSToFrame(maxTS), nil
}

// probeTotalDuration implements spec.md §4.6's 3-tier chain: container
// duration (less a ts_to_time(2*start_ts) correction), stream duration
// rescaled to microseconds, or a full packet scan taking the last valid
// presentation timestamp.
func probeTotalDuration(ctx context.Context, url string, info domain.StreamInfo, tm domain.TimeMap, log *slog.Logger) (int64, error) {
	if info.FormatDurUS > 0 {
		return info.FormatDurUS - tm.TSToTime(2*tm.StartTS), nil
	}
	if info.Duration > 0 {
		return tm.TSToTime(info.Duration), nil
	}

	log = orDefault(log)
	log.Debug("falling back to full packet scan for total duration", "url", url)
	pts, err := decode.ScanPackets(ctx, url)
	if err != nil {
		return 0, err
	}
	if len(pts) == 0 {
		return 0, nil
	}
	last := pts[len(pts)-1]
	return int64(last*1_000_000) - tm.TSToTime(tm.StartTS), nil
}
