package decode

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"context"

	"github.com/eleven-am/ffframe/internal/domain"
)

// ProbeStreamInfo runs ffprobe once to discover the video substream's time
// base, frame rate, geometry, reported start time, frame count and
// duration — the fast-path input to internal/probe's Prober, grounded on
// the teacher's internal/probe/prober.go ffprobeOutput/ffprobeStream JSON
// shape.
func ProbeStreamInfo(ctx context.Context, url string) (domain.StreamInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_format",
		"-show_streams",
		"-of", "json",
		url,
	)

	output, err := cmd.Output()
	if err != nil {
		return domain.StreamInfo{}, fmt.Errorf("ffprobe stream info: %w", err)
	}

	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return domain.StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(ff.Streams) == 0 {
		return domain.StreamInfo{}, fmt.Errorf("ffprobe stream info: no video stream reported")
	}
	s := ff.Streams[0]

	info := domain.StreamInfo{
		TimeBase:   parseRational(s.TimeBase, domain.Rational{Num: 1, Den: 1_000_000}),
		FrameRate:  parseRational(s.RFrameRate, domain.Rational{}),
		Width:      s.Width,
		Height:     s.Height,
		HasBFrames: s.HasBFrames,
		NBFrames:   parseInt64(s.NBFrames),
	}
	if s.SampleAspectRatio != "" && s.SampleAspectRatio != "0:1" {
		info.DisplayAspect = parseColonRational(s.DisplayAspectRatio)
	}
	if dur, err := strconv.ParseFloat(s.Duration, 64); err == nil {
		info.Duration = domain.TimeMap{TimeBase: info.TimeBase}.TimeToTS(int64(dur * 1_000_000))
	}
	if startSec, err := strconv.ParseFloat(s.StartTime, 64); err == nil {
		info.FormatStartUS = int64(startSec * 1_000_000)
	} else {
		info.FormatStartUS = NoStartTimeReported
	}
	if dur, err := strconv.ParseFloat(ff.Format.Duration, 64); err == nil {
		info.FormatDurUS = int64(dur * 1_000_000)
	}

	return info, nil
}

// NoStartTimeReported marks StreamInfo.FormatStartUS as "ffprobe did not
// report a start_time field," distinct from a legitimately-zero start
// time, so the Prober knows to fall back to a packet scan (spec.md §4.6,
// the original's getStreamStartTime).
const NoStartTimeReported = int64(-1) << 62

// ScanPackets runs a full-file packet scan over the video substream and
// returns, in file order, each packet's presentation timestamp (seconds)
// gated by dts validity. This backs
// the Prober's Tier-4 fallback for start_ts/total_frames/total_duration
// and reproduces the original's dts-as-gate/pts-as-value quirk exactly
// (DESIGN.md Open Question (d)): a packet only counts if its dts was
// valid, and when it does the *pts* value is what gets recorded.
func ScanPackets(ctx context.Context, url string) ([]float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,dts_time",
		"-of", "csv=p=0",
		url,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffprobe packet scan: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffprobe packet scan: %w", err)
	}

	var pts []float64
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ",")
		if len(parts) < 2 {
			continue
		}
		if _, err := strconv.ParseFloat(parts[1], 64); err != nil {
			continue // dts invalid, packet does not count
		}
		p, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		pts = append(pts, p)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffprobe packet scan: %w", err)
	}
	return pts, nil
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	TimeBase           string `json:"time_base"`
	RFrameRate         string `json:"r_frame_rate"`
	SampleAspectRatio  string `json:"sample_aspect_ratio"`
	DisplayAspectRatio string `json:"display_aspect_ratio"`
	HasBFrames         int    `json:"has_b_frames"`
	NBFrames           string `json:"nb_frames"`
	Duration           string `json:"duration"`
	StartTime          string `json:"start_time"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

func parseRational(s string, fallback domain.Rational) domain.Rational {
	r := parseSlashRational(s)
	if r.Den == 0 {
		return fallback
	}
	return r
}

func parseSlashRational(s string) domain.Rational {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return domain.Rational{}
	}
	num, err1 := strconv.ParseInt(parts[0], 10, 64)
	den, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || den == 0 {
		return domain.Rational{}
	}
	return domain.Rational{Num: num, Den: den}
}

func parseColonRational(s string) domain.Rational {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return domain.Rational{}
	}
	num, err1 := strconv.ParseInt(parts[0], 10, 64)
	den, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || den == 0 {
		return domain.Rational{}
	}
	return domain.Rational{Num: num, Den: den}
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
