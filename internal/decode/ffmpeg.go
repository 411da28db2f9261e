package decode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/eleven-am/ffframe/internal/domain"
)

// pixelFormat is the raw pixel format every FFmpegDecoder pipe uses. A
// fixed, single-plane, 3-bytes-per-pixel format keeps frame boundaries on
// the pipe a pure function of width*height, so NextFrame never has to
// parse a container of its own around the raw bytes.
const pixelFormat = "rgb24"

// FFmpegDecoder drives one ffmpeg subprocess as the demuxer+decoder
// collaborator, reading successive raw video frames off its stdout pipe.
// Grounded on internal/transcode/worker.go's exec.CommandContext +
// StdoutPipe + bufio pattern and internal/hwaccel's accelerator flag
// tables.
type FFmpegDecoder struct {
	url        string
	accel      domain.Accelerator
	outputHost bool
	info       domain.StreamInfo
	log        *slog.Logger

	mu            sync.Mutex
	cmd           *exec.Cmd
	stdout        *bufio.Reader
	closed        bool
	seekBaseTS    int64
	framesEmitted int64
}

// OpenFFmpegDecoder probes url for stream metadata via ffprobe and starts
// an ffmpeg subprocess positioned at the beginning of the video substream.
func OpenFFmpegDecoder(ctx context.Context, url string, accel domain.Accelerator, outputHost bool, log *slog.Logger) (*FFmpegDecoder, error) {
	info, err := ProbeStreamInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	d := &FFmpegDecoder{url: url, accel: accel, outputHost: outputHost, info: info, log: log}
	if err := d.start(ctx, domain.SeekTarget{}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *FFmpegDecoder) Info() domain.StreamInfo {
	return d.info
}

// SetStartTS calibrates the baseline nextPTS reconstructs frame timestamps
// from. ffmpeg's rawvideo pipe carries no timestamp of its own, so until
// this is called every frame is numbered as if the container's start
// timestamp were zero. NewStream calls this once, with the Prober's
// result, before pulling any frames — a Seek recalibrates the baseline
// again afterward, so this only matters for frames decoded before the
// first seek.
func (d *FFmpegDecoder) SetStartTS(startTS int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.framesEmitted == 0 {
		d.seekBaseTS = startTS
	}
}

func (d *FFmpegDecoder) FrameSeekSupported() bool {
	// The CLI only accepts a time offset (-ss); there is no command-line
	// equivalent of AVSEEK_FLAG_FRAME. See DESIGN.md Open Question (e).
	return false
}

func (d *FFmpegDecoder) frameBytes() int {
	return d.info.Width * d.info.Height * 3
}

func (d *FFmpegDecoder) NextFrame(ctx context.Context) (domain.DecodedFrame, domain.DecodeStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.stdout == nil {
		return domain.DecodedFrame{}, domain.StatusEOF, nil
	}

	size := d.frameBytes()
	buf := make([]byte, size)
	if _, err := io.ReadFull(d.stdout, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			d.log.Debug("ffmpeg decoder reached end of stream", "url", d.url)
			return domain.DecodedFrame{}, domain.StatusEOF, nil
		}
		return domain.DecodedFrame{}, domain.StatusEOF, fmt.Errorf("read decoded frame: %w", err)
	}

	frame := domain.DecodedFrame{
		PTS:         d.nextPTS(),
		Width:       d.info.Width,
		Height:      d.info.Height,
		PixelFormat: pixelFormat,
		Planes:      [][]byte{buf},
		Strides:     []int{d.info.Width * 3},
		DataType:    d.accel,
	}
	return frame, domain.StatusFrame, nil
}

// nextPTS advances an internal frame counter scaled by frame duration.
// ffmpeg's raw-video pipe output carries no timestamp of its own once
// rawvideo-muxed, so PTS is reconstructed from the constant frame rate —
// the same assumption spec.md's frame_to_ts conversion already makes for
// the well-behaved case.
func (d *FFmpegDecoder) nextPTS() int64 {
	ts := domain.TimeMap{TimeBase: d.info.TimeBase, FrameRate: d.info.FrameRate, StartTS: d.seekBaseTS}.FrameToTS(d.framesEmitted)
	d.framesEmitted++
	return ts
}

func (d *FFmpegDecoder) Seek(ctx context.Context, target domain.SeekTarget) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seekLocked(ctx, target)
}

func (d *FFmpegDecoder) seekLocked(ctx context.Context, target domain.SeekTarget) error {
	if target.ByFrame {
		return ErrFrameSeekUnsupported
	}
	d.stopLocked()
	tm := domain.TimeMap{TimeBase: d.info.TimeBase, FrameRate: d.info.FrameRate}
	seekUS := tm.TSToTime(target.Timestamp)
	d.seekBaseTS = target.Timestamp
	d.framesEmitted = 0
	return d.startAt(ctx, seekUS)
}

func (d *FFmpegDecoder) start(ctx context.Context, target domain.SeekTarget) error {
	return d.startAt(ctx, 0)
}

func (d *FFmpegDecoder) startAt(ctx context.Context, seekUS int64) error {
	args := []string{"-nostats", "-hide_banner", "-loglevel", "error"}
	args = append(args, d.accel.DecodeFlags(d.outputHost)...)
	if seekUS > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.6f", float64(seekUS)/1_000_000))
	}
	args = append(args, "-i", d.url)

	// A raw-video stdout pipe can only ever carry host bytes, so CUDA
	// frames are downloaded regardless of OutputHost; the Frame's
	// DataType still reports the configured accelerator (see
	// DESIGN.md's note on this simplification).
	vf := "format=rgb24"
	if d.accel == domain.AccelCUDA {
		vf = "hwdownload,format=nv12,format=rgb24"
	}
	args = append(args,
		"-map", "0:v:0",
		"-vf", vf,
		"-f", "rawvideo",
		"-pix_fmt", pixelFormat,
		"-vsync", "0",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	d.cmd = cmd
	d.stdout = bufio.NewReaderSize(stdout, d.frameBytes())
	d.log.Debug("ffmpeg decoder started", "url", d.url, "seek_us", seekUS, "accel", d.accel)
	return nil
}

func (d *FFmpegDecoder) stopLocked() {
	if d.cmd == nil {
		return
	}
	_ = d.cmd.Process.Kill()
	_ = d.cmd.Wait()
	d.cmd = nil
	d.stdout = nil
}

func (d *FFmpegDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
	return nil
}
