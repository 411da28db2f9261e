// Package hwaccel probes the local ffmpeg binary for CUDA decode support,
// adapted from the teacher's encoder-side hwaccel/encoder detection to the
// decode-only, two-accelerator model this module exposes (domain.
// AccelSoftware/AccelCUDA). Grounded on internal/hwaccel/hwaccel.go's
// `ffmpeg -hwaccels`/`-encoders` CLI probing, retargeted at decoders since
// this module never encodes.
package hwaccel

import (
	"bufio"
	"context"
	"os/exec"
	"strings"

	"github.com/eleven-am/ffframe/internal/domain"
)

// DetectCUDA reports whether the ffmpeg binary on PATH both advertises the
// "cuda" hwaccel and ships a cuvid decoder, i.e. whether domain.AccelCUDA
// can actually be used. It only errors when ffmpeg itself can't be invoked,
// never for a missing capability.
func DetectCUDA(ctx context.Context) (bool, error) {
	hwaccels, err := detectHWAccels(ctx)
	if err != nil {
		return false, err
	}
	if !hwaccels["cuda"] {
		return false, nil
	}

	decoders, err := detectDecoders(ctx)
	if err != nil {
		return false, err
	}
	return decoders["h264_cuvid"] || decoders["hevc_cuvid"], nil
}

// SelectAccelerator is the two-way version of the teacher's priority-
// ordered Select: prefer CUDA when available, otherwise fall back to
// software decode.
func SelectAccelerator(cudaAvailable bool) domain.Accelerator {
	if cudaAvailable {
		return domain.AccelCUDA
	}
	return domain.AccelSoftware
}

func detectHWAccels(ctx context.Context) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-hwaccels")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && line != "Hardware acceleration methods:" {
			result[line] = true
		}
	}
	return result, nil
}

func detectDecoders(ctx context.Context) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-decoders")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "h264_cuvid") {
			result["h264_cuvid"] = true
		}
		if strings.Contains(line, "hevc_cuvid") {
			result["hevc_cuvid"] = true
		}
	}
	return result, nil
}
