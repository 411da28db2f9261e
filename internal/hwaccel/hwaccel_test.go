package hwaccel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/ffframe/internal/domain"
)

func withFakeFFmpeg(t *testing.T, script string) {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}

	origPath := os.Getenv("PATH")
	t.Cleanup(func() { _ = os.Setenv("PATH", origPath) })
	_ = os.Setenv("PATH", tmp+string(os.PathListSeparator)+origPath)
}

func TestDetectCUDA_TrueWhenHWAccelAndDecoderBothPresent(t *testing.T) {
	withFakeFFmpeg(t, fakeFFmpegCUDACapableScript)
	got, err := DetectCUDA(context.Background())
	if err != nil {
		t.Fatalf("DetectCUDA: %v", err)
	}
	if !got {
		t.Fatalf("expected CUDA to be detected")
	}
}

func TestDetectCUDA_FalseWhenHWAccelPresentButNoDecoder(t *testing.T) {
	withFakeFFmpeg(t, fakeFFmpegHWAccelOnlyScript)
	got, err := DetectCUDA(context.Background())
	if err != nil {
		t.Fatalf("DetectCUDA: %v", err)
	}
	if got {
		t.Fatalf("expected CUDA not to be detected without a cuvid decoder")
	}
}

func TestDetectCUDA_FalseWhenNoHWAccelAtAll(t *testing.T) {
	withFakeFFmpeg(t, fakeFFmpegSoftwareOnlyScript)
	got, err := DetectCUDA(context.Background())
	if err != nil {
		t.Fatalf("DetectCUDA: %v", err)
	}
	if got {
		t.Fatalf("expected CUDA not to be detected on a software-only build")
	}
}

func TestSelectAccelerator(t *testing.T) {
	if got := SelectAccelerator(true); got != domain.AccelCUDA {
		t.Fatalf("expected AccelCUDA, got %v", got)
	}
	if got := SelectAccelerator(false); got != domain.AccelSoftware {
		t.Fatalf("expected AccelSoftware, got %v", got)
	}
}

const fakeFFmpegCUDACapableScript = `#!/bin/sh
if [ "$1" = "-hide_banner" ] && [ "$2" = "-hwaccels" ]; then
cat <<'EOF'
Hardware acceleration methods:
cuda
EOF
exit 0
fi

if [ "$1" = "-hide_banner" ] && [ "$2" = "-decoders" ]; then
cat <<'EOF'
------ decoders -----
V..... h264_cuvid Nvidia CUVID H264 decoder
EOF
exit 0
fi

exit 1
`

const fakeFFmpegHWAccelOnlyScript = `#!/bin/sh
if [ "$1" = "-hide_banner" ] && [ "$2" = "-hwaccels" ]; then
cat <<'EOF'
Hardware acceleration methods:
cuda
EOF
exit 0
fi

if [ "$1" = "-hide_banner" ] && [ "$2" = "-decoders" ]; then
cat <<'EOF'
------ decoders -----
V..... h264 H.264 / AVC / MPEG-4 AVC
EOF
exit 0
fi

exit 1
`

const fakeFFmpegSoftwareOnlyScript = `#!/bin/sh
if [ "$1" = "-hide_banner" ] && [ "$2" = "-hwaccels" ]; then
cat <<'EOF'
Hardware acceleration methods:
EOF
exit 0
fi

if [ "$1" = "-hide_banner" ] && [ "$2" = "-decoders" ]; then
cat <<'EOF'
------ decoders -----
V..... h264 H.264 / AVC / MPEG-4 AVC
EOF
exit 0
fi

exit 1
`
