package ffframe

import (
	"context"
	"fmt"

	"github.com/eleven-am/ffframe/internal/domain"
	"github.com/eleven-am/ffframe/internal/hwaccel"
)

// Accelerator selects the decode path a Stream uses, spec.md §6's `type`
// constructor option.
type Accelerator = domain.Accelerator

const (
	// AccelSoftware decodes entirely on the CPU.
	AccelSoftware = domain.AccelSoftware

	// AccelCUDA decodes on an NVIDIA GPU.
	AccelCUDA = domain.AccelCUDA
)

// Options configures a Stream, mirroring spec.md §6's constructor options
// table (buffer_length, type, output_host).
type Options struct {
	// BufferLength is the number of frames the DecodePump fills per
	// block; a block only stops short of it at EOF. Default: 8.
	BufferLength int

	// Accelerator selects software or CUDA decoding. Default:
	// AccelSoftware.
	Accelerator Accelerator

	// OutputHost, when Accelerator is AccelCUDA, drops ffmpeg's
	// -hwaccel_output_format cuda flag so the decoder itself hands frames
	// back in host memory. Ignored for AccelSoftware. Frame.Plane returns
	// host bytes either way, since every CUDA decode is downloaded onto the
	// raw-video pipe; DataType on the resulting Frame still reports
	// AccelCUDA. Default: false.
	OutputHost bool
}

func (o *Options) setDefaults() {
	if o.BufferLength == 0 {
		o.BufferLength = 8
	}
	if o.Accelerator == "" {
		o.Accelerator = AccelSoftware
	}
}

// DetectAccelerator probes the local ffmpeg binary for CUDA decode support
// and returns the Accelerator Options.Accelerator should be set to: AccelCUDA
// if available, AccelSoftware otherwise. Callers that don't care about GPU
// decode can simply leave Options.Accelerator unset instead.
func DetectAccelerator(ctx context.Context) (Accelerator, error) {
	cuda, err := hwaccel.DetectCUDA(ctx)
	if err != nil {
		return AccelSoftware, fmt.Errorf("detect accelerator: %w", err)
	}
	return hwaccel.SelectAccelerator(cuda), nil
}

func (o *Options) validate() error {
	if o.BufferLength < 1 {
		return fmt.Errorf("%w: BufferLength must be >= 1, got %d", ErrInvalidArgument, o.BufferLength)
	}
	if o.Accelerator != AccelSoftware && o.Accelerator != AccelCUDA {
		return fmt.Errorf("%w: Accelerator must be AccelSoftware or AccelCUDA, got %q", ErrInvalidArgument, o.Accelerator)
	}
	return nil
}
