package ffframe

import "errors"

// Error kinds from spec.md §7: every failure a Stream can report collapses
// into one of these five, wrapped with context via fmt.Errorf("...: %w",
// ...) the same way controller.go/internal/transcode wrap errors.
var (
	// ErrOpenFailed means the container or substream could not be opened
	// or probed.
	ErrOpenFailed = errors.New("ffframe: open failed")

	// ErrDecodeFailed means the decoder rejected a packet or frame.
	ErrDecodeFailed = errors.New("ffframe: decode failed")

	// ErrEndOfStream means a read was requested past the last frame.
	ErrEndOfStream = errors.New("ffframe: end of stream")

	// ErrSeekFailed means neither tier of the Seeker could locate the
	// requested time or frame.
	ErrSeekFailed = errors.New("ffframe: seek failed")

	// ErrInvalidArgument means a caller-supplied index or timestamp was
	// out of range or otherwise nonsensical.
	ErrInvalidArgument = errors.New("ffframe: invalid argument")
)
