package cursor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/ffframe/internal/decode"
	"github.com/eleven-am/ffframe/internal/domain"
)

// decodeBlock is the DecodePump of spec.md §4.3: it reads and decodes
// frames from decoder into dst until dst holds bufferLength frames or the
// demuxer is exhausted, whichever comes first. Each NextFrame call yields
// at most one frame, so a block never grows past bufferLength. Grounded on
// FFFRStream.cpp's decodeNextBlock (packet-read/submit/drain loop) and the
// codec_delay formula in StreamInfo.CodecDelay.
func decodeBlock(ctx context.Context, dec decode.Decoder, dst []*domain.Frame, bufferLength int, tm domain.TimeMap, log *slog.Logger) ([]*domain.Frame, bool, error) {
	for len(dst) < bufferLength {
		raw, status, err := dec.NextFrame(ctx)
		if err != nil {
			return dst, false, fmt.Errorf("decode block: %w", err)
		}
		switch status {
		case domain.StatusAgain:
			continue
		case domain.StatusEOF:
			log.Debug("decode pump reached end of stream", "frames_filled", len(dst))
			return dst, true, nil
		case domain.StatusFrame:
			dst = append(dst, &domain.Frame{
				TimeStamp:   raw.PTS,
				FrameNumber: tm.TSToFrame(raw.PTS),
				Raw:         raw,
			})
		}
	}
	return dst, false, nil
}
