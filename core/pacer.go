package orchestration

import (
	"context"
	"time"
)

const defaultFrameDuration = 20 * time.Millisecond

// mediaPacer re-times a synthesized clip back to real time: the voice
// engine returns audio much faster than it plays, the telephony side
// expects one frame per frame interval.
type mediaPacer struct {
	frameSize     int
	frameDuration time.Duration

	// sleep is replaceable for tests.
	sleep func(time.Duration)
}

func newMediaPacer(frameSize int, frameDuration time.Duration) *mediaPacer {
	if frameDuration <= 0 {
		frameDuration = defaultFrameDuration
	}
	return &mediaPacer{
		frameSize:     frameSize,
		frameDuration: frameDuration,
		sleep:         time.Sleep,
	}
}

// Pace splits the clip into frames and emits them sequentially, sleeping
// one frame interval between sends. The final short frame is sent unpadded.
// Cancellation is honored between frames; the frame in flight completes.
func (p *mediaPacer) Pace(ctx context.Context, clip []byte, emit func(frame []byte) error) error {
	for offset := 0; offset < len(clip); offset += p.frameSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(offset+p.frameSize, len(clip))
		if err := emit(clip[offset:end]); err != nil {
			return err
		}

		if end < len(clip) {
			p.sleep(p.frameDuration)
		}
	}
	return nil
}
