package orchestration

import (
	"context"
	"testing"
	"time"
)

func TestPaceSplitsPayloadIntoFrames(t *testing.T) {
	pacer := newMediaPacer(160, 20*time.Millisecond)
	sleeps := 0
	pacer.sleep = func(d time.Duration) {
		if d != 20*time.Millisecond {
			t.Fatalf("unexpected sleep %v", d)
		}
		sleeps++
	}

	var frames [][]byte
	err := pacer.Pace(context.Background(), make([]byte, 1200), func(frame []byte) error {
		frames = append(frames, frame)
		return nil
	})
	if err != nil {
		t.Fatalf("Pace failed: %v", err)
	}

	if len(frames) != 8 {
		t.Fatalf("expected 7 full frames plus one short frame, got %d", len(frames))
	}
	for i := 0; i < 7; i++ {
		if len(frames[i]) != 160 {
			t.Fatalf("frame %d has %d bytes, want 160", i, len(frames[i]))
		}
	}
	if len(frames[7]) != 80 {
		t.Fatalf("final frame has %d bytes, want 80 unpadded", len(frames[7]))
	}
	if sleeps != 7 {
		t.Fatalf("expected a sleep between each of the 8 sends, got %d", sleeps)
	}
}

func TestPaceStopsOnCancellation(t *testing.T) {
	pacer := newMediaPacer(160, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	sent := 0
	pacer.sleep = func(time.Duration) {
		if sent == 2 {
			cancel()
		}
	}

	err := pacer.Pace(ctx, make([]byte, 1600), func(frame []byte) error {
		sent++
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if sent != 2 {
		t.Fatalf("expected pacing to stop at the frame boundary, sent %d frames", sent)
	}
}

func TestPaceEmptyPayload(t *testing.T) {
	pacer := newMediaPacer(160, 20*time.Millisecond)
	err := pacer.Pace(context.Background(), nil, func([]byte) error {
		t.Fatal("no frames expected for an empty payload")
		return nil
	})
	if err != nil {
		t.Fatalf("Pace failed: %v", err)
	}
}
