package orchestration

import (
	"context"
	"fmt"
	"testing"
)

func TestPhraseRotationFairness(t *testing.T) {
	phrases := []string{"one", "two", "three"}
	rotation := newPhraseRotation(phrases)

	const rounds = 5
	counts := map[string]int{}
	for i := 0; i < rounds*len(phrases); i++ {
		counts[rotation.Next()]++
	}

	for _, phrase := range phrases {
		if counts[phrase] != rounds {
			t.Fatalf("phrase %q selected %d times, want %d", phrase, counts[phrase], rounds)
		}
	}
}

func TestFillerAudioCachesPerPhrase(t *testing.T) {
	syntheses := 0
	manager := newFillerManager([]string{"one moment"}, func(_ context.Context, text string) ([]byte, error) {
		syntheses++
		return []byte(text), nil
	})

	for i := 0; i < 3; i++ {
		phrase, clip := manager.FillerAudio(context.Background())
		if phrase != "one moment" || string(clip) != "one moment" {
			t.Fatalf("unexpected filler: %q / %v", phrase, clip)
		}
	}

	if syntheses != 1 {
		t.Fatalf("expected one synthesis call for a cached phrase, got %d", syntheses)
	}
}

func TestFillerAudioFallsBackToTextOnFailure(t *testing.T) {
	syntheses := 0
	manager := newFillerManager([]string{"one moment"}, func(context.Context, string) ([]byte, error) {
		syntheses++
		return nil, fmt.Errorf("synthesis down")
	})

	phrase, clip := manager.FillerAudio(context.Background())
	if phrase != "one moment" || clip != nil {
		t.Fatalf("expected text fallback, got %q / %v", phrase, clip)
	}

	// Failures are not cached.
	manager.FillerAudio(context.Background())
	if syntheses != 2 {
		t.Fatalf("expected a retry after failure, got %d calls", syntheses)
	}
}

func TestFillerManagerDefaultsPhrases(t *testing.T) {
	manager := newFillerManager(nil, func(_ context.Context, text string) ([]byte, error) {
		return []byte(text), nil
	})
	seen := map[string]bool{}
	for range defaultFillerPhrases {
		phrase, _ := manager.FillerAudio(context.Background())
		if seen[phrase] {
			t.Fatalf("phrase %q repeated before full rotation", phrase)
		}
		seen[phrase] = true
	}
}
