package orchestration

import (
	"context"
	"sync"
)

var defaultFillerPhrases = []string{
	"Let me think about that.",
	"One moment please.",
	"Let me check on that for you.",
	"Just a second.",
	"Give me a moment to look into that.",
	"Hmm, let me see.",
	"Let me find that out for you.",
	"Bear with me for a moment.",
}

// phraseRotation cycles through a fixed list of phrases so consecutive
// responses never repeat the same filler.
type phraseRotation struct {
	mu      sync.Mutex
	phrases []string
	cursor  int
}

func newPhraseRotation(phrases []string) *phraseRotation {
	if len(phrases) == 0 {
		phrases = defaultFillerPhrases
	}
	return &phraseRotation{phrases: phrases}
}

func (r *phraseRotation) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	phrase := r.phrases[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.phrases)
	return phrase
}

// fillerSynthesizer is the synthesis surface the filler manager needs.
type fillerSynthesizer func(ctx context.Context, text string) ([]byte, error)

// fillerManager produces the short utterance spoken while the reasoning
// backend works. Synthesized phrases are cached in memory so each phrase
// costs at most one synthesis call for the lifetime of the manager.
type fillerManager struct {
	rotation   *phraseRotation
	synthesize fillerSynthesizer

	cacheMu sync.Mutex
	cache   map[string][]byte
}

func newFillerManager(phrases []string, synthesize fillerSynthesizer) *fillerManager {
	return &fillerManager{
		rotation:   newPhraseRotation(phrases),
		synthesize: synthesize,
		cache:      map[string][]byte{},
	}
}

// FillerAudio returns the next filler phrase and its synthesized audio. On
// synthesis failure the audio is nil and the caller falls back to speaking
// the returned text through the normal path.
func (f *fillerManager) FillerAudio(ctx context.Context) (phrase string, clip []byte) {
	phrase = f.rotation.Next()

	f.cacheMu.Lock()
	clip, cached := f.cache[phrase]
	f.cacheMu.Unlock()
	if cached {
		return phrase, clip
	}

	clip, err := f.synthesize(ctx, phrase)
	if err != nil {
		logger.Warn("filler synthesis failed, falling back to plain speech",
			"phrase", phrase, "error", err)
		return phrase, nil
	}

	f.cacheMu.Lock()
	f.cache[phrase] = clip
	f.cacheMu.Unlock()
	return phrase, clip
}
