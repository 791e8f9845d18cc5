package orchestration

import (
	"context"

	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/core/speechtotext"
	"github.com/voxflow/voxflow-core/core/texttospeech"
)

// TranscriptionClient is the streaming speech-to-text surface the session
// drives. The concrete Deepgram client satisfies it.
type TranscriptionClient interface {
	// Transcribe opens the stream and registers callbacks. It returns once
	// the stream is ready for audio.
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	// SendAudio forwards caller audio. Fire-and-forget: audio sent while the
	// stream is not open is dropped.
	SendAudio(chunk []byte) error
	// Close finalizes the stream. Idempotent.
	Close() error
}

// SynthesisClient is the batch text-to-speech surface.
type SynthesisClient interface {
	Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error)
}

// StreamingSynthesisClient is implemented by synthesis clients that can
// deliver audio chunk by chunk. The session still assembles one complete
// clip per sentence before pacing, so both forms play out identically and
// sentence order is preserved.
type StreamingSynthesisClient interface {
	SynthesisClient
	SynthesizeStream(ctx context.Context, text string, emit func(chunk []byte) error, opts ...texttospeech.SynthesisOption) error
}

// Backend is the reasoning backend the session queries once per caller
// utterance.
type Backend interface {
	Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error)
}

// StreamingBackend is implemented by backends that can deliver the response
// incrementally. When available, sentences are synthesized as soon as they
// complete instead of after the full response.
type StreamingBackend interface {
	Backend
	PromptWithStream(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error)
}
