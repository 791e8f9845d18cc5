package orchestration

import (
	"time"

	"github.com/voxflow/voxflow-core/core/callers"
	"github.com/voxflow/voxflow-core/core/llms"
)

const (
	defaultResponseTimeout = 60 * time.Second
	defaultApology         = "I apologize, but I'm having trouble processing your request right now. Could you please try again?"
	defaultGreeting        = "Hello! How can I help you today?"
)

// SessionCallbacks are observation hooks invoked synchronously at session
// milestones. All fields are optional.
type SessionCallbacks struct {
	StateChanged      func(state SessionState)
	FinalTranscript   func(transcript string)
	InterimTranscript func(transcript string)
	DroppedTranscript func(transcript string)
	BackendDuration   func(duration time.Duration)
	SynthesizedAudio  func(bytes int)
	PacedFrame        func(bytes int)
}

type sessionOptions struct {
	transcription TranscriptionClient
	synthesis     SynthesisClient
	backend       Backend
	directory     *callers.Directory

	tools        []llms.Tool
	instructions string
	apology      string

	historyLimit    int
	responseTimeout time.Duration
	frameDuration   time.Duration
	fillerPhrases   []string

	callbacks SessionCallbacks
}

type SessionOption func(*sessionOptions)

// WithTranscriptionClient sets the speech-to-text client. Required.
func WithTranscriptionClient(client TranscriptionClient) SessionOption {
	return func(o *sessionOptions) { o.transcription = client }
}

// WithSynthesisClient sets the text-to-speech client. Required.
func WithSynthesisClient(client SynthesisClient) SessionOption {
	return func(o *sessionOptions) { o.synthesis = client }
}

// WithBackend sets the reasoning backend. Required.
func WithBackend(backend Backend) SessionOption {
	return func(o *sessionOptions) { o.backend = backend }
}

// WithCallerDirectory sets the directory used to resolve the caller at
// stream start.
func WithCallerDirectory(directory *callers.Directory) SessionOption {
	return func(o *sessionOptions) { o.directory = directory }
}

// WithTools exposes tools to the reasoning backend.
func WithTools(tools ...llms.Tool) SessionOption {
	return func(o *sessionOptions) { o.tools = append(o.tools, tools...) }
}

// WithInstructions overrides the system instructions sent with each backend
// request.
func WithInstructions(instructions string) SessionOption {
	return func(o *sessionOptions) {
		if instructions != "" {
			o.instructions = instructions
		}
	}
}

// WithApology overrides the utterance spoken when the backend fails.
func WithApology(apology string) SessionOption {
	return func(o *sessionOptions) {
		if apology != "" {
			o.apology = apology
		}
	}
}

// WithHistoryLimit caps the conversation window sent to the backend.
func WithHistoryLimit(limit int) SessionOption {
	return func(o *sessionOptions) {
		if limit > 0 {
			o.historyLimit = limit
		}
	}
}

// WithResponseTimeout bounds each backend query, filler included.
func WithResponseTimeout(timeout time.Duration) SessionOption {
	return func(o *sessionOptions) {
		if timeout > 0 {
			o.responseTimeout = timeout
		}
	}
}

// WithFrameDuration sets the outbound pacing interval.
func WithFrameDuration(duration time.Duration) SessionOption {
	return func(o *sessionOptions) {
		if duration > 0 {
			o.frameDuration = duration
		}
	}
}

// WithFillerPhrases replaces the rotation of phrases spoken while the
// backend works.
func WithFillerPhrases(phrases ...string) SessionOption {
	return func(o *sessionOptions) {
		if len(phrases) > 0 {
			o.fillerPhrases = phrases
		}
	}
}

// WithCallbacks registers observation hooks.
func WithCallbacks(callbacks SessionCallbacks) SessionOption {
	return func(o *sessionOptions) { o.callbacks = callbacks }
}
