// Package speechtotext defines the provider-independent surface for
// streaming transcription.
package speechtotext

import "github.com/voxflow/voxflow-core/core/audio"

type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives provisional transcripts that may
	// still be revised.
	InterimTranscriptionCallback func(transcript string)
	// TranscriptionCallback receives one finalized utterance at a time, after
	// the provider decides the caller stopped speaking.
	TranscriptionCallback func(transcript string)

	SpeechStartedCallback func()

	// ErrorCallback is invoked at most once, when the transcription stream
	// fails in a way the client cannot recover from.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
