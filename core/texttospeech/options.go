// Package texttospeech defines the provider-independent surface for speech
// synthesis.
package texttospeech

import "github.com/voxflow/voxflow-core/core/audio"

type SynthesisOptions struct {
	// EncodingInfo selects the audio encoding of the synthesized speech.
	// Defaults to the telephony wire encoding.
	EncodingInfo audio.EncodingInfo
}

type SynthesisOption func(*SynthesisOptions)

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}
