// Package deepgram implements speech synthesis over Deepgram's speak REST
// API. Synthesis is batch per request: the voice engine returns the whole
// clip, pacing back to the caller happens elsewhere.
package deepgram

import (
	"fmt"
	"net/http"
	"slices"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultSpeakURL = "https://api.deepgram.com/v1/speak"

type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    deepgramVoice

	httpClient *http.Client
}

type TextToSpeechClientOption func(*TextToSpeechClient)

// WithSpeakURL overrides the synthesis endpoint.
func WithSpeakURL(url string) TextToSpeechClientOption {
	return func(c *TextToSpeechClient) {
		if url != "" {
			c.speakURL = url
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) TextToSpeechClientOption {
	return func(c *TextToSpeechClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...TextToSpeechClientOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{
		apiKey:   apiKey,
		speakURL: defaultSpeakURL,
		voice:    voice,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) {
	c.voice = voice
}
