// Package deepgram implements streaming transcription over Deepgram's
// realtime listen websocket.
package deepgram

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultListenURL = "wss://api.deepgram.com/v1/listen"

type connectionState int

const (
	stateDisconnected connectionState = iota
	stateConnecting
	stateOpen
	stateClosed
)

type TranscriptionClient struct {
	apiKey    string
	listenURL string

	model          string
	language       string
	endpointingMs  int
	utteranceEndMs int

	connMu sync.Mutex
	conn   *websocket.Conn
	state  connectionState

	lastAudioTs time.Time

	errorOnce sync.Once

	// accumulatedTranscript grows across is_final results until the
	// provider signals the utterance ended, then flushes as one transcript.
	accumulatedTranscript string
	unendedSegment        bool
}

type TranscriptionClientOption func(*TranscriptionClient)

// WithModel selects the Deepgram model used for transcription.
func WithModel(model string) TranscriptionClientOption {
	return func(c *TranscriptionClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLanguage sets the expected language of the caller.
func WithLanguage(language string) TranscriptionClientOption {
	return func(c *TranscriptionClient) {
		if language != "" {
			c.language = language
		}
	}
}

// WithEndpointing sets the silence window, in milliseconds, after which the
// provider finalizes an utterance.
func WithEndpointing(ms int) TranscriptionClientOption {
	return func(c *TranscriptionClient) {
		if ms > 0 {
			c.endpointingMs = ms
		}
	}
}

// WithListenURL overrides the websocket endpoint.
func WithListenURL(url string) TranscriptionClientOption {
	return func(c *TranscriptionClient) {
		if url != "" {
			c.listenURL = url
		}
	}
}

func NewTranscriptionClient(apiKey string, opts ...TranscriptionClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		apiKey:    apiKey,
		listenURL: defaultListenURL,

		model:          "nova-2",
		language:       "en-US",
		endpointingMs:  300,
		utteranceEndMs: 1000,

		state: stateDisconnected,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}
