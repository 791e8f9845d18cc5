// Package telephony implements the JSON envelope protocol spoken over the
// persistent media-stream connection: inbound start/media/stop events and
// outbound media frames, with base64-encoded narrow-band payloads.
package telephony

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventStop      = "stop"
)

// Envelope is a single message on the media-stream connection.
type Envelope struct {
	Event     string        `json:"event"`
	StreamSid string        `json:"streamSid,omitempty"`
	Start     *StartPayload `json:"start,omitempty"`
	Media     *MediaPayload `json:"media,omitempty"`
	Stop      *StopPayload  `json:"stop,omitempty"`
}

// StartPayload carries the stream identifiers and caller-identifying custom
// parameters sent when the stream is established.
type StartPayload struct {
	StreamSid        string            `json:"streamSid"`
	CallSid          string            `json:"callSid"`
	AccountSid       string            `json:"accountSid,omitempty"`
	CustomParameters map[string]string `json:"customParameters,omitempty"`
	MediaFormat      MediaFormat       `json:"mediaFormat,omitempty"`
}

type MediaFormat struct {
	Encoding   string `json:"encoding,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
}

// MediaPayload carries one base64-encoded audio chunk.
type MediaPayload struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

type StopPayload struct {
	CallSid string `json:"callSid,omitempty"`
}

// Parse decodes a raw inbound message into an Envelope.
func Parse(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse media-stream message: %w", err)
	}
	if envelope.Event == "" {
		return nil, fmt.Errorf("media-stream message missing event field")
	}
	return &envelope, nil
}

// Audio decodes the base64 payload into raw narrow-band bytes.
func (m *MediaPayload) Audio() ([]byte, error) {
	audio, err := base64.StdEncoding.DecodeString(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode media payload: %w", err)
	}
	return audio, nil
}

// NewOutboundMedia builds the wire message for one paced outbound frame.
func NewOutboundMedia(streamSid string, audio []byte) ([]byte, error) {
	msg, err := json.Marshal(Envelope{
		Event:     EventMedia,
		StreamSid: streamSid,
		Media: &MediaPayload{
			Payload: base64.StdEncoding.EncodeToString(audio),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbound media message: %w", err)
	}
	return msg, nil
}
