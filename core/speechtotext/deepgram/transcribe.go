package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"

	"github.com/voxflow/voxflow-core/core/audio"
	"github.com/voxflow/voxflow-core/core/speechtotext"
)

// Transcribe opens the realtime websocket and starts delivering transcripts
// through the configured callbacks. It returns once the connection is open;
// audio is then fed through SendAudio.
func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.TelephonyEncoding()}
	for _, opt := range opts {
		opt(options)
	}

	_, span := tracer.Start(ctx, "open transcription stream")
	defer span.End()

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	c.connMu.Lock()
	if c.state != stateDisconnected {
		c.connMu.Unlock()
		return fmt.Errorf("transcription stream already started")
	}
	c.state = stateConnecting
	c.connMu.Unlock()

	conn, err := c.connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),

		detectSpeechStart: options.SpeechStartedCallback != nil,
	})
	if err != nil {
		c.connMu.Lock()
		c.state = stateDisconnected
		c.connMu.Unlock()
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.state = stateOpen
	c.lastAudioTs = time.Now()
	c.connMu.Unlock()

	go c.readAndProcessMessages(conn, *options)
	go c.keepAlive(ctx)

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string

	detectSpeechStart bool
}

func (c *TranscriptionClient) connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	listenURL, err := url.Parse(c.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", c.model)
	queryParams.Set("language", c.language)
	queryParams.Set("punctuate", "true")
	queryParams.Set("smart_format", "true")
	queryParams.Set("endpointing", strconv.Itoa(c.endpointingMs))
	queryParams.Set("utterance_end_ms", strconv.Itoa(c.utteranceEndMs))
	// Interim results are required for utterance-end detection even when no
	// interim callback is configured.
	queryParams.Set("interim_results", "true")
	if options.detectSpeechStart {
		queryParams.Set("vad_events", "true")
	}

	listenURL.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// SendAudio forwards one chunk of caller audio. Chunks sent before the
// stream is open or after it closed are silently dropped.
func (c *TranscriptionClient) SendAudio(chunk []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.state != stateOpen {
		return nil
	}

	c.lastAudioTs = time.Now()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// Close finalizes the stream. It asks the provider to flush any buffered
// audio first, then tears down the connection. Calling it again is a no-op.
func (c *TranscriptionClient) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.state != stateOpen {
		return nil
	}
	c.state = stateClosed

	if err := c.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	c.conn.Close()
	return nil
}

func (c *TranscriptionClient) sendKeepAlive() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.state != stateOpen {
		return
	}
	if err := c.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: "KeepAlive"}); err != nil {
		logger.Error("failed to send keepalive", "error", err)
	}
}

// keepAlive keeps the provider connection from idling out while the caller
// is silent, e.g. while a response is playing back.
func (c *TranscriptionClient) keepAlive(ctx context.Context) {
	const idleWindow = 3 * time.Second
	ticker := time.NewTicker(idleWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			open := c.state == stateOpen
			idle := time.Since(c.lastAudioTs) >= idleWindow
			c.connMu.Unlock()
			if !open {
				return
			}
			if idle {
				c.sendKeepAlive()
			}
		}
	}
}

func (c *TranscriptionClient) readAndProcessMessages(conn *websocket.Conn, options speechtotext.TranscriptionOptions) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			closed := c.state == stateClosed
			c.state = stateClosed
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()

			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.errorOnce.Do(func() {
					if options.ErrorCallback != nil {
						options.ErrorCallback(fmt.Errorf("transcription stream failed: %w", err))
					}
				})
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			c.processMessage(msg, options)
		}
	}
}

func (c *TranscriptionClient) processMessage(msg []byte, options speechtotext.TranscriptionOptions) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Error("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Error("failed to unmarshal deepgram transcript", "error", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}
		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)

		if msgResp.IsFinal {
			if len(transcript) > 0 {
				c.accumulatedTranscript += " " + transcript
				c.unendedSegment = true
			}
			if msgResp.SpeechFinal {
				c.onSpeechEnded(options)
			}
			return
		}

		if options.InterimTranscriptionCallback != nil && len(transcript) > 0 {
			options.InterimTranscriptionCallback(
				strings.TrimSpace(c.accumulatedTranscript + " " + transcript))
		}

	case api.TypeUtteranceEndResponse:
		if c.unendedSegment {
			c.onSpeechEnded(options)
		}

	case api.TypeSpeechStartedResponse:
		c.unendedSegment = true
		if options.SpeechStartedCallback != nil {
			options.SpeechStartedCallback()
		}

	case api.TypeResponse(api.TypeErrorResponse):
		var msgResp struct {
			Description string `json:"description"`
			Message     string `json:"message"`
		}
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Error("failed to unmarshal deepgram error", "error", err)
			return
		}
		description := msgResp.Description
		if description == "" {
			description = msgResp.Message
		}
		c.errorOnce.Do(func() {
			if options.ErrorCallback != nil {
				options.ErrorCallback(fmt.Errorf("deepgram error: %s", description))
			}
		})
	}
}

func (c *TranscriptionClient) onSpeechEnded(options speechtotext.TranscriptionOptions) {
	c.unendedSegment = false
	fullTranscript := strings.TrimSpace(c.accumulatedTranscript)
	c.accumulatedTranscript = ""
	if len(fullTranscript) > 0 && options.TranscriptionCallback != nil {
		options.TranscriptionCallback(fullTranscript)
	}
}
