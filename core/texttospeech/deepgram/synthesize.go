package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxflow/voxflow-core/core/audio"
	"github.com/voxflow/voxflow-core/core/texttospeech"
)

// streamChunkSize is the read granularity for streamed synthesis. 4 KiB is
// half a second of narrow-band audio, enough to keep the pacer fed.
const streamChunkSize = 4096

// Synthesize converts text into one complete audio clip. The clip is raw
// audio in the requested encoding, with no container, so it can be framed
// and paced directly onto the media stream.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := &texttospeech.SynthesisOptions{EncodingInfo: audio.TelephonyEncoding()}
	for _, opt := range opts {
		opt(options)
	}

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.voice", string(c.voice)),
		attribute.Int("tts.text_length", len(text)),
	)

	resp, err := c.speak(ctx, text, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	clip, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading synthesized audio: %w", err)
	}
	if len(clip) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}

	span.SetAttributes(attribute.Int("tts.audio_bytes", len(clip)))
	return clip, nil
}

// SynthesizeStream converts text into audio delivered chunk by chunk as the
// provider produces it. Chunks arrive in playback order; a non-nil error
// from emit aborts the stream.
func (c *TextToSpeechClient) SynthesizeStream(ctx context.Context, text string, emit func(chunk []byte) error, opts ...texttospeech.SynthesisOption) error {
	options := &texttospeech.SynthesisOptions{EncodingInfo: audio.TelephonyEncoding()}
	for _, opt := range opts {
		opt(options)
	}

	ctx, span := tracer.Start(ctx, "synthesize speech stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.voice", string(c.voice)),
		attribute.Int("tts.text_length", len(text)),
	)

	resp, err := c.speak(ctx, text, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	total := 0
	buffer := make([]byte, streamChunkSize)
	for {
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			total += n
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			if err := emit(chunk); err != nil {
				return fmt.Errorf("error emitting audio chunk: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			span.RecordError(readErr)
			span.SetStatus(codes.Error, readErr.Error())
			return fmt.Errorf("error reading synthesized audio: %w", readErr)
		}
	}
	if total == 0 {
		return fmt.Errorf("synthesis returned no audio")
	}

	span.SetAttributes(attribute.Int("tts.audio_bytes", total))
	return nil
}

// speak issues one speak request and returns the raw response with a 200
// status. The caller owns the body.
func (c *TextToSpeechClient) speak(ctx context.Context, text string, options *texttospeech.SynthesisOptions) (*http.Response, error) {
	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}

	speakURL, err := url.Parse(c.speakURL)
	if err != nil {
		return nil, fmt.Errorf("invalid speak url: %w", err)
	}
	queryParams := speakURL.Query()
	queryParams.Set("model", string(c.voice))
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("container", "none")
	speakURL.RawQuery = queryParams.Encode()

	requestBodyBytes, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakURL.String(), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	return resp, nil
}
