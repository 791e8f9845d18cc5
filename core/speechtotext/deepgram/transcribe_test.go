package deepgram

import (
	"fmt"
	"testing"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"

	"github.com/voxflow/voxflow-core/core/speechtotext"
)

func transcriptMessage(transcript string, isFinal, speechFinal bool) []byte {
	return fmt.Appendf(nil,
		`{"type":"%s","is_final":%t,"speech_final":%t,"channel":{"alternatives":[{"transcript":"%s"}]}}`,
		api.TypeMessageResponse, isFinal, speechFinal, transcript)
}

func TestProcessMessageAccumulatesUntilSpeechFinal(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	var finals []string
	var interims []string
	options := speechtotext.TranscriptionOptions{
		TranscriptionCallback:        func(transcript string) { finals = append(finals, transcript) },
		InterimTranscriptionCallback: func(transcript string) { interims = append(interims, transcript) },
	}

	client.processMessage(transcriptMessage("check my", false, false), options)
	client.processMessage(transcriptMessage("check my order", true, false), options)
	client.processMessage(transcriptMessage("please", true, true), options)

	if len(finals) != 1 || finals[0] != "check my order please" {
		t.Fatalf("unexpected finalized transcripts: %v", finals)
	}
	if len(interims) != 1 || interims[0] != "check my" {
		t.Fatalf("unexpected interim transcripts: %v", interims)
	}
}

func TestProcessMessageInterimIncludesAccumulated(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	var interims []string
	options := speechtotext.TranscriptionOptions{
		InterimTranscriptionCallback: func(transcript string) { interims = append(interims, transcript) },
	}

	client.processMessage(transcriptMessage("check my order", true, false), options)
	client.processMessage(transcriptMessage("ple", false, false), options)

	if len(interims) != 1 || interims[0] != "check my order ple" {
		t.Fatalf("unexpected interim transcripts: %v", interims)
	}
}

func TestProcessMessageUtteranceEndFlushes(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	var finals []string
	options := speechtotext.TranscriptionOptions{
		TranscriptionCallback: func(transcript string) { finals = append(finals, transcript) },
	}

	client.processMessage(transcriptMessage("are you still there", true, false), options)
	client.processMessage(fmt.Appendf(nil, `{"type":"%s"}`, api.TypeUtteranceEndResponse), options)

	if len(finals) != 1 || finals[0] != "are you still there" {
		t.Fatalf("unexpected finalized transcripts: %v", finals)
	}

	// A second utterance-end without new audio must not re-deliver.
	client.processMessage(fmt.Appendf(nil, `{"type":"%s"}`, api.TypeUtteranceEndResponse), options)
	if len(finals) != 1 {
		t.Fatalf("expected no duplicate delivery, got %v", finals)
	}
}

func TestProcessMessageEmptyFinalNotDelivered(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	options := speechtotext.TranscriptionOptions{
		TranscriptionCallback: func(transcript string) {
			t.Fatalf("unexpected transcript delivery: %q", transcript)
		},
	}

	client.processMessage(transcriptMessage("", true, true), options)
	client.processMessage(transcriptMessage("  ", true, true), options)
}

func TestProcessMessageSpeechStarted(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	started := 0
	options := speechtotext.TranscriptionOptions{
		SpeechStartedCallback: func() { started++ },
	}

	client.processMessage(fmt.Appendf(nil, `{"type":"%s"}`, api.TypeSpeechStartedResponse), options)
	if started != 1 {
		t.Fatalf("expected one speech-started callback, got %d", started)
	}
}

func TestProcessMessageErrorCallbackOnce(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	errors := 0
	options := speechtotext.TranscriptionOptions{
		ErrorCallback: func(err error) { errors++ },
	}

	errMsg := fmt.Appendf(nil, `{"type":"%s","description":"bad audio"}`, api.TypeErrorResponse)
	client.processMessage(errMsg, options)
	client.processMessage(errMsg, options)

	if errors != 1 {
		t.Fatalf("expected error callback exactly once, got %d", errors)
	}
}

func TestSendAudioDroppedWhenNotOpen(t *testing.T) {
	client := NewTranscriptionClient("test-key")

	if err := client.SendAudio([]byte{0xff, 0xff}); err != nil {
		t.Fatalf("expected silent drop before stream opens, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("expected idempotent close, got %v", err)
	}
}
