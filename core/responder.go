package orchestration

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voxflow/voxflow-core/core/llms"
)

const defaultInstructions = `You are a helpful voice assistant on a phone call.

Guidelines:
- Keep answers short and conversational, one to three sentences.
- Speak naturally, the way a person would on the phone.
- Never use emoji, markdown, bullet points or other written formatting.
- If you do not know something, say so plainly.`

// respond runs one full response cycle for a finalized caller utterance:
// query the backend, mask its latency with a filler phrase, then speak the
// answer sentence by sentence as it arrives. The processing guard is held
// by the caller for the whole cycle.
func (s *CallSession) respond(ctx context.Context, transcript string) {
	ctx, span := tracer.Start(ctx, "response cycle")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.Int("transcript.length", len(transcript)),
	)

	s.setState(SessionStateResponding)
	defer func() {
		if s.State() != SessionStateEnded {
			s.setState(SessionStateStreaming)
		}
	}()

	queryCtx, cancelQuery := context.WithTimeout(ctx, s.opts.responseTimeout)
	defer cancelQuery()

	historyTurns := s.history.Turns()
	queryStart := time.Now()

	// The backend query starts first so the filler masks its latency
	// instead of adding to it. Sentence boundaries are detected on the
	// stream so synthesis does not wait for the full response.
	sentences := make(chan string, 16)
	var response *llms.Response
	var queryErr error
	go func() {
		defer close(sentences)

		buffer := newSentenceBuffer()
		emit := func(chunk string) {
			for _, sentence := range buffer.AddChunk(chunk) {
				select {
				case sentences <- sentence:
				case <-ctx.Done():
					return
				}
			}
		}

		promptOpts := []llms.PromptOption{
			llms.WithSystemPrompt(s.systemInstructions()),
			llms.WithHistory(historyTurns),
			llms.WithTools(s.opts.tools...),
		}

		if streaming, ok := s.opts.backend.(StreamingBackend); ok {
			response, queryErr = streaming.PromptWithStream(queryCtx, transcript,
				append(promptOpts, llms.WithStream(emit))...)
		} else {
			response, queryErr = s.opts.backend.Prompt(queryCtx, transcript, promptOpts...)
			if queryErr == nil && response != nil {
				emit(response.Content)
			}
		}
		if queryErr != nil {
			return
		}
		if remainder, ok := buffer.Flush(); ok {
			select {
			case sentences <- remainder:
			case <-ctx.Done():
			}
		}
	}()

	phrase, clip := s.filler.FillerAudio(ctx)
	span.AddEvent("filler selected", trace.WithAttributes(
		attribute.String("filler.phrase", phrase),
		attribute.Bool("filler.audio", clip != nil),
	))
	if clip != nil {
		s.paceOut(ctx, clip)
	} else {
		s.speak(ctx, phrase)
	}

	spoken := 0
	for sentence := range sentences {
		if s.State() == SessionStateEnded {
			break
		}
		s.speak(ctx, sentence)
		spoken++
	}

	if s.opts.callbacks.BackendDuration != nil {
		s.opts.callbacks.BackendDuration(time.Since(queryStart))
	}

	if queryErr != nil {
		span.RecordError(queryErr)
		span.SetStatus(codes.Error, queryErr.Error())
		logger.Error("backend query failed, speaking apology",
			"session", s.id, "error", queryErr)
		if s.State() != SessionStateEnded {
			s.speak(ctx, s.opts.apology)
		}
		return
	}

	span.SetAttributes(attribute.Int("response.sentences", spoken))
	s.history.Append(
		llms.Turn{Role: llms.RoleUser, Content: transcript},
		llms.Turn{Role: llms.RoleAssistant, Content: response.Content},
	)
}

func (s *CallSession) systemInstructions() string {
	s.mu.Lock()
	name := s.caller.Name
	s.mu.Unlock()

	instructions := s.opts.instructions
	if name != "" {
		instructions += "\n\nYou are speaking with " + name + "."
	}
	return instructions
}
