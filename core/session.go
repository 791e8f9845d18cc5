// Package orchestration runs one live phone call: caller audio in, backend
// reasoning in the middle, paced synthesized speech out.
package orchestration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/voxflow/voxflow-core/core/audio"
	"github.com/voxflow/voxflow-core/core/callers"
	"github.com/voxflow/voxflow-core/core/speechtotext"
	"github.com/voxflow/voxflow-core/core/telephony"
	"github.com/voxflow/voxflow-core/core/texttospeech"
)

type SessionState string

const (
	SessionStateCreated    SessionState = "created"
	SessionStateStreaming  SessionState = "streaming"
	SessionStateResponding SessionState = "responding"
	SessionStateEnded      SessionState = "ended"
)

// CallSession orchestrates a single media stream from start to stop. One
// instance serves exactly one call and is discarded afterwards.
type CallSession struct {
	id   string
	opts sessionOptions

	ctx    context.Context
	cancel context.CancelFunc

	send   func(payload []byte) error
	sendMu sync.Mutex

	mu           sync.Mutex
	state        SessionState
	streamSid    string
	callSid      string
	caller       callers.Caller
	callerNumber string

	// processing is the single-flight guard: transcripts that arrive while
	// a response cycle runs are dropped, never queued.
	processing atomic.Bool

	codec   *audio.Codec
	inbound *audioBuffer
	history *conversationHistory
	filler  *fillerManager
	pacer   *mediaPacer
}

// NewCallSession wires a session around an outbound payload writer. The
// writer is called once per paced media frame and must be safe to call from
// the session's goroutines.
func NewCallSession(ctx context.Context, send func(payload []byte) error, opts ...SessionOption) (*CallSession, error) {
	options := sessionOptions{
		instructions:    defaultInstructions,
		apology:         defaultApology,
		historyLimit:    defaultHistoryLimit,
		responseTimeout: defaultResponseTimeout,
		frameDuration:   defaultFrameDuration,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if send == nil {
		return nil, fmt.Errorf("session requires a payload writer")
	}
	if options.transcription == nil {
		return nil, fmt.Errorf("session requires a transcription client")
	}
	if options.synthesis == nil {
		return nil, fmt.Errorf("session requires a synthesis client")
	}
	if options.backend == nil {
		return nil, fmt.Errorf("session requires a backend")
	}

	codec := audio.NewCodec()
	ctx, cancel := context.WithCancel(ctx)

	s := &CallSession{
		id:     uuid.NewString(),
		opts:   options,
		ctx:    ctx,
		cancel: cancel,
		send:   send,
		state:  SessionStateCreated,

		codec:   codec,
		inbound: newAudioBuffer(codec.LinearEncoding().BytesPerFrame(options.frameDuration)),
		history: newConversationHistory(options.historyLimit),
		pacer: newMediaPacer(
			codec.WireEncoding().BytesPerFrame(options.frameDuration),
			options.frameDuration,
		),
	}
	s.filler = newFillerManager(options.fillerPhrases, func(ctx context.Context, text string) ([]byte, error) {
		return options.synthesis.Synthesize(ctx, text,
			texttospeech.WithEncodingInfo(codec.WireEncoding()))
	})

	return s, nil
}

func (s *CallSession) ID() string { return s.id }

func (s *CallSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CallSession) setState(state SessionState) {
	s.mu.Lock()
	if s.state == SessionStateEnded {
		s.mu.Unlock()
		return
	}
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed && s.opts.callbacks.StateChanged != nil {
		s.opts.callbacks.StateChanged(state)
	}
}

// HandleMessage dispatches one inbound media-stream message. Malformed
// messages are logged and skipped; only transport-level failures are
// returned to the caller.
func (s *CallSession) HandleMessage(raw []byte) error {
	if s.State() == SessionStateEnded {
		return nil
	}

	envelope, err := telephony.Parse(raw)
	if err != nil {
		logger.Warn("ignoring malformed media-stream message", "session", s.id, "error", err)
		return nil
	}

	switch envelope.Event {
	case telephony.EventConnected:
		return nil
	case telephony.EventStart:
		return s.handleStart(envelope.Start)
	case telephony.EventMedia:
		s.handleMedia(envelope.Media)
		return nil
	case telephony.EventStop:
		return s.Stop()
	default:
		logger.Debug("ignoring unknown media-stream event", "session", s.id, "event", envelope.Event)
		return nil
	}
}

func (s *CallSession) handleStart(start *telephony.StartPayload) error {
	if start == nil {
		logger.Warn("start message without payload", "session", s.id)
		return nil
	}

	caller := callers.Caller{Greeting: defaultGreeting}
	number := start.CustomParameters["callerNumber"]
	if number == "" {
		number = start.CustomParameters["from"]
	}
	if s.opts.directory != nil {
		caller = s.opts.directory.Lookup(number)
	}

	s.mu.Lock()
	s.streamSid = start.StreamSid
	s.callSid = start.CallSid
	s.caller = caller
	s.callerNumber = number
	s.mu.Unlock()

	ctx, span := tracer.Start(s.ctx, "start call session")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.stream_sid", start.StreamSid),
	)

	// The transcription stream opens before the greeting plays so nothing
	// the caller says is lost.
	err := s.opts.transcription.Transcribe(ctx,
		speechtotext.WithEncodingInfo(s.codec.LinearEncoding()),
		speechtotext.WithTranscriptionCallback(s.onFinalTranscript),
		speechtotext.WithInterimTranscriptionCallback(s.onInterimTranscript),
		speechtotext.WithErrorCallback(s.onTranscriptionError),
	)
	if err != nil {
		teardownErr := s.Stop()
		if teardownErr != nil {
			logger.Error("teardown after failed transcription open", "session", s.id, "error", teardownErr)
		}
		return &TransportError{Op: "open transcription", Err: err}
	}

	s.setState(SessionStateStreaming)
	logger.Info("call session started",
		"session", s.id, "streamSid", start.StreamSid, "caller", caller.Name)

	greeting := caller.Greeting
	if greeting == "" {
		greeting = defaultGreeting
	}
	go s.speak(s.ctx, greeting)

	return nil
}

func (s *CallSession) handleMedia(media *telephony.MediaPayload) {
	if media == nil {
		return
	}
	if s.State() != SessionStateStreaming && s.State() != SessionStateResponding {
		return
	}

	payload, err := media.Audio()
	if err != nil {
		logger.Warn("dropping undecodable media payload", "session", s.id, "error", err)
		return
	}

	decoded, err := s.codec.DecodeInbound(audio.NewFrame(payload, s.codec.WireEncoding()))
	if err != nil {
		// Substituting silence keeps the transcription audio clock steady.
		logger.Warn("substituting silence for malformed audio frame", "session", s.id, "error", err)
		decoded, err = s.codec.DecodeInbound(s.codec.Silence(len(payload)))
		if err != nil {
			return
		}
	}

	s.inbound.Add(decoded.Data())
	for _, chunk := range s.inbound.GetAllChunks() {
		if err := s.opts.transcription.SendAudio(chunk); err != nil {
			logger.Warn("failed to forward audio chunk", "session", s.id, "error", err)
		}
	}
}

func (s *CallSession) onFinalTranscript(transcript string) {
	if s.State() == SessionStateEnded {
		return
	}

	if !s.processing.CompareAndSwap(false, true) {
		logger.Info("dropping transcript, response cycle in flight",
			"session", s.id, "transcript", transcript)
		if s.opts.callbacks.DroppedTranscript != nil {
			s.opts.callbacks.DroppedTranscript(transcript)
		}
		return
	}

	if s.opts.callbacks.FinalTranscript != nil {
		s.opts.callbacks.FinalTranscript(transcript)
	}

	go func() {
		defer s.processing.Store(false)
		s.respond(s.ctx, transcript)
	}()
}

func (s *CallSession) onInterimTranscript(transcript string) {
	if s.opts.callbacks.InterimTranscript != nil {
		s.opts.callbacks.InterimTranscript(transcript)
	}
}

func (s *CallSession) onTranscriptionError(err error) {
	logger.Error("transcription stream failed", "session", s.id, "error", err)
	if stopErr := s.Stop(); stopErr != nil {
		logger.Error("teardown after transcription failure", "session", s.id, "error", stopErr)
	}
}

// Stop tears the session down: the transcription stream closes, in-flight
// pacing is cancelled at the next frame boundary and no further audio is
// accepted or emitted. Safe to call more than once.
func (s *CallSession) Stop() error {
	s.mu.Lock()
	if s.state == SessionStateEnded {
		s.mu.Unlock()
		return nil
	}
	s.state = SessionStateEnded
	streamSid := s.streamSid
	s.mu.Unlock()

	if s.opts.callbacks.StateChanged != nil {
		s.opts.callbacks.StateChanged(SessionStateEnded)
	}

	s.cancel()

	err := s.opts.transcription.Close()
	logger.Info("call session ended", "session", s.id, "streamSid", streamSid)
	if err != nil {
		return fmt.Errorf("failed to close transcription stream: %w", err)
	}
	return nil
}

// speak synthesizes one utterance and paces it onto the media stream. A
// streaming synthesis client is drained into one complete clip first so
// pacing starts from a full utterance either way.
func (s *CallSession) speak(ctx context.Context, text string) {
	var clip []byte
	var err error
	if streaming, ok := s.opts.synthesis.(StreamingSynthesisClient); ok {
		err = streaming.SynthesizeStream(ctx, text, func(chunk []byte) error {
			clip = append(clip, chunk...)
			return nil
		}, texttospeech.WithEncodingInfo(s.codec.WireEncoding()))
	} else {
		clip, err = s.opts.synthesis.Synthesize(ctx, text,
			texttospeech.WithEncodingInfo(s.codec.WireEncoding()))
	}
	if err != nil {
		logger.Error("synthesis failed, utterance skipped", "session", s.id, "error", err)
		return
	}
	if s.opts.callbacks.SynthesizedAudio != nil {
		s.opts.callbacks.SynthesizedAudio(len(clip))
	}
	s.paceOut(ctx, clip)
}

// paceOut emits one clip frame by frame in real time.
func (s *CallSession) paceOut(ctx context.Context, clip []byte) {
	s.mu.Lock()
	streamSid := s.streamSid
	s.mu.Unlock()

	err := s.pacer.Pace(ctx, clip, func(frame []byte) error {
		if s.State() == SessionStateEnded {
			return context.Canceled
		}
		payload, err := telephony.NewOutboundMedia(streamSid, frame)
		if err != nil {
			return err
		}
		s.sendMu.Lock()
		defer s.sendMu.Unlock()
		if err := s.send(payload); err != nil {
			return &TransportError{Op: "send media frame", Err: err}
		}
		if s.opts.callbacks.PacedFrame != nil {
			s.opts.callbacks.PacedFrame(len(frame))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("outbound pacing interrupted", "session", s.id, "error", err)
	}
}
