package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	orchestration "github.com/voxflow/voxflow-core/core"
	"github.com/voxflow/voxflow-core/core/callers"
	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/core/llms/openai"
	sttdeepgram "github.com/voxflow/voxflow-core/core/speechtotext/deepgram"
	ttsdeepgram "github.com/voxflow/voxflow-core/core/texttospeech/deepgram"
	"github.com/voxflow/voxflow-core/internal/config"
	"github.com/voxflow/voxflow-core/internal/metrics"
)

// server wires the webhook, the media-stream endpoint and one call session
// per websocket connection.
type server struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	directory *callers.Directory
	tools     []llms.Tool

	synthesis *ttsdeepgram.TextToSpeechClient
	backend   *openai.Client

	upgrader   websocket.Upgrader
	httpServer *http.Server
	startTime  time.Time
}

func newServer(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics,
	directory *callers.Directory, tools []llms.Tool) (*server, error) {

	voice, err := ttsdeepgram.ParseVoice(cfg.Speech.Voice)
	if err != nil {
		return nil, fmt.Errorf("resolving voice: %w", err)
	}
	synthesis, err := ttsdeepgram.NewTextToSpeechClient(cfg.Speech.APIKey, voice)
	if err != nil {
		return nil, fmt.Errorf("building synthesis client: %w", err)
	}

	backendOpts := []openai.ClientOption{}
	if cfg.Backend.BaseURL != "" {
		backendOpts = append(backendOpts, openai.WithBaseURL(cfg.Backend.BaseURL))
	}

	s := &server{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		directory: directory,
		tools:     tools,
		synthesis: synthesis,
		backend:   openai.NewClient(cfg.Backend.APIKey, cfg.Backend.Model, backendOpts...),
		upgrader: websocket.Upgrader{
			// The telephony provider does not send a browser origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("POST /twilio/inbound", s.handleInbound)
	mux.HandleFunc("GET /twilio/stream", s.handleStream)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	return s, nil
}

func (s *server) ListenAndServe() error {
	s.logger.Info("listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.metrics.HTTPRequests.WithLabelValues("/", "200").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"speech_model":   s.cfg.Speech.ListenModel,
		"backend_model":  s.cfg.Backend.Model,
		"known_callers":  s.directory.Count(),
	})
}

// twimlResponse is the connect-stream instruction returned to the telephony
// provider for an incoming call.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Connect twimlConnect `xml:"Connect"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL        string           `xml:"url,attr"`
	Parameters []twimlParameter `xml:"Parameter"`
}

type twimlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

func (s *server) handleInbound(w http.ResponseWriter, r *http.Request) {
	from := r.FormValue("From")
	s.logger.Info("incoming call", slog.String("from", from))
	s.metrics.HTTPRequests.WithLabelValues("/twilio/inbound", "200").Inc()

	response := twimlResponse{
		Connect: twimlConnect{
			Stream: twimlStream{
				URL: fmt.Sprintf("wss://%s/twilio/stream", s.cfg.HTTP.PublicHost),
				Parameters: []twimlParameter{
					{Name: "callerNumber", Value: from},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprint(w, xml.Header)
	if err := xml.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("writing twiml", slog.String("error", err.Error()))
	}
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		s.metrics.HTTPRequests.WithLabelValues("/twilio/stream", "400").Inc()
		return
	}
	defer conn.Close()
	s.metrics.HTTPRequests.WithLabelValues("/twilio/stream", "101").Inc()

	s.serveCall(r.Context(), conn)
}

// serveCall runs one call session over an established media-stream
// connection, blocking until the stream ends.
func (s *server) serveCall(ctx context.Context, conn *websocket.Conn) {
	send := func(payload []byte) error {
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	transcription := sttdeepgram.NewTranscriptionClient(s.cfg.Speech.APIKey,
		sttdeepgram.WithModel(s.cfg.Speech.ListenModel),
		sttdeepgram.WithLanguage(s.cfg.Speech.Language),
		sttdeepgram.WithEndpointing(s.cfg.Speech.EndpointingMs),
	)

	callStart := time.Now()
	session, err := orchestration.NewCallSession(ctx, send,
		orchestration.WithTranscriptionClient(transcription),
		orchestration.WithSynthesisClient(s.synthesis),
		orchestration.WithBackend(s.backend),
		orchestration.WithCallerDirectory(s.directory),
		orchestration.WithTools(s.tools...),
		orchestration.WithInstructions(s.cfg.Orchestration.Instructions),
		orchestration.WithApology(s.cfg.Orchestration.Apology),
		orchestration.WithHistoryLimit(s.cfg.Orchestration.HistoryLimit),
		orchestration.WithResponseTimeout(s.cfg.GetBackendTimeout()),
		orchestration.WithFrameDuration(s.cfg.GetFrameDuration()),
		orchestration.WithFillerPhrases(s.cfg.Orchestration.FillerPhrases...),
		orchestration.WithCallbacks(s.sessionCallbacks()),
	)
	if err != nil {
		s.logger.Error("building call session", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := session.Stop(); err != nil {
			s.logger.Error("stopping call session",
				slog.String("session", session.ID()), slog.String("error", err.Error()))
		}
		s.metrics.CallDuration.Observe(time.Since(callStart).Seconds())
	}()

	s.metrics.CallsStarted.Inc()
	s.metrics.ActiveCalls.Inc()
	defer func() {
		s.metrics.ActiveCalls.Dec()
		s.metrics.CallsEnded.Inc()
	}()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("media stream read failed",
					slog.String("session", session.ID()), slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := session.HandleMessage(raw); err != nil {
			s.logger.Error("session terminated",
				slog.String("session", session.ID()), slog.String("error", err.Error()))
			return
		}
		if session.State() == orchestration.SessionStateEnded {
			return
		}
	}
}

func (s *server) sessionCallbacks() orchestration.SessionCallbacks {
	return orchestration.SessionCallbacks{
		FinalTranscript:   func(string) { s.metrics.FinalTranscripts.Inc() },
		InterimTranscript: func(string) { s.metrics.InterimTranscripts.Inc() },
		DroppedTranscript: func(string) { s.metrics.DroppedTranscripts.Inc() },
		BackendDuration: func(d time.Duration) {
			s.metrics.BackendDuration.Observe(d.Seconds())
		},
		SynthesizedAudio: func(n int) { s.metrics.SynthesizedBytes.Add(float64(n)) },
		PacedFrame:       func(int) { s.metrics.PacedFrames.Inc() },
	}
}
