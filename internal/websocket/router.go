package websocket

import (
	"context"
	"math"
	"strings"
	"time"

	"ai-support-agent-be/internal/config"
	"ai-support-agent-be/internal/model"
	"ai-support-agent-be/internal/pkg/logger"
	"ai-support-agent-be/internal/service"
	"ai-support-agent-be/pkg/audio"
	"ai-support-agent-be/pkg/rag"

	"github.com/gofiber/websocket/v2"
	"github.com/patrickmn/go-cache"
)

const (
	welcomeMessage = "Welcome to Customer Support! How can I help you today?"

	maxResponseSources = 2
	excerptLength      = 150
)

// QueryEngine is the retrieval engine as seen by the router.
type QueryEngine interface {
	Query(ctx context.Context, question, language string) (string, []rag.Source)
}

// Router classifies inbound frames and dispatches them to handlers. Each
// connection moves Connecting -> Active -> Closed; while Active, its frames
// are handled one at a time in arrival order by its own goroutine, so
// sessions never block each other.
type Router struct {
	registry    *Registry
	engine      QueryEngine
	transcriber audio.Transcriber
	synthesizer audio.Synthesizer
	recorder    service.IInteractionRecorder
	languages   config.LanguageConfig

	// lastAnswers keeps the most recent answer per session for the audio
	// response path.
	lastAnswers *cache.Cache

	logger logger.ILogger
}

func NewRouter(
	registry *Registry,
	engine QueryEngine,
	transcriber audio.Transcriber,
	synthesizer audio.Synthesizer,
	recorder service.IInteractionRecorder,
	languages config.LanguageConfig,
	log logger.ILogger,
) *Router {
	return &Router{
		registry:    registry,
		engine:      engine,
		transcriber: transcriber,
		synthesizer: synthesizer,
		recorder:    recorder,
		languages:   languages,
		lastAnswers: cache.New(30*time.Minute, 10*time.Minute),
		logger:      log,
	}
}

// Serve drives one connection through its lifecycle. It blocks until the
// transport closes, which is the only way a session ends.
func (r *Router) Serve(conn *websocket.Conn) {
	client := newClient(conn)

	// Connecting: mint the session, then the welcome frame makes it Active.
	sessionID := r.registry.Connect(client)

	go client.writePump()
	r.sendWelcome(sessionID)

	client.readPump(func(raw []byte) {
		r.handleFrame(sessionID, raw)
	})

	// Closed: terminal. Late sends for this id become no-ops.
	r.registry.Disconnect(sessionID)
	r.lastAnswers.Delete(sessionID)
}

func (r *Router) sendWelcome(sessionID string) {
	r.registry.SendTo(sessionID, model.NewWelcomeFrame(sessionID, welcomeMessage, r.languages.Supported))
}

// handleFrame is the per-frame boundary: nothing below it may tear down the
// connection. Panics are logged and converted to a generic error frame.
func (r *Router) handleFrame(sessionID string, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Router", "Message processing failed", map[string]interface{}{
				"session_id": sessionID,
				"panic":      rec,
			})
			r.sendError(sessionID, "Internal server error")
		}
	}()

	frame, err := model.DecodeInbound(raw)
	if err != nil {
		r.sendError(sessionID, "Invalid JSON")
		return
	}

	r.logger.Debug("Router", "Processing message", map[string]interface{}{
		"session_id": sessionID,
		"type":       string(frame.Type),
	})

	switch frame.Type {
	case model.InboundText:
		r.handleText(sessionID, frame.Content)
	case model.InboundAudio:
		r.handleAudio(sessionID, frame)
	case model.InboundLanguage:
		r.handleLanguageChange(sessionID, frame.Language)
	default:
		r.sendError(sessionID, "Unknown message type")
	}
}

func (r *Router) handleText(sessionID, content string) {
	start := time.Now()

	content = strings.TrimSpace(content)
	if content == "" {
		r.sendError(sessionID, "Empty message")
		return
	}

	language := r.registry.Language(sessionID)

	r.sendTyping(sessionID, true)
	answer, sources := r.engine.Query(context.Background(), content, language)
	r.sendTyping(sessionID, false)

	processingMs := roundMs(time.Since(start))

	refs := make([]model.SourceRef, 0, maxResponseSources)
	for _, src := range sources {
		if len(refs) == maxResponseSources {
			break
		}
		refs = append(refs, model.SourceRef{
			Source:  src.Source,
			Excerpt: excerpt(src.Content),
		})
	}

	r.registry.SendTo(sessionID, model.NewTextFrame(answer, refs, processingMs))

	r.lastAnswers.Set(sessionID, answer, cache.DefaultExpiration)

	r.recorder.Record(context.Background(), service.Interaction{
		SessionID:        sessionID,
		UserMessage:      content,
		BotResponse:      answer,
		Language:         language,
		ProcessingTimeMs: processingMs,
	})

	r.registry.IncrementMessageCount(sessionID)
}

func (r *Router) handleAudio(sessionID string, frame model.InboundFrame) {
	if frame.AudioData == "" {
		r.sendError(sessionID, "No audio data")
		return
	}

	audioBytes, err := audio.DecodeBase64(frame.AudioData)
	if err != nil {
		r.logger.Error("Router", "Audio decode failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		r.sendError(sessionID, "Audio processing failed")
		return
	}

	// Suppress the hint for the default language so the backend may
	// auto-detect.
	sessionLanguage := r.registry.Language(sessionID)
	hint := sessionLanguage
	if hint == r.languages.Default {
		hint = ""
	}

	transcribed, detected, err := r.transcriber.Transcribe(context.Background(), audioBytes, hint)
	if err != nil || strings.TrimSpace(transcribed) == "" {
		r.sendError(sessionID, "Could not transcribe audio")
		return
	}

	if detected != sessionLanguage {
		r.registry.SetLanguage(sessionID, detected)
	}

	r.registry.SendTo(sessionID, model.NewTranscriptionFrame(transcribed, detected))

	// Re-enter the text path with the transcription, typing indicators and
	// interaction log included.
	r.handleText(sessionID, transcribed)

	if frame.WantAudioResponse {
		r.sendAudioResponse(sessionID, detected)
	}
}

// sendAudioResponse is a known incompleteness: the request is accepted and
// the synthesizer is consulted, but no audio frame is ever emitted. The
// configured synthesizer reports unsupported.
func (r *Router) sendAudioResponse(sessionID, language string) {
	cached, ok := r.lastAnswers.Get(sessionID)
	if !ok {
		return
	}
	answer, _ := cached.(string)

	if _, err := r.synthesizer.Synthesize(context.Background(), answer, language); err != nil {
		r.logger.Warn("Router", "Audio response not produced", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (r *Router) handleLanguageChange(sessionID, language string) {
	if language == "" {
		language = r.languages.Default
	}

	if !r.languages.IsSupported(language) {
		r.sendError(sessionID, "Unsupported language")
		return
	}

	r.registry.SetLanguage(sessionID, language)
	r.registry.SendTo(sessionID, model.NewSystemFrame("Language changed to "+language, language))

	r.logger.Info("Router", "Language changed", map[string]interface{}{
		"session_id": sessionID,
		"language":   language,
	})
}

func (r *Router) sendTyping(sessionID string, isTyping bool) {
	r.registry.SendTo(sessionID, model.NewTypingFrame(isTyping))
}

func (r *Router) sendError(sessionID, message string) {
	r.registry.SendTo(sessionID, model.NewErrorFrame(message))
}

// excerpt trims a source to its first 150 characters with an ellipsis
// marker.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}

// roundMs reports elapsed time in milliseconds, rounded to 2 decimals.
func roundMs(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
