// Package audio defines the speech capabilities as interfaces so the router
// never branches on whether a backend is installed: a disabled
// implementation is selected at startup when none is configured.
package audio

import (
	"context"
	"encoding/base64"
	"errors"

	"ai-support-agent-be/internal/pkg/logger"
)

// ErrUnavailable is returned by implementations that do not support the
// requested capability.
var ErrUnavailable = errors.New("audio processing not available")

// Transcriber converts recorded audio to text. languageHint may be empty to
// let the backend auto-detect; the detected language code is returned
// alongside the text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, languageHint string) (text string, detectedLanguage string, err error)
}

// Synthesizer converts text to speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// DecodeBase64 decodes the wire representation of an audio payload.
func DecodeBase64(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// EncodeBase64 encodes audio bytes for the wire.
func EncodeBase64(audioBytes []byte) string {
	return base64.StdEncoding.EncodeToString(audioBytes)
}

// Disabled is the no-op capability used when no speech backend is
// configured. Both directions report ErrUnavailable.
type Disabled struct {
	logger logger.ILogger
}

var _ Transcriber = &Disabled{}
var _ Synthesizer = &Disabled{}

func NewDisabled(log logger.ILogger) *Disabled {
	log.Warn("AudioHandler", "No transcription backend configured. Voice features disabled.", nil)
	return &Disabled{logger: log}
}

func (d *Disabled) Transcribe(ctx context.Context, audioData []byte, languageHint string) (string, string, error) {
	d.logger.Warn("AudioHandler", "Audio transcription not available", nil)
	return "", "unknown", ErrUnavailable
}

func (d *Disabled) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	d.logger.Warn("AudioHandler", "Speech synthesis not available", nil)
	return nil, ErrUnavailable
}
