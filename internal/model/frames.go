// Package model defines the wire frames exchanged over the websocket as
// closed tagged-variant types, decoded and encoded only at the transport
// boundary.
package model

import (
	"encoding/json"
	"errors"
	"time"
)

// InboundType discriminates client frames.
type InboundType string

const (
	InboundText     InboundType = "text"
	InboundAudio    InboundType = "audio"
	InboundLanguage InboundType = "language"
	InboundUnknown  InboundType = "unknown"
)

// ErrMalformedFrame reports a payload that is not valid JSON. Distinct from
// an unrecognized type tag, which decodes to InboundUnknown.
var ErrMalformedFrame = errors.New("malformed frame payload")

// InboundFrame is one decoded client frame. Only the fields of the active
// variant are meaningful.
type InboundFrame struct {
	Type InboundType

	// Text
	Content string

	// Audio
	AudioData         string // base64
	WantAudioResponse bool

	// Language
	Language string

	// RawType preserves the original tag for Unknown frames.
	RawType string
}

type rawInbound struct {
	Type              string `json:"type"`
	Content           string `json:"content"`
	AudioData         string `json:"audio_data"`
	WantAudioResponse bool   `json:"want_audio_response"`
	Language          string `json:"language"`
}

// DecodeInbound parses a raw client payload. A missing type tag means text.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var raw rawInbound
	if err := json.Unmarshal(data, &raw); err != nil {
		return InboundFrame{}, ErrMalformedFrame
	}

	typ := raw.Type
	if typ == "" {
		typ = "text"
	}

	switch typ {
	case "text":
		return InboundFrame{Type: InboundText, Content: raw.Content}, nil
	case "audio":
		return InboundFrame{
			Type:              InboundAudio,
			AudioData:         raw.AudioData,
			WantAudioResponse: raw.WantAudioResponse,
		}, nil
	case "language":
		return InboundFrame{Type: InboundLanguage, Language: raw.Language}, nil
	default:
		return InboundFrame{Type: InboundUnknown, RawType: typ}, nil
	}
}

// OutboundFrame is implemented by every server frame variant.
type OutboundFrame interface {
	isOutbound()
}

// SystemFrame carries server announcements (welcome, acknowledgements).
type SystemFrame struct {
	Type               string   `json:"type"`
	Message            string   `json:"message"`
	SessionID          string   `json:"session_id,omitempty"`
	Timestamp          string   `json:"timestamp,omitempty"`
	SupportedLanguages []string `json:"supported_languages,omitempty"`
	Language           string   `json:"language,omitempty"`
}

// TypingFrame toggles the client's typing indicator.
type TypingFrame struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"is_typing"`
}

// SourceRef attributes part of a response to a knowledge base document.
type SourceRef struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// TextFrame is the answer to a text or transcribed-audio query.
type TextFrame struct {
	Type             string      `json:"type"`
	Content          string      `json:"content"`
	Sources          []SourceRef `json:"sources"`
	Timestamp        string      `json:"timestamp"`
	ProcessingTimeMs float64     `json:"processing_time_ms"`
}

// TranscriptionFrame echoes what the server heard in an audio frame.
type TranscriptionFrame struct {
	Type             string `json:"type"`
	Content          string `json:"content"`
	DetectedLanguage string `json:"detected_language"`
}

// ErrorFrame reports a recoverable protocol or processing error.
type ErrorFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (SystemFrame) isOutbound()        {}
func (TypingFrame) isOutbound()        {}
func (TextFrame) isOutbound()          {}
func (TranscriptionFrame) isOutbound() {}
func (ErrorFrame) isOutbound()         {}

func NewWelcomeFrame(sessionID, message string, supportedLanguages []string) SystemFrame {
	return SystemFrame{
		Type:               "system",
		Message:            message,
		SessionID:          sessionID,
		Timestamp:          time.Now().Format(time.RFC3339),
		SupportedLanguages: supportedLanguages,
	}
}

func NewSystemFrame(message, language string) SystemFrame {
	return SystemFrame{
		Type:     "system",
		Message:  message,
		Language: language,
	}
}

func NewTypingFrame(isTyping bool) TypingFrame {
	return TypingFrame{Type: "typing", IsTyping: isTyping}
}

func NewTextFrame(content string, sources []SourceRef, processingTimeMs float64) TextFrame {
	if sources == nil {
		sources = []SourceRef{}
	}
	return TextFrame{
		Type:             "text",
		Content:          content,
		Sources:          sources,
		Timestamp:        time.Now().Format(time.RFC3339),
		ProcessingTimeMs: processingTimeMs,
	}
}

func NewTranscriptionFrame(content, detectedLanguage string) TranscriptionFrame {
	return TranscriptionFrame{
		Type:             "transcription",
		Content:          content,
		DetectedLanguage: detectedLanguage,
	}
}

func NewErrorFrame(message string) ErrorFrame {
	return ErrorFrame{
		Type:      "error",
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// EncodeOutbound serializes a server frame for the wire.
func EncodeOutbound(frame OutboundFrame) ([]byte, error) {
	return json.Marshal(frame)
}
