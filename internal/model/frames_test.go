package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    InboundFrame
	}{
		{
			name:    "text frame",
			payload: `{"type":"text","content":"hello"}`,
			want:    InboundFrame{Type: InboundText, Content: "hello"},
		},
		{
			name:    "missing type defaults to text",
			payload: `{"content":"hello"}`,
			want:    InboundFrame{Type: InboundText, Content: "hello"},
		},
		{
			name:    "audio frame",
			payload: `{"type":"audio","audio_data":"AAAA","want_audio_response":true}`,
			want:    InboundFrame{Type: InboundAudio, AudioData: "AAAA", WantAudioResponse: true},
		},
		{
			name:    "language frame",
			payload: `{"type":"language","language":"es"}`,
			want:    InboundFrame{Type: InboundLanguage, Language: "es"},
		},
		{
			name:    "unrecognized tag",
			payload: `{"type":"video"}`,
			want:    InboundFrame{Type: InboundUnknown, RawType: "video"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeInboundMalformed(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestEncodeOutboundShapes(t *testing.T) {
	tests := []struct {
		name  string
		frame OutboundFrame
		want  map[string]interface{}
	}{
		{
			name:  "typing",
			frame: NewTypingFrame(true),
			want:  map[string]interface{}{"type": "typing", "is_typing": true},
		},
		{
			name:  "system acknowledgement",
			frame: NewSystemFrame("Language changed to es", "es"),
			want:  map[string]interface{}{"type": "system", "message": "Language changed to es", "language": "es"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeOutbound(tt.frame)
			require.NoError(t, err)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextFrameAlwaysCarriesSourcesArray(t *testing.T) {
	data, err := EncodeOutbound(NewTextFrame("answer", nil, 12.34))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	sources, ok := got["sources"].([]interface{})
	require.True(t, ok, "sources must encode as an array, not null")
	assert.Empty(t, sources)
	assert.Equal(t, 12.34, got["processing_time_ms"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestWelcomeFrame(t *testing.T) {
	frame := NewWelcomeFrame("abc-123", "Welcome!", []string{"en", "es"})

	data, err := EncodeOutbound(frame)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "system", got["type"])
	assert.Equal(t, "abc-123", got["session_id"])
	assert.Equal(t, []interface{}{"en", "es"}, got["supported_languages"])
	assert.NotEmpty(t, got["timestamp"])
}
