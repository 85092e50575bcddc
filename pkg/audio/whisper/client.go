package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-support-agent-be/pkg/audio"
)

// Client talks to a whisper transcription server over HTTP.
type Client struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ audio.Transcriber = &Client{}

func NewClient(baseURL, modelName string) *Client {
	return &Client{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type transcribeRequest struct {
	Model    string `json:"model"`
	Audio    string `json:"audio"` // base64 WAV
	Language string `json:"language,omitempty"`
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (c *Client) Transcribe(ctx context.Context, audioData []byte, languageHint string) (string, string, error) {
	reqPayload := transcribeRequest{
		Model:    c.ModelName,
		Audio:    audio.EncodeBase64(audioData),
		Language: languageHint,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/transcribe"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("whisper error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var transcribeResp transcribeResponse
	if err := json.Unmarshal(bodyBytes, &transcribeResp); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}

	detected := transcribeResp.Language
	if detected == "" {
		detected = "unknown"
	}
	return transcribeResp.Text, detected, nil
}
