package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	elevenLabsURL    = "https://api.elevenlabs.io/v1/text-to-speech/"
	DefaultVoiceID   = "JBFqnCBsd6RMkjVDRZzb"
	defaultModelID   = "eleven_multilingual_v2"
	elevenLabsFormat = "mp3_44100_128"
)

type ElevenLabsClient struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string
	Client  *http.Client
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &ElevenLabsClient{
		APIKey:  apiKey,
		VoiceID: voiceID,
		ModelID: defaultModelID,
		BaseURL: elevenLabsURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ElevenLabsClient) Ext() string { return "mp3" }

func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, outputPath string) error {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": e.ModelID,
	})
	if err != nil {
		return err
	}

	endpoint := e.BaseURL + url.PathEscape(e.VoiceID) + "?output_format=" + elevenLabsFormat
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
	}
	return writeStream(outputPath, resp.Body)
}
