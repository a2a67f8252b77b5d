package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const sarvamURL = "https://api.sarvam.ai/text-to-speech"

// SarvamClient speaks through Sarvam's bulbul voices. Long scripts are sent
// in sentence-aligned chunks and joined with ffmpeg.
type SarvamClient struct {
	APIKey   string
	Language string
	Speaker  string
	BaseURL  string
	Client   *http.Client
}

func NewSarvamClient(apiKey string) *SarvamClient {
	return &SarvamClient{
		APIKey:   apiKey,
		Language: "en-IN",
		Speaker:  "vidya",
		BaseURL:  sarvamURL,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SarvamClient) Ext() string { return "wav" }

func (s *SarvamClient) Synthesize(ctx context.Context, text, outputPath string) error {
	chunks := splitTextIntoChunks(text, 500)
	if len(chunks) == 1 {
		return s.synthesizeChunk(ctx, chunks[0], outputPath)
	}

	tempDir, err := os.MkdirTemp(filepath.Dir(outputPath), "chunks_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tempDir)

	var list strings.Builder
	for i, chunk := range chunks {
		chunkPath := filepath.Join(tempDir, fmt.Sprintf("chunk_%03d.wav", i))
		if err := s.synthesizeChunk(ctx, chunk, chunkPath); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		absPath, _ := filepath.Abs(chunkPath)
		fmt.Fprintf(&list, "file '%s'\n", absPath)
	}
	listPath := filepath.Join(tempDir, "list.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outputPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %s, output: %s", err, string(output))
	}
	return nil
}

func (s *SarvamClient) synthesizeChunk(ctx context.Context, text, outputPath string) error {
	payload := map[string]interface{}{
		"inputs":               []string{text},
		"target_language_code": s.Language,
		"speaker":              s.Speaker,
		"speech_sample_rate":   22050,
		"enable_preprocessing": true,
		"model":                "bulbul:v2",
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sarvam request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Audios []string `json:"audios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if len(result.Audios) == 0 {
		return fmt.Errorf("no audio in response")
	}

	audioStr := result.Audios[0]
	// Strip data URI header if present
	if idx := strings.Index(audioStr, ","); idx != -1 {
		audioStr = audioStr[idx+1:]
	}
	audioBytes, err := base64.StdEncoding.DecodeString(audioStr)
	if err != nil {
		return err
	}
	return writeStream(outputPath, bytes.NewReader(audioBytes))
}

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// splitTextIntoChunks groups sentences into chunks of at most maxLength
// bytes. A single sentence longer than maxLength becomes its own chunk.
func splitTextIntoChunks(text string, maxLength int) []string {
	if len(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	last := 0
	bounds := sentenceEnd.FindAllStringIndex(text, -1)
	bounds = append(bounds, []int{len(text), len(text)})
	for _, b := range bounds {
		sentence := strings.TrimSpace(text[last:b[1]])
		last = b[1]
		if sentence == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
