package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cardnews/common"
	"cardnews/layout"
)

// Synthesizer turns one narration script into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
	// Ext is the file extension of the produced audio, without the dot.
	Ext() string
}

// NewSynthesizer builds the provider selected by cfg.TTSProvider.
func NewSynthesizer(cfg *common.PipelineConfig) (Synthesizer, error) {
	switch strings.ToLower(cfg.TTSProvider) {
	case "", "elevenlabs":
		if err := common.RequireKey(common.EnvElevenLabsKey, cfg.ElevenLabsKey); err != nil {
			return nil, err
		}
		return NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoice), nil
	case "sarvam":
		if err := common.RequireKey(common.EnvSarvamKey, cfg.SarvamKey); err != nil {
			return nil, err
		}
		return NewSarvamClient(cfg.SarvamKey), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTSProvider)
	}
}

var (
	boldMarks   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarks = regexp.MustCompile(`\*([^*]+)\*`)
	hashMarks   = regexp.MustCompile(`#+\s*`)
	unspoken    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s.,!?;:\-()"'%]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// CleanTextForTTS strips markup, hashtags and emojis so that only speakable
// text reaches the voice.
func CleanTextForTTS(text string) string {
	text = layout.Visible(text)
	text = boldMarks.ReplaceAllString(text, "$1")
	text = italicMarks.ReplaceAllString(text, "$1")
	text = hashMarks.ReplaceAllString(text, "")
	text = unspoken.ReplaceAllString(text, " ")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// GenerateCardAudio narrates scripts into dir as card_1.<ext>, card_2.<ext>
// and so on, numbered like the card images. The returned slice is aligned
// with scripts; a card whose synthesis failed has an empty path.
func GenerateCardAudio(ctx context.Context, synth Synthesizer, scripts []string, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir: %w", err)
	}
	paths := make([]string, len(scripts))
	ok := 0
	for i, script := range scripts {
		text := CleanTextForTTS(script)
		if text == "" {
			log.Printf("[Audio] Warning: card %d has nothing to narrate", i+1)
			continue
		}
		out := common.NumberedPath(dir, "card", i+1, synth.Ext())
		log.Printf("[Audio] Generating audio for card %d...", i+1)
		if err := synth.Synthesize(ctx, text, out); err != nil {
			log.Printf("[Audio] Warning: card %d audio failed: %v", i+1, err)
			continue
		}
		log.Printf("[Audio] Saved audio: %s", out)
		paths[i] = out
		ok++
	}
	if ok == 0 && len(scripts) > 0 {
		return paths, fmt.Errorf("no audio generated")
	}
	return paths, nil
}

// writeStream copies r into path, removing the file again on failure.
func writeStream(path string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	n, err := io.Copy(f, r)
	if err == nil && n == 0 {
		err = fmt.Errorf("empty audio response")
	}
	return err
}
