package audio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardnews/common"
)

func TestCleanTextForTTS(t *testing.T) {
	cases := map[string]string{
		"**Big** news! 🚀🎉 #AI #Robots": "Big news! AI Robots",
		"It's *really* 100% true...":   "It's really 100% true...",
		"  spaced\n\nout   text ":       "spaced out text",
		"로봇이 왔어요! 🤖":                    "로봇이 왔어요!",
		"🎉🎉":                            "",
	}
	for in, want := range cases {
		if got := CleanTextForTTS(in); got != want {
			t.Errorf("CleanTextForTTS(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitTextIntoChunks(t *testing.T) {
	if got := splitTextIntoChunks("short text.", 500); len(got) != 1 || got[0] != "short text." {
		t.Errorf("short = %q", got)
	}

	sentence := strings.Repeat("a", 40) + ". "
	text := strings.TrimSpace(strings.Repeat(sentence, 10))
	chunks := splitTextIntoChunks(text, 100)
	if len(chunks) < 4 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk over limit: %d", len(c))
		}
		total += strings.Count(c, ".")
	}
	if total != 10 {
		t.Errorf("sentences lost: %d of 10", total)
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/voice123" {
			http.Error(w, "bad route "+r.URL.Path, http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("output_format") != "mp3_44100_128" || r.Header.Get("xi-api-key") != "key" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "Hello there!" || body["model_id"] != "eleven_multilingual_v2" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Write([]byte("MP3DATA"))
	}))
	defer srv.Close()

	c := NewElevenLabsClient("key", "voice123")
	c.BaseURL = srv.URL + "/"
	out := filepath.Join(t.TempDir(), "card_1.mp3")
	if err := c.Synthesize(context.Background(), "Hello there!", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != "MP3DATA" {
		t.Errorf("file = %q", data)
	}
}

func TestElevenLabsErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewElevenLabsClient("key", "")
	c.BaseURL = srv.URL + "/"
	out := filepath.Join(t.TempDir(), "card_1.mp3")
	err := c.Synthesize(context.Background(), "Hi", out)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("partial file left: %v", statErr)
	}
}

func TestSarvamSingleChunk(t *testing.T) {
	wav := []byte("RIFF....WAVE")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-subscription-key") != "skey" {
			http.Error(w, "no key", http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string][]string{
			"audios": {"data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)},
		})
	}))
	defer srv.Close()

	c := NewSarvamClient("skey")
	c.BaseURL = srv.URL
	out := filepath.Join(t.TempDir(), "card_1.wav")
	if err := c.Synthesize(context.Background(), "Namaste!", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != string(wav) {
		t.Errorf("file = %q", data)
	}
}

type fakeSynth struct {
	fail  map[string]bool
	texts []string
}

func (f *fakeSynth) Ext() string { return "mp3" }

func (f *fakeSynth) Synthesize(_ context.Context, text, out string) error {
	f.texts = append(f.texts, text)
	if f.fail[text] {
		return errors.New("synthesis failed")
	}
	return os.WriteFile(out, []byte(text), 0644)
}

func TestGenerateCardAudioKeepsNumbering(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	synth := &fakeSynth{fail: map[string]bool{"Second card!": true}}
	paths, err := GenerateCardAudio(context.Background(), synth, []string{"First card! 🎉", "Second card!", "🎉", "Fourth card!"}, dir)
	if err != nil {
		t.Fatalf("GenerateCardAudio: %v", err)
	}
	want := []string{filepath.Join(dir, "card_1.mp3"), "", "", filepath.Join(dir, "card_4.mp3")}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if synth.texts[0] != "First card!" {
		t.Errorf("text not cleaned: %q", synth.texts[0])
	}
}

func TestGenerateCardAudioAllFailed(t *testing.T) {
	synth := &fakeSynth{fail: map[string]bool{"Only one!": true}}
	if _, err := GenerateCardAudio(context.Background(), synth, []string{"Only one!"}, t.TempDir()); err == nil {
		t.Error("expected error when nothing was produced")
	}
}

func TestNewSynthesizerNeedsKey(t *testing.T) {
	_, err := NewSynthesizer(&common.PipelineConfig{})
	if !errors.Is(err, common.ErrMissingCredential) {
		t.Errorf("elevenlabs err = %v", err)
	}
	_, err = NewSynthesizer(&common.PipelineConfig{TTSProvider: "sarvam"})
	if !errors.Is(err, common.ErrMissingCredential) {
		t.Errorf("sarvam err = %v", err)
	}
	s, err := NewSynthesizer(&common.PipelineConfig{TTSProvider: "sarvam", SarvamKey: "k"})
	if err != nil || s.Ext() != "wav" {
		t.Errorf("sarvam = %v, %v", s, err)
	}
}
