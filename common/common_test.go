package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	state := NewPipelineState("space tourism")
	state.Cards = []Card{{Title: "#Space, #Travel", Body: "Rockets are getting cheaper!"}}
	state.CardScripts = []string{"Hey there! Rockets are cheaper than ever."}
	state.MusicTags = []string{"electronic", "upbeat"}

	if err := SaveState(dir, state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got.RunID != state.RunID || got.Keyword != "space tourism" {
		t.Errorf("loaded %+v", got)
	}
	if len(got.Cards) != 1 || got.Cards[0] != state.Cards[0] {
		t.Errorf("cards = %+v", got.Cards)
	}
	if _, err := os.Stat(filepath.Join(dir, StateFile+".tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestSaveStateReplacesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	first := NewPipelineState("first")
	first.Summaries = []string{"a", "b", "c"}
	if err := SaveState(dir, first); err != nil {
		t.Fatal(err)
	}
	second := NewPipelineState("second")
	if err := SaveState(dir, second); err != nil {
		t.Fatal(err)
	}
	got, err := LoadState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Keyword != "second" || len(got.Summaries) != 0 {
		t.Errorf("state was merged: %+v", got)
	}
}

func TestLoadStateRejectsOtherSchema(t *testing.T) {
	dir := t.TempDir()
	data := `{"schema_version": 99, "keyword": "x"}`
	if err := os.WriteFile(filepath.Join(dir, StateFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(dir); err == nil || !strings.Contains(err.Error(), "schema version 99") {
		t.Errorf("LoadState err = %v", err)
	}
}

func TestMusicInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &MusicInfo{Title: "Sunny Day", Artist: "Someone", Path: "music/bg_music_Sunny_Day.mp3"}
	if err := SaveMusicInfo(dir, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadMusicInfo(dir)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestRequireKey(t *testing.T) {
	err := RequireKey(EnvElevenLabsKey, "")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), EnvElevenLabsKey) {
		t.Errorf("diagnostic does not name the variable: %v", err)
	}
	if err := RequireKey(EnvElevenLabsKey, "secret"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadEnvKeepsProcessValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "CARDNEWS_TEST_KEEP=file\nCARDNEWS_TEST_NEW='from file'\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CARDNEWS_TEST_KEEP", "shell")
	t.Cleanup(func() { os.Unsetenv("CARDNEWS_TEST_NEW") })

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("CARDNEWS_TEST_KEEP"); got != "shell" {
		t.Errorf("KEEP = %q", got)
	}
	if got := os.Getenv("CARDNEWS_TEST_NEW"); got != "from file" {
		t.Errorf("NEW = %q", got)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadThemeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	content := `
background: "#112233"
title_font:
  max: 70
  min: 30
  step: 4
gap_ratio: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadThemeConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Background != "#112233" || cfg.TitleFont.Max != 70 || cfg.TitleFont.Step != 4 || cfg.GapRatio != 0.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Width != 0 {
		t.Errorf("unset width = %d", cfg.Width)
	}

	empty, err := LoadThemeConfig("")
	if err != nil || empty.Background != "" {
		t.Errorf("empty path: %+v, %v", empty, err)
	}
}

func TestStripMarkdown(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"emphasis", "**Card 1:** Cats are *great*!", "Card 1: Cats are great!"},
		{"paragraphs", "First para.\n\nSecond para.", "First para.\n\nSecond para."},
		{"soft break", "#AI, #Robots\nCard 1: Hello there friends", "#AI, #Robots\nCard 1: Hello there friends"},
		{"heading", "## Big News\n\nBody text.", "## Big News\n\nBody text."},
		{"hashtag heading", "# AI, #Tech\nCard 1: Robots are here!", "# AI, #Tech\n\nCard 1: Robots are here!"},
		{"tight list", "- one\n- two\n\nAfter.", "one\ntwo\n\nAfter."},
		{"ordered list", "1. Robots cook dinner.\n2. Chefs relax.", "1. Robots cook dinner.\n2. Chefs relax."},
		{"ordered list start", "3) Third\n4) Fourth", "3) Third\n4) Fourth"},
		{"link", "See [the story](https://example.com) now.", "See the story now."},
		{"autolink", "Visit <https://example.com> for robots!", "Visit https://example.com for robots!"},
		{"inline html", "Robots <b>cook</b> now.", "Robots <b>cook</b> now."},
		{"entities", "AT&amp;T and &#35;1", "AT&T and #1"},
		{"escapes", "5 \\* 3 = 15", "5 * 3 = 15"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := StripMarkdown(c.in); got != c.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"AI robots!":        "AI_robots",
		"  K-pop / news  ":  "K-pop_news",
		"???":               "untitled",
		"한국 뉴스":             "한국_뉴스",
	}
	for in, want := range cases {
		if got := SanitizeName(in, 0); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := SanitizeName("abcdefghij", 4); got != "abcd" {
		t.Errorf("truncated = %q", got)
	}
}

func TestNewTextGeneratorSelectsProvider(t *testing.T) {
	ctx := context.Background()

	gen, err := NewTextGenerator(ctx, &PipelineConfig{LLMProvider: "OpenAI", OpenAIKey: "sk-test"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if c, ok := gen.(*OpenAIClient); !ok || c.model != DefaultOpenAIModel {
		t.Errorf("generator = %#v", gen)
	}

	if _, err := NewTextGenerator(ctx, &PipelineConfig{}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("gemini without key: %v", err)
	}
	if _, err := NewTextGenerator(ctx, &PipelineConfig{LLMProvider: "claude"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
