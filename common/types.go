package common

import "time"

// PipelineConfig is built once in main and handed to every stage.
type PipelineConfig struct {
	Keyword      string
	OutputDir    string
	MaxResults   int
	MaxSummaries int
	NumCards     int
	MaxChars     int // per-card character budget

	// Stage toggles for everything after composition
	RenderCards bool
	Audio       bool
	Music       bool
	Video       bool

	PDFPath   string // Optional extra source document
	ThemePath string // Optional YAML theme
	EmojiDir  string

	LLMProvider string // "gemini" or "openai"
	GeminiKey   string
	GeminiModel string
	OpenAIKey   string
	OpenAIModel string
	OpenAIBase  string // Optional, for compatible endpoints

	SerpAPIKey string

	TTSProvider     string // "elevenlabs" or "sarvam"
	ElevenLabsKey   string
	ElevenLabsVoice string
	SarvamKey       string

	JamendoClientID string
}

// Article is one search hit.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// Card is the text of one slide. Title is a single line and Body is never
// empty.
type Card struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PipelineState is everything the text stages produced for one run. It is
// written after the narration scripts and replaced wholesale on the next run.
type PipelineState struct {
	SchemaVersion int       `json:"schema_version"`
	RunID         string    `json:"run_id"`
	Keyword       string    `json:"keyword"`
	Articles      []Article `json:"articles"`
	Summaries     []string  `json:"summaries"`
	Cards         []Card    `json:"card_contents"`
	CardScripts   []string  `json:"card_scripts"`
	MusicTags     []string  `json:"music_theme_tags"`
	CreatedAt     time.Time `json:"created_at"`
}

// MusicInfo records the selected background track.
type MusicInfo struct {
	SchemaVersion int    `json:"schema_version"`
	Title         string `json:"music_title"`
	Artist        string `json:"music_artist"`
	Path          string `json:"music_path"`
}

// Artifact names inside the output directory
const (
	StateFile     = "card_news_output.json"
	MusicInfoFile = "music_info.json"
	CardsDir      = "cards"
	AudioDir      = "audio"
	MusicDir      = "music"
)
