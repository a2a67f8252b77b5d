package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by main
const (
	EnvGeminiKey       = "GEMINI_API_KEY"
	EnvGeminiModel     = "GEMINI_MODEL"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvOpenAIModel     = "OPENAI_MODEL"
	EnvOpenAIBase      = "OPENAI_BASE_URL"
	EnvLLMProvider     = "LLM_PROVIDER"
	EnvSerpAPIKey      = "SERPAPI_API_KEY"
	EnvTTSProvider     = "TTS_PROVIDER"
	EnvElevenLabsKey   = "ELEVENLABS_API_KEY"
	EnvElevenLabsVoice = "ELEVENLABS_VOICE_ID"
	EnvSarvamKey       = "SARVAM_API_KEY"
	EnvJamendoClientID = "JAMENDO_CLIENT_ID"
)

// ErrMissingCredential is returned when a stage needs a key that is not set.
var ErrMissingCredential = errors.New("missing credential")

// LoadEnv loads variables from a dotenv file without overriding ones that
// are already set in the process environment.
func LoadEnv(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	return nil
}

// RequireKey fails with ErrMissingCredential when value is empty.
func RequireKey(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: please set %s", ErrMissingCredential, name)
	}
	return nil
}

// EnvOr returns the environment value for key, or def when unset.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// FontSizes is a descending search range for auto-fit.
type FontSizes struct {
	Max  int `yaml:"max"`
	Min  int `yaml:"min"`
	Step int `yaml:"step"`
}

// ThemeConfig is the optional YAML file that restyles the cards. Zero fields
// keep their defaults.
type ThemeConfig struct {
	Width       int       `yaml:"width"`
	Height      int       `yaml:"height"`
	Background  string    `yaml:"background"` // "#rrggbb"
	Foreground  string    `yaml:"foreground"`
	BoxFill     string    `yaml:"box_fill"`
	Border      string    `yaml:"border"`
	FontPath    string    `yaml:"font_path"`
	TitleFont   FontSizes `yaml:"title_font"`
	ContentFont FontSizes `yaml:"content_font"`
	LineSpacing int       `yaml:"line_spacing"`
	GapRatio    float64   `yaml:"gap_ratio"`
}

// LoadThemeConfig reads a theme file. An empty path returns an empty config.
func LoadThemeConfig(path string) (ThemeConfig, error) {
	var cfg ThemeConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read theme: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return cfg, nil
}
