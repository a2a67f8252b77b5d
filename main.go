package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"cardnews/common"
	"cardnews/pipelines/cardnews"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	keyword := flag.String("keyword", "", "Keyword to search for articles")
	maxResults := flag.Int("max_results", 10, "Number of articles to search")
	maxSummaries := flag.Int("max_summaries", 6, "Number of articles to summarize")
	numCards := flag.Int("num_cards", 3, "Number of card news slides to generate")
	maxChars := flag.Int("max_chars", 220, "Character budget per card")
	noCards := flag.Bool("no_cards", false, "Do not generate card images")
	noAudio := flag.Bool("no_audio", false, "Do not generate audio files")
	noVideo := flag.Bool("no_video", false, "Do not generate video file")
	noMusic := flag.Bool("no_music", false, "Do not fetch background music")
	stageName := flag.String("stage", "all", "Run a single stage from existing artifacts: text, cards, audio, music or video")
	outDir := flag.String("out", "output", "Output directory")
	themePath := flag.String("theme", "", "Optional YAML theme file")
	pdfPath := flag.String("pdf", "", "Optional PDF to use as an extra source article")
	emojiDir := flag.String("emoji_dir", "emoji_png", "Directory of cached emoji PNGs")
	flag.Parse()

	if err := common.LoadEnv(".env"); err != nil {
		log.Println("No .env file found or error reading it")
	}

	stage, err := cardnews.ParseStage(*stageName)
	if err != nil {
		log.Fatal(err)
	}

	if *keyword == "" && flag.NArg() > 0 {
		*keyword = strings.Join(flag.Args(), " ")
	}
	if *keyword == "" && (stage == cardnews.StageAll || stage == cardnews.StageText) {
		*keyword = promptKeyword()
	}
	if *keyword == "" && (stage == cardnews.StageAll || stage == cardnews.StageText) {
		log.Fatal("Usage: go run . -keyword <topic> [-num_cards 3] [-no_video] [-stage cards|audio|music|video]")
	}
	if *numCards < 1 || *maxChars < 1 {
		log.Fatal("-num_cards and -max_chars must be positive")
	}

	config := &common.PipelineConfig{
		Keyword:      *keyword,
		OutputDir:    *outDir,
		MaxResults:   *maxResults,
		MaxSummaries: *maxSummaries,
		NumCards:     *numCards,
		MaxChars:     *maxChars,
		RenderCards:  !*noCards,
		Audio:        !*noAudio,
		Music:        !*noMusic,
		Video:        !*noVideo,
		PDFPath:      *pdfPath,
		ThemePath:    *themePath,
		EmojiDir:     *emojiDir,

		LLMProvider: os.Getenv(common.EnvLLMProvider),
		GeminiKey:   os.Getenv(common.EnvGeminiKey),
		GeminiModel: os.Getenv(common.EnvGeminiModel),
		OpenAIKey:   os.Getenv(common.EnvOpenAIKey),
		OpenAIModel: os.Getenv(common.EnvOpenAIModel),
		OpenAIBase:  os.Getenv(common.EnvOpenAIBase),

		SerpAPIKey: os.Getenv(common.EnvSerpAPIKey),

		TTSProvider:     common.EnvOr(common.EnvTTSProvider, "elevenlabs"),
		ElevenLabsKey:   os.Getenv(common.EnvElevenLabsKey),
		ElevenLabsVoice: os.Getenv(common.EnvElevenLabsVoice),
		SarvamKey:       os.Getenv(common.EnvSarvamKey),

		JamendoClientID: os.Getenv(common.EnvJamendoClientID),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline := cardnews.NewPipeline(config)
	defer pipeline.Close()

	if stage == cardnews.StageAll {
		log.Println("Running Card News Pipeline...")
	} else {
		log.Printf("Running stage %q...", stage)
	}
	res, err := pipeline.RunStage(ctx, stage)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	if res.Video != "" {
		log.Printf("Video: %s", res.Video)
	}
	log.Println("Pipeline completed successfully!")
}

func promptKeyword() string {
	fmt.Print("Enter a keyword to search for articles: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
