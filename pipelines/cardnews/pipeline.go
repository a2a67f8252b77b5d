package cardnews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cardnews/common"
	"cardnews/pipelines/audio"
	"cardnews/pipelines/music"
	"cardnews/pipelines/render"
	"cardnews/pipelines/video"
)

// Stage names accepted by RunStage.
type Stage string

const (
	StageAll   Stage = "all"
	StageText  Stage = "text"
	StageCards Stage = "cards"
	StageAudio Stage = "audio"
	StageMusic Stage = "music"
	StageVideo Stage = "video"
)

func ParseStage(s string) (Stage, error) {
	switch st := Stage(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StageAll:
		return StageAll, nil
	case StageText, StageCards, StageAudio, StageMusic, StageVideo:
		return st, nil
	default:
		return "", fmt.Errorf("unknown stage %q", s)
	}
}

type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]common.Article, error)
}

type PictogramResolver interface {
	PrefetchPictograms(ctx context.Context, cards []common.Card) render.PictogramSet
}

type MusicSelector interface {
	SelectAndDownload(ctx context.Context, tags []string, dir string) (*common.MusicInfo, error)
}

type VideoAssembler interface {
	Assemble(ctx context.Context, images, audio []string, musicPath, topic string) (string, error)
}

// Pipeline runs topic -> cards -> narration -> music -> video. Collaborators
// left nil are built from Config when their stage first needs them.
type Pipeline struct {
	Config *common.PipelineConfig

	LLM        common.TextGenerator
	Searcher   Searcher
	Pictograms PictogramResolver
	Synth      audio.Synthesizer
	Music      MusicSelector
	Video      VideoAssembler
}

// Result lists the artifacts a run produced.
type Result struct {
	State *common.PipelineState
	Cards []string
	Audio []string
	Music *common.MusicInfo
	Video string
}

func NewPipeline(cfg *common.PipelineConfig) *Pipeline {
	return &Pipeline{Config: cfg}
}

func (p *Pipeline) Close() error {
	if p.LLM != nil {
		return p.LLM.Close()
	}
	return nil
}

func (p *Pipeline) dir(name string) string {
	return filepath.Join(p.Config.OutputDir, name)
}

// Run executes every enabled stage. Only a failure to produce the card text
// aborts the run; later stages log a warning and the run continues with
// whatever does not depend on the failed output.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	log.Printf("[Pipeline] Starting card news pipeline for %q -> %s", cfg.Keyword, cfg.OutputDir)

	log.Println("[Pipeline] Step 1: Writing card text...")
	state, err := p.runText(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{State: state}

	if cfg.RenderCards {
		log.Println("[Pipeline] Step 2: Rendering card images...")
		if res.Cards, err = p.runCards(ctx, state); err != nil {
			log.Printf("[Pipeline] Warning: card rendering failed: %v", err)
		}
	}
	if cfg.Audio {
		log.Println("[Pipeline] Step 3: Generating narration audio...")
		if res.Audio, err = p.runAudio(ctx, state); err != nil {
			log.Printf("[Pipeline] Warning: narration failed: %v", err)
		}
	}
	if cfg.Music {
		log.Println("[Pipeline] Step 4: Selecting background music...")
		if res.Music, err = p.runMusic(ctx, state); err != nil {
			log.Printf("[Pipeline] Warning: background music failed: %v", err)
		}
	}
	if cfg.Video {
		switch {
		case cfg.RenderCards && len(res.Cards) == 0:
			log.Println("[Pipeline] Warning: skipping video, no card images were rendered")
		default:
			log.Println("[Pipeline] Step 5: Assembling video...")
			if res.Video, err = p.runVideo(ctx, state); err != nil {
				log.Printf("[Pipeline] Warning: video assembly failed: %v", err)
			}
		}
	}

	log.Printf("[Pipeline] Pipeline complete! Output: %s", cfg.OutputDir)
	return res, nil
}

// RunStage re-executes a single stage from the artifacts already on disk.
func (p *Pipeline) RunStage(ctx context.Context, stage Stage) (*Result, error) {
	if stage == StageAll {
		return p.Run(ctx)
	}
	if stage == StageText {
		if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
		state, err := p.runText(ctx)
		return &Result{State: state}, err
	}

	state, err := common.LoadState(p.Config.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("stage %s needs a previous run: %w", stage, err)
	}
	res := &Result{State: state}
	switch stage {
	case StageCards:
		res.Cards, err = p.runCards(ctx, state)
	case StageAudio:
		res.Audio, err = p.runAudio(ctx, state)
	case StageMusic:
		res.Music, err = p.runMusic(ctx, state)
	case StageVideo:
		res.Video, err = p.runVideo(ctx, state)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}
	return res, err
}

func (p *Pipeline) textGenerator(ctx context.Context) (common.TextGenerator, error) {
	if p.LLM == nil {
		llm, err := common.NewTextGenerator(ctx, p.Config)
		if err != nil {
			return nil, err
		}
		p.LLM = llm
	}
	return p.LLM, nil
}

// runText searches, summarizes, composes the cards, writes the narration
// scripts and music tags, and saves the state record.
func (p *Pipeline) runText(ctx context.Context) (*common.PipelineState, error) {
	cfg := p.Config
	llm, err := p.textGenerator(ctx)
	if err != nil {
		return nil, fmt.Errorf("text generator: %w", err)
	}
	state := common.NewPipelineState(cfg.Keyword)

	var articles []common.Article
	if cfg.PDFPath != "" {
		doc, err := pdfArticle(cfg.PDFPath)
		if err != nil {
			return nil, err
		}
		log.Printf("[Search] Using document %s as a source", cfg.PDFPath)
		articles = append(articles, doc)
	}

	if p.Searcher == nil {
		p.Searcher = NewNewsSearcher(cfg.SerpAPIKey)
	}
	found, err := p.Searcher.Search(ctx, cfg.Keyword, cfg.MaxResults)
	switch {
	case err != nil && len(articles) == 0:
		return nil, fmt.Errorf("news search failed: %w", err)
	case err != nil:
		log.Printf("[Search] Warning: news search failed, continuing with the document only: %v", err)
	case len(found) == 0:
		log.Printf("[Search] Warning: no articles found for %q", cfg.Keyword)
	}
	articles = append(articles, found...)
	state.Articles = articles

	w := NewWriter(llm)
	state.Summaries = w.Summarize(ctx, articles, cfg.MaxSummaries)

	state.Cards, err = w.ComposeCards(ctx, state.Summaries, cfg.Keyword, cfg.NumCards, cfg.MaxChars)
	if err != nil {
		return nil, err
	}
	for i, c := range state.Cards {
		log.Printf("[Card] Card %d: %s", i+1, c.Body)
	}

	state.CardScripts = w.WriteScripts(ctx, state.Cards, cfg.MaxChars)

	var narration []string
	narration = append(narration, cfg.Keyword)
	narration = append(narration, state.CardScripts...)
	state.MusicTags = music.SuggestTags(ctx, llm, strings.Join(narration, " "))
	log.Printf("[Music] Suggested tags: %v", state.MusicTags)

	if err := common.SaveState(cfg.OutputDir, state); err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] Saved %s", filepath.Join(cfg.OutputDir, common.StateFile))
	return state, nil
}

func pdfArticle(path string) (common.Article, error) {
	proc, err := common.NewPDFProcessor(path)
	if err != nil {
		return common.Article{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer proc.Close()
	return proc.Article()
}

func (p *Pipeline) runCards(ctx context.Context, state *common.PipelineState) ([]string, error) {
	cfg := p.Config
	themeCfg, err := common.LoadThemeConfig(cfg.ThemePath)
	if err != nil {
		return nil, err
	}
	theme, err := render.ThemeFromConfig(themeCfg)
	if err != nil {
		return nil, err
	}
	fonts := render.LoadFontSource(theme.FontPath)
	defer fonts.Close()
	log.Printf("[Card] Using font %s", fonts.Name)

	if p.Pictograms == nil {
		emojiDir := cfg.EmojiDir
		if emojiDir == "" {
			emojiDir = "emoji_png"
		}
		p.Pictograms = render.NewPictogramFetcher(emojiDir)
	}
	set := p.Pictograms.PrefetchPictograms(ctx, state.Cards)

	dir := p.dir(common.CardsDir)
	if err := removeNumbered(dir, "card_*.png"); err != nil {
		return nil, err
	}
	return render.NewCompositor(theme, fonts, set).RenderCards(state.Cards, dir)
}

func (p *Pipeline) runAudio(ctx context.Context, state *common.PipelineState) ([]string, error) {
	if p.Synth == nil {
		synth, err := audio.NewSynthesizer(p.Config)
		if err != nil {
			return nil, err
		}
		p.Synth = synth
	}
	dir := p.dir(common.AudioDir)
	if err := removeNumbered(dir, "card_*.*"); err != nil {
		return nil, err
	}
	scripts := state.CardScripts
	if len(scripts) == 0 {
		for _, c := range state.Cards {
			scripts = append(scripts, c.Body)
		}
	}
	return audio.GenerateCardAudio(ctx, p.Synth, scripts, dir)
}

func (p *Pipeline) runMusic(ctx context.Context, state *common.PipelineState) (*common.MusicInfo, error) {
	if p.Music == nil {
		p.Music = music.NewJamendoClient(p.Config.JamendoClientID)
	}
	tags := state.MusicTags
	if len(tags) == 0 {
		tags = music.TagsForTopic(state.Keyword)
	}
	info, err := p.Music.SelectAndDownload(ctx, tags, p.dir(common.MusicDir))
	if err != nil {
		return nil, err
	}
	if err := common.SaveMusicInfo(p.Config.OutputDir, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (p *Pipeline) runVideo(ctx context.Context, state *common.PipelineState) (string, error) {
	if p.Video == nil {
		if err := video.CheckTools(); err != nil {
			return "", err
		}
		p.Video = video.NewVideoGenerator(p.Config.OutputDir)
	}
	images, tracks := video.CollectCardMedia(p.dir(common.CardsDir), p.dir(common.AudioDir))
	if len(images) == 0 {
		return "", errors.New("no card images found, run the cards stage first")
	}
	return p.Video.Assemble(ctx, images, tracks, p.musicPath(), state.Keyword)
}

// musicPath is the downloaded track recorded in music_info.json, or "" when
// music is disabled or the track is gone.
func (p *Pipeline) musicPath() string {
	if !p.Config.Music {
		return ""
	}
	info, err := common.LoadMusicInfo(p.Config.OutputDir)
	if err != nil {
		log.Printf("[Video] Could not read %s: %v", common.MusicInfoFile, err)
		return ""
	}
	if _, err := os.Stat(info.Path); err != nil {
		log.Printf("[Video] WARNING: background music file %q not found", info.Path)
		return ""
	}
	log.Printf("[Video] Using music from %s: %s", common.MusicInfoFile, info.Path)
	return info.Path
}

// removeNumbered deletes artifacts of a previous run so that stale files
// never get paired with the new cards.
func removeNumbered(dir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("failed to remove stale %s: %w", m, err)
		}
	}
	return nil
}
