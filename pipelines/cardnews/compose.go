package cardnews

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cardnews/common"
)

const (
	summarySystem = "You summarize news articles for short vertical card-news videos. " +
		"Each summary is 2-4 short, punchy but informative sentences followed by one fun fact about the topic."

	cardsSystem = "You are a playful YouTube Shorts scriptwriter for card news. " +
		"Write a sequence of fun, joyful card slides from the provided summaries. " +
		"Do not use Markdown or formatting symbols. Limit each card to %d characters or less. " +
		"Add relevant emojis to each card."

	scriptSystem = "You are a lively YouTube Shorts host. Rewrite card content as a natural spoken script " +
		"instead of reading the text. For every card after the first, connect smoothly to the previous card " +
		"with a transition phrase or a reference to what was just said. Keep it to 3 sentences or about %d characters."
)

// Writer produces all generated text of a run: summaries, card passage and
// narration scripts.
type Writer struct {
	LLM common.TextGenerator
}

func NewWriter(llm common.TextGenerator) *Writer {
	return &Writer{LLM: llm}
}

func summaryPrompt(a common.Article) common.Prompt {
	var user string
	if strings.TrimSpace(a.Summary) == "" {
		user = fmt.Sprintf("Summarize the news article titled %q in 2-4 short, punchy, informative sentences for a card-news slide. "+
			"Keep every sentence lively and easy to read, use exclamation marks. Include the main point, one key detail and enough context "+
			"for viewers to follow the story. Then add a fun or surprising fact about the topic on a new line.", a.Title)
		if a.URL != "" {
			user += "\nSource: " + a.URL
		}
	} else {
		user = "Rewrite the following news summary in 2-4 short, punchy, informative sentences for a card-news slide. " +
			"Keep every sentence lively and easy to read, use exclamation marks. Include the main point, one key detail and enough context " +
			"for viewers to follow the story. Then add a fun or surprising fact about the topic on a new line.\nSummary: " + a.Summary
	}
	return common.Prompt{System: summarySystem, User: user, MaxTokens: 220, Temperature: 0.7}
}

// Summarize rewrites up to max articles in card-news style. An article whose
// generation fails keeps its original snippet, or is skipped when it has
// none.
func (w *Writer) Summarize(ctx context.Context, articles []common.Article, max int) []string {
	if max > 0 && len(articles) > max {
		articles = articles[:max]
	}
	log.Printf("[Card] Summarizing %d articles...", len(articles))

	var summaries []string
	for i, a := range articles {
		log.Printf("[Card] Summarizing article %d: %s", i+1, a.Title)
		text, err := w.LLM.Generate(ctx, summaryPrompt(a))
		if err != nil || strings.TrimSpace(text) == "" {
			log.Printf("[Card] Warning: summary for article %d failed: %v", i+1, err)
			if s := strings.TrimSpace(a.Summary); s != "" {
				summaries = append(summaries, s)
			}
			continue
		}
		summaries = append(summaries, text)
	}
	return summaries
}

func cardsPrompt(summaries []string, topic string, n, budget int) common.Prompt {
	joined := strings.Join(summaries, "\n")
	if joined == "" {
		joined = "(no articles were found, write about the topic itself)"
	}
	user := fmt.Sprintf("Given the topic %q and the article summaries below, write %d card-news slides that together tell a fun mini-story.\n"+
		"First line: three short hashtags describing the genre of the news, formatted as '#tag, #tag, #tag'.\n"+
		"Then number each slide as 'Card 1:', 'Card 2:' and so on. Open with a hook, continue with the main points and key details, "+
		"and end with a fun fact or outro. End sentences with an exclamation mark. Do not use Markdown or symbols like ** or __.\n"+
		"Keep each card readable aloud in under 10 seconds, about %d characters or less. Do not repeat facts across cards.\n"+
		"Use 2-3 emojis per card, placed naturally in the text.\n\nArticle summaries:\n%s",
		topic, n, budget, joined)
	return common.Prompt{
		System:      fmt.Sprintf(cardsSystem, budget),
		User:        user,
		MaxTokens:   1200,
		Temperature: 0.9,
	}
}

// ComposeCards asks for one passage holding all cards and segments it.
func (w *Writer) ComposeCards(ctx context.Context, summaries []string, topic string, n, budget int) ([]common.Card, error) {
	log.Printf("[Card] Generating %d card slides...", n)
	passage, err := w.LLM.Generate(ctx, cardsPrompt(summaries, topic, n, budget))
	if err != nil {
		return nil, fmt.Errorf("card generation failed: %w", err)
	}
	cards := SegmentCards(common.StripMarkdown(passage), topic, n, budget)
	if len(cards) == 0 {
		return nil, fmt.Errorf("no usable card content in model output")
	}
	if len(cards) < n {
		log.Printf("[Card] Warning: only %d of %d cards could be extracted", len(cards), n)
	}
	return cards, nil
}

func scriptPrompt(card, previous common.Card, first bool, budget int) common.Prompt {
	var user string
	if first {
		user = "Rewrite the following card-news content as a lively, friendly person talking directly to the viewer of a YouTube Short. " +
			"Make it natural and conversational, a greeting or rhetorical question is welcome. " +
			fmt.Sprintf("Limit the script to 3 sentences or about %d characters.\n\nContent: %s", budget, card.Body)
	} else {
		user = "Rewrite the following card-news content as a lively, friendly person talking directly to the viewer of a YouTube Short. " +
			"Add a transition from the previous card, for example 'And that's not all!' or 'Next up,', so the cards feel like one continuous story. " +
			fmt.Sprintf("Limit the script to 3 sentences or about %d characters.\n\nPrevious card: %s\nCurrent card: %s", budget, previous.Body, card.Body)
	}
	return common.Prompt{
		System:      fmt.Sprintf(scriptSystem, budget),
		User:        user,
		MaxTokens:   180,
		Temperature: 0.95,
	}
}

// WriteScripts produces one narration script per card, index-aligned with
// cards. When generation fails for a card its body is narrated as is.
func (w *Writer) WriteScripts(ctx context.Context, cards []common.Card, budget int) []string {
	log.Println("[Card] Generating narration scripts...")
	scripts := make([]string, len(cards))
	for i, card := range cards {
		var prev common.Card
		if i > 0 {
			prev = cards[i-1]
		}
		text, err := w.LLM.Generate(ctx, scriptPrompt(card, prev, i == 0, budget))
		text = strings.TrimSpace(common.StripMarkdown(text))
		if err != nil || text == "" {
			log.Printf("[Card] Warning: script for card %d failed, narrating the card text: %v", i+1, err)
			text = card.Body
		}
		scripts[i] = text
	}
	return scripts
}
