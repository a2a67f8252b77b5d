package music

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"cardnews/common"
)

// Tag vocabularies known to return results from the Jamendo catalog.
var (
	GenreTags = []string{
		"pop", "rock", "electronic", "jazz", "classical", "metal",
		"hiphop", "folk", "blues", "reggae", "funk", "country",
		"soundtrack", "world", "ambient", "lounge",
	}
	MoodTags = []string{
		"happy", "energetic", "calm", "upbeat", "chill", "romantic",
		"dark", "uplifting", "peaceful", "dramatic", "party",
	}
	FeaturedGenres = []string{
		"lounge", "classical", "electronic", "jazz", "pop",
		"hiphop", "relaxation", "rock", "songwriter", "world",
		"metal", "soundtrack",
	}
	FallbackMoods = []string{"happy", "upbeat", "energetic"}
	DefaultTags   = []string{"pop", "happy"}
)

type tagRule struct {
	keywords []string
	tags     []string
}

// tagTable is evaluated top to bottom; the first rule with a keyword among
// the topic's words wins.
var tagTable = []tagRule{
	{keywords: []string{"kids", "children", "playful", "funny", "cartoon"}, tags: []string{"pop", "happy"}},
	{keywords: []string{"tech", "ai", "robot", "robots", "future", "startup"}, tags: []string{"electronic", "upbeat"}},
	{keywords: []string{"news", "update", "trend", "today"}, tags: []string{"pop", "upbeat"}},
	{keywords: []string{"happy", "joy", "smile", "celebrate"}, tags: []string{"happy", "upbeat"}},
	{keywords: []string{"calm", "relax", "meditation", "peaceful"}, tags: []string{"calm", "relaxation"}},
	{keywords: []string{"party", "dance", "club", "energetic"}, tags: []string{"party", "energetic"}},
	{keywords: []string{"romantic", "love", "date", "wedding"}, tags: []string{"romantic", "pop"}},
}

func words(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}

// TagsForTopic maps free text to music tags with the decision table. Only
// whole words match, so "said" does not select the "ai" rule.
func TagsForTopic(topic string) []string {
	ws := words(topic)
	for _, rule := range tagTable {
		for _, kw := range rule.keywords {
			if ws[kw] {
				return append([]string(nil), rule.tags...)
			}
		}
	}
	return append([]string(nil), DefaultTags...)
}

var quoted = regexp.MustCompile(`[A-Za-z]+`)

// ParseSuggestedTags keeps the words of a model answer that belong to the
// genre or mood vocabularies, in order and without repeats.
func ParseSuggestedTags(answer string) []string {
	allowed := make(map[string]bool)
	for _, t := range GenreTags {
		allowed[t] = true
	}
	for _, t := range MoodTags {
		allowed[t] = true
	}
	seen := make(map[string]bool)
	var tags []string
	for _, w := range quoted.FindAllString(strings.ToLower(answer), -1) {
		if allowed[w] && !seen[w] {
			seen[w] = true
			tags = append(tags, w)
		}
	}
	return tags
}

// SuggestTags asks the model to pick genre and mood tags for the narration.
// Anything unusable falls back to the decision table over the text itself.
func SuggestTags(ctx context.Context, llm common.TextGenerator, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return append([]string(nil), DefaultTags...)
	}
	if llm == nil {
		return TagsForTopic(text)
	}

	prompt := common.Prompt{
		System: "You select background music tags. Only use the provided genre and mood tag lists.",
		User: fmt.Sprintf("Given the following card-news script, pick the 1-2 most relevant genre tags and the 1-2 most relevant mood tags. "+
			"Only choose from these lists and answer with a comma-separated list, e.g. pop, happy, energetic.\n\n"+
			"Script: %s\n\nGenre tags: %s\nMood tags: %s\nYour answer:",
			text, strings.Join(GenreTags, ", "), strings.Join(MoodTags, ", ")),
		MaxTokens:   60,
		Temperature: 0.2,
	}
	answer, err := llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[Music] Warning: tag suggestion failed: %v", err)
		return TagsForTopic(text)
	}
	tags := ParseSuggestedTags(answer)
	if len(tags) == 0 {
		log.Printf("[Music] Could not use suggested tags %q, using keyword table", answer)
		return TagsForTopic(text)
	}
	return tags
}
