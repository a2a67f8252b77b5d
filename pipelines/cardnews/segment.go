package cardnews

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"cardnews/common"
	"cardnews/layout"
)

// minFragmentRunes is the shortest body worth a card.
const minFragmentRunes = 10

var (
	cardMarker      = regexp.MustCompile(`(?i)\**[ \t]*\bcard[ \t]*\d+[ \t]*:[ \t]*\**`)
	leadingMarker   = regexp.MustCompile(`(?i)^\**[ \t]*\bcard[ \t]*\d+[ \t]*:[ \t]*\**`)
	blankLine       = regexp.MustCompile(`\n[ \t]*\n`)
	formattingNoise = map[string]bool{"": true, "**": true, "__": true, "*": true}
)

// ExtractTitle pulls a leading hashtag line ("#AI, #Robots, #Future") off
// the passage. It returns the line and the rest of the passage; title is
// empty when the passage does not start with '#'.
func ExtractTitle(passage string) (title, rest string) {
	passage = strings.TrimSpace(passage)
	if !strings.HasPrefix(passage, "#") {
		return "", passage
	}
	line, rest, _ := strings.Cut(passage, "\n")
	return strings.TrimSpace(line), strings.TrimSpace(rest)
}

// TruncateAtSentence shortens text to at most budget runes. Whole sentences
// are kept while they fit; when not even the first sentence fits, the text
// is cut at budget runes and trailing space trimmed.
func TruncateAtSentence(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= budget {
		return text
	}

	var sb strings.Builder
	n := 0
	for _, sentence := range layout.SplitSentences(text) {
		c := utf8.RuneCountInString(sentence)
		if n+c > budget {
			break
		}
		sb.WriteString(sentence)
		n += c
	}
	if out := strings.TrimSpace(sb.String()); out != "" {
		return out
	}
	return strings.TrimRightFunc(string([]rune(text)[:budget]), unicode.IsSpace)
}

func usable(fragment string) bool {
	s := strings.TrimSpace(fragment)
	return !formattingNoise[s] && utf8.RuneCountInString(s) > minFragmentRunes
}

func collect(fragments []string, budget int) []string {
	var out []string
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if !usable(f) {
			continue
		}
		out = append(out, TruncateAtSentence(f, budget))
	}
	return out
}

// splitOnMarkers is the primary tier: "Card k:" labels delimit bodies and
// whatever precedes the first label is dropped.
func splitOnMarkers(passage string, budget int) []string {
	parts := cardMarker.Split(passage, -1)
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return collect(parts, budget)
}

// splitOnBlankLines is the fallback tier: paragraphs delimit bodies and a
// stray "Card k:" label at the start of a paragraph is removed.
func splitOnBlankLines(passage string, budget int) []string {
	parts := blankLine.Split(passage, -1)
	for i, p := range parts {
		parts[i] = leadingMarker.ReplaceAllString(strings.TrimSpace(p), "")
	}
	return collect(parts, budget)
}

// SegmentCards turns one generated passage into at most n cards whose
// bodies are at most budget runes. The shared title is the passage's
// hashtag line, or topic when there is none. When the "Card k:" labels give
// fewer than n bodies, the paragraphs are used instead, even if that gives
// fewer still. Cards are never padded.
func SegmentCards(passage, topic string, n, budget int) []common.Card {
	if n <= 0 {
		return nil
	}
	passage = strings.ReplaceAll(passage, "\r\n", "\n")
	title, body := ExtractTitle(passage)
	if title == "" {
		title = topic
	}
	title = strings.Join(strings.Fields(title), " ")

	bodies := splitOnMarkers(body, budget)
	if len(bodies) < n {
		bodies = splitOnBlankLines(body, budget)
	}
	if len(bodies) > n {
		bodies = bodies[:n]
	}

	cards := make([]common.Card, 0, len(bodies))
	for _, b := range bodies {
		if b == "" {
			continue
		}
		cards = append(cards, common.Card{Title: title, Body: b})
	}
	return cards
}
