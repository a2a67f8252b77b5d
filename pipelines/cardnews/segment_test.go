package cardnews

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func bodies(t *testing.T, passage string, n, budget int) []string {
	t.Helper()
	var out []string
	for _, c := range SegmentCards(passage, "topic", n, budget) {
		out = append(out, c.Body)
	}
	return out
}

func TestSegmentCardsMarkers(t *testing.T) {
	passage := "Card 1: Cats are great! They purr.\n\nCard 2: Dogs are loyal! They bark."
	got := bodies(t, passage, 2, 100)
	want := []string{"Cats are great! They purr.", "Dogs are loyal! They bark."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSegmentCardsFallbackDoesNotPad(t *testing.T) {
	passage := "Card 1: Cats are great! They purr.\n\nDogs are loyal! They bark."
	got := bodies(t, passage, 3, 100)
	want := []string{"Cats are great! They purr.", "Dogs are loyal! They bark."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSegmentCardsParagraphsReplaceShortMarkerSplit(t *testing.T) {
	passage := "#AI\nCard 1: First body sentence here. Card 2: Second body sentence here."
	got := bodies(t, passage, 3, 220)
	want := "First body sentence here. Card 2: Second body sentence here."
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %q, want [%q]", got, want)
	}
}

func TestSegmentCardsHashtagTitle(t *testing.T) {
	passage := "#Space, #Rockets, #Future\nCard 1: Rockets are reusable now! 🚀\nCard 2: Tickets may get cheaper soon! 🎟️"
	cards := SegmentCards(passage, "space", 2, 220)
	if len(cards) != 2 {
		t.Fatalf("got %d cards: %+v", len(cards), cards)
	}
	for _, c := range cards {
		if c.Title != "#Space, #Rockets, #Future" {
			t.Errorf("title = %q", c.Title)
		}
	}
	if cards[0].Body != "Rockets are reusable now! 🚀" {
		t.Errorf("body = %q", cards[0].Body)
	}
}

func TestSegmentCardsTitleFallsBackToTopic(t *testing.T) {
	cards := SegmentCards("Card 1: Something happened today!", "  local\nnews ", 1, 100)
	if len(cards) != 1 || cards[0].Title != "local news" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestSegmentCardsFiltersDegenerateFragments(t *testing.T) {
	passage := "Intro text\nCard 1: **\nCard 2: short\nCard 3: This one is long enough to keep!\nCard 4: __"
	got := bodies(t, passage, 1, 100)
	if len(got) != 1 || got[0] != "This one is long enough to keep!" {
		t.Errorf("got %q", got)
	}
}

func TestSegmentCardsBoldMarkers(t *testing.T) {
	passage := "**Card 1:** First card has a body!\n**Card 2:** Second card has a body!"
	got := bodies(t, passage, 2, 100)
	if len(got) != 2 || got[1] != "Second card has a body!" {
		t.Errorf("got %q", got)
	}
}

func TestSegmentCardsNeverExceedsN(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 8; i++ {
		sb.WriteString("Card ")
		sb.WriteString(string(rune('0' + i)))
		sb.WriteString(": A perfectly normal sentence for this card!\n")
	}
	for n := 0; n <= 10; n++ {
		got := SegmentCards(sb.String(), "t", n, 50)
		if len(got) > n {
			t.Errorf("n=%d returned %d cards", n, len(got))
		}
		if n <= 8 && len(got) != n {
			t.Errorf("n=%d returned %d cards, want %d", n, len(got), n)
		}
	}
}

func TestSegmentCardsBudgetAndNonEmpty(t *testing.T) {
	passages := []string{
		"Card 1: " + strings.Repeat("word ", 100) + "\nCard 2: Short one here! Then another sentence follows it.",
		"No markers at all. Just a couple of sentences! And a question?\n\nSecond paragraph is here.",
		"Card 1: 🎉🎉🎉 Party time everyone! " + strings.Repeat("Fun! ", 40),
		"Card 1: Averyveryveryverylongwordwithoutanyspacesorpunctuationatallthatkeepsgoingandgoing",
	}
	for _, budget := range []int{5, 20, 50, 220} {
		for _, p := range passages {
			for _, c := range SegmentCards(p, "t", 5, budget) {
				if n := utf8.RuneCountInString(c.Body); n > budget {
					t.Errorf("budget %d: body has %d runes: %q", budget, n, c.Body)
				}
				if strings.TrimSpace(c.Body) == "" {
					t.Errorf("budget %d: empty body from %q", budget, p)
				}
				if strings.Contains(c.Title, "\n") {
					t.Errorf("title has newline: %q", c.Title)
				}
			}
		}
	}
}

func TestTruncateAtSentence(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		budget int
		want   string
	}{
		{"fits", "Short enough.", 50, "Short enough."},
		{"whole sentences", "One two three! Four five six. Seven eight nine?", 30, "One two three! Four five six."},
		{"stops at first overflow", "Tiny. " + strings.Repeat("x", 40) + ". Also tiny.", 20, "Tiny."},
		{"hard cut", "An extremely long first sentence without an early stop.", 12, "An extremely"},
		{"hard cut trims space", "Abc defghij klmnop.", 4, "Abc"},
		{"multibyte", "가나다라마바사아자차카타파하.", 5, "가나다라마"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := TruncateAtSentence(c.text, c.budget)
			if got != c.want {
				t.Errorf("TruncateAtSentence(%q, %d) = %q, want %q", c.text, c.budget, got, c.want)
			}
			if utf8.RuneCountInString(got) > c.budget {
				t.Errorf("result over budget: %q", got)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	title, rest := ExtractTitle("  #A, #B\nCard 1: body")
	if title != "#A, #B" || rest != "Card 1: body" {
		t.Errorf("got %q / %q", title, rest)
	}
	title, rest = ExtractTitle("Card 1: body")
	if title != "" || rest != "Card 1: body" {
		t.Errorf("got %q / %q", title, rest)
	}
}
