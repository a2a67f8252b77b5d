package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"cardnews/common"
	"cardnews/layout"
)

// Theme holds everything the compositor needs besides the card itself.
type Theme struct {
	Width, Height int

	Background color.RGBA
	Foreground color.RGBA
	BoxFill    color.RGBA
	Border     color.RGBA
	Shadow     color.RGBA

	BorderWidth  float64
	CornerRadius float64
	ShadowOffset int

	Title   layout.BoxSpec
	Content layout.BoxSpec

	TitleFont   common.FontSizes
	ContentFont common.FontSizes

	// LineSpacing and GapRatio define the gap between two lines: the fixed
	// spacing plus GapRatio times the font size.
	LineSpacing int
	GapRatio    float64

	FontPath string
}

// DefaultTheme is a 1080x1920 portrait card with white text on blue.
func DefaultTheme() Theme {
	t := Theme{
		Width:        1080,
		Height:       1920,
		Background:   color.RGBA{0, 102, 204, 255},
		Foreground:   color.RGBA{255, 255, 255, 255},
		BoxFill:      color.RGBA{0, 82, 170, 255},
		Border:       color.RGBA{255, 255, 255, 255},
		Shadow:       color.RGBA{0, 40, 90, 255},
		BorderWidth:  6,
		CornerRadius: 36,
		ShadowOffset: 14,
		TitleFont:    common.FontSizes{Max: 72, Min: 20, Step: 2},
		ContentFont:  common.FontSizes{Max: 90, Min: 14, Step: 2},
		LineSpacing:  10,
		GapRatio:     0.4,
	}
	t.Title, t.Content = t.Boxes()
	return t
}

// Boxes derives the title and content regions from the canvas size. The
// title bar takes the top eighth of the card; the content box fills the
// rest down to a bottom margin.
func (t Theme) Boxes() (title, content layout.BoxSpec) {
	side := t.Width / 18
	title = layout.BoxSpec{
		Left:   side,
		Top:    t.Height / 16,
		Right:  t.Width - side,
		Bottom: t.Height/16 + t.Height/8,
		Margin: side / 2,
	}
	content = layout.BoxSpec{
		Left:   side,
		Top:    title.Bottom + t.Height/24,
		Right:  t.Width - side,
		Bottom: t.Height - t.Height/16,
		Margin: side,
	}
	return title, content
}

// ThemeFromConfig overlays the non-zero fields of cfg on DefaultTheme.
func ThemeFromConfig(cfg common.ThemeConfig) (Theme, error) {
	t := DefaultTheme()
	if cfg.Width > 0 {
		t.Width = cfg.Width
	}
	if cfg.Height > 0 {
		t.Height = cfg.Height
	}
	colors := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"background", cfg.Background, &t.Background},
		{"foreground", cfg.Foreground, &t.Foreground},
		{"box_fill", cfg.BoxFill, &t.BoxFill},
		{"border", cfg.Border, &t.Border},
	}
	for _, c := range colors {
		if c.hex == "" {
			continue
		}
		parsed, err := ParseHexColor(c.hex)
		if err != nil {
			return t, fmt.Errorf("theme %s: %w", c.name, err)
		}
		*c.dst = parsed
	}
	mergeSizes(&t.TitleFont, cfg.TitleFont)
	mergeSizes(&t.ContentFont, cfg.ContentFont)
	if cfg.LineSpacing > 0 {
		t.LineSpacing = cfg.LineSpacing
	}
	if cfg.GapRatio > 0 {
		t.GapRatio = cfg.GapRatio
	}
	t.FontPath = cfg.FontPath
	t.Title, t.Content = t.Boxes()
	return t, nil
}

func mergeSizes(dst *common.FontSizes, src common.FontSizes) {
	if src.Max > 0 {
		dst.Max = src.Max
	}
	if src.Min > 0 {
		dst.Min = src.Min
	}
	if src.Step > 0 {
		dst.Step = src.Step
	}
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
