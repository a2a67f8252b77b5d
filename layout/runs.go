package layout

import (
	"fmt"
	"strings"
	"unicode"
)

// RunKind tells the compositor how a run is drawn.
type RunKind int

const (
	RunPlain RunKind = iota
	RunPictogram
)

func (k RunKind) String() string {
	if k == RunPictogram {
		return "pictogram"
	}
	return "plain"
}

// TextRun is one piece of a rendering line. Joining the Content of all runs
// of a line in order gives back the line.
type TextRun struct {
	Kind    RunKind
	Content string
}

// pictographic covers the emoji blocks twemoji ships bitmaps for. Arrows,
// letterlike symbols and other text-default characters are left out so that
// they keep rendering through the font.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x231a, Hi: 0x231b, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23cf, Hi: 0x23cf, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23f3, Stride: 1},
		{Lo: 0x23f8, Hi: 0x23fa, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25ab, Stride: 1},
		{Lo: 0x25b6, Hi: 0x25b6, Stride: 1},
		{Lo: 0x25c0, Hi: 0x25c0, Stride: 1},
		{Lo: 0x25fb, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
		{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

// IsPictogram reports whether r is drawn from a bitmap instead of the font.
func IsPictogram(r rune) bool {
	return unicode.Is(pictographic, r)
}

// SplitRuns splits a line into plain and pictogram runs. Every pictographic
// code point becomes its own run; sequences joined with ZWJ or followed by a
// variation selector are not merged, the joiners end up in plain runs.
func SplitRuns(line string) []TextRun {
	var runs []TextRun
	start := -1
	for i, r := range line {
		if !IsPictogram(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, TextRun{Kind: RunPlain, Content: line[start:i]})
			start = -1
		}
		end := i + len(string(r))
		runs = append(runs, TextRun{Kind: RunPictogram, Content: line[i:end]})
	}
	if start >= 0 {
		runs = append(runs, TextRun{Kind: RunPlain, Content: line[start:]})
	}
	return runs
}

// PictogramKey returns the bitmap key for a pictogram run: lowercase hex code
// points joined with "-", the naming used by twemoji assets.
func PictogramKey(s string) string {
	parts := make([]string, 0, 2)
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("%x", r))
	}
	return strings.Join(parts, "-")
}

// Pictograms returns the distinct pictograms in text, in first-seen order.
func Pictograms(text string) []string {
	seen := make(map[rune]bool)
	var out []string
	for _, r := range text {
		if IsPictogram(r) && !seen[r] {
			seen[r] = true
			out = append(out, string(r))
		}
	}
	return out
}

// Visible drops zero-width joiners and variation selectors, which the
// rasterizer would otherwise draw as missing-glyph boxes.
func Visible(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == 0x200d:
			return -1
		case r >= 0xfe00 && r <= 0xfe0f:
			return -1
		}
		return r
	}, s)
}
