package layout

import (
	"math"
	"strings"
)

// FitResult is the wrapped and measured text block for one font size.
type FitResult struct {
	FontSize     int
	Lines        []string
	LineHeights  []int
	TotalHeight  int
	MaxLineWidth int
	Fits         bool
}

// Within reports whether the block fits a width x height budget.
func (r FitResult) Within(width, height int) bool {
	return r.TotalHeight <= height && r.MaxLineWidth <= width
}

// Fitter wraps text into lines and measures the block. The gap between two
// lines is Spacing plus GapRatio times the font size; the compositor
// advances its cursor by the same amount.
type Fitter struct {
	Measurer Measurer
	Spacing  int
	GapRatio float64
}

func NewFitter(m Measurer, spacing int, gapRatio float64) *Fitter {
	return &Fitter{Measurer: m, Spacing: spacing, GapRatio: gapRatio}
}

// LineGap is the vertical space between consecutive lines at size.
func (f *Fitter) LineGap(size int) int {
	return f.Spacing + int(math.Round(f.GapRatio*float64(size)))
}

// Wrap splits text into sentences and packs the words of each sentence into
// lines no wider than maxWidth. Each sentence starts on a new line. A single
// word wider than maxWidth gets a line of its own.
func (f *Fitter) Wrap(text string, size, maxWidth int) []string {
	var lines []string
	for _, sentence := range SplitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			trial := line + " " + word
			if w, _ := f.Measurer.Measure(trial, size); w <= maxWidth {
				line = trial
				continue
			}
			lines = append(lines, line)
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// Fit wraps text at size against width and reports whether the block fits
// inside width x height.
func (f *Fitter) Fit(text string, size, width, height int) FitResult {
	res := FitResult{FontSize: size}
	res.Lines = f.Wrap(text, size, width)
	for i, line := range res.Lines {
		w, h := f.Measurer.Measure(line, size)
		res.LineHeights = append(res.LineHeights, h)
		res.TotalHeight += h
		if i > 0 {
			res.TotalHeight += f.LineGap(size)
		}
		if w > res.MaxLineWidth {
			res.MaxLineWidth = w
		}
	}
	res.Fits = res.Within(width, height)
	return res
}

// FitLine measures text as a single line at size. Runs of whitespace,
// line breaks included, collapse to one space. Empty text gives no lines.
func (f *Fitter) FitLine(text string, size, width, height int) FitResult {
	res := FitResult{FontSize: size}
	line := strings.Join(strings.Fields(text), " ")
	if line != "" {
		w, h := f.Measurer.Measure(line, size)
		res.Lines = []string{line}
		res.LineHeights = []int{h}
		res.TotalHeight = h
		res.MaxLineWidth = w
	}
	res.Fits = res.Within(width, height)
	return res
}
