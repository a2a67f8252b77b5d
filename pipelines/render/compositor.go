package render

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"cardnews/common"
	"cardnews/layout"
)

// Compositor draws cards onto fixed-size canvases. Render does no I/O, so
// the same card and theme always produce the same pixels.
type Compositor struct {
	Theme      Theme
	Fonts      layout.FaceSource
	Pictograms PictogramSet

	content *layout.Fitter
	title   *layout.Fitter
}

func NewCompositor(theme Theme, fonts layout.FaceSource, pictograms PictogramSet) *Compositor {
	if pictograms == nil {
		pictograms = PictogramSet{}
	}
	return &Compositor{
		Theme:      theme,
		Fonts:      fonts,
		Pictograms: pictograms,
		content:    layout.NewFitter(layout.NewFaceMeasurer(fonts), theme.LineSpacing, theme.GapRatio),
		title:      layout.NewFitter(plainMeasurer{fonts}, theme.LineSpacing, theme.GapRatio),
	}
}

// plainMeasurer measures text as the rasterizer draws it, without giving
// pictograms any special width. Titles are drawn this way.
type plainMeasurer struct {
	faces layout.FaceSource
}

func (m plainMeasurer) Measure(text string, size int) (int, int) {
	if text == "" {
		return 0, 0
	}
	face := m.faces.Face(size)
	metrics := face.Metrics()
	return font.MeasureString(face, layout.Visible(text)).Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
}

// Fit runs auto-fit for the title and content boxes of card. The title is
// kept on one line and only shrinks.
func (c *Compositor) Fit(card common.Card) (title, content layout.FitResult) {
	t := c.Theme
	title = layout.AutoFitLine(c.title, card.Title,
		t.Title.InnerWidth(), t.Title.InnerHeight(),
		t.TitleFont.Max, t.TitleFont.Min, t.TitleFont.Step)
	content = layout.AutoFit(c.content, card.Body,
		t.Content.InnerWidth(), t.Content.InnerHeight(),
		t.ContentFont.Max, t.ContentFont.Min, t.ContentFont.Step)
	return title, content
}

// Render draws card and returns the canvas.
func (c *Compositor) Render(card common.Card) *image.RGBA {
	img, _ := c.compose(card)
	return img
}

func (c *Compositor) compose(card common.Card) (*image.RGBA, layout.FitResult) {
	t := c.Theme
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)

	titleFit, contentFit := c.Fit(card)

	c.drawBox(img, t.Title)
	c.drawTitle(img, titleFit)

	c.drawBox(img, t.Content)
	c.drawContent(img, contentFit)

	return img, contentFit
}

// RenderCards writes cards to dir as card_1.png, card_2.png and so on.
func (c *Compositor) RenderCards(cards []common.Card, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cards dir: %w", err)
	}
	var paths []string
	for i, card := range cards {
		path := common.NumberedPath(dir, "card", i+1, "png")
		img, content := c.compose(card)
		if err := common.SaveImage(path, img); err != nil {
			return paths, fmt.Errorf("card %d: %w", i+1, err)
		}
		if !content.Fits {
			log.Printf("[Card] Warning: card %d overflows its box at the minimum font size", i+1)
		}
		log.Printf("[Card] Saved card image: %s (font size used: %d)", path, content.FontSize)
		paths = append(paths, path)
	}
	return paths, nil
}

func (c *Compositor) drawBox(img *image.RGBA, box layout.BoxSpec) {
	t := c.Theme
	r := box.Rect()
	fillRoundRect(img, r.Add(image.Pt(t.ShadowOffset, t.ShadowOffset)), t.CornerRadius, t.Shadow)
	fillRoundRect(img, r, t.CornerRadius, t.Border)
	bw := int(t.BorderWidth)
	fillRoundRect(img, r.Inset(bw), t.CornerRadius-t.BorderWidth, t.BoxFill)
}

func fillRoundRect(img *image.RGBA, r image.Rectangle, radius float64, clr color.Color) {
	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetColor(clr)
	rasterx.AddRoundRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y),
		radius, radius, 0, rasterx.RoundGap, filler)
	filler.Draw()
}

func (c *Compositor) drawTitle(img *image.RGBA, fit layout.FitResult) {
	inner := c.Theme.Title.Inner()
	face := c.Fonts.Face(fit.FontSize)
	y := inner.Min.Y + (inner.Dy()-fit.TotalHeight)/2
	gap := c.title.LineGap(fit.FontSize)
	for i, line := range fit.Lines {
		text := layout.Visible(line)
		w := font.MeasureString(face, text).Ceil()
		x := inner.Min.X + (inner.Dx()-w)/2
		c.drawText(img, face, text, x, y, fit.LineHeights[i])
		y += fit.LineHeights[i] + gap
	}
}

func (c *Compositor) drawContent(img *image.RGBA, fit layout.FitResult) {
	inner := c.Theme.Content.Inner()
	size := fit.FontSize
	face := c.Fonts.Face(size)
	gap := c.content.LineGap(size)
	y := inner.Min.Y
	for i, line := range fit.Lines {
		h := fit.LineHeights[i]
		x := inner.Min.X
		for _, run := range layout.SplitRuns(line) {
			if run.Kind == layout.RunPictogram {
				if bmp, ok := c.Pictograms.Lookup(run.Content); ok {
					top := y + (h-size)/2
					draw.CatmullRom.Scale(img, image.Rect(x, top, x+size, top+size), bmp, bmp.Bounds(), draw.Over, nil)
				} else {
					c.drawText(img, face, layout.Visible(run.Content), x, y, h)
				}
				x += size
				continue
			}
			text := layout.Visible(run.Content)
			c.drawText(img, face, text, x, y, h)
			x += font.MeasureString(face, text).Ceil()
		}
		y += h + gap
	}
}

// drawText draws text with its glyph box vertically centered in a line
// that starts at top and is lineHeight tall.
func (c *Compositor) drawText(img *image.RGBA, face font.Face, text string, x, top, lineHeight int) {
	if text == "" {
		return
	}
	m := face.Metrics()
	glyphHeight := (m.Ascent + m.Descent).Ceil()
	baseline := top + (lineHeight-glyphHeight)/2 + m.Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.Theme.Foreground),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}
