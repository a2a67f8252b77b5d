package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cardnews/common"
	"cardnews/layout"
)

const TwemojiBaseURL = "https://cdn.jsdelivr.net/gh/twitter/twemoji@14.0.2/assets/72x72/"

// PictogramSet maps a pictogram key (see layout.PictogramKey) to its bitmap.
type PictogramSet map[string]image.Image

// Lookup returns the bitmap for a pictogram run, if one was resolved.
func (p PictogramSet) Lookup(run string) (image.Image, bool) {
	img, ok := p[layout.PictogramKey(run)]
	return img, ok
}

// PictogramFetcher resolves pictogram bitmaps from a local directory,
// downloading missing ones from the Twemoji CDN into it.
type PictogramFetcher struct {
	Dir     string
	BaseURL string
	Client  *http.Client
}

func NewPictogramFetcher(dir string) *PictogramFetcher {
	return &PictogramFetcher{
		Dir:     dir,
		BaseURL: TwemojiBaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// PrefetchPictograms resolves every pictogram used by the cards before any
// drawing starts. Pictograms that cannot be resolved are left out and drawn
// as glyphs later.
func (f *PictogramFetcher) PrefetchPictograms(ctx context.Context, cards []common.Card) PictogramSet {
	set := make(PictogramSet)
	var text string
	for _, c := range cards {
		text += c.Title + "\n" + c.Body + "\n"
	}
	for _, p := range layout.Pictograms(text) {
		key := layout.PictogramKey(p)
		img, err := f.load(ctx, key)
		if err != nil {
			log.Printf("[Card] Warning: no bitmap for %s: %v", key, err)
			continue
		}
		set[key] = img
	}
	return set
}

func (f *PictogramFetcher) load(ctx context.Context, key string) (image.Image, error) {
	path := filepath.Join(f.Dir, key+".png")
	if img, err := decodePNG(path); err == nil {
		return img, nil
	}
	if err := f.download(ctx, key, path); err != nil {
		return nil, err
	}
	return decodePNG(path)
}

func (f *PictogramFetcher) download(ctx context.Context, key, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+key+".png", nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", key, resp.StatusCode)
	}

	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	_, err = io.Copy(out, resp.Body)
	return err
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
