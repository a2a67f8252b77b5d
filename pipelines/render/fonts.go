package render

import (
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// SystemFontPaths are tried, in order, after the configured font.
var SystemFontPaths = []string{
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/local/share/fonts/DejaVuSans.ttf",
}

// FontSource hands out faces of one font at any pixel size and caches them.
// Faces are not safe for concurrent drawing; render cards one at a time.
type FontSource struct {
	Name string

	font  *opentype.Font
	mu    sync.Mutex
	cache map[int]font.Face
}

// LoadFontSource resolves the first usable font: path, then the system
// fonts, then the embedded Go Regular. If even that cannot be parsed the
// source falls back to the fixed 7x13 bitmap font.
func LoadFontSource(path string) *FontSource {
	candidates := SystemFontPaths
	if path != "" {
		candidates = append([]string{path}, SystemFontPaths...)
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			log.Printf("[Card] Warning: cannot parse font %s: %v", p, err)
			continue
		}
		return newFontSource(p, f)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("[Card] Warning: embedded font unusable, text will be tiny: %v", err)
		return &FontSource{Name: "basicfont", cache: make(map[int]font.Face)}
	}
	return newFontSource("goregular", f)
}

func newFontSource(name string, f *opentype.Font) *FontSource {
	return &FontSource{Name: name, font: f, cache: make(map[int]font.Face)}
}

// Face returns the face at size pixels.
func (s *FontSource) Face(size int) font.Face {
	if s.font == nil {
		return basicfont.Face7x13
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.cache[size]; ok {
		return face
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[Card] Warning: face at size %d failed: %v", size, err)
		return basicfont.Face7x13
	}
	s.cache[size] = face
	return face
}

// Close releases the cached faces.
func (s *FontSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for size, face := range s.cache {
		face.Close()
		delete(s.cache, size)
	}
	return nil
}
