package common

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// maxPDFChars caps how much document text is handed to the summarizer.
const maxPDFChars = 6000

// PDFProcessor reads text out of a local document so it can be used as an
// extra article next to the search results.
type PDFProcessor struct {
	Path     string
	doc      *fitz.Document
	NumPages int
}

// NewPDFProcessor opens the document at path.
func NewPDFProcessor(path string) (*PDFProcessor, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	return &PDFProcessor{Path: path, doc: doc, NumPages: doc.NumPage()}, nil
}

// Close cleans up resources
func (p *PDFProcessor) Close() {
	if p.doc != nil {
		p.doc.Close()
	}
}

// ExtractText extracts all text from the PDF
func (p *PDFProcessor) ExtractText() (string, error) {
	var sb strings.Builder
	for i := 0; i < p.NumPages; i++ {
		text, err := p.doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("error extracting text from page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Article turns the document into an Article. The title comes from the
// document metadata or the file name, the summary is the leading text
// collapsed to single spaces.
func (p *PDFProcessor) Article() (Article, error) {
	text, err := p.ExtractText()
	if err != nil {
		return Article{}, err
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Article{}, fmt.Errorf("no text extracted from %s", p.Path)
	}
	if rs := []rune(text); len(rs) > maxPDFChars {
		text = string(rs[:maxPDFChars])
	}

	title := strings.TrimSpace(p.doc.Metadata()["title"])
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
	}
	abs, _ := filepath.Abs(p.Path)
	return Article{Title: title, Summary: text, URL: "file://" + abs}, nil
}
