package common

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// plainText resolves backslash escapes and character references the way a
// renderer would.
func plainText(b []byte) []byte {
	return util.UnescapePunctuations(util.ResolveEntityNames(util.ResolveNumericReferences(b)))
}

// StripMarkdown removes Markdown emphasis and link syntax from model output
// and returns the plain text. Paragraphs and headings stay separated by a
// blank line, tight list items and soft line breaks by a single newline.
// Heading markers and ordered list numbers are kept since they are part of
// the text ("# AI, #Tech" is a hashtag line). Autolinks keep their URL and
// inline HTML is kept verbatim.
func StripMarkdown(src string) string {
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var out, block strings.Builder
	prevTight := false
	flush := func(tight bool) {
		s := strings.TrimSpace(block.String())
		block.Reset()
		if s == "" {
			return
		}
		if out.Len() > 0 {
			if tight && prevTight {
				out.WriteString("\n")
			} else {
				out.WriteString("\n\n")
			}
		}
		out.WriteString(s)
		prevTight = tight
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				block.Write(plainText(node.Segment.Value(source)))
				if node.SoftLineBreak() || node.HardLineBreak() {
					block.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				block.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				block.Write(node.URL(source))
			}
		case *ast.RawHTML:
			if entering {
				for i := 0; i < node.Segments.Len(); i++ {
					seg := node.Segments.At(i)
					block.Write(seg.Value(source))
				}
			}
		case *ast.ListItem:
			if entering {
				if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
					block.WriteString(strconv.Itoa(list.Start + itemIndex(node)))
					block.WriteByte(list.Marker)
					block.WriteByte(' ')
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					block.Write(seg.Value(source))
				}
			} else {
				flush(false)
			}
		case *ast.TextBlock:
			if !entering {
				flush(true)
			}
		case *ast.Heading:
			if entering {
				block.WriteString(strings.Repeat("#", node.Level) + " ")
			} else {
				flush(false)
			}
		case *ast.Paragraph:
			if !entering {
				flush(false)
			}
		}
		return ast.WalkContinue, nil
	})
	flush(false)
	return out.String()
}

func itemIndex(item ast.Node) int {
	i := 0
	for prev := item.PreviousSibling(); prev != nil; prev = prev.PreviousSibling() {
		i++
	}
	return i
}
