package layout

import "image"

// BoxSpec is a decorated region of the card. Text is laid out inside the
// rectangle shrunk by Margin on every side.
type BoxSpec struct {
	Left, Top, Right, Bottom int
	Margin                   int
}

func (b BoxSpec) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

func (b BoxSpec) Inner() image.Rectangle {
	return image.Rect(b.Left+b.Margin, b.Top+b.Margin, b.Right-b.Margin, b.Bottom-b.Margin)
}

func (b BoxSpec) InnerWidth() int {
	return b.Inner().Dx()
}

func (b BoxSpec) InnerHeight() int {
	return b.Inner().Dy()
}
