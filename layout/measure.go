package layout

import (
	"golang.org/x/image/font"
)

// Measurer returns the pixel extent of a single line of text drawn at size.
type Measurer interface {
	Measure(text string, size int) (width, height int)
}

// FaceSource hands out font faces by pixel size.
type FaceSource interface {
	Face(size int) font.Face
}

// FaceMeasurer measures text with x/image font faces. Pictogram runs are
// measured as a size x size square, which is how the compositor draws them.
type FaceMeasurer struct {
	Faces FaceSource
}

func NewFaceMeasurer(faces FaceSource) *FaceMeasurer {
	return &FaceMeasurer{Faces: faces}
}

func (m *FaceMeasurer) Measure(text string, size int) (int, int) {
	if text == "" {
		return 0, 0
	}
	face := m.Faces.Face(size)
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	width := 0
	for _, run := range SplitRuns(text) {
		if run.Kind == RunPictogram {
			width += size
			if size > height {
				height = size
			}
			continue
		}
		width += font.MeasureString(face, Visible(run.Content)).Ceil()
	}
	return width, height
}
