// Package pdf renders a budget as a single fixed-size invoice page. The
// layout is pure arithmetic: it emits absolutely positioned draw operations
// which the renderer then plays into a PDF byte stream.
package pdf

// RGB is a 0-255 color triple.
type RGB struct {
	R, G, B int
}

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
)

// TextOp draws one text run. X is the left edge, Y the baseline, both in
// points from the top-left page corner.
type TextOp struct {
	X, Y  float64
	Size  float64
	Bold  bool
	Color RGB
	Text  string
}

// LineOp draws a straight line segment.
type LineOp struct {
	X1, Y1 float64
	X2, Y2 float64
	Width  float64
	Color  RGB
}

// RectOp draws a filled rectangle. X,Y is the top-left corner.
type RectOp struct {
	X, Y  float64
	W, H  float64
	Color RGB
}

// ImageOp draws an embedded PNG image. X,Y is the top-left corner.
type ImageOp struct {
	X, Y float64
	W, H float64
	PNG  []byte
}

// Ops is the complete draw list for one page. Paint order is rectangles,
// then lines, then images, then text, so bands sit under rules and rules
// under type.
type Ops struct {
	Rects  []RectOp
	Lines  []LineOp
	Images []ImageOp
	Texts  []TextOp
}

func (o *Ops) text(x, y, size float64, bold bool, color RGB, text string) {
	o.Texts = append(o.Texts, TextOp{X: x, Y: y, Size: size, Bold: bold, Color: color, Text: text})
}

func (o *Ops) line(x1, y1, x2, y2, width float64, color RGB) {
	o.Lines = append(o.Lines, LineOp{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width, Color: color})
}

func (o *Ops) rect(x, y, w, h float64, color RGB) {
	o.Rects = append(o.Rects, RectOp{X: x, Y: y, W: w, H: h, Color: color})
}

func (o *Ops) image(x, y, w, h float64, png []byte) {
	o.Images = append(o.Images, ImageOp{X: x, Y: y, W: w, H: h, PNG: png})
}

// FindText returns the first text op with exactly the given content.
func (o *Ops) FindText(text string) (TextOp, bool) {
	for _, t := range o.Texts {
		if t.Text == text {
			return t, true
		}
	}
	return TextOp{}, false
}
