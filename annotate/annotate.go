// Package annotate renders detection boxes and labels onto a copy of the
// uploaded image.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/marinelab/underwater-detect/models"
)

var (
	textColor = color.RGBA{255, 255, 255, 255}
	labelFace = basicfont.Face7x13
)

// Draw returns a copy of img with one outlined box and filled label tag per
// detection. The input image is never modified.
func Draw(img image.Image, dets []models.Detection) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	thickness := boxThickness(bounds.Dx(), bounds.Dy())
	for _, det := range dets {
		r, g, b := models.ParseClassColor(det.Class)
		boxColor := color.RGBA{r, g, b, 255}

		box := image.Rect(int(det.BBox[0]), int(det.BBox[1]), int(det.BBox[2]), int(det.BBox[3]))
		drawOutline(out, box, thickness, boxColor)
		drawLabel(out, box, fmt.Sprintf("%s %.2f", det.Class, det.Confidence), boxColor)
	}

	return out
}

// boxThickness scales line weight with image size, never thinner than 2px.
func boxThickness(width, height int) int {
	t := minInt(width, height) / 300
	if t < 2 {
		t = 2
	}
	return t
}

func drawOutline(img *image.RGBA, box image.Rectangle, thickness int, c color.RGBA) {
	box = box.Intersect(img.Bounds())
	if box.Empty() {
		return
	}

	top := image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+thickness)
	bottom := image.Rect(box.Min.X, box.Max.Y-thickness, box.Max.X, box.Max.Y)
	left := image.Rect(box.Min.X, box.Min.Y, box.Min.X+thickness, box.Max.Y)
	right := image.Rect(box.Max.X-thickness, box.Min.Y, box.Max.X, box.Max.Y)

	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		fillRect(img, edge.Intersect(img.Bounds()), c)
	}
}

// drawLabel paints a filled tag above the box top-left corner, clipped to
// the top edge, with the label text in white.
func drawLabel(img *image.RGBA, box image.Rectangle, text string, bg color.RGBA) {
	labelW := font.MeasureString(labelFace, text).Ceil()
	labelH := labelFace.Metrics().Height.Ceil()

	bgTop := box.Min.Y - labelH - 10
	if bgTop < img.Bounds().Min.Y {
		bgTop = img.Bounds().Min.Y
	}
	tag := image.Rect(box.Min.X, bgTop, box.Min.X+labelW+10, box.Min.Y)
	fillRect(img, tag.Intersect(img.Bounds()), bg)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: labelFace,
		Dot: fixed.Point26_6{
			X: fixed.I(box.Min.X + 5),
			Y: fixed.I(box.Min.Y - 5),
		},
	}
	drawer.DrawString(text)
}

func fillRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
