package screen

import (
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Image renders the display with each tile drawn as a scale×scale square.
// An empty display renders as a single black tile.
func (d *Display) Image(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	d.mu.Lock()
	r := d.bounds
	if r.Empty() {
		r = image.Rect(0, 0, 1, 1)
	}
	src := image.NewRGBA(image.Rectangle{Max: r.Size()})
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			src.SetRGBA(x-r.Min.X, y-r.Min.Y, Color(d.tiles[image.Pt(x, y)]))
		}
	}
	d.mu.Unlock()

	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rectangle{Max: src.Rect.Size().Mul(scale)})
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG encodes the display as a PNG image.
func (d *Display) WritePNG(w io.Writer, scale int) error {
	return png.Encode(w, d.Image(scale))
}
