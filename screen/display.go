// Package screen renders the output of intcode programs that draw by
// sending (x, y, value) triples.
package screen

import (
	"image"
	"image/color"
	"log"
	"strings"
	"sync"

	"github.com/nf/intcode/vm"
)

// Display is a grid of tiles set by (x, y, value) triples. The triple
// addressed to (-1, 0) sets the status value instead of a tile.
//
// Tiles with a coordinate outside [-MaxCoord, MaxCoord) are ignored.
//
// A Display is safe for concurrent use.
type Display struct {
	mu      sync.Mutex
	tiles   map[image.Point]int64
	bounds  image.Rectangle
	status  int64
	partial []int64
	updates int
	ignored int
}

// MaxCoord bounds the tile coordinates a Display keeps.
const MaxCoord = 1 << 10

// New returns an empty display.
func New() *Display {
	return &Display{tiles: make(map[image.Point]int64)}
}

// Write consumes values as triples. Values left over from an incomplete
// triple are kept until the next Write.
func (d *Display) Write(vs ...int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	vs = append(d.partial, vs...)
	for ; len(vs) >= 3; vs = vs[3:] {
		d.set(vs[0], vs[1], vs[2])
	}
	d.partial = append(d.partial[:0], vs...)
}

// Feed drains the output queue of m into the display.
func (d *Display) Feed(m *vm.Machine) {
	d.Write(m.Outputs()...)
}

// Set sets the tile at (x, y).
func (d *Display) Set(x, y, v int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.set(x, y, v)
}

func (d *Display) set(x, y, v int64) {
	d.updates++
	if x == -1 && y == 0 {
		d.status = v
		return
	}
	if x < -MaxCoord || x >= MaxCoord || y < -MaxCoord || y >= MaxCoord {
		if d.ignored == 0 {
			log.Printf("screen: ignoring tile at (%d, %d) outside the display", x, y)
		}
		d.ignored++
		return
	}
	p := image.Pt(int(x), int(y))
	d.tiles[p] = v
	d.bounds = d.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
}

// Ignored returns the number of tiles dropped for being out of range.
func (d *Display) Ignored() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ignored
}

// Tile returns the value at (x, y), 0 if it was never set.
func (d *Display) Tile(x, y int64) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if x < -MaxCoord || x >= MaxCoord || y < -MaxCoord || y >= MaxCoord {
		return 0
	}
	return d.tiles[image.Pt(int(x), int(y))]
}

// Status returns the value last sent to (-1, 0).
func (d *Display) Status() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Bounds returns the smallest rectangle containing every tile set.
func (d *Display) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bounds
}

// Updates returns the number of triples written so far.
func (d *Display) Updates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates
}

// Count returns the number of tiles holding v.
func (d *Display) Count(v int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, t := range d.tiles {
		if t == v {
			n++
		}
	}
	return n
}

// Find returns the position of some tile holding v.
func (d *Display) Find(v int64) (x, y int64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for p, t := range d.tiles {
		if t == v {
			return int64(p.X), int64(p.Y), true
		}
	}
	return 0, 0, false
}

const glyphs = " #=-o"

// Text renders the display one line per row.
func (d *Display) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	r := d.bounds
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := d.tiles[image.Pt(x, y)]
			if 0 <= v && v < int64(len(glyphs)) {
				b.WriteByte(glyphs[v])
			} else {
				b.WriteByte('?')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var palette = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0x80, 0x80, 0x80, 0xff},
	{0xe0, 0x80, 0x20, 0xff},
	{0xf0, 0xf0, 0xf0, 0xff},
	{0xe0, 0x20, 0x20, 0xff},
}

// Color returns the color used for tile value v.
func Color(v int64) color.RGBA {
	if 0 <= v && v < int64(len(palette)) {
		return palette[v]
	}
	h := uint32(v) * 2654435761
	return color.RGBA{byte(h >> 24), byte(h >> 16), byte(h >> 8), 0xff}
}
