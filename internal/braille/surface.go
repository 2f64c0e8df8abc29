// Package braille implements markercanvas.Surface on a terminal grid. Each
// character cell holds a braille pattern of 2x4 dots, so a surface of
// cols x rows cells is cols*2 x rows*4 pixels.
package braille

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/beetlebugorg/markercanvas/internal/resample"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// Dot layout of a cell, indexed by [row][column].
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// alphaThreshold is the source alpha at which a scaled icon pixel sets a
// dot.
const alphaThreshold = 0x80

// Surface is a braille markercanvas.Surface.
type Surface struct {
	width, height int // pixels
	cols, rows    int

	mask   [][]uint8
	colors [][]color.RGBA

	// Ink colors dots drawn with DrawLine and cells drawn without a color.
	Ink color.Color

	m        gg.Matrix
	stack    []gg.Matrix
	position markercanvas.Point
}

// New returns an empty surface of cols x rows cells.
func New(cols, rows int) *Surface {
	s := &Surface{Ink: color.White, m: gg.Identity()}
	s.Resize(cols*2, rows*4)
	return s
}

// NewSurface is a markercanvas.SurfaceFactory. The size is in pixels.
func NewSurface(width, height int) markercanvas.Surface {
	s := &Surface{Ink: color.White, m: gg.Identity()}
	s.Resize(width, height)
	return s
}

// Context returns the drawing context.
func (s *Surface) Context() markercanvas.Context2D {
	return (*context2D)(s)
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Cells returns the surface size in character cells.
func (s *Surface) Cells() (cols, rows int) {
	return s.cols, s.rows
}

// Resize sets the size in pixels and wipes every dot. A partial cell is
// rounded up.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = max(width, 1), max(height, 1)
	s.cols, s.rows = (s.width+1)/2, (s.height+3)/4

	s.mask = make([][]uint8, s.rows)
	s.colors = make([][]color.RGBA, s.rows)
	for y := range s.mask {
		s.mask[y] = make([]uint8, s.cols)
		s.colors[y] = make([]color.RGBA, s.cols)
	}
}

// SetPosition records where the host places the surface.
func (s *Surface) SetPosition(p markercanvas.Point) {
	s.position = p
}

// Position returns the last position set by the layer.
func (s *Surface) Position() markercanvas.Point {
	return s.position
}

// Dot reports whether the pixel at (x, y) is set.
func (s *Surface) Dot(x, y int) bool {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return false
	}
	return s.mask[y/4][x/2]&dotBits[y%4][x%2] != 0
}

// Set sets the pixel at (x, y). A nil color uses Ink. Out of range pixels
// are ignored.
func (s *Surface) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	cx, cy := x/2, y/4
	s.mask[cy][cx] |= dotBits[y%4][x%2]
	if c != nil {
		s.colors[cy][cx] = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

func (s *Surface) unset(x, y int) {
	cx, cy := x/2, y/4
	s.mask[cy][cx] &^= dotBits[y%4][x%2]
	if s.mask[cy][cx] == 0 {
		s.colors[cy][cx] = color.RGBA{}
	}
}

// DrawLine sets the pixels on the line from (x0, y0) to (x1, y1) in Ink,
// ignoring the transform.
func (s *Surface) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx + dy
	for {
		s.Set(x0, y0, nil)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// context2D is the markercanvas.Context2D view of a Surface.
type context2D Surface

// Save pushes the current transform.
func (c *context2D) Save() {
	c.stack = append(c.stack, c.m)
}

// Restore pops the transform saved last. An unbalanced Restore does
// nothing.
func (c *context2D) Restore() {
	if n := len(c.stack); n > 0 {
		c.m = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *context2D) Translate(x, y float64) { c.m = c.m.Multiply(gg.Translate(x, y)) }
func (c *context2D) Rotate(angle float64)   { c.m = c.m.Multiply(gg.Rotate(angle)) }

// ClearRect unsets the dots covered by the transformed rectangle.
func (c *context2D) ClearRect(x, y, width, height float64) {
	s := (*Surface)(c)
	r := resample.DeviceRect(c.m, x, y, width, height, c.bounds())
	if r == c.bounds() {
		for row := range s.mask {
			clear(s.mask[row])
			clear(s.colors[row])
		}
		return
	}

	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			s.unset(px, py)
		}
	}
}

// DrawImage scales img into the rectangle (x, y, width, height) under the
// current transform and sets a dot for every opaque pixel. The cell takes
// the color of the last opaque pixel drawn into it.
func (c *context2D) DrawImage(img image.Image, x, y, width, height float64) {
	scratch, dr := resample.Transform(c.m, img, x, y, width, height, c.bounds(), xdraw.NearestNeighbor)
	if scratch == nil {
		return
	}

	s := (*Surface)(c)
	for py := 0; py < dr.Dy(); py++ {
		for px := 0; px < dr.Dx(); px++ {
			p := scratch.RGBAAt(px, py)
			if p.A < alphaThreshold {
				continue
			}
			s.Set(dr.Min.X+px, dr.Min.Y+py, unpremultiply(p))
		}
	}
}

func (c *context2D) bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func unpremultiply(p color.RGBA) color.RGBA {
	if p.A == 0xff || p.A == 0 {
		return p
	}
	a := uint32(p.A)
	return color.RGBA{
		R: uint8(uint32(p.R) * 0xff / a),
		G: uint8(uint32(p.G) * 0xff / a),
		B: uint8(uint32(p.B) * 0xff / a),
		A: 0xff,
	}
}
