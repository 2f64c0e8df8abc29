// Package raster implements markercanvas.Surface on an in-memory gg
// context.
package raster

import (
	"image"
	"io"
	"reflect"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/beetlebugorg/markercanvas/internal/resample"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// Surface is a raster markercanvas.Surface.
//
// Example:
//
//	opts := markercanvas.DefaultOptions()
//	opts.NewSurface = raster.NewSurface
//	layer := markercanvas.New(opts).AddTo(view)
//	...
//	layer.Surface().(*raster.Surface).SavePNG("markers.png")
type Surface struct {
	dc       *gg.Context
	width    int
	height   int
	position markercanvas.Point

	// Converted source images, keyed by the decoded image
	bufs map[image.Image]*gg.ImageBuf
}

// New returns a transparent surface of the given size. Sizes below one
// pixel are raised to one.
func New(width, height int) *Surface {
	width, height = max(width, 1), max(height, 1)
	return &Surface{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
		bufs:   make(map[image.Image]*gg.ImageBuf),
	}
}

// NewSurface is a markercanvas.SurfaceFactory.
func NewSurface(width, height int) markercanvas.Surface {
	return New(width, height)
}

// Context returns the drawing context.
func (s *Surface) Context() markercanvas.Context2D {
	return (*context2D)(s)
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Resize sets the size and wipes every pixel.
func (s *Surface) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	// gg keeps the pixels when the size is unchanged
	_ = s.dc.Resize(width, height)
	s.dc.Clear()
	s.width, s.height = width, height
}

// SetPosition records where the host places the surface.
func (s *Surface) SetPosition(p markercanvas.Point) {
	s.position = p
}

// Position returns the last position set by the layer.
func (s *Surface) Position() markercanvas.Point {
	return s.position
}

// Image returns a copy of the pixels.
func (s *Surface) Image() *image.RGBA {
	return s.dc.ResizeTarget().ToImage()
}

// SavePNG writes the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// Close releases the gg context.
func (s *Surface) Close() error {
	clear(s.bufs)
	return s.dc.Close()
}

// imageBuf returns src as a gg image buffer, converting it once.
func (s *Surface) imageBuf(src image.Image) *gg.ImageBuf {
	cacheable := reflect.ValueOf(src).Kind() == reflect.Pointer
	if cacheable {
		if buf, ok := s.bufs[src]; ok {
			return buf
		}
	}

	buf := gg.ImageBufFromImage(src)
	if cacheable {
		s.bufs[src] = buf
	}
	return buf
}

// context2D is the markercanvas.Context2D view of a Surface.
type context2D Surface

func (c *context2D) Save()                  { c.dc.Push() }
func (c *context2D) Restore()               { c.dc.Pop() }
func (c *context2D) Translate(x, y float64) { c.dc.Translate(x, y) }
func (c *context2D) Rotate(angle float64)   { c.dc.Rotate(angle) }

// ClearRect makes the device pixels covered by the transformed rectangle
// transparent.
func (c *context2D) ClearRect(x, y, width, height float64) {
	r := resample.DeviceRect(c.dc.GetTransform(), x, y, width, height, c.bounds())
	if r.Empty() {
		return
	}
	if r == c.bounds() {
		c.dc.Clear()
		return
	}

	pm := c.dc.ResizeTarget()
	data := pm.Data()
	stride := pm.Width() * 4
	for row := r.Min.Y; row < r.Max.Y; row++ {
		clear(data[row*stride+r.Min.X*4 : row*stride+r.Max.X*4])
	}
}

// DrawImage draws img into the rectangle (x, y, width, height) under the
// current transform.
func (c *context2D) DrawImage(img image.Image, x, y, width, height float64) {
	if img == nil || width <= 0 || height <= 0 {
		return
	}

	m := c.dc.GetTransform()
	b := img.Bounds()
	direct := b.Dx() > 0 && b.Dy() > 0 && b.Dx() <= resample.MaxSourceSide && b.Dy() <= resample.MaxSourceSide
	if direct && m.B == 0 && m.D == 0 && m.A > 0 && m.E > 0 {
		// gg scales axis-aligned images itself
		c.dc.DrawImageEx((*Surface)(c).imageBuf(img), gg.DrawImageOptions{
			X:             x,
			Y:             y,
			DstWidth:      width,
			DstHeight:     height,
			Interpolation: gg.InterpBilinear,
		})
		return
	}

	c.drawResampled(img, m, x, y, width, height)
}

// drawResampled maps img through the full affine transform into a scratch
// image covering its device bounding box and composites that unscaled.
func (c *context2D) drawResampled(img image.Image, m gg.Matrix, x, y, width, height float64) {
	scratch, dr := resample.Transform(m, img, x, y, width, height, c.bounds(), xdraw.BiLinear)
	if scratch == nil {
		return
	}

	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImageEx(gg.ImageBufFromImage(scratch), gg.DrawImageOptions{
		X:             float64(dr.Min.X),
		Y:             float64(dr.Min.Y),
		Interpolation: gg.InterpNearest,
	})
	c.dc.Pop()
}

func (c *context2D) bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}
