// Package resample maps icon images through a 2D affine transform into
// device pixels. The raster and braille surfaces share it.
package resample

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// MaxSourceSide is the largest source side sampled as is. Larger or
// unbounded sources, such as image.Uniform, are sampled over the
// destination size instead.
const MaxSourceSide = 4096

// DeviceRect returns the device pixel bounds of the rectangle
// (x, y, width, height) under m, clipped to clip.
func DeviceRect(m gg.Matrix, x, y, width, height float64, clip image.Rectangle) image.Rectangle {
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(x, y)),
		m.TransformPoint(gg.Pt(x+width, y)),
		m.TransformPoint(gg.Pt(x, y+height)),
		m.TransformPoint(gg.Pt(x+width, y+height)),
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	return r.Intersect(clip)
}

// SourceRect returns the part of img to sample for a destination of
// width x height.
func SourceRect(img image.Image, width, height float64) image.Rectangle {
	sr := img.Bounds()
	if sr.Empty() || sr.Dx() > MaxSourceSide || sr.Dy() > MaxSourceSide {
		return image.Rect(0, 0, int(math.Ceil(width)), int(math.Ceil(height)))
	}
	return sr
}

// Transform draws img into the rectangle (x, y, width, height) under m and
// returns the result as a scratch image together with the device rectangle
// it covers. Device pixels outside clip are dropped. The scratch image is
// nil when nothing is visible.
func Transform(m gg.Matrix, img image.Image, x, y, width, height float64, clip image.Rectangle, interp xdraw.Transformer) (*image.RGBA, image.Rectangle) {
	if img == nil || width <= 0 || height <= 0 {
		return nil, image.Rectangle{}
	}

	dr := DeviceRect(m, x, y, width, height, clip)
	if dr.Empty() {
		return nil, dr
	}

	// Source pixels to local units, then local units to device pixels
	sr := SourceRect(img, width, height)
	local := gg.Translate(x, y).
		Multiply(gg.Scale(width/float64(sr.Dx()), height/float64(sr.Dy()))).
		Multiply(gg.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))
	s2d := m.Multiply(local)

	scratch := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	aff := f64.Aff3{
		s2d.A, s2d.B, s2d.C - float64(dr.Min.X),
		s2d.D, s2d.E, s2d.F - float64(dr.Min.Y),
	}
	interp.Transform(scratch, aff, img, sr, xdraw.Over, nil)
	return scratch, dr
}
