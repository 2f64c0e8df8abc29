package raster

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
)

// Pin draws a map pin icon: a filled circle over a point at the bottom
// center. Use an anchor of (size/2, size) so the tip sits on the marker.
func Pin(size int, fill color.Color) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)
	defer dc.Close()

	r := s * 0.3
	cx, cy := s/2, r+1

	// Same winding as the circle so the two fill as one shape
	dc.MoveTo(cx+r*0.8, cy+r*0.6)
	dc.LineTo(cx, s)
	dc.LineTo(cx-r*0.8, cy+r*0.6)
	dc.ClosePath()
	dc.DrawCircle(cx, cy, r)
	dc.SetFillRule(gg.FillRuleNonZero)
	dc.SetColor(fill)
	_ = dc.Fill()

	dc.DrawCircle(cx, cy, r*0.4)
	dc.SetColor(color.White)
	_ = dc.Fill()

	return dc.ResizeTarget().ToImage()
}

// Dot draws a filled circle with an outline, anchored at its center.
func Dot(size int, fill color.Color) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.DrawCircle(s/2, s/2, s/2-1)
	dc.SetColor(fill)
	_ = dc.FillPreserve()
	dc.SetLineWidth(1)
	dc.SetColor(color.Black)
	_ = dc.Stroke()

	return dc.ResizeTarget().ToImage()
}

// Arrow draws an arrow pointing up, anchored at its center. Rotate it with
// the icon's rotation angle to show a heading.
func Arrow(size int, fill color.Color) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.MoveTo(s/2, 0)
	dc.LineTo(s*0.9, s)
	dc.LineTo(s/2, s*0.75)
	dc.LineTo(s*0.1, s)
	dc.ClosePath()
	dc.SetColor(fill)
	_ = dc.Fill()

	return dc.ResizeTarget().ToImage()
}

// Builtin returns the named built-in icon, or false.
func Builtin(name string, size int, fill color.Color) (image.Image, bool) {
	switch name {
	case "pin":
		return Pin(size, fill), true
	case "dot":
		return Dot(size, fill), true
	case "arrow":
		return Arrow(size, fill), true
	default:
		return nil, false
	}
}
