package markercanvas

import (
	"image"
	"image/color"
	"math"
)

// fakeViewport is an equirectangular host map: bounds map linearly onto
// width x height pixels, north up.
type fakeViewport struct {
	bounds        Bounds
	width, height int
	origin        Point // layer point of the container origin

	subs     map[EventType]map[int]func(Event)
	nextSub  int
	cursor   string
	surfaces []Surface
}

func newFakeViewport(bounds Bounds, width, height int) *fakeViewport {
	return &fakeViewport{
		bounds: bounds,
		width:  width,
		height: height,
		subs:   make(map[EventType]map[int]func(Event)),
	}
}

func (v *fakeViewport) Bounds() Bounds   { return v.bounds }
func (v *fakeViewport) Size() (int, int) { return v.width, v.height }

func (v *fakeViewport) LatLngToContainerPoint(ll LatLng) Point {
	return Point{
		X: (ll.Lng - v.bounds.MinLon) * float64(v.width) / (v.bounds.MaxLon - v.bounds.MinLon),
		Y: (v.bounds.MaxLat - ll.Lat) * float64(v.height) / (v.bounds.MaxLat - v.bounds.MinLat),
	}
}

func (v *fakeViewport) ContainerPointToLatLng(p Point) LatLng {
	return LatLng{
		Lat: v.bounds.MaxLat - p.Y/float64(v.height)*(v.bounds.MaxLat-v.bounds.MinLat),
		Lng: v.bounds.MinLon + p.X/float64(v.width)*(v.bounds.MaxLon-v.bounds.MinLon),
	}
}

func (v *fakeViewport) ContainerPointToLayerPoint(p Point) Point {
	return p.Add(v.origin)
}

func (v *fakeViewport) Subscribe(t EventType, fn func(Event)) func() {
	if v.subs[t] == nil {
		v.subs[t] = make(map[int]func(Event))
	}
	v.nextSub++
	id := v.nextSub
	v.subs[t][id] = fn
	return func() { delete(v.subs[t], id) }
}

func (v *fakeViewport) subscribers() int {
	n := 0
	for _, fns := range v.subs {
		n += len(fns)
	}
	return n
}

func (v *fakeViewport) SetCursor(cursor string) { v.cursor = cursor }

func (v *fakeViewport) AddSurface(s Surface) {
	v.surfaces = append(v.surfaces, s)
}

func (v *fakeViewport) RemoveSurface(s Surface) {
	for i, other := range v.surfaces {
		if other == s {
			v.surfaces = append(v.surfaces[:i], v.surfaces[i+1:]...)
			return
		}
	}
}

func (v *fakeViewport) emit(t EventType, p Point) {
	for _, fn := range v.subs[t] {
		fn(Event{Type: t, ContainerPoint: p})
	}
}

// pan shifts the view and reports the end of the move.
func (v *fakeViewport) pan(dLon, dLat float64) {
	v.bounds = Bounds{
		MinLon: v.bounds.MinLon + dLon,
		MaxLon: v.bounds.MaxLon + dLon,
		MinLat: v.bounds.MinLat + dLat,
		MaxLat: v.bounds.MaxLat + dLat,
	}
	v.origin = v.origin.Add(Point{
		X: dLon * float64(v.width) / (v.bounds.MaxLon - v.bounds.MinLon),
		Y: -dLat * float64(v.height) / (v.bounds.MaxLat - v.bounds.MinLat),
	})
	v.emit(EventMoveEnd, Point{})
}

func (v *fakeViewport) move(x, y float64)  { v.emit(EventMouseMove, Point{X: x, Y: y}) }
func (v *fakeViewport) click(x, y float64) { v.emit(EventClick, Point{X: x, Y: y}) }

// drawCall is one DrawImage with the transform in effect.
type drawCall struct {
	img       image.Image
	translate Point
	rotate    float64
	dst       Box
}

type fakeState struct {
	translate Point
	rotate    float64
}

// fakeSurface records drawing operations.
type fakeSurface struct {
	width, height int
	position      Point
	resizes       int
	clears        int

	state fakeState
	stack []fakeState
	draws []drawCall
}

func newFakeSurface(width, height int) Surface {
	return &fakeSurface{width: width, height: height}
}

func (s *fakeSurface) Context() Context2D     { return s }
func (s *fakeSurface) Size() (int, int)       { return s.width, s.height }
func (s *fakeSurface) SetPosition(p Point)    { s.position = p }
func (s *fakeSurface) Save()                  { s.stack = append(s.stack, s.state) }
func (s *fakeSurface) Rotate(angle float64)   { s.state.rotate += angle }
func (s *fakeSurface) Translate(x, y float64) { s.state.translate = s.state.translate.Add(Point{X: x, Y: y}) }

func (s *fakeSurface) Resize(width, height int) {
	s.width, s.height = width, height
	s.resizes++
	s.draws = nil
}

func (s *fakeSurface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.state = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *fakeSurface) ClearRect(x, y, width, height float64) {
	s.clears++
	if x <= 0 && y <= 0 && width >= float64(s.width) && height >= float64(s.height) {
		s.draws = nil
	}
}

func (s *fakeSurface) DrawImage(img image.Image, x, y, width, height float64) {
	s.draws = append(s.draws, drawCall{
		img:       img,
		translate: s.state.translate,
		rotate:    s.state.rotate,
		dst:       Box{MinX: x, MinY: y, MaxX: x + width, MaxY: y + height},
	})
}

// drawnAt returns the translate points of the recorded draws.
func (s *fakeSurface) drawnAt() []Point {
	out := make([]Point, len(s.draws))
	for i, d := range s.draws {
		out[i] = d.translate
	}
	return out
}

// fakeLoader records load requests and completes them on demand.
type fakeLoader struct {
	requests []string
	done     map[string]func(image.Image, error)
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{done: make(map[string]func(image.Image, error))}
}

func (f *fakeLoader) Load(url string, done func(image.Image, error)) {
	f.requests = append(f.requests, url)
	f.done[url] = done
}

func (f *fakeLoader) finish(url string, img image.Image) {
	f.done[url](img, nil)
}

func (f *fakeLoader) fail(url string, err error) {
	f.done[url](nil, err)
}

// instantLoader completes every load synchronously.
func instantLoader(img image.Image) ImageLoader {
	return ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		done(img, nil)
	})
}

func testImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testIcon(url string) *Icon {
	return &Icon{
		URL:    url,
		Size:   Point{X: 20, Y: 20},
		Anchor: Point{X: 10, Y: 10},
	}
}

// worldView shows lon -10..10, lat -10..10 on 200x200 pixels: 10 px per degree.
func worldView() *fakeViewport {
	return newFakeViewport(Bounds{MinLon: -10, MaxLon: 10, MinLat: -10, MaxLat: 10}, 200, 200)
}

// newTestLayer returns an attached layer with a fake surface.
func newTestLayer(view *fakeViewport, loader ImageLoader) (*Layer, *fakeSurface) {
	opts := DefaultOptions()
	opts.NewSurface = newFakeSurface
	opts.Loader = loader
	layer := New(opts).AddTo(view)
	return layer, layer.Surface().(*fakeSurface)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
