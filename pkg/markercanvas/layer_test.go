package markercanvas

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMarker_VisibleIsDrawnAndIndexed(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	require.NoError(t, layer.AddMarker(m))

	assert.NotZero(t, m.ID())
	assert.Equal(t, []string{"a.png"}, loader.requests)
	assert.Empty(t, surface.draws, "nothing is painted before the icon loads")
	assert.Equal(t, []*Marker{m}, layer.VisibleMarkers())
	assert.Equal(t, 1, layer.positions.Len())

	img := testImage(color.White)
	loader.finish("a.png", img)

	require.Len(t, surface.draws, 1)
	d := surface.draws[0]
	assert.Equal(t, Point{X: 100, Y: 100}, d.translate)
	assert.Equal(t, Box{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}, d.dst)
	assert.Same(t, img, d.img)
	assert.Empty(t, surface.stack, "each draw restores its transform")

	assert.Same(t, m, layer.MarkerAt(Point{X: 90, Y: 110}))
	assert.Nil(t, layer.MarkerAt(Point{X: 89, Y: 100}))
}

func TestAddMarker_OffscreenAppearsAfterPan(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	m := NewMarker(LatLng{Lat: 15, Lng: 15}, testIcon("a.png"))
	require.NoError(t, layer.AddMarker(m))

	assert.Empty(t, surface.draws)
	assert.Empty(t, layer.VisibleMarkers())
	assert.Equal(t, 1, layer.positions.Len(), "off-screen markers are still indexed by position")
	assert.Equal(t, 0, layer.IconStats().Loads, "off-screen markers do not load their icon")

	view.pan(10, 10)

	assert.Equal(t, []*Marker{m}, layer.VisibleMarkers())
	require.Len(t, surface.draws, 1)
	// lon 15 in 0..20 and lat 15 in 0..20
	assert.Equal(t, Point{X: 150, Y: 50}, surface.draws[0].translate)
	assert.Equal(t, view.origin, surface.position)
}

func TestGeoIndex_CardinalityInvariant(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	rng := rand.New(rand.NewSource(7))
	var pool []*Marker
	for i := 0; i < 200; i++ {
		// Some markers share a position on purpose
		ll := LatLng{Lat: float64(rng.Intn(30) - 15), Lng: float64(rng.Intn(30) - 15)}
		pool = append(pool, NewMarker(ll, testIcon(fmt.Sprintf("icon-%d.png", i%5))))
	}

	registered := map[*Marker]bool{}
	for step := 0; step < 2000; step++ {
		m := pool[rng.Intn(len(pool))]
		switch rng.Intn(4) {
		case 0:
			layer.RemoveMarker(m)
			delete(registered, m)
		case 1:
			batch := []*Marker{m, pool[rng.Intn(len(pool))]}
			layer.RemoveMarkers(batch)
			for _, b := range batch {
				delete(registered, b)
			}
		case 2:
			batch := []*Marker{m, pool[rng.Intn(len(pool))]}
			require.NoError(t, layer.AddMarkers(batch))
			for _, b := range batch {
				registered[b] = true
			}
		default:
			require.NoError(t, layer.AddMarker(m))
			registered[m] = true
		}

		require.Equal(t, len(registered), layer.positions.Len(), "step %d", step)
		require.Equal(t, len(registered), layer.Len(), "step %d", step)
	}

	for _, e := range layer.positions.All() {
		assert.True(t, registered[e.Value])
	}
}

func TestRedraw_VisibilityInvariant(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var markers []*Marker
	for lat := -20.0; lat <= 20; lat += 2.5 {
		for lng := -20.0; lng <= 20; lng += 2.5 {
			markers = append(markers, NewMarker(LatLng{Lat: lat, Lng: lng}, testIcon("a.png")))
		}
	}
	require.NoError(t, layer.AddMarkers(markers))

	for _, pan := range [][2]float64{{0, 0}, {3.3, -1.7}, {-8, 4}, {25, 25}} {
		view.pan(pan[0], pan[1])
		layer.Redraw()

		var want []uint64
		for _, m := range markers {
			if view.Bounds().ContainsLatLng(m.LatLng()) {
				want = append(want, m.ID())
			}
		}
		assert.ElementsMatch(t, want, markerIDs(layer.VisibleMarkers()), "pan %v", pan)
	}
}

func TestAddMarkers_MatchesSingleAdds(t *testing.T) {
	var markers []*Marker
	for i := 0; i < 120; i++ {
		ll := LatLng{Lat: float64(i%24) - 12, Lng: float64(i/5) - 12}
		markers = append(markers, NewMarker(ll, testIcon("a.png")))
	}

	bulk, _ := newTestLayer(worldView(), instantLoader(testImage(color.White)))
	require.NoError(t, bulk.AddMarkers(markers))
	bulk.Redraw()

	single, _ := newTestLayer(worldView(), instantLoader(testImage(color.White)))
	shuffled := append([]*Marker(nil), markers...)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, m := range shuffled {
		require.NoError(t, single.AddMarker(m))
	}
	single.Redraw()

	assert.Equal(t, screenEntries(bulk), screenEntries(single))
	assert.Equal(t, bulk.positions.Len(), single.positions.Len())
	assert.Equal(t, bulk.GetBounds(), single.GetBounds())
}

func TestIconCache_SharedURLLoadsOnce(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	m1 := NewMarker(LatLng{Lat: 1, Lng: 1}, testIcon("shared.png"))
	m2 := NewMarker(LatLng{Lat: -1, Lng: -1}, testIcon("shared.png"))
	require.NoError(t, layer.AddMarkers([]*Marker{m1, m2}))

	assert.Equal(t, []string{"shared.png"}, loader.requests)
	assert.Same(t, m1.Image(), m2.Image())

	img := testImage(color.Black)
	loader.finish("shared.png", img)

	require.Len(t, surface.draws, 2)
	assert.Same(t, img, surface.draws[0].img)
	assert.Same(t, img, surface.draws[1].img)
	assert.Equal(t, surface.draws[0].dst, surface.draws[1].dst)

	stats := layer.IconStats()
	assert.Equal(t, IconStats{Icons: 1, Loaded: 1, Loads: 1}, stats)
}

func TestIconCache_PendingDrawsKeepQueuedCoordinates(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	m1 := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("slow.png"))
	m2 := NewMarker(LatLng{Lat: 5, Lng: 5}, testIcon("slow.png"))
	require.NoError(t, layer.AddMarker(m1))
	require.NoError(t, layer.AddMarker(m2))

	// The pan does not requeue: both markers are already bound to the
	// loading image, so the redraw paints nothing for them.
	view.pan(1, 0)
	assert.Equal(t, 2, layer.IconStats().Pending)

	loader.finish("slow.png", testImage(color.White))

	assert.Equal(t, []Point{{X: 100, Y: 100}, {X: 150, Y: 50}}, surface.drawnAt())

	// Later draws reuse the loaded image straight away
	layer.Redraw()
	assert.Equal(t, []Point{{X: 90, Y: 100}, {X: 140, Y: 50}}, surface.drawnAt())
	assert.Equal(t, []string{"slow.png"}, loader.requests)
}

func TestIconCache_FailedLoadNeverDraws(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	m1 := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("broken.png"))
	require.NoError(t, layer.AddMarker(m1))
	loader.fail("broken.png", errors.New("404"))

	m2 := NewMarker(LatLng{Lat: 1, Lng: 1}, testIcon("broken.png"))
	require.NoError(t, layer.AddMarker(m2))
	layer.Redraw()

	assert.Empty(t, surface.draws)
	assert.Equal(t, []string{"broken.png"}, loader.requests)

	var loadErr *IconLoadError
	require.ErrorAs(t, m2.Image().Err(), &loadErr)
	assert.Equal(t, "broken.png", loadErr.URL)
	assert.Equal(t, IconStats{Icons: 1, Failed: 1, Loads: 1}, layer.IconStats())

	// Still hit-testable: the icon box is known without the image
	assert.Same(t, m2, layer.MarkerAt(Point{X: 110, Y: 90}))
}

func TestDrawImage_AppliesRotationAboutAnchor(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	icon := &Icon{
		URL:           "arrow.png",
		Size:          Point{X: 16, Y: 32},
		Anchor:        Point{X: 8, Y: 30},
		RotationAngle: 90,
	}
	require.NoError(t, layer.AddMarker(NewMarker(LatLng{Lat: 2, Lng: -3}, icon)))
	require.NoError(t, layer.AddMarker(NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))))

	require.Len(t, surface.draws, 2)
	assert.Equal(t, Point{X: 70, Y: 80}, surface.draws[0].translate)
	assert.True(t, almostEqual(math.Pi/2, surface.draws[0].rotate))
	assert.Equal(t, Box{MinX: -8, MinY: -30, MaxX: 8, MaxY: 2}, surface.draws[0].dst)

	// The second draw does not inherit the first one's transform
	assert.Equal(t, Point{X: 100, Y: 100}, surface.draws[1].translate)
	assert.Zero(t, surface.draws[1].rotate)
}

func TestClear_ResetsEverything(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	require.NoError(t, layer.AddMarkers([]*Marker{
		NewMarker(LatLng{Lat: 1, Lng: 2}, testIcon("a.png")),
		NewMarker(LatLng{Lat: 30, Lng: -40}, testIcon("a.png")),
	}))
	assert.Equal(t, Bounds{MinLon: -40, MaxLon: 2, MinLat: 1, MaxLat: 30}, layer.GetBounds())

	layer.Clear()

	assert.Zero(t, layer.Len())
	assert.Zero(t, layer.positions.Len())
	assert.Zero(t, layer.boxes.Len())
	assert.Empty(t, surface.draws)
	assert.Equal(t, Bounds{}, layer.GetBounds())
}

func TestHover_EnterThenLeaveOnce(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var events []EventType
	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	m.On(EventMouseOver, func(ev MarkerEvent) { events = append(events, ev.Type) })
	m.On(EventMouseOut, func(ev MarkerEvent) { events = append(events, ev.Type) })
	require.NoError(t, layer.AddMarker(m))

	view.move(10, 10)
	assert.Empty(t, events)
	assert.Equal(t, "", view.cursor)

	view.move(95, 95)
	view.move(100, 100)
	view.move(105, 108)
	assert.Equal(t, []EventType{EventMouseOver}, events)
	assert.Equal(t, "pointer", view.cursor)
	assert.Same(t, m, layer.Hovered())

	view.move(150, 150)
	view.move(160, 160)
	assert.Equal(t, []EventType{EventMouseOver, EventMouseOut}, events)
	assert.Equal(t, "", view.cursor)
	assert.Nil(t, layer.Hovered())
}

func TestHover_SwitchLeavesBeforeEntering(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var events []string
	record := func(name string) Listener {
		return func(ev MarkerEvent) { events = append(events, fmt.Sprintf("%s:%s", ev.Type, name)) }
	}
	left := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	right := NewMarker(LatLng{Lat: 0, Lng: 1.5}, testIcon("a.png"))
	for _, pair := range []struct {
		m    *Marker
		name string
	}{{left, "left"}, {right, "right"}} {
		pair.m.On(EventMouseOver, record(pair.name))
		pair.m.On(EventMouseOut, record(pair.name))
	}
	require.NoError(t, layer.AddMarkers([]*Marker{left, right}))

	view.move(92, 100)  // left only
	view.move(122, 100) // right only
	view.move(300, 300) // nothing

	assert.Equal(t, []string{
		"mouseover:left",
		"mouseout:left",
		"mouseover:right",
		"mouseout:right",
	}, events)
}

func TestClick_FiresOnTopmostMarker(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var clicked []*Marker
	onClick := func(ev MarkerEvent) { clicked = append(clicked, ev.Target) }

	below := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png")).On(EventClick, onClick)
	above := NewMarker(LatLng{Lat: 0.5, Lng: 0.5}, testIcon("b.png")).On(EventClick, onClick)
	silent := NewMarker(LatLng{Lat: -5, Lng: -5}, testIcon("a.png"))
	require.NoError(t, layer.AddMarkers([]*Marker{below, above, silent}))

	view.click(100, 100) // both icons cover this pixel
	view.click(92, 108)  // only the lower one
	view.click(50, 150)  // no click listener
	view.click(0, 0)     // empty map

	assert.Equal(t, []*Marker{above, below}, clicked)

	// The order survives a full redraw
	layer.Redraw()
	assert.Same(t, above, layer.MarkerAt(Point{X: 100, Y: 100}))
}

func TestMarkerAt_LateIconLoadPaintsOnTop(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	early := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	late := NewMarker(LatLng{Lat: 0.5, Lng: 0.5}, testIcon("b.png"))
	require.NoError(t, layer.AddMarker(early))
	require.NoError(t, layer.AddMarker(late))

	// Neither icon is painted yet; the most recently added wins
	overlap := Point{X: 100, Y: 100}
	assert.Same(t, late, layer.MarkerAt(overlap))

	loader.finish("b.png", testImage(color.White))
	loader.finish("a.png", testImage(color.Black))
	require.Len(t, surface.draws, 2)
	assert.Same(t, early, layer.MarkerAt(overlap))

	// A full redraw paints in registration order again
	layer.Redraw()
	assert.Same(t, late, layer.MarkerAt(overlap))

	// Only the painted icon ranks above a pending one
	pending := NewMarker(LatLng{Lat: 0.2, Lng: 0.2}, testIcon("c.png"))
	require.NoError(t, layer.AddMarker(pending))
	assert.Same(t, late, layer.MarkerAt(overlap))
}

func TestClick_EventCarriesPosition(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var got MarkerEvent
	m := NewMarker(LatLng{Lat: 3, Lng: 4}, testIcon("a.png"))
	m.On(EventClick, func(ev MarkerEvent) { got = ev })
	require.NoError(t, layer.AddMarker(m))

	view.click(141, 69)

	assert.Equal(t, MarkerEvent{
		Type:           EventClick,
		Target:         m,
		ContainerPoint: Point{X: 141, Y: 69},
		LatLng:         LatLng{Lat: 3, Lng: 4},
	}, got)
}

func TestRemoveMarker_RedrawOnlyWhenVisible(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	visible := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	hidden := NewMarker(LatLng{Lat: 40, Lng: 40}, testIcon("a.png"))
	require.NoError(t, layer.AddMarkers([]*Marker{visible, hidden}))
	require.Len(t, surface.draws, 1)

	clears := surface.clears
	layer.RemoveMarker(hidden)
	assert.Equal(t, clears, surface.clears, "removing an off-screen marker must not redraw")
	assert.Len(t, surface.draws, 1)

	layer.RemoveMarker(visible)
	assert.Equal(t, clears+1, surface.clears)
	assert.Empty(t, surface.draws, "the removed marker's pixels are gone")
	assert.Empty(t, layer.VisibleMarkers())
	assert.Zero(t, layer.Len())

	// Removing an unknown marker is a no-op
	layer.RemoveMarker(NewMarker(LatLng{}, testIcon("a.png")))
	layer.RemoveMarker(nil)
	assert.Equal(t, clears+1, surface.clears)
}

func TestRemoveMarkers_RedrawsOnce(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	a := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	b := NewMarker(LatLng{Lat: 1, Lng: 1}, testIcon("a.png"))
	c := NewMarker(LatLng{Lat: 2, Lng: 2}, testIcon("a.png"))
	far := NewMarker(LatLng{Lat: -50, Lng: 100}, testIcon("a.png"))
	require.NoError(t, layer.AddMarkers([]*Marker{a, b, c, far}))

	clears := surface.clears
	layer.RemoveMarkers([]*Marker{far})
	assert.Equal(t, clears, surface.clears)

	layer.RemoveMarkers([]*Marker{a, c})
	assert.Equal(t, clears+1, surface.clears)
	assert.Equal(t, []*Marker{b}, layer.VisibleMarkers())
	assert.Equal(t, []*Marker{b}, layer.Markers())
	assert.Equal(t, []Point{{X: 110, Y: 90}}, surface.drawnAt())
}

func TestAddMarkers_SkipsInvalidMarkers(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	good := NewMarker(LatLng{Lat: 1, Lng: 1}, testIcon("a.png"))
	noIcon := NewMarker(LatLng{Lat: 1, Lng: 1}, nil)
	noURL := NewMarker(LatLng{Lat: 1, Lng: 1}, &Icon{Size: Point{X: 1, Y: 1}})
	wrongPane := NewMarker(LatLng{Lat: 1, Lng: 1}, testIcon("a.png"))
	wrongPane.Pane = "overlayPane"
	offEarth := NewMarker(LatLng{Lat: 91, Lng: 1}, testIcon("a.png"))

	err := layer.AddMarkers([]*Marker{nil, noIcon, good, noURL, wrongPane, offEarth})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNotAMarker)
	assert.ErrorIs(t, err, ErrMissingIcon)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	var invalid *InvalidMarkerError
	require.ErrorAs(t, err, &invalid)

	assert.Equal(t, []*Marker{good}, layer.Markers())
	assert.Equal(t, []*Marker{good}, layer.VisibleMarkers())
	assert.Zero(t, noIcon.ID(), "skipped markers are not stamped")

	err = layer.AddMarker(wrongPane)
	assert.ErrorIs(t, err, ErrNotAMarker)
	assert.Equal(t, 1, layer.Len())
}

func TestAddMarker_Idempotent(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	require.NoError(t, layer.AddMarker(m))
	id := m.ID()

	require.NoError(t, layer.AddMarker(m))
	require.NoError(t, layer.AddMarkers([]*Marker{m, m}))

	assert.Equal(t, id, m.ID())
	assert.Equal(t, 1, layer.Len())
	assert.Equal(t, 1, layer.positions.Len())
	assert.Equal(t, 1, layer.boxes.Len())
	assert.Len(t, surface.draws, 1)

	// A marker removed and added again keeps its ID
	layer.RemoveMarker(m)
	require.NoError(t, layer.AddMarker(m))
	assert.Equal(t, id, m.ID())
}

func TestLayer_DetachedOperationsAreNoOps(t *testing.T) {
	layer := New(DefaultOptions())

	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	require.NoError(t, layer.AddMarker(m))
	layer.Redraw()
	layer.RemoveMarkers(nil)

	assert.Equal(t, 1, layer.Len())
	assert.Empty(t, layer.VisibleMarkers())
	assert.Nil(t, layer.Surface())
	assert.Equal(t, Bounds{MinLon: 0, MaxLon: 0, MinLat: 0, MaxLat: 0}, layer.GetBounds())

	// Attaching paints what was registered while detached
	view := worldView()
	opts := DefaultOptions()
	opts.NewSurface = newFakeSurface
	opts.Loader = instantLoader(testImage(color.White))
	layer.SetOptions(opts)
	layer.AddTo(view)

	surface := layer.Surface().(*fakeSurface)
	assert.Equal(t, []*Marker{m}, layer.VisibleMarkers())
	assert.Len(t, surface.draws, 1)
}

func TestLayer_OnRemoveUnsubscribes(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	clicks := 0
	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	m.On(EventClick, func(MarkerEvent) { clicks++ })
	require.NoError(t, layer.AddMarker(m))

	assert.Equal(t, 4, view.subscribers())
	assert.Equal(t, []Surface{surface}, view.surfaces)

	layer.OnRemove(view)

	assert.Zero(t, view.subscribers())
	assert.Empty(t, view.surfaces)
	assert.Nil(t, layer.Viewport())
	assert.Empty(t, layer.VisibleMarkers())

	view.click(100, 100)
	view.pan(1, 1)
	assert.Zero(t, clicks)
	assert.Equal(t, 1, layer.Len())
}

func TestLayer_ResetResizesSurface(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))
	require.NoError(t, layer.AddMarker(NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))))

	resizes, clears := surface.resizes, surface.clears
	view.width, view.height = 400, 300
	view.emit(EventResize, Point{})

	assert.Equal(t, resizes+1, surface.resizes)
	assert.Equal(t, clears, surface.clears, "reset relies on the resize to wipe pixels")
	w, h := surface.Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
	assert.Len(t, surface.draws, 1)
}

func TestSetOptions_RedrawsAndTogglesInteraction(t *testing.T) {
	view := worldView()
	layer, surface := newTestLayer(view, instantLoader(testImage(color.White)))

	hovered := 0
	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	m.On(EventMouseOver, func(MarkerEvent) { hovered++ })
	require.NoError(t, layer.AddMarker(m))

	opts := layer.Options()
	opts.Interactive = false
	clears := surface.clears
	layer.SetOptions(opts)

	assert.Equal(t, clears+1, surface.clears)
	view.move(100, 100)
	assert.Zero(t, hovered)
	assert.Equal(t, "", view.cursor)

	opts.Interactive = true
	opts.Cursor = "crosshair"
	layer.SetOptions(opts)
	view.move(100, 100)
	assert.Equal(t, 1, hovered)
	assert.Equal(t, "crosshair", view.cursor)
}

func TestSetOptions_DisablingInteractionEndsHover(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	var events []EventType
	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	m.On(EventMouseOver, func(ev MarkerEvent) { events = append(events, ev.Type) })
	m.On(EventMouseOut, func(ev MarkerEvent) { events = append(events, ev.Type) })
	require.NoError(t, layer.AddMarker(m))

	view.move(100, 100)
	require.Same(t, m, layer.Hovered())

	opts := layer.Options()
	opts.Interactive = false
	layer.SetOptions(opts)
	assert.Nil(t, layer.Hovered())
	assert.Equal(t, "", view.cursor)
	assert.Equal(t, []EventType{EventMouseOver, EventMouseOut}, events)

	view.move(150, 150)
	opts.Interactive = true
	layer.SetOptions(opts)
	view.move(100, 100)
	assert.Equal(t, []EventType{EventMouseOver, EventMouseOut, EventMouseOver}, events)
	assert.Same(t, m, layer.Hovered())
}

func TestClear_DropsHover(t *testing.T) {
	view := worldView()
	layer, _ := newTestLayer(view, instantLoader(testImage(color.White)))

	overs := 0
	m := NewMarker(LatLng{Lat: 0, Lng: 0}, testIcon("a.png"))
	m.On(EventMouseOver, func(MarkerEvent) { overs++ })
	require.NoError(t, layer.AddMarker(m))

	view.move(100, 100)
	layer.Clear()
	assert.Nil(t, layer.Hovered())

	require.NoError(t, layer.AddMarker(m))
	view.move(101, 101)
	assert.Equal(t, 2, overs)
}

func TestDrawImage_IconCopiesRotateIndependently(t *testing.T) {
	view := worldView()
	loader := newFakeLoader()
	layer, surface := newTestLayer(view, loader)

	base := testIcon("arrow.png")
	var markers []*Marker
	for i, deg := range []float64{0, 90, 180} {
		ic := *base
		ic.RotationAngle = deg
		markers = append(markers, NewMarker(LatLng{Lat: 0, Lng: float64(i * 3)}, &ic))
	}
	require.NoError(t, layer.AddMarkers(markers))
	loader.finish("arrow.png", testImage(color.White))

	assert.Equal(t, []string{"arrow.png"}, loader.requests)
	require.Len(t, surface.draws, 3)
	for i, want := range []float64{0, math.Pi / 2, math.Pi} {
		assert.True(t, almostEqual(want, surface.draws[i].rotate), "draw %d rotate %v", i, surface.draws[i].rotate)
	}
}

func markerIDs(markers []*Marker) []uint64 {
	ids := make([]uint64, len(markers))
	for i, m := range markers {
		ids[i] = m.ID()
	}
	return ids
}

type screenEntry struct {
	id  uint64
	box Box
}

// screenEntries returns the screen index contents ordered by marker ID.
func screenEntries(l *Layer) []screenEntry {
	var out []screenEntry
	for _, e := range l.boxes.All() {
		out = append(out, screenEntry{id: e.Value.ID(), box: e.Box})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
