package markercanvas

import (
	"errors"
	"image"
	"log/slog"
)

// ImageLoader fetches icon images.
//
// Load starts loading url and returns without blocking. done must be called
// exactly once, on the goroutine that drives the layer, after Load has
// returned or from within it.
type ImageLoader interface {
	Load(url string, done func(image.Image, error))
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(url string, done func(image.Image, error))

// Load implements ImageLoader.
func (f ImageLoaderFunc) Load(url string, done func(image.Image, error)) {
	f(url, done)
}

// errNoLoader is reported for every icon when a layer has no ImageLoader.
var errNoLoader = errors.New("no image loader configured")

// IconImage is the image resource shared by every marker using one icon URL.
// It is bound to markers before it finishes loading.
type IconImage struct {
	url string
	img image.Image
	err error
}

// URL returns the icon URL.
func (i *IconImage) URL() string { return i.url }

// Image returns the decoded image, nil until loaded.
func (i *IconImage) Image() image.Image { return i.img }

// Loaded reports whether the image finished loading successfully.
func (i *IconImage) Loaded() bool { return i.img != nil }

// Err returns the load error, if the load failed.
func (i *IconImage) Err() error { return i.err }

// pendingDraw is a draw request waiting for its icon. The point is the
// screen position when the request was made and is not recomputed.
type pendingDraw struct {
	marker *Marker
	at     Point
}

// iconEntry tracks one icon URL.
type iconEntry struct {
	image   *IconImage
	loaded  bool
	pending []pendingDraw
}

// iconCache deduplicates icon loads by URL and holds draw requests until
// their icon is ready.
//
// Example:
//
//	cache := newIconCache(loader, layer.drawImage, logger)
//	cache.requestDraw(marker, Point{X: 120, Y: 48})
type iconCache struct {
	loader ImageLoader
	draw   func(*Marker, Point)
	log    *slog.Logger

	icons map[string]*iconEntry
	loads int // loads started, one per distinct URL
}

func newIconCache(loader ImageLoader, draw func(*Marker, Point), log *slog.Logger) *iconCache {
	return &iconCache{
		loader: loader,
		draw:   draw,
		log:    log,
		icons:  make(map[string]*iconEntry),
	}
}

// requestDraw draws m at p as soon as its icon is available.
//
// A marker that already holds an image draws immediately. Otherwise the
// marker is bound to the URL's shared image; if that image has loaded it
// draws now, if not the request is queued. The first request for a URL
// starts the only load for it.
func (c *iconCache) requestDraw(m *Marker, p Point) {
	if m.image != nil {
		c.draw(m, p)
		return
	}

	url := m.Icon.URL
	if entry, ok := c.icons[url]; ok {
		m.image = entry.image
		switch {
		case entry.loaded:
			c.draw(m, p)
		case entry.image.err != nil:
			// Failed icons never draw
		default:
			entry.pending = append(entry.pending, pendingDraw{marker: m, at: p})
		}
		return
	}

	entry := &iconEntry{
		image:   &IconImage{url: url},
		pending: []pendingDraw{{marker: m, at: p}},
	}
	c.icons[url] = entry
	m.image = entry.image
	c.loads++

	if c.loader == nil {
		c.complete(entry, nil, errNoLoader)
		return
	}
	c.loader.Load(url, func(img image.Image, err error) {
		c.complete(entry, img, err)
	})
}

// complete flips an entry to loaded and drains its queue in FIFO order.
func (c *iconCache) complete(entry *iconEntry, img image.Image, err error) {
	if entry.loaded || entry.image.err != nil {
		return
	}

	if err == nil && img == nil {
		err = errors.New("loader returned no image")
	}
	if err != nil {
		entry.image.err = &IconLoadError{URL: entry.image.url, Err: err}
		c.log.Warn("icon failed to load",
			"url", entry.image.url,
			"dropped", len(entry.pending),
			"error", err)
		entry.pending = nil
		return
	}

	entry.image.img = img
	entry.loaded = true

	pending := entry.pending
	entry.pending = nil
	for _, req := range pending {
		c.draw(req.marker, req.at)
	}
}

// IconStats describes the icon cache.
type IconStats struct {
	Icons   int // Distinct icon URLs seen
	Loaded  int // Icons loaded successfully
	Failed  int // Icons whose load failed
	Pending int // Draw requests waiting for an icon
	Loads   int // Loads started
}

func (c *iconCache) stats() IconStats {
	stats := IconStats{Icons: len(c.icons), Loads: c.loads}
	for _, entry := range c.icons {
		switch {
		case entry.loaded:
			stats.Loaded++
		case entry.image.err != nil:
			stats.Failed++
		}
		stats.Pending += len(entry.pending)
	}
	return stats
}
