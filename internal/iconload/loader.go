// Package iconload fetches and decodes marker icons.
//
// A Loader reads icons from local files or over HTTP on its own goroutines
// and reports each result through a Poster, so completions run on the
// goroutine that owns the layer.
package iconload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"golang.org/x/sync/semaphore"
)

// Poster runs functions on the layer goroutine. *loop.Loop implements it.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(fn func())

// Post implements Poster.
func (f PosterFunc) Post(fn func()) { f(fn) }

// maxIconBytes bounds a single icon download or file.
const maxIconBytes = 8 << 20

// ErrUnsupportedScheme is returned for URLs that are neither files nor HTTP.
var ErrUnsupportedScheme = errors.New("unsupported icon URL scheme")

// Options configures a Loader.
type Options struct {
	// BaseDir resolves relative file paths. Empty means the working
	// directory.
	BaseDir string

	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration

	// Workers bounds concurrent fetches. Zero or less means 4.
	Workers int

	// Client fetches HTTP icons. Nil uses http.DefaultClient.
	Client *http.Client

	Logger *slog.Logger
}

// Loader implements markercanvas.ImageLoader.
//
// Example:
//
//	l := loop.New()
//	loader := iconload.New(l, iconload.Options{BaseDir: "icons", Workers: 8})
//	layer := markercanvas.New(markercanvas.Options{Loader: loader})
type Loader struct {
	post   Poster
	opts   Options
	client *http.Client
	log    *slog.Logger
	sem    *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	builtins map[string]image.Image
}

// New returns a loader that delivers results through post.
func New(post Poster, opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		post:     post,
		opts:     opts,
		client:   client,
		log:      log.With("component", "iconload"),
		sem:      semaphore.NewWeighted(int64(opts.Workers)),
		ctx:      ctx,
		cancel:   cancel,
		builtins: make(map[string]image.Image),
	}
}

// Register serves img for name without fetching anything. Built-in icons
// still complete through the Poster.
func (l *Loader) Register(name string, img image.Image) {
	l.mu.Lock()
	l.builtins[name] = img
	l.mu.Unlock()
}

func (l *Loader) builtin(name string) (image.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.builtins[name]
	return img, ok
}

// Load fetches rawURL in the background and posts done with the result.
func (l *Loader) Load(rawURL string, done func(image.Image, error)) {
	if img, ok := l.builtin(rawURL); ok {
		l.post.Post(func() { done(img, nil) })
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		img, err := l.fetchLimited(rawURL)
		if err != nil {
			l.log.Debug("icon fetch failed", "url", rawURL, "error", err)
		}
		l.post.Post(func() { done(img, err) })
	}()
}

func (l *Loader) fetchLimited(rawURL string) (image.Image, error) {
	if err := l.sem.Acquire(l.ctx, 1); err != nil {
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}
	defer l.sem.Release(1)

	ctx := l.ctx
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}
	return l.Fetch(ctx, rawURL)
}

// Fetch loads and decodes rawURL synchronously.
func (l *Loader) Fetch(ctx context.Context, rawURL string) (image.Image, error) {
	if img, ok := l.builtin(rawURL); ok {
		return img, nil
	}

	start := time.Now()
	rc, err := l.open(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}
	defer rc.Close()

	img, format, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}

	l.log.Debug("icon loaded",
		"url", rawURL,
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"elapsed", time.Since(start))
	return img, nil
}

// open resolves rawURL to a reader.
func (l *Loader) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.openHTTP(ctx, rawURL)
	case "file":
		return l.openFile(u.Path)
	case "":
		return l.openFile(rawURL)
	default:
		// Windows drive letters parse as a one-letter scheme
		if len(u.Scheme) == 1 {
			return l.openFile(rawURL)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *Loader) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return limitReadCloser(resp.Body), nil
}

func (l *Loader) openFile(path string) (io.ReadCloser, error) {
	if !filepath.IsAbs(path) && l.opts.BaseDir != "" {
		path = filepath.Join(l.opts.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return limitReadCloser(f), nil
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}

func limitReadCloser(rc io.ReadCloser) io.ReadCloser {
	return limitedReadCloser{Reader: io.LimitReader(rc, maxIconBytes), Closer: rc}
}

// Decode decodes a PNG, JPEG, GIF, BMP or WebP image and returns it with
// its format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode icon: %w", err)
	}
	return img, format, nil
}

// Wait blocks until every fetch started so far has posted its result.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels fetches that have not finished. Their callbacks still run,
// with an error.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}
