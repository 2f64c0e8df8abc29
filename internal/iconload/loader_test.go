package iconload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/beetlebugorg/markercanvas/internal/loop"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type result struct {
	img image.Image
	err error
}

// loadAll loads every URL and runs the loop until all callbacks ran.
func loadAll(t *testing.T, l *loop.Loop, loader *Loader, urls ...string) map[string]result {
	t.Helper()
	results := make(map[string]result)
	for _, u := range urls {
		loader.Load(u, func(img image.Image, err error) {
			results[u] = result{img: img, err: err}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.RunUntil(ctx, func() bool { return len(results) == len(urls) }))
	return results
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pin.png"), encodePNG(t, 12, 20, color.White), 0644))

	l := loop.New()
	loader := New(l, Options{BaseDir: dir})
	defer loader.Close()

	got := loadAll(t, l, loader, "pin.png", "missing.png", "file://"+filepath.Join(dir, "pin.png"))

	require.NoError(t, got["pin.png"].err)
	assert.Equal(t, image.Rect(0, 0, 12, 20), got["pin.png"].img.Bounds())
	require.NoError(t, got["file://"+filepath.Join(dir, "pin.png")].err)
	assert.ErrorIs(t, got["missing.png"].err, os.ErrNotExist)
}

func TestLoad_HTTP(t *testing.T) {
	icon := encodePNG(t, 8, 8, color.Black)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(icon)
		case "/garbage.png":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := loop.New()
	loader := New(l, Options{Client: srv.Client(), Timeout: time.Second})
	defer loader.Close()

	got := loadAll(t, l, loader, srv.URL+"/ok.png", srv.URL+"/gone.png", srv.URL+"/garbage.png")

	require.NoError(t, got[srv.URL+"/ok.png"].err)
	assert.Equal(t, 8, got[srv.URL+"/ok.png"].img.Bounds().Dx())

	require.Error(t, got[srv.URL+"/gone.png"].err)
	assert.Contains(t, got[srv.URL+"/gone.png"].err.Error(), "unexpected status 404")

	require.Error(t, got[srv.URL+"/garbage.png"].err)
	assert.Contains(t, got[srv.URL+"/garbage.png"].err.Error(), "decode icon")
}

func TestLoad_LimitsConcurrentFetches(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := loop.New()
	loader := New(l, Options{Client: srv.Client(), Workers: 2})
	defer loader.Close()

	var urls []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		urls = append(urls, srv.URL+"/"+name+".png")
	}
	loadAll(t, l, loader, urls...)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestLoad_CompletesOnlyThroughPoster(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), encodePNG(t, 2, 2, color.White), 0644))

	l := loop.New()
	loader := New(l, Options{BaseDir: dir})

	called := false
	loader.Load("a.png", func(image.Image, error) { called = true })
	loader.Wait()

	assert.False(t, called, "callbacks wait for the loop")
	assert.Equal(t, 1, l.Drain())
	assert.True(t, called)
}

func TestRegister_ServesBuiltin(t *testing.T) {
	l := loop.New()
	loader := New(l, Options{})
	pin := image.NewRGBA(image.Rect(0, 0, 3, 3))
	loader.Register("builtin:pin", pin)

	got := loadAll(t, l, loader, "builtin:pin")
	require.NoError(t, got["builtin:pin"].err)
	assert.Same(t, pin, got["builtin:pin"].img)
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	loader := New(loop.New(), Options{})
	_, err := loader.Fetch(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestClose_CancelsPendingFetches(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	l := loop.New()
	loader := New(l, Options{Client: srv.Client()})

	var got error
	loader.Load(srv.URL+"/slow.png", func(_ image.Image, err error) { got = err })
	loader.Close()
	l.Drain()

	assert.ErrorIs(t, got, context.Canceled)
}

func TestDecode_BMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 5, 3))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())

	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}
