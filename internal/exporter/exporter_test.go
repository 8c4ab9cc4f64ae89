package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luispater/slideExporter/internal/browser/chrome"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeDeck records the calls the exporter makes and renders each slide as
// "image-<index>".
type fakeDeck struct {
	total     int
	fragments map[int]int
	// captureErrAt is the 1-based slide whose capture fails; 0 never fails.
	captureErrAt int
	openErr      error
	readyErr     error
	// drift makes CurrentIndex report a different slide than requested.
	drift int

	current  int
	calls    []string
	captures int
}

func (d *fakeDeck) Open(url string) error {
	d.calls = append(d.calls, "open "+url)
	return d.openErr
}

func (d *fakeDeck) WaitReady() error {
	d.calls = append(d.calls, "ready")
	return d.readyErr
}

func (d *fakeDeck) TotalSlides() (int, error) {
	d.calls = append(d.calls, "total")
	return d.total, nil
}

func (d *fakeDeck) GoToSlide(index int) error {
	d.calls = append(d.calls, fmt.Sprintf("slide %d", index))
	d.current = index
	return nil
}

func (d *fakeDeck) CurrentIndex() (int, error) {
	return d.current + d.drift, nil
}

func (d *fakeDeck) RevealFragments() (int, error) {
	d.calls = append(d.calls, "fragments")
	return d.fragments[d.current], nil
}

func (d *fakeDeck) Capture() ([]byte, error) {
	d.calls = append(d.calls, "capture")
	d.captures++
	if d.captureErrAt == d.current+1 {
		return nil, errors.New("cannot capture screenshot: target closed")
	}
	return []byte(fmt.Sprintf("image-%d", d.current)), nil
}

func newTestExporter(deck Deck, fs afero.Fs) *Exporter {
	return New(deck, fs, Options{
		OutputDir:      "exports/slides",
		Format:         chrome.ImageFormatPNG,
		ViewportWidth:  1280,
		ViewportHeight: 720,
	})
}

func slideFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	files, err := afero.Glob(fs, filepath.Join(dir, "slide-*"))
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	return names
}

func TestSlideFileName(t *testing.T) {
	assert.Equal(t, "slide-001.png", SlideFileName(0, chrome.ImageFormatPNG))
	assert.Equal(t, "slide-010.png", SlideFileName(9, chrome.ImageFormatPNG))
	assert.Equal(t, "slide-100.jpg", SlideFileName(99, chrome.ImageFormatJPEG))
	assert.Equal(t, "slide-1000.png", SlideFileName(999, chrome.ImageFormatPNG))
}

func TestRunWritesOneImagePerSlide(t *testing.T) {
	fs := afero.NewMemMapFs()
	deck := &fakeDeck{total: 3, fragments: map[int]int{1: 4}}

	result, err := newTestExporter(deck, fs).Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)

	assert.Equal(t, []string{"slide-001.png", "slide-002.png", "slide-003.png"}, slideFiles(t, fs, "exports/slides"))
	for i := 0; i < 3; i++ {
		data, errRead := afero.ReadFile(fs, filepath.Join("exports/slides", SlideFileName(i, chrome.ImageFormatPNG)))
		require.NoError(t, errRead)
		assert.Equal(t, fmt.Sprintf("image-%d", i), string(data))
	}

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []Slide{
		{Number: 1, File: "slide-001.png"},
		{Number: 2, File: "slide-002.png", Fragments: 4},
		{Number: 3, File: "slide-003.png"},
	}, result.Slides)
	assert.Equal(t, filepath.Join("exports/slides", ManifestFile), result.Manifest)

	assert.Equal(t, []string{
		"open http://localhost:3000", "ready", "total",
		"slide 0", "fragments", "capture",
		"slide 1", "fragments", "capture",
		"slide 2", "fragments", "capture",
	}, deck.calls)
}

func TestRunZeroSlides(t *testing.T) {
	fs := afero.NewMemMapFs()

	result, err := newTestExporter(&fakeDeck{}, fs).Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)

	assert.Zero(t, result.Total)
	assert.Empty(t, slideFiles(t, fs, "exports/slides"))

	data, err := afero.ReadFile(fs, result.Manifest)
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(data, "slides").IsArray())
	assert.Zero(t, gjson.GetBytes(data, "slides.#").Int())
}

func TestRunReusesExistingDirectoryAndOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("exports/slides", 0o755))
	require.NoError(t, afero.WriteFile(fs, "exports/slides/slide-001.png", []byte("stale"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "exports/slides/notes.txt", []byte("keep"), 0o644))

	_, err := newTestExporter(&fakeDeck{total: 2}, fs).Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "exports/slides/slide-001.png")
	require.NoError(t, err)
	assert.Equal(t, "image-0", string(data))

	ok, err := afero.Exists(fs, "exports/slides/notes.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	// a second run names the files identically
	_, err = newTestExporter(&fakeDeck{total: 2}, fs).Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, []string{"slide-001.png", "slide-002.png"}, slideFiles(t, fs, "exports/slides"))
}

func TestRunStopsAtFirstCaptureFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	deck := &fakeDeck{total: 5, captureErrAt: 3}

	_, err := newTestExporter(deck, fs).Run(context.Background(), "http://localhost:3000")
	require.Error(t, err)
	assert.EqualError(t, err, "slide 3: cannot capture screenshot: target closed")

	assert.Equal(t, 3, deck.captures, "capture must not be retried")
	assert.Equal(t, []string{"slide-001.png", "slide-002.png"}, slideFiles(t, fs, "exports/slides"))

	ok, err := afero.Exists(fs, filepath.Join("exports/slides", ManifestFile))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunPropagatesStartupErrors(t *testing.T) {
	openErr := errors.New("timed out after 30s navigating to http://10.255.255.1/")
	readyErr := errors.New("presentation did not become ready")

	for name, deck := range map[string]*fakeDeck{
		"navigation": {total: 2, openErr: openErr},
		"readiness":  {total: 2, readyErr: readyErr},
	} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			_, err := newTestExporter(deck, fs).Run(context.Background(), "http://10.255.255.1/")
			require.Error(t, err)
			assert.Zero(t, deck.captures)

			// the output directory is created before the page is touched
			ok, errExists := afero.DirExists(fs, "exports/slides")
			require.NoError(t, errExists)
			assert.True(t, ok)
		})
	}
}

func TestRunOutputDirectoryFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	deck := &fakeDeck{total: 1}

	_, err := newTestExporter(deck, fs).Run(context.Background(), "http://localhost:3000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot create output directory exports/slides")
	assert.Empty(t, deck.calls)
}

func TestRunIgnoresPositionDrift(t *testing.T) {
	fs := afero.NewMemMapFs()

	result, err := newTestExporter(&fakeDeck{total: 2, drift: 1}, fs).Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)
	assert.Len(t, result.Slides, 2)
}

func TestRunCancelledDuringPause(t *testing.T) {
	fs := afero.NewMemMapFs()
	deck := &fakeDeck{total: 3}
	e := New(deck, fs, Options{OutputDir: "out", TransitionDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, "http://localhost:3000")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, deck.captures)
}

func TestRunJPEGExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := New(&fakeDeck{total: 2}, fs, Options{OutputDir: "out", Format: chrome.ImageFormatJPEG})

	_, err := e.Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, []string{"slide-001.jpg", "slide-002.jpg"}, slideFiles(t, fs, "out"))
}

func TestRunOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "slides")
	e := New(&fakeDeck{total: 2}, afero.NewOsFs(), Options{OutputDir: dir})

	_, err := e.Run(context.Background(), "http://localhost:3000")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
