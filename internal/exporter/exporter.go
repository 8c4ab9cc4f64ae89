// Package exporter steps through a slide deck and writes one image per slide.
package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/luispater/slideExporter/internal/browser/chrome"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Deck is a presentation loaded in a browser page.
type Deck interface {
	Open(url string) error
	WaitReady() error
	TotalSlides() (int, error)
	GoToSlide(index int) error
	CurrentIndex() (int, error)
	RevealFragments() (int, error)
	Capture() ([]byte, error)
}

// Options controls where and how slides are written.
type Options struct {
	OutputDir       string
	Format          chrome.ImageFormat
	TransitionDelay time.Duration
	FragmentDelay   time.Duration
	// Viewport is recorded in the manifest only.
	ViewportWidth  int64
	ViewportHeight int64
}

// Slide is one written image.
type Slide struct {
	Number    int
	File      string
	Fragments int
}

// Result summarizes a finished export.
type Result struct {
	URL    string
	Total  int
	Slides []Slide
	// Manifest is the path of the written manifest.
	Manifest string
}

type Exporter struct {
	deck Deck
	fs   afero.Fs
	opts Options
}

func New(deck Deck, fs afero.Fs, opts Options) *Exporter {
	if opts.Format == "" {
		opts.Format = chrome.ImageFormatPNG
	}
	return &Exporter{
		deck: deck,
		fs:   fs,
		opts: opts,
	}
}

// SlideFileName returns the file name of the slide at 0-based index.
func SlideFileName(index int, format chrome.ImageFormat) string {
	return fmt.Sprintf("slide-%03d.%s", index+1, format.Extension())
}

// EnsureOutputDir creates the output directory if it is missing.
func (e *Exporter) EnsureOutputDir() error {
	if err := e.fs.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", e.opts.OutputDir, err)
	}
	return nil
}

// Run opens url and writes every horizontal slide. Any failure aborts the
// export; images already written stay on disk.
func (e *Exporter) Run(ctx context.Context, url string) (*Result, error) {
	if err := e.EnsureOutputDir(); err != nil {
		return nil, err
	}

	if err := e.deck.Open(url); err != nil {
		return nil, err
	}
	if err := e.deck.WaitReady(); err != nil {
		return nil, err
	}

	total, err := e.deck.TotalSlides()
	if err != nil {
		return nil, err
	}
	log.Infof("Found %d slides", total)

	result := &Result{
		URL:    url,
		Total:  total,
		Slides: make([]Slide, 0, total),
	}

	for i := 0; i < total; i++ {
		slide, errExport := e.exportSlide(ctx, i)
		if errExport != nil {
			return nil, errExport
		}
		result.Slides = append(result.Slides, *slide)
	}

	manifest, err := e.writeManifest(result)
	if err != nil {
		return nil, err
	}
	result.Manifest = manifest

	log.Infof("Done! %d slides saved to %s", total, e.opts.OutputDir)
	return result, nil
}

func (e *Exporter) exportSlide(ctx context.Context, index int) (*Slide, error) {
	if err := e.deck.GoToSlide(index); err != nil {
		return nil, err
	}
	if err := pause(ctx, e.opts.TransitionDelay); err != nil {
		return nil, err
	}

	if current, err := e.deck.CurrentIndex(); err != nil {
		log.Debugf("Cannot read deck position: %v", err)
	} else if current != index {
		log.Warnf("Requested slide %d but the deck reports slide %d", index, current)
	}

	fragments, err := e.deck.RevealFragments()
	if err != nil {
		return nil, err
	}
	if fragments > 0 {
		log.Debugf("Revealed %d fragments on slide %d", fragments, index+1)
	}
	if err = pause(ctx, e.opts.FragmentDelay); err != nil {
		return nil, err
	}

	image, err := e.deck.Capture()
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", index+1, err)
	}

	name := SlideFileName(index, e.opts.Format)
	if err = afero.WriteFile(e.fs, filepath.Join(e.opts.OutputDir, name), image, 0o644); err != nil {
		return nil, fmt.Errorf("cannot save %s: %w", name, err)
	}
	log.Infof("  Saved %s", name)

	return &Slide{
		Number:    index + 1,
		File:      name,
		Fragments: fragments,
	}, nil
}

// pause waits d unless ctx is cancelled first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
