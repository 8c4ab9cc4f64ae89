// Package pptx assembles exported slide images into a PowerPoint file.
package pptx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"
	"github.com/luispater/slideExporter/internal/browser/chrome"
	"github.com/luispater/slideExporter/internal/exporter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// 16:9 slide matching a 1280x720 capture.
const (
	emuPerInch  = 914400
	slideWidth  = int64(10.0 * emuPerInch)
	slideHeight = int64(5.625 * emuPerInch)
)

// ErrNoImages is returned when there is nothing to put into the presentation.
var ErrNoImages = errors.New("no slide images found")

type Builder struct {
	fs    afero.Fs
	title string
}

func NewBuilder(fs afero.Fs, title string) *Builder {
	return &Builder{
		fs:    fs,
		title: title,
	}
}

// FindImages lists the slide images in dir in slide order. The export manifest
// is authoritative when present; otherwise slide-* images are sorted by name.
func FindImages(fs afero.Fs, dir string) ([]string, error) {
	images, err := exporter.ManifestImages(fs, dir)
	if err == nil {
		return images, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	images = make([]string, 0)
	for _, pattern := range []string{"slide-*.png", "slide-*.jpg", "slide-*.jpeg"} {
		matches, errGlob := afero.Glob(fs, filepath.Join(dir, pattern))
		if errGlob != nil {
			return nil, errGlob
		}
		images = append(images, matches...)
	}
	sort.Strings(images)
	return images, nil
}

// Build writes a 16:9 presentation with one full-bleed picture per image.
// notes[i], when present, becomes the speaker notes of slide i.
func (b *Builder) Build(images, notes []string, w io.Writer) error {
	if len(images) == 0 {
		return ErrNoImages
	}

	p := ppt.New()
	p.GetLayout().SetCustomLayout(slideWidth, slideHeight)
	if b.title != "" {
		p.GetDocumentProperties().Title = b.title
	}
	p.GetDocumentProperties().Creator = "slide-exporter"

	for i, image := range images {
		data, err := afero.ReadFile(b.fs, image)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", image, err)
		}

		slide := p.GetActiveSlide()
		if i > 0 {
			slide = p.CreateSlide()
		}

		imgShape := slide.CreateDrawingShape()
		imgShape.SetImageData(data, mimeType(image))
		imgShape.SetOffsetX(0).SetOffsetY(0)
		imgShape.SetWidth(slideWidth).SetHeight(slideHeight)

		if i < len(notes) && notes[i] != "" {
			slide.SetNotes(notes[i])
		}
	}

	writer, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return fmt.Errorf("failed to create PPT writer: %w", err)
	}
	if err = writer.(*ppt.PPTXWriter).WriteTo(w); err != nil {
		return fmt.Errorf("failed to save PPT: %w", err)
	}
	return nil
}

// BuildFile runs Build into output, creating its directory.
func (b *Builder) BuildFile(images, notes []string, output string) error {
	var buf bytes.Buffer
	if err := b.Build(images, notes, &buf); err != nil {
		return err
	}

	if err := b.fs.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", output, err)
	}
	if err := afero.WriteFile(b.fs, output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot save %s: %w", output, err)
	}
	log.Infof("Saved %s with %d slides", output, len(images))
	return nil
}

func mimeType(path string) string {
	format, err := chrome.ParseImageFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return chrome.ImageFormatPNG.MimeType()
	}
	return format.MimeType()
}
