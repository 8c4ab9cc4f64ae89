package exporter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ManifestFile is written next to the slide images.
const ManifestFile = "manifest.json"

// now and newID are replaced in tests.
var (
	now   = time.Now
	newID = uuid.NewString
)

func (e *Exporter) writeManifest(result *Result) (string, error) {
	doc, err := buildManifest(result, e.opts)
	if err != nil {
		return "", fmt.Errorf("cannot build manifest: %w", err)
	}

	path := filepath.Join(e.opts.OutputDir, ManifestFile)
	if err = afero.WriteFile(e.fs, path, pretty.Pretty([]byte(doc)), 0o644); err != nil {
		return "", fmt.Errorf("cannot save manifest: %w", err)
	}
	return path, nil
}

func buildManifest(result *Result, opts Options) (string, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"id", newID()},
		{"url", result.URL},
		{"created", now().UTC().Format(time.RFC3339)},
		{"format", opts.Format.String()},
		{"viewport.width", opts.ViewportWidth},
		{"viewport.height", opts.ViewportHeight},
		{"total", result.Total},
		{"slides", []any{}},
	}

	doc := "{}"
	var err error
	for _, f := range fields {
		if doc, err = sjson.Set(doc, f.path, f.value); err != nil {
			return "", err
		}
	}

	for _, s := range result.Slides {
		doc, err = sjson.Set(doc, "slides.-1", map[string]any{
			"number":    s.Number,
			"file":      s.File,
			"fragments": s.Fragments,
		})
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

// ManifestImages returns the image files listed by the manifest in dir, in
// slide order, as paths joined with dir. It returns afero's not-exist error
// when dir has no manifest.
func ManifestImages(fs afero.Fs, dir string) ([]string, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("manifest in %s is not valid JSON", dir)
	}

	files := gjson.GetBytes(data, "slides.#.file").Array()
	images := make([]string, 0, len(files))
	for _, f := range files {
		images = append(images, filepath.Join(dir, f.String()))
	}
	return images, nil
}
