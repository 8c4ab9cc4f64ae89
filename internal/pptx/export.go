package pptx

import (
	"github.com/luispater/slideExporter/internal/notes"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type Options struct {
	SlidesDir string
	// Index is the deck's HTML. Empty skips notes.
	Index  string
	Output string
	Title  string
}

type Summary struct {
	Output string
	Slides int
	// Notes counts the slides that received speaker notes.
	Notes int
}

// Export builds Output from the images in SlidesDir. When Index is set, the
// deck's speaker notes go into the notes page of the matching slide.
func Export(fs afero.Fs, opts Options) (*Summary, error) {
	images, err := FindImages(fs, opts.SlidesDir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	log.Infof("Found %d slide images", len(images))

	var speakerNotes []string
	if opts.Index != "" {
		speakerNotes, err = notes.ExtractFile(fs, opts.Index)
		if err != nil {
			return nil, err
		}
		log.Infof("Found %d slide sections in HTML", len(speakerNotes))
		if len(speakerNotes) != len(images) {
			log.Warnf("%d images but %d sections in HTML. Notes may not align perfectly.", len(images), len(speakerNotes))
		}
	}

	if err = NewBuilder(fs, opts.Title).BuildFile(images, speakerNotes, opts.Output); err != nil {
		return nil, err
	}

	summary := &Summary{Output: opts.Output, Slides: len(images)}
	for i, n := range speakerNotes {
		if i < len(images) && n != "" {
			summary.Notes++
		}
	}
	return summary, nil
}
