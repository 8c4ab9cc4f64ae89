package chrome

import (
	"fmt"
	"sort"
	"strings"

	cdppage "github.com/chromedp/cdproto/page"
)

// ImageFormat represents an image file format.
type ImageFormat string

// Valid image format options.
const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
)

func (f ImageFormat) String() string {
	return string(f)
}

// Extension returns the file extension used for the format, without the dot.
func (f ImageFormat) Extension() string {
	if f == ImageFormatJPEG {
		return "jpg"
	}
	return "png"
}

// MimeType returns the media type of images encoded in the format.
func (f ImageFormat) MimeType() string {
	if f == ImageFormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func (f ImageFormat) captureFormat() cdppage.CaptureScreenshotFormat {
	if f == ImageFormatJPEG {
		return cdppage.CaptureScreenshotFormatJpeg
	}
	return cdppage.CaptureScreenshotFormatPng
}

// ParseImageFormat accepts "png", "jpeg" or "jpg", case-insensitively.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return ImageFormatPNG, nil
	case "jpeg", "jpg":
		return ImageFormatJPEG, nil
	}
	return "", fmt.Errorf("invalid image format: %q", s)
}

// LifecycleEvent is the page load milestone a navigation waits for.
type LifecycleEvent int

const (
	LifecycleEventLoad LifecycleEvent = iota
	LifecycleEventDOMContentLoad
	LifecycleEventNetworkIdle
)

func (l LifecycleEvent) String() string {
	return lifecycleEventToString[l]
}

var lifecycleEventToString = map[LifecycleEvent]string{
	LifecycleEventLoad:           "load",
	LifecycleEventDOMContentLoad: "domcontentloaded",
	LifecycleEventNetworkIdle:    "networkidle",
}

var lifecycleEventToID = map[string]LifecycleEvent{
	"load":             LifecycleEventLoad,
	"domcontentloaded": LifecycleEventDOMContentLoad,
	"networkidle":      LifecycleEventNetworkIdle,
}

// lifecycleEventToCDP maps to the names Chrome reports in Page.lifecycleEvent.
var lifecycleEventToCDP = map[LifecycleEvent]string{
	LifecycleEventLoad:           "load",
	LifecycleEventDOMContentLoad: "DOMContentLoaded",
	LifecycleEventNetworkIdle:    "networkIdle",
}

func (l LifecycleEvent) cdpName() string {
	return lifecycleEventToCDP[l]
}

// ParseLifecycleEvent converts "load", "domcontentloaded" or "networkidle".
func ParseLifecycleEvent(s string) (LifecycleEvent, error) {
	if v, ok := lifecycleEventToID[s]; ok {
		return v, nil
	}
	valid := make([]string, 0, len(lifecycleEventToID))
	for k := range lifecycleEventToID {
		valid = append(valid, k)
	}
	sort.Slice(valid, func(i, j int) bool {
		return lifecycleEventToID[valid[j]] > lifecycleEventToID[valid[i]]
	})
	return 0, fmt.Errorf("invalid lifecycle event %q; must be one of: %s", s, strings.Join(valid, ", "))
}
