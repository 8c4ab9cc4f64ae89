package method

import (
	"time"

	"github.com/luispater/slideExporter/internal/browser/chrome"
)

// Options tunes the page operations a Method performs.
type Options struct {
	WaitUntil         chrome.LifecycleEvent
	NavigationTimeout time.Duration
	ReadyTimeout      time.Duration
	// ActionTimeout bounds every script evaluation and screenshot.
	ActionTimeout time.Duration
	Format        chrome.ImageFormat
	Quality       int
	FullPage      bool
}

// Method drives a Reveal.js deck loaded in a browser page.
type Method struct {
	page *chrome.Page
	opts Options
}

func NewMethod(page *chrome.Page, opts Options) *Method {
	return &Method{
		page: page,
		opts: opts,
	}
}
