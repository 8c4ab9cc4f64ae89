package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Page is a single browser tab.
type Page struct {
	ctx       context.Context
	cancel    context.CancelFunc
	lifecycle *lifecycleWatcher
}

// NewPage opens a blank tab in the browser behind browserCtx, turns on page
// lifecycle events and emulates a width x height viewport.
func NewPage(browserCtx context.Context, width, height int64) (*Page, error) {
	if browserCtx == nil {
		return nil, fmt.Errorf("browser context not initialized. Call LaunchBrowserAndContext first")
	}

	var newTargetID target.ID
	err := chromedp.Run(
		browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			newTargetID, err = target.CreateTarget("about:blank").Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create new target (tab): %w", err)
	}

	newPageCtx, newPageCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(newTargetID))

	watcher := &lifecycleWatcher{}
	chromedp.ListenTarget(newPageCtx, func(ifEv interface{}) {
		if ev, ok := ifEv.(*cdppage.EventLifecycleEvent); ok {
			watcher.handle(ev)
		}
	})

	err = chromedp.Run(
		newPageCtx,
		cdppage.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(width, height),
	)
	if err != nil {
		newPageCancel()
		return nil, fmt.Errorf("failed to prepare new page: %w", err)
	}

	log.Debugf("New Chromedp page (targetID: %s) created with viewport %dx%d.", newTargetID, width, height)

	return &Page{
		ctx:       newPageCtx,
		cancel:    newPageCancel,
		lifecycle: watcher,
	}, nil
}

func (p *Page) GetContext() context.Context {
	return p.ctx
}

// Navigate loads url and blocks until the main frame of the new document reaches
// waitUntil. The whole operation is bounded by timeout.
func (p *Page) Navigate(url string, waitUntil LifecycleEvent, timeout time.Duration) error {
	opCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	var reached <-chan struct{}
	err := chromedp.Run(opCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := cdppage.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get frame tree: %w", err)
			}
			reached = p.lifecycle.arm(tree.Frame.ID, waitUntil.cdpName())
			return nil
		}),
		chromedp.Navigate(url),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out after %s navigating to %s: %w", timeout, url, err)
		}
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	select {
	case <-reached:
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %s waiting for %s on %s: %w", timeout, waitUntil, url, opCtx.Err())
	}

	log.Debugf("Page reached %s: %s", waitUntil, url)
	return nil
}

// Evaluate runs expression in the page and stores its JSON result in res.
// A nil res discards the result.
func (p *Page) Evaluate(expression string, res any, timeout time.Duration) error {
	opCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.Evaluate(expression, res)); err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	return nil
}

// Poll re-evaluates expression until it is truthy or timeout expires.
func (p *Page) Poll(expression string, timeout time.Duration) error {
	var ok bool
	err := chromedp.Run(p.ctx, chromedp.Poll(expression, &ok, chromedp.WithPollingTimeout(timeout)))
	if err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return fmt.Errorf("condition not met after %s: %w", timeout, err)
		}
		return fmt.Errorf("failed to poll: %w", err)
	}
	return nil
}

// Screenshot captures the viewport, or the whole document when fullPage is
// set, encoded as format. quality only applies to JPEG.
func (p *Page) Screenshot(format ImageFormat, quality int, fullPage bool, timeout time.Duration) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	var buf []byte
	err := chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		capture := cdppage.CaptureScreenshot().WithFormat(format.captureFormat())
		if format == ImageFormatJPEG {
			capture = capture.WithQuality(int64(quality))
		}

		if fullPage {
			_, _, _, _, _, cssContentSize, err := cdppage.GetLayoutMetrics().Do(ctx)
			if err != nil {
				return fmt.Errorf("cannot get layout metrics for screenshot: %w", err)
			}
			capture = capture.
				WithCaptureBeyondViewport(true).
				WithClip(&cdppage.Viewport{
					X:      0,
					Y:      0,
					Width:  cssContentSize.Width,
					Height: cssContentSize.Height,
					Scale:  1,
				})
		}

		var err error
		buf, err = capture.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("cannot capture screenshot: %w", err)
	}
	return buf, nil
}

func (p *Page) Close() {
	p.cancel()
}

// lifecycleWatcher signals when the main frame's current document emits a
// named lifecycle event. Events of earlier documents are ignored by loader id.
type lifecycleWatcher struct {
	mu       sync.Mutex
	frameID  cdp.FrameID
	loaderID cdp.LoaderID
	name     string
	done     chan struct{}
}

// arm starts waiting for the next document loaded into frameID to emit name.
func (w *lifecycleWatcher) arm(frameID cdp.FrameID, name string) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.frameID = frameID
	w.loaderID = ""
	w.name = name
	w.done = make(chan struct{})
	return w.done
}

func (w *lifecycleWatcher) handle(ev *cdppage.EventLifecycleEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done == nil || ev.FrameID != w.frameID {
		return
	}
	if ev.Name == "init" {
		w.loaderID = ev.LoaderID
		return
	}
	if ev.Name == w.name && w.loaderID != "" && ev.LoaderID == w.loaderID {
		close(w.done)
		w.done = nil
	}
}
