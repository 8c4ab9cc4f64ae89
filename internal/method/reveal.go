package method

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DeckState is what the framework reports about the current position.
type DeckState struct {
	H     int
	Title string
}

// Open navigates the page to url and waits for the configured lifecycle event.
func (m *Method) Open(url string) error {
	log.Infof("Opening %s ...", url)
	if err := m.page.Navigate(url, m.opts.WaitUntil, m.opts.NavigationTimeout); err != nil {
		return err
	}
	if currentURL, err := m.GetURL(); err == nil {
		log.Debugf("Successfully navigated to: %s. Page fully loaded.", currentURL)
	}
	return nil
}

// WaitReady blocks until Reveal reports it is ready.
func (m *Method) WaitReady() error {
	if err := m.page.Poll(readyScript, m.opts.ReadyTimeout); err != nil {
		return fmt.Errorf("presentation did not become ready: %w", err)
	}
	if state, err := m.State(); err == nil && state.Title != "" {
		log.Infof("Presentation %q is ready.", state.Title)
	} else {
		log.Info("Presentation is ready.")
	}
	return nil
}

// TotalSlides returns the number of horizontal slides.
func (m *Method) TotalSlides() (int, error) {
	var total int
	if err := m.page.Evaluate(totalSlidesScript, &total, m.opts.ActionTimeout); err != nil {
		return 0, fmt.Errorf("error counting slides: %w", err)
	}
	return total, nil
}

// GoToSlide jumps to the horizontal slide index with no vertical or fragment offset.
func (m *Method) GoToSlide(index int) error {
	if err := m.page.Evaluate(slideScript(index), nil, m.opts.ActionTimeout); err != nil {
		return fmt.Errorf("error navigating to slide %d: %w", index, err)
	}
	return nil
}

// RevealFragments forces every fragment of the current slide into its final
// visible state and returns how many there were.
func (m *Method) RevealFragments() (int, error) {
	var count int
	if err := m.page.Evaluate(revealFragmentsScript, &count, m.opts.ActionTimeout); err != nil {
		return 0, fmt.Errorf("error revealing fragments: %w", err)
	}
	return count, nil
}

// State reads the current indices and deck metadata.
func (m *Method) State() (*DeckState, error) {
	var raw string
	if err := m.page.Evaluate(stateScript, &raw, m.opts.ActionTimeout); err != nil {
		return nil, fmt.Errorf("error reading deck state: %w", err)
	}
	return parseDeckState(raw)
}

// CurrentIndex is the horizontal index of the slide on screen.
func (m *Method) CurrentIndex() (int, error) {
	state, err := m.State()
	if err != nil {
		return 0, err
	}
	return state.H, nil
}

// Capture screenshots the page in the configured format.
func (m *Method) Capture() ([]byte, error) {
	return m.page.Screenshot(m.opts.Format, m.opts.Quality, m.opts.FullPage, m.opts.ActionTimeout)
}

func parseDeckState(raw string) (*DeckState, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("deck state is not valid JSON: %q", raw)
	}
	result := gjson.Parse(raw)
	h := result.Get("h")
	if !h.Exists() {
		return nil, fmt.Errorf("deck state has no horizontal index: %s", raw)
	}
	return &DeckState{
		H:     int(h.Int()),
		Title: result.Get("title").String(),
	}, nil
}
