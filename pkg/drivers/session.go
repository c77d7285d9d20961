package drivers

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webext-functest/pkg/extension"
	"github.com/entrhq/webext-functest/pkg/logging"
)

// Session is a playwright browser context running with the extension
// installed. It implements Driver.
type Session struct {
	mu sync.Mutex

	browser    Browser
	ext        *extension.Extension
	context    playwright.BrowserContext
	page       playwright.Page
	profileDir string
	log        *logging.Logger

	createdAt  time.Time
	currentURL string
	released   bool
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// WaitOptions configures waiting behavior.
type WaitOptions struct {
	// State to wait for: "attached", "detached", "visible", "hidden"
	State string

	// Timeout in milliseconds
	Timeout float64
}

func newSession(b Browser, ext *extension.Extension, bctx playwright.BrowserContext, profileDir string, timeout float64, log *logging.Logger) (*Session, error) {
	bctx.SetDefaultTimeout(timeout)

	// Persistent contexts open with a blank page
	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		var err error
		page, err = bctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}
	page.SetDefaultTimeout(timeout)

	return &Session{
		browser:    b,
		ext:        ext,
		context:    bctx,
		page:       page,
		profileDir: profileDir,
		log:        log,
		createdAt:  time.Now(),
		currentURL: "about:blank",
	}, nil
}

// Browser returns the browser of this session.
func (s *Session) Browser() Browser { return s.browser }

// Extension returns the extension loaded in this session.
func (s *Session) Extension() *extension.Extension { return s.ext }

// Page returns the active playwright page for direct use in tests.
func (s *Session) Page() playwright.Page { return s.page }

// CreatedAt returns when the browser was launched.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// CurrentURL returns the URL of the page after the last operation.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// Navigate navigates the page to url.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}

	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = &opts.Timeout
	}

	if _, err := s.page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	s.currentURL = s.page.URL()
	s.log.Debugf("navigated to %s", s.currentURL)
	return nil
}

// OpenReader navigates to the i-th supported reader URL of the extension.
func (s *Session) OpenReader(i int) error {
	readers := s.ext.SupportedReaders()
	if i < 0 || i >= len(readers) {
		return fmt.Errorf("reader index %d out of range (%d readers)", i, len(readers))
	}
	return s.Navigate(readers[i], NavigateOptions{WaitUntil: "load"})
}

// Click clicks the element matching selector.
func (s *Session) Click(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}

	if err := s.page.Click(selector); err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}

	// Clicks may navigate
	s.currentURL = s.page.URL()
	return nil
}

// Fill fills the input matching selector with value.
func (s *Session) Fill(selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}

	if err := s.page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill of %q failed: %w", selector, err)
	}
	return nil
}

// Wait waits for the element matching selector to reach a state.
func (s *Session) Wait(selector string, opts WaitOptions) error {
	if selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}

	waitOpts := playwright.PageWaitForSelectorOptions{}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		waitOpts.State = &state
	}
	if opts.Timeout > 0 {
		waitOpts.Timeout = &opts.Timeout
	}

	if _, err := s.page.WaitForSelector(selector, waitOpts); err != nil {
		return fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page and returns its result.
func (s *Session) Evaluate(expression string, args ...interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, ErrReleased
	}

	result, err := s.page.Evaluate(expression, args...)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return result, nil
}

// Title returns the title of the current page.
func (s *Session) Title() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return "", ErrReleased
	}
	return s.page.Title()
}

// Text returns the visible text of the current page.
func (s *Session) Text() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return "", ErrReleased
	}

	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return visibleText(content)
}

// Release closes the browser and removes its temporary profile.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true

	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close %s: %w", s.browser, err))
	}
	if s.profileDir != "" {
		if err := os.RemoveAll(s.profileDir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove profile: %w", err))
		}
	}

	s.log.Infof("released after %s", time.Since(s.createdAt).Round(time.Millisecond))
	return errors.Join(errs...)
}
