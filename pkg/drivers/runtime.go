package drivers

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webext-functest/pkg/logging"
)

// Runtime owns the playwright driver process shared by every session of a
// registry. It is started on first use and stopped on release.
type Runtime struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	browsers []Browser
	log      *logging.Logger
}

// NewRuntime creates a runtime installing the engines of browsers on start.
func NewRuntime(log *logging.Logger, browsers ...Browser) *Runtime {
	if log == nil {
		log = logging.Discard()
	}
	if len(browsers) == 0 {
		browsers = Supported()
	}
	return &Runtime{
		browsers: browsers,
		log:      log,
	}
}

// Start installs the browser engines and launches playwright. Subsequent
// calls return the running instance.
func (r *Runtime) Start() (*playwright.Playwright, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pw != nil {
		return r.pw, nil
	}

	engines := make([]string, 0, len(r.browsers))
	for _, b := range r.browsers {
		engines = append(engines, b.engine())
	}

	// Installer output goes to the run log instead of the test output
	opts := &playwright.RunOptions{
		Browsers: engines,
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   r.log.Writer(),
	}

	r.log.Infof("installing playwright engines %v", engines)
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	r.pw = pw
	return pw, nil
}

// Started reports whether playwright is running.
func (r *Runtime) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pw != nil
}

// Stop shuts playwright down. It is a no-op when the runtime never started.
func (r *Runtime) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pw == nil {
		return nil
	}

	err := r.pw.Stop()
	r.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	r.log.Infof("playwright stopped")
	return nil
}
