package drivers

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/entrhq/webext-functest/pkg/config"
	"github.com/entrhq/webext-functest/pkg/extension"
	"github.com/entrhq/webext-functest/pkg/logging"
)

// Loader builds the extension descriptor handed to a new driver.
type Loader func() (*extension.Extension, error)

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	settings  *config.Settings
	log       *logging.Logger
	workDir   string
	loader    Loader
	factories map[Browser]Factory
}

// WithSettings sets the run settings used by the default factories and loader.
func WithSettings(s *config.Settings) RegistryOption {
	return func(o *registryOptions) { o.settings = s }
}

// WithLogger sets the registry logger.
func WithLogger(l *logging.Logger) RegistryOption {
	return func(o *registryOptions) { o.log = l }
}

// WithWorkDir sets the directory the default loader reads the extension from.
func WithWorkDir(dir string) RegistryOption {
	return func(o *registryOptions) { o.workDir = dir }
}

// WithLoader replaces the extension loader.
func WithLoader(l Loader) RegistryOption {
	return func(o *registryOptions) { o.loader = l }
}

// WithFactory replaces the factory of browser b.
func WithFactory(b Browser, f Factory) RegistryOption {
	return func(o *registryOptions) { o.factories[b] = f }
}

// Registry caches one driver per browser for the duration of a suite.
// Drivers are built on first request, each with a freshly loaded extension,
// and torn down together by Release. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	drivers   map[Browser]Driver
	building  map[Browser]*sync.Mutex
	factories map[Browser]Factory
	loader    Loader
	runtime   *Runtime
	log       *logging.Logger
}

// NewRegistry creates an empty registry. Browsers without a factory given
// through WithFactory are driven by playwright.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		workDir:   ".",
		factories: make(map[Browser]Factory),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.settings == nil {
		o.settings = config.Default()
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	if o.loader == nil {
		workDir, port := o.workDir, o.settings.LocalPort
		o.loader = func() (*extension.Extension, error) {
			return extension.Load(workDir, os.LookupEnv, extension.WithLocalPort(port))
		}
	}

	r := &Registry{
		drivers:   make(map[Browser]Driver),
		building:  make(map[Browser]*sync.Mutex),
		factories: o.factories,
		loader:    o.loader,
		log:       o.log,
	}

	var missing []Browser
	for _, b := range Supported() {
		if _, ok := r.factories[b]; !ok {
			missing = append(missing, b)
		}
	}
	if len(missing) > 0 {
		r.runtime = NewRuntime(o.log.With("playwright"), missing...)
		for _, b := range missing {
			switch b {
			case Chrome:
				r.factories[b] = NewChromeFactory(r.runtime, o.settings, o.log)
			case Firefox:
				r.factories[b] = NewFirefoxFactory(r.runtime, o.settings, o.log)
			}
		}
	}

	return r
}

// Get returns the driver of the named browser, creating it on first use.
// Names are matched case-insensitively after trimming surrounding spaces,
// so " Chrome " resolves to Chrome. The error wraps ErrUnknownBrowser for
// unsupported names.
func (r *Registry) Get(name string) (Driver, error) {
	b, err := ParseBrowser(name)
	if err != nil {
		return nil, err
	}
	return r.GetOrCreate(b)
}

// GetOrCreate returns the cached driver of b, or builds it with a freshly
// loaded extension. Concurrent first calls for the same browser build a
// single driver; building one browser does not block lookups of another.
func (r *Registry) GetOrCreate(b Browser) (Driver, error) {
	r.mu.Lock()
	if d, ok := r.drivers[b]; ok {
		r.mu.Unlock()
		return d, nil
	}
	factory, ok := r.factories[b]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrowser, string(b))
	}
	build := r.buildLock(b)
	r.mu.Unlock()

	build.Lock()
	defer build.Unlock()

	// Another caller may have finished the build while we waited
	r.mu.Lock()
	d, ok := r.drivers[b]
	r.mu.Unlock()
	if ok {
		return d, nil
	}

	ext, err := r.loader()
	if err != nil {
		return nil, fmt.Errorf("failed to load extension for %s: %w", b, err)
	}

	d, err = factory(ext)
	if err != nil {
		r.log.Errorf("failed to create %s driver: %v", b, err)
		return nil, fmt.Errorf("failed to create %s driver: %w", b, err)
	}

	r.log.Infof("created %s driver for %s %s", b, ext.Name(), ext.Version())
	r.mu.Lock()
	r.drivers[b] = d
	r.mu.Unlock()
	return d, nil
}

// buildLock returns the construction lock of b. r.mu must be held.
func (r *Registry) buildLock(b Browser) *sync.Mutex {
	l, ok := r.building[b]
	if !ok {
		l = &sync.Mutex{}
		r.building[b] = l
	}
	return l
}

// Cached returns the browsers holding a driver, sorted by name.
func (r *Registry) Cached() []Browser {
	r.mu.Lock()
	defer r.mu.Unlock()

	browsers := make([]Browser, 0, len(r.drivers))
	for b := range r.drivers {
		browsers = append(browsers, b)
	}
	sort.Slice(browsers, func(i, j int) bool { return browsers[i] < browsers[j] })
	return browsers
}

// Release releases every cached driver and empties the cache, so the next
// Get builds a new driver. Builds in progress complete first and are
// released with the rest. The playwright runtime is stopped as well.
// Errors of individual drivers are joined; every driver is released
// regardless of earlier failures.
func (r *Registry) Release() error {
	r.mu.Lock()
	browsers := make([]Browser, 0, len(r.building))
	for b := range r.building {
		browsers = append(browsers, b)
	}
	sort.Slice(browsers, func(i, j int) bool { return browsers[i] < browsers[j] })
	locks := make([]*sync.Mutex, len(browsers))
	for i, b := range browsers {
		locks[i] = r.building[b]
	}
	r.mu.Unlock()

	// Build locks are taken in name order and before r.mu
	for _, l := range locks {
		l.Lock()
		defer l.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for b, d := range r.drivers {
		if err := d.Release(); err != nil {
			r.log.Warnf("failed to release %s driver: %v", b, err)
			errs = append(errs, fmt.Errorf("release %s: %w", b, err))
		}
		delete(r.drivers, b)
	}

	if r.runtime != nil {
		if err := r.runtime.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
