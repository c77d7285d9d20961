package drivers

import (
	"errors"
	"fmt"
	"strings"
)

// Browser identifies a supported browser.
type Browser string

const (
	// Firefox drives Firefox with the packed extension side-loaded
	Firefox Browser = "firefox"

	// Chrome drives Chromium with the unpacked extension loaded
	Chrome Browser = "chrome"
)

// ErrUnknownBrowser is returned when a browser name is not supported.
var ErrUnknownBrowser = errors.New("drivers: unknown browser")

var supported = []Browser{Chrome, Firefox}

// Supported returns every supported browser, sorted by name.
func Supported() []Browser {
	return append([]Browser(nil), supported...)
}

// ParseBrowser resolves a browser name. Matching is case-insensitive.
func ParseBrowser(name string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range supported {
		if b == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBrowser, name)
}

// String returns the browser name.
func (b Browser) String() string {
	return string(b)
}

// engine returns the playwright browser engine backing b.
func (b Browser) engine() string {
	switch b {
	case Chrome:
		return "chromium"
	case Firefox:
		return "firefox"
	default:
		return ""
	}
}
