package drivers

import (
	"errors"

	"github.com/entrhq/webext-functest/pkg/extension"
)

// ErrReleased is returned by operations on a released session.
var ErrReleased = errors.New("drivers: session released")

// Driver is a browser automation session with the extension installed.
type Driver interface {
	// Browser returns the browser this driver automates
	Browser() Browser

	// Extension returns the extension loaded into the browser
	Extension() *extension.Extension

	// Release tears the browser down. Calling it more than once is a no-op.
	Release() error
}

// Factory builds the driver of one browser for ext.
type Factory func(ext *extension.Extension) (Driver, error)
