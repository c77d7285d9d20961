// Package drivers manages the browser automation sessions used by the
// functional tests of the web extension.
//
// # Architecture
//
// The package is built around three concepts:
//
// 1. Driver: a browser with the extension installed, released once the suite ends
// 2. Registry: an explicit per-suite cache holding at most one Driver per Browser
// 3. Runtime: the playwright process shared by every driver of a registry
//
// # Lifecycle
//
//  1. Create: the first Get for a browser loads a fresh extension descriptor
//     and launches the browser through its Factory
//  2. Use: later Get calls return the same driver
//  3. Release: Registry.Release tears down every driver, stops playwright and
//     empties the cache; a later Get launches a new browser
//
// # Browsers
//
// Chrome loads the unpacked extension from the source tree. Firefox side-loads
// the packed archive, so the extension must have been built and its manifest
// must carry a gecko id.
//
// # Example Usage
//
//	reg := drivers.NewRegistry(drivers.WithSettings(settings), drivers.WithLogger(log))
//	defer reg.Release()
//
//	d, err := reg.Get("chrome")
//	if err != nil {
//	    return err
//	}
//	session := d.(*drivers.Session)
//	err = session.OpenReader(0)
package drivers
