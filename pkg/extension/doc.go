// Package extension describes the web extension under test.
//
// An Extension is built from the manifest found in the source tree
// (<workdir>/web-extension/manifest.json) and exposes the values the
// functional tests need: the normalized name and version, the archive name
// produced by the build, the unpacked and packed locations on disk, and the
// reader URLs the content scripts are injected into.
//
// # Paths
//
// The unpacked path always points at the source directory. The packed path
// points at <root>/<name>-<version>.zip where root is WEBEXT_DIR when it is
// set (CI workspaces), or <workdir>/build otherwise (developer builds). The
// archive is never created here; see PackedExists.
//
// # Reader URLs
//
// Content script match patterns are turned into navigable URLs:
//
//	*://localhost/*      -> https://localhost:5000/
//	*://example.com/*    -> https://example.com/
//
// Firefox refuses match patterns carrying a port, so the local test server
// port is injected for localhost patterns.
//
// # Example Usage
//
//	ext, err := extension.LoadFromEnv(".")
//	if err != nil {
//	    return err
//	}
//	for _, url := range ext.SupportedReaders() {
//	    // open url in a driver
//	}
package extension
