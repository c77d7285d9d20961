package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// SourceDir is the extension source directory, relative to the working directory.
	SourceDir = "web-extension"

	// ManifestFile is the manifest file name inside SourceDir.
	ManifestFile = "manifest.json"

	// PackedDirEnv overrides the directory holding the packed archive.
	PackedDirEnv = "WEBEXT_DIR"

	// DefaultLocalPort is the port of the local reader test server.
	DefaultLocalPort = 5000

	defaultBuildDir = "build"
)

// ErrConfiguration is returned when the manifest is missing or malformed.
var ErrConfiguration = errors.New("extension: configuration error")

// LookupFunc looks up an environment variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Option configures Load.
type Option func(*options)

type options struct {
	localPort int
}

// WithLocalPort sets the port injected into localhost reader URLs.
func WithLocalPort(port int) Option {
	return func(o *options) {
		if port > 0 {
			o.localPort = port
		}
	}
}

// Extension is the web extension under test. It is immutable once loaded.
type Extension struct {
	unpackedPath string
	manifestPath string
	packedPath   string
	localPort    int

	manifest *Manifest
	data     map[string]interface{}
}

// LoadFromEnv loads the extension found under workDir using the process environment.
func LoadFromEnv(workDir string) (*Extension, error) {
	return Load(workDir, os.LookupEnv)
}

// Load reads <workDir>/web-extension/manifest.json and computes the unpacked
// and packed locations of the extension. lookup resolves WEBEXT_DIR; a nil
// lookup behaves as an empty environment.
//
// The returned error wraps ErrConfiguration when the manifest cannot be read
// or is not valid JSON.
func Load(workDir string, lookup LookupFunc, opts ...Option) (*Extension, error) {
	o := options{localPort: DefaultLocalPort}
	for _, fn := range opts {
		fn(&o)
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	unpacked, err := absPath(workDir, SourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	manifestPath := filepath.Join(unpacked, ManifestFile)

	manifest, data, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	ext := &Extension{
		unpackedPath: unpacked,
		manifestPath: manifestPath,
		localPort:    o.localPort,
		manifest:     manifest,
		data:         data,
	}

	// CI runs provide the workspace holding the build output; locally the
	// archive is built into the source tree.
	root, ok := lookup(PackedDirEnv)
	if !ok || root == "" {
		root = filepath.Join(workDir, defaultBuildDir)
	}
	ext.packedPath, err = absPath(root, ext.ArchiveName())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return ext, nil
}

// Name returns the lowercased extension name.
func (e *Extension) Name() string {
	return strings.ToLower(e.manifest.Name)
}

// Version returns the version declared in the manifest.
func (e *Extension) Version() string {
	return e.manifest.Version
}

// ArchiveName returns the file name of the packed extension.
func (e *Extension) ArchiveName() string {
	return fmt.Sprintf("%s-%s.zip", e.Name(), e.Version())
}

// UnpackedPath returns the absolute path of the extension sources.
func (e *Extension) UnpackedPath() string {
	return e.unpackedPath
}

// ManifestPath returns the absolute path of manifest.json.
func (e *Extension) ManifestPath() string {
	return e.manifestPath
}

// PackedPath returns the absolute path of the packed archive.
func (e *Extension) PackedPath() string {
	return e.packedPath
}

// PackedExists reports whether the packed archive is present on disk.
func (e *Extension) PackedExists() bool {
	info, err := os.Stat(e.packedPath)
	return err == nil && info.Mode().IsRegular()
}

// GeckoID returns the Firefox add-on id, or "" when the manifest has none.
func (e *Extension) GeckoID() string {
	return e.manifest.geckoID()
}

// Manifest returns the typed manifest.
func (e *Extension) Manifest() Manifest {
	return *e.manifest
}

// Raw returns the decoded manifest as generic JSON values. Callers must not
// modify it.
func (e *Extension) Raw() map[string]interface{} {
	return e.data
}

// SupportedReaders returns one navigable URL per content script match
// pattern, in manifest order. Duplicates are kept.
func (e *Extension) SupportedReaders() []string {
	patterns := e.manifest.MatchPatterns()
	readers := make([]string, 0, len(patterns))
	for _, p := range patterns {
		readers = append(readers, SanitizeURL(p, e.localPort))
	}
	return readers
}

// SanitizeURL turns a match pattern into a usable URL: a leading '*' becomes
// "https", a trailing '*' is dropped and a localhost host gets port appended.
func SanitizeURL(pattern string, port int) string {
	u := pattern
	if strings.HasPrefix(u, "*") {
		u = "https" + u[1:]
	}
	u = strings.TrimSuffix(u, "*")

	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return u
	}
	host, path, hasPath := strings.Cut(rest, "/")
	if host != "localhost" {
		return u
	}
	u = scheme + "://" + host + ":" + strconv.Itoa(port)
	if hasPath {
		u += "/" + path
	}
	return u
}

// absPath joins elem into an absolute path. Symlinks are kept as given.
func absPath(elem ...string) (string, error) {
	p, err := filepath.Abs(filepath.Join(elem...))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return p, nil
}
