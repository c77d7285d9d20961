package extension

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the subset of manifest.json read by the functional tests.
// No schema validation is performed; absent keys are left at their zero value.
type Manifest struct {
	Name                    string           `json:"name"`
	Version                 string           `json:"version"`
	ContentScripts          []ContentScript  `json:"content_scripts"`
	BrowserSpecificSettings *BrowserSettings `json:"browser_specific_settings,omitempty"`
	Applications            *BrowserSettings `json:"applications,omitempty"`
}

// ContentScript is a single content_scripts entry.
type ContentScript struct {
	Matches []string `json:"matches"`
	JS      []string `json:"js,omitempty"`
}

// BrowserSettings holds vendor specific manifest keys.
type BrowserSettings struct {
	Gecko *GeckoSettings `json:"gecko,omitempty"`
}

// GeckoSettings holds the Firefox add-on settings.
type GeckoSettings struct {
	ID string `json:"id"`
}

// MatchPatterns returns every content script match pattern in manifest order.
func (m *Manifest) MatchPatterns() []string {
	var patterns []string
	for _, cs := range m.ContentScripts {
		patterns = append(patterns, cs.Matches...)
	}
	return patterns
}

// geckoID returns the add-on id, preferring browser_specific_settings over
// the legacy applications key.
func (m *Manifest) geckoID() string {
	for _, s := range []*BrowserSettings{m.BrowserSpecificSettings, m.Applications} {
		if s != nil && s.Gecko != nil && s.Gecko.ID != "" {
			return s.Gecko.ID
		}
	}
	return ""
}

// readManifest reads and decodes the manifest at path into both its typed
// and raw forms.
func readManifest(path string) (*Manifest, map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read manifest: %w", ErrConfiguration, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse manifest %s: %w", ErrConfiguration, path, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, nil, fmt.Errorf("%w: unexpected manifest shape in %s: %w", ErrConfiguration, path, err)
	}

	return &manifest, raw, nil
}
