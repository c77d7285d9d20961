package drivers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webext-functest/pkg/config"
	"github.com/entrhq/webext-functest/pkg/extension"
	"github.com/entrhq/webext-functest/pkg/logging"
)

// firefoxPrefs let Firefox enable unsigned add-ons dropped in the profile.
var firefoxPrefs = map[string]interface{}{
	"xpinstall.signatures.required": false,
	"extensions.autoDisableScopes":  0,
	"extensions.enabledScopes":      15,
}

// prepareFirefoxProfile creates a profile directory side-loading the packed
// extension as extensions/<gecko-id>.xpi.
func prepareFirefoxProfile(ext *extension.Extension) (string, error) {
	id := ext.GeckoID()
	if id == "" {
		return "", fmt.Errorf("manifest of %s has no gecko id", ext.Name())
	}
	if !ext.PackedExists() {
		return "", fmt.Errorf("packed extension not found at %s", ext.PackedPath())
	}

	profileDir, err := os.MkdirTemp("", "functest-firefox-*")
	if err != nil {
		return "", fmt.Errorf("failed to create firefox profile: %w", err)
	}

	dst := filepath.Join(profileDir, "extensions", id+".xpi")
	if err := copyFile(ext.PackedPath(), dst); err != nil {
		os.RemoveAll(profileDir)
		return "", fmt.Errorf("failed to install extension in profile: %w", err)
	}
	return profileDir, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// NewFirefoxFactory returns a Factory launching Firefox with the packed
// extension side-loaded into a temporary profile.
func NewFirefoxFactory(rt *Runtime, settings *config.Settings, log *logging.Logger) Factory {
	return func(ext *extension.Extension) (Driver, error) {
		profileDir, err := prepareFirefoxProfile(ext)
		if err != nil {
			return nil, err
		}

		pw, err := rt.Start()
		if err != nil {
			os.RemoveAll(profileDir)
			return nil, err
		}

		bctx, err := pw.Firefox.LaunchPersistentContext(profileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:         playwright.Bool(settings.Headless),
			FirefoxUserPrefs: firefoxPrefs,
			Viewport: &playwright.Size{
				Width:  settings.Viewport.Width,
				Height: settings.Viewport.Height,
			},
		})
		if err != nil {
			os.RemoveAll(profileDir)
			return nil, fmt.Errorf("failed to launch firefox: %w", err)
		}

		session, err := newSession(Firefox, ext, bctx, profileDir, settings.TimeoutMillis(), log.With(Firefox.String()))
		if err != nil {
			bctx.Close()
			os.RemoveAll(profileDir)
			return nil, err
		}

		log.Infof("firefox launched with %s from %s", ext.Name(), ext.PackedPath())
		return session, nil
	}
}
