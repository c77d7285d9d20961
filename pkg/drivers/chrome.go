package drivers

import (
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webext-functest/pkg/config"
	"github.com/entrhq/webext-functest/pkg/extension"
	"github.com/entrhq/webext-functest/pkg/logging"
)

// chromeArgs loads the unpacked extension and nothing else.
func chromeArgs(ext *extension.Extension) []string {
	return []string{
		"--disable-extensions-except=" + ext.UnpackedPath(),
		"--load-extension=" + ext.UnpackedPath(),
	}
}

// NewChromeFactory returns a Factory launching Chromium with the unpacked
// extension loaded into a temporary profile.
func NewChromeFactory(rt *Runtime, settings *config.Settings, log *logging.Logger) Factory {
	return func(ext *extension.Extension) (Driver, error) {
		pw, err := rt.Start()
		if err != nil {
			return nil, err
		}

		profileDir, err := os.MkdirTemp("", "functest-chrome-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create chrome profile: %w", err)
		}

		opts := playwright.BrowserTypeLaunchPersistentContextOptions{
			Args:     chromeArgs(ext),
			Headless: playwright.Bool(settings.Headless),
			Viewport: &playwright.Size{
				Width:  settings.Viewport.Width,
				Height: settings.Viewport.Height,
			},
		}
		// Extensions only load in the new headless mode of the chromium channel
		if settings.Headless {
			opts.Channel = playwright.String("chromium")
		}

		bctx, err := pw.Chromium.LaunchPersistentContext(profileDir, opts)
		if err != nil {
			os.RemoveAll(profileDir)
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}

		session, err := newSession(Chrome, ext, bctx, profileDir, settings.TimeoutMillis(), log.With(Chrome.String()))
		if err != nil {
			bctx.Close()
			os.RemoveAll(profileDir)
			return nil, err
		}

		log.Infof("chrome launched with %s from %s", ext.Name(), ext.UnpackedPath())
		return session, nil
	}
}
