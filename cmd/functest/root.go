package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/webext-functest/pkg/config"
	"github.com/entrhq/webext-functest/pkg/drivers"
	"github.com/entrhq/webext-functest/pkg/extension"
	"github.com/entrhq/webext-functest/pkg/logging"
)

// errNoMatch is returned by the match command when no content script covers the URL
var errNoMatch = errors.New("no content script matches")

type rootOptions struct {
	workDir string
}

func newRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "functest",
		Short: "Functional test helper for the reader web extension",
		Long: `functest inspects the web extension under test and drives the browsers
used by its functional tests.

The extension is read from <workdir>/web-extension/manifest.json. The packed
archive is looked up in $WEBEXT_DIR, or <workdir>/build when unset.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.workDir, "workdir", "C", ".", "Directory containing web-extension/")

	rootCmd.AddCommand(
		newManifestCommand(opts),
		newReadersCommand(opts),
		newMatchCommand(opts),
		newSmokeCommand(opts),
	)

	return rootCmd
}

func (o *rootOptions) loadSettings() (*config.Settings, error) {
	settings, err := config.LoadFromEnv(o.workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (o *rootOptions) loadExtension() (*extension.Extension, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	return extension.Load(o.workDir, os.LookupEnv, extension.WithLocalPort(settings.LocalPort))
}

func newManifestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Show the extension name, version and artifact paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := opts.loadExtension()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:      %s\n", ext.Name())
			fmt.Fprintf(out, "version:   %s\n", ext.Version())
			fmt.Fprintf(out, "archive:   %s\n", ext.ArchiveName())
			fmt.Fprintf(out, "unpacked:  %s\n", ext.UnpackedPath())
			fmt.Fprintf(out, "packed:    %s (exists: %t)\n", ext.PackedPath(), ext.PackedExists())
			if id := ext.GeckoID(); id != "" {
				fmt.Fprintf(out, "gecko id:  %s\n", id)
			}
			return nil
		},
	}
}

func newReadersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "readers",
		Short: "List the reader URLs the content scripts are injected into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := opts.loadExtension()
			if err != nil {
				return err
			}
			for _, url := range ext.SupportedReaders() {
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
			return nil
		},
	}
}

func newMatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <url>",
		Short: "Check whether a content script is injected into a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := opts.loadExtension()
			if err != nil {
				return err
			}
			if !ext.Matches(args[0]) {
				return fmt.Errorf("%w %s", errNoMatch, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is handled by %s\n", args[0], ext.Name())
			return nil
		},
	}
}

func newSmokeCommand(opts *rootOptions) *cobra.Command {
	var browsers []string

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Open every reader URL in each configured browser",
		Long: `smoke launches each browser with the extension installed, opens every
supported reader URL and prints the page titles. Browsers default to the
configured ones (functest.yaml or FUNCTEST_BROWSERS).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			if len(browsers) == 0 {
				browsers = settings.Browsers
			}

			logging.SetLogDirectory(settings.LogDir)
			log, err := logging.NewLogger("smoke")
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
			defer log.Close()

			reg := drivers.NewRegistry(
				drivers.WithSettings(settings),
				drivers.WithLogger(log),
				drivers.WithWorkDir(opts.workDir),
			)
			return runSmoke(cmd, reg, browsers)
		},
	}

	cmd.Flags().StringSliceVarP(&browsers, "browser", "b", nil, "Browsers to run (firefox, chrome)")
	return cmd
}

// runSmoke opens every reader in every browser, then releases the registry
// whatever the outcome.
func runSmoke(cmd *cobra.Command, reg *drivers.Registry, browsers []string) (err error) {
	defer func() {
		err = errors.Join(err, reg.Release())
	}()

	out := cmd.OutOrStdout()
	for _, name := range browsers {
		d, err := reg.Get(name)
		if err != nil {
			return err
		}

		session, ok := d.(*drivers.Session)
		if !ok {
			fmt.Fprintf(out, "%s: driver ready\n", d.Browser())
			continue
		}

		for i, url := range session.Extension().SupportedReaders() {
			if err := session.OpenReader(i); err != nil {
				return fmt.Errorf("%s: %w", d.Browser(), err)
			}
			title, err := session.Title()
			if err != nil {
				return fmt.Errorf("%s: %w", d.Browser(), err)
			}
			fmt.Fprintf(out, "%s: %s %q\n", d.Browser(), url, title)
		}
	}
	return nil
}
