package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(t.TempDir(), env(nil))
	require.NoError(t, err)

	assert.True(t, s.Headless)
	assert.Equal(t, []string{"firefox", "chrome"}, s.Browsers)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, Viewport{Width: 1280, Height: 720}, s.Viewport)
	assert.Equal(t, 5000, s.LocalPort)
	assert.Equal(t, 30000.0, s.TimeoutMillis())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
headless: false
browsers: [chrome]
timeout: 10s
viewport:
  width: 800
  height: 600
local_port: 5001
`)

	s, err := Load(dir, env(nil))
	require.NoError(t, err)

	assert.False(t, s.Headless)
	assert.Equal(t, []string{"chrome"}, s.Browsers)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, s.Viewport)
	assert.Equal(t, 5001, s.LocalPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "headless: false\nbrowsers: [chrome]\n")

	s, err := Load(dir, env(map[string]string{
		EnvHeadless:  "true",
		EnvBrowsers:  " Firefox , chrome,,",
		EnvTimeout:   "2m",
		EnvLocalPort: "8080",
		EnvLogDir:    "/tmp/functest-logs",
	}))
	require.NoError(t, err)

	assert.True(t, s.Headless)
	assert.Equal(t, []string{"firefox", "chrome"}, s.Browsers)
	assert.Equal(t, 2*time.Minute, s.Timeout)
	assert.Equal(t, 8080, s.LocalPort)
	assert.Equal(t, "/tmp/functest-logs", s.LogDir)
}

func TestLoad_EmptyEnvIgnored(t *testing.T) {
	s, err := Load(t.TempDir(), env(map[string]string{EnvBrowsers: "", EnvTimeout: "  "}))
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox", "chrome"}, s.Browsers)
	assert.Equal(t, 30*time.Second, s.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		vars map[string]string
	}{
		{name: "malformed yaml", file: "browsers: [chrome"},
		{name: "invalid headless", vars: map[string]string{EnvHeadless: "maybe"}},
		{name: "invalid timeout", vars: map[string]string{EnvTimeout: "soon"}},
		{name: "negative timeout", vars: map[string]string{EnvTimeout: "-1s"}},
		{name: "invalid port", vars: map[string]string{EnvLocalPort: "http"}},
		{name: "port out of range", vars: map[string]string{EnvLocalPort: "70000"}},
		{name: "no browsers", file: "browsers: []"},
		{name: "bad viewport", file: "viewport: {width: 0, height: 10}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeSettings(t, dir, tt.file)
			}
			s, err := Load(dir, env(tt.vars))
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}
