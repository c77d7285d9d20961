package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, manifestJSON(t, map[string]interface{}{
		"name":    "Reader",
		"version": "1.0",
		"content_scripts": []map[string]interface{}{
			{"matches": []string{"*://localhost/*", "https://*.mangaeden.com/en/*", "*://*.mangafox.me/*"}},
		},
	}))

	ext, err := Load(dir, env(nil))
	require.NoError(t, err)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://localhost:5000/", true},
		{"http://localhost/reader/chapter-1", true},
		{"ftp://localhost/file", false},
		{"https://www.mangaeden.com/en/one-piece/1", true},
		{"https://www.mangaeden.com/it/one-piece/1", false},
		{"https://example.com/", false},
		{"https://fanfox.mangafox.me/manga/", true},
		{"https://mangafox.me/", true},
		{"http://MangaFox.me/manga/?page=2", true},
		{"https://evil.org/x.mangafox.me/", false},
		{"https://notmangafox.me/", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ext.Matches(tt.url))
		})
	}
}

func TestMatches_SupportedReadersAreCovered(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, defaultManifest(t))

	ext, err := Load(dir, env(nil))
	require.NoError(t, err)

	for _, reader := range ext.SupportedReaders() {
		assert.True(t, ext.Matches(reader), "reader %q should be matched", reader)
	}
}

func TestMatches_AllURLs(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "x", "version": "1", "content_scripts": [{"matches": ["<all_urls>"]}]}`)

	ext, err := Load(dir, env(nil))
	require.NoError(t, err)

	assert.True(t, ext.Matches("https://anything.example/"))
	assert.True(t, ext.Matches("file:///tmp/page.html"))
	assert.False(t, ext.Matches("chrome://extensions/"))
}

func TestParsePattern_Errors(t *testing.T) {
	for _, pattern := range []string{
		"localhost/*",
		"https://localhost",
		"https:///path",
		"https://www.*.com/*",
	} {
		t.Run(pattern, func(t *testing.T) {
			_, err := parsePattern(pattern)
			assert.Error(t, err)
		})
	}
}

func TestParsePattern_OnlyStarIsWildcard(t *testing.T) {
	p, err := parsePattern("https://localhost/read?chapter=[1]*")
	require.NoError(t, err)

	assert.True(t, p.path.Match("/read?chapter=[1]&page=2"))
	assert.False(t, p.path.Match("/readXchapter=1"))
}
