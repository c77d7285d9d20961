package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		name    string
		want    Browser
		wantErr bool
	}{
		{name: "firefox", want: Firefox},
		{name: "chrome", want: Chrome},
		{name: " Chrome ", want: Chrome},
		{name: "FIREFOX", want: Firefox},
		{name: "chromium", wantErr: true},
		{name: "unsupported-browser", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBrowser(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownBrowser)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []Browser{Chrome, Firefox}, Supported())

	// Callers cannot alter the supported set
	s := Supported()
	s[0] = "safari"
	assert.Equal(t, Chrome, Supported()[0])
}

func TestBrowserEngine(t *testing.T) {
	assert.Equal(t, "chromium", Chrome.engine())
	assert.Equal(t, "firefox", Firefox.engine())
	assert.Empty(t, Browser("safari").engine())
}
