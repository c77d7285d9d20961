package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantNot []string
	}{
		{
			name: "drops head scripts and styles",
			input: `<html>
				<head><title>Chapter 1</title><style>body { color: red; }</style></head>
				<body>
					<script>alert('evil');</script>
					<h1>One Piece</h1>
					<p>Chapter   1
					   of 1000</p>
				</body>
			</html>`,
			want:    "One Piece\nChapter 1 of 1000",
			wantNot: []string{"alert", "color: red", "Chapter 1\n"},
		},
		{
			name:  "inline elements stay on one line",
			input: `<div>Read <a href="/next">next</a> <b>page</b></div>`,
			want:  "Read next page",
		},
		{
			name:  "list items split lines",
			input: `<ul><li>first</li><li>second</li></ul><!-- hidden -->`,
			want:  "first\nsecond",
		},
		{
			name:  "empty document",
			input: ``,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := visibleText(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, s := range tt.wantNot {
				assert.NotContains(t, got, s)
			}
		})
	}
}
