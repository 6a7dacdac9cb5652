package media

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVideo(t *testing.T) {
	tests := []struct {
		name       string
		probe      VideoProbe
		wantOK     bool
		wantReason string
	}{
		{
			name:       "oversized file",
			probe:      VideoProbe{SizeBytes: 600 * 1024, DurationSeconds: 2, Width: 400, Height: 400},
			wantReason: "614400 байт",
		},
		{
			name:   "within limits",
			probe:  VideoProbe{SizeBytes: 400 * 1024, DurationSeconds: 2, Width: 400, Height: 400},
			wantOK: true,
		},
		{
			name:       "too long",
			probe:      VideoProbe{SizeBytes: 400 * 1024, DurationSeconds: 4, Width: 400, Height: 400},
			wantReason: "Длительность видео 4.00",
		},
		{
			name:       "too wide",
			probe:      VideoProbe{SizeBytes: 400 * 1024, DurationSeconds: 2, Width: 640, Height: 400},
			wantReason: "640x400",
		},
		{
			name:   "exactly at limits",
			probe:  VideoProbe{SizeBytes: 512 * 1024, DurationSeconds: 3.0, Width: 512, Height: 512},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateVideo(tt.probe)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Empty(t, reason)
				return
			}
			assert.Contains(t, reason, tt.wantReason)
		})
	}
}

func TestValidateVideoIsPure(t *testing.T) {
	probe := VideoProbe{SizeBytes: 600 * 1024, DurationSeconds: 2, Width: 400, Height: 400}
	ok1, reason1 := ValidateVideo(probe)
	ok2, reason2 := ValidateVideo(probe)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, reason1, reason2)
}

func TestFitWithin(t *testing.T) {
	w, h := FitWithin(1024, 512, 512)
	assert.Equal(t, 512, w)
	assert.Equal(t, 256, h)

	w, h = FitWithin(300, 900, 512)
	assert.Equal(t, 170, w)
	assert.Equal(t, 512, h)

	w, h = FitWithin(100, 200, 512)
	assert.Equal(t, 100, w)
	assert.Equal(t, 200, h)
}

func TestIsEmoji(t *testing.T) {
	assert.True(t, IsEmoji("😀"))
	assert.True(t, IsEmoji(" 🔥 "))
	assert.False(t, IsEmoji(""))
	assert.False(t, IsEmoji("a"))
	assert.False(t, IsEmoji("😀😀"))
	assert.False(t, IsEmoji("hi 😀"))
}

func TestRandomEmojiIsSingleCodepoint(t *testing.T) {
	set := SingleCodepointEmojis()
	require.NotEmpty(t, set)

	for i := 0; i < 50; i++ {
		e := RandomEmoji()
		assert.Equal(t, 1, utf8.RuneCountInString(e))
		assert.True(t, IsEmoji(e))
	}
}
