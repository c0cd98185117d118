package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    ContentType
		id      string
		url     string
		wantErr bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?t=10", ContentTypeVideo, "dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ?t=10", false},
		{"shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ", "https://youtube.com/shorts/dQw4w9WgXcQ", false},
		{"watch URL inside playlist", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", ContentTypeVideo, "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", false},
		{"playlist URL", "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", ContentTypePlaylist, "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", false},
		{"bare video ID", "dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"bare playlist ID", "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", ContentTypePlaylist, "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", false},
		{"mistyped command", "trnscribe", ContentTypeCommand, "", "", true},
		{"other site", "https://vimeo.com/123456", ContentTypeUnknown, "", "https://vimeo.com/123456", true},
		{"garbage", "this is not a video", ContentTypeUnknown, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseInput(tt.input)
			assert.Equal(t, tt.kind, p.ContentType)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.url, p.NormalizedURL)
			if tt.wantErr {
				assert.Error(t, p.Error)
				assert.False(t, p.IsValid())
			} else {
				assert.NoError(t, p.Error)
				assert.True(t, p.IsValid())
			}
		})
	}
}

func TestParseArg(t *testing.T) {
	url, id := ParseArg("dQw4w9WgXcQ")
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", url)
	assert.Equal(t, "dQw4w9WgXcQ", id)

	url, id = ParseArg("nope")
	assert.Equal(t, "nope", url)
	assert.Equal(t, "nope", id)
}

func TestSuggestCorrection(t *testing.T) {
	p := ParseInput("play")
	require.Equal(t, ContentTypeCommand, p.ContentType)
	assert.Equal(t, "did you mean: playlist", p.SuggestCorrection([]string{"transcribe", "playlist", "resolve"}))
	assert.Equal(t, "use --help to see available commands", ParseInput("zzz").SuggestCorrection([]string{"show"}))
	assert.Empty(t, ParseInput("dQw4w9WgXcQ").SuggestCorrection([]string{"show"}))
}

func TestIsValidPlaylistID(t *testing.T) {
	assert.True(t, IsValidPlaylistID("PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf"))
	assert.True(t, IsValidPlaylistID("OLAK5uy_kNZC8J2X2lRtkTpdMWxpOdWm3dgJr0Bp4"))
	assert.False(t, IsValidPlaylistID("PLshort"))
	assert.False(t, IsValidPlaylistID("dQw4w9WgXcQ"))
}

func TestCleanupTempDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp_chunks")
	require.NoError(t, EnsureDirs(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0644))

	require.NoError(t, CleanupTempDir(dir))
	assert.False(t, FileExists(dir))
	assert.NoError(t, CleanupTempDir(dir), "missing directory is not an error")
}
