package services

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeImages(t *testing.T) {
	t.Run("dedupes and trims", func(t *testing.T) {
		got := MergeImages(
			[]string{"a.jpg", " b.jpg ", ""},
			[]string{"b.jpg", "c.jpg"},
		)
		assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, got)
	})

	t.Run("oldest win past the cap", func(t *testing.T) {
		got := MergeImages(
			[]string{"a.jpg", "b.jpg", "c.jpg"},
			[]string{"d.jpg", "e.jpg"},
		)
		assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, got)
	})

	t.Run("nil existing", func(t *testing.T) {
		got := MergeImages(nil, []string{"a.jpg"})
		assert.Equal(t, []string{"a.jpg"}, got)
	})
}

func TestResolveImagesPassthrough(t *testing.T) {
	// long but not valid base64, so it stays a plain string
	long := strings.Repeat("not-base64-", 20)

	urls, saved, err := ResolveImages([]string{
		"https://cdn.example.com/a.jpg",
		"uploads/hotels/b.jpg",
		long,
		"  ",
	}, "hotels")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "uploads/hotels/b.jpg", long}, urls)
	assert.Empty(t, saved)
}

func TestResolveImagesHeaderlessBase64(t *testing.T) {
	chdir(t, t.TempDir())

	// high bytes encode to "/" characters, which must not be mistaken for a URL
	raw := bytes.Repeat([]byte{0xff, 0xfe, 0xfd}, 64)
	payload := base64.StdEncoding.EncodeToString(raw)
	require.Contains(t, payload, "/")

	urls, saved, err := ResolveImages([]string{payload}, "rooms")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Len(t, urls, 1)
	assert.Equal(t, saved[0], urls[0])
	assert.True(t, strings.HasPrefix(saved[0], "uploads/rooms/"))

	data, err := os.ReadFile(filepath.FromSlash(saved[0]))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestResolveImagesWritesBase64(t *testing.T) {
	chdir(t, t.TempDir())

	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake jpeg bytes"))
	urls, saved, err := ResolveImages([]string{payload, "https://cdn.example.com/a.jpg"}, "rooms")
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Len(t, saved, 1)
	assert.True(t, strings.HasPrefix(saved[0], "uploads/rooms/"))
	assert.Equal(t, saved[0], urls[0])

	data, err := os.ReadFile(filepath.FromSlash(saved[0]))
	require.NoError(t, err)
	assert.Equal(t, "fake jpeg bytes", string(data))

	CleanupImages(saved)
	_, err = os.Stat(filepath.FromSlash(saved[0]))
	assert.True(t, os.IsNotExist(err))
}

func TestResolveImagesBadBase64(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := ResolveImages([]string{"data:image/jpeg;base64,???not-base64???"}, "hotels")
	require.Error(t, err)
}
