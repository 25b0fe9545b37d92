package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/pkg/config"
)

func testStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	return New(&config.Config{
		Storage: config.StorageConfig{
			Root:           t.TempDir(),
			MaxUploadBytes: maxBytes,
		},
	})
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 50 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSafeSubpath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"banners", "banners"},
		{"/banners", "banners"},
		{"a/b/c", "a/b/c"},
		{"../../etc/passwd", "etc/passwd"},
		{"a\\b", "a/b"},
		{"a//b", "a/b"},
		{"a b!c", "a-b-c"},
		{"banners/1700000000000-3cc7cbbccbbf.jpg", "banners/1700000000000-3cc7cbbccbbf.jpg"},
		{"../..//logo.jpg", "logo.jpg"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SafeSubpath(tc.in), "input %q", tc.in)
	}
}

func TestSaveImageStoresAndHashes(t *testing.T) {
	s := testStore(t, 8*1024*1024)
	data := pngBytes(t, 400, 300)

	saved, err := s.SaveImage(7, "banners", data)
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), saved.SHA256)
	assert.Equal(t, "image/jpeg", saved.MimeType)
	require.NotNil(t, saved.Folder)
	assert.Equal(t, "banners", *saved.Folder)
	assert.Equal(t, "banners/"+saved.Filename, saved.Key)

	// Small images are not enlarged.
	assert.Equal(t, 400, saved.Width)
	assert.Equal(t, 300, saved.Height)

	written, err := os.ReadFile(saved.AbsPath)
	require.NoError(t, err)
	assert.Equal(t, saved.SizeBytes, int64(len(written)))
}

func TestSaveImageResizesLargeImages(t *testing.T) {
	s := testStore(t, 64*1024*1024)
	data := pngBytes(t, 3200, 800)

	saved, err := s.SaveImage(7, "", data)
	require.NoError(t, err)

	assert.LessOrEqual(t, saved.Width, TargetMax)
	assert.LessOrEqual(t, saved.Height, TargetMax)
	// Aspect ratio held at 4:1.
	assert.Equal(t, 1600, saved.Width)
	assert.Equal(t, 400, saved.Height)
	assert.Nil(t, saved.Folder)
	assert.Equal(t, saved.Filename, saved.Key)
}

func TestSaveImageRejectsOversizeFile(t *testing.T) {
	s := testStore(t, 16)
	_, err := s.SaveImage(7, "", pngBytes(t, 100, 100))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	s := testStore(t, 8*1024*1024)
	_, err := s.SaveImage(7, "", []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSaveImageRejectsHugeDimensions(t *testing.T) {
	s := testStore(t, 64*1024*1024)
	_, err := s.SaveImage(7, "", pngBytes(t, MaxDimension+1, 1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestSavedKeySurvivesServeSanitizing(t *testing.T) {
	s := testStore(t, 8*1024*1024)

	saved, err := s.SaveImage(7, "banners", pngBytes(t, 200, 200))
	require.NoError(t, err)

	// The serve path sanitizes the requested key before the lookup; a
	// recorded key must come back byte-identical or delivery can never match.
	require.Equal(t, saved.Key, SafeSubpath(saved.Key))
	assert.Equal(t, saved.AbsPath, s.ResolvePath(7, saved.Key))

	served, err := os.ReadFile(s.ResolvePath(7, saved.Key))
	require.NoError(t, err)
	assert.Equal(t, saved.SizeBytes, int64(len(served)))
}

func TestResolvePathStaysUnderStoreDir(t *testing.T) {
	s := testStore(t, 8*1024*1024)
	path := s.ResolvePath(7, "../../9/secret.jpg")
	assert.NotContains(t, path, "..")
	assert.Contains(t, path, string(os.PathSeparator)+"7"+string(os.PathSeparator))
}
