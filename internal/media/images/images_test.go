package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/wordbookapp/wordbook-server/internal/errors"
)

// testPNG renders a small two-tone image so the blurhash has something to
// encode.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.RGBA{R: 220, G: 40, B: 40, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 40, G: 40, B: 220, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateUpload(t *testing.T) {
	data := testPNG(t, 32, 24)

	upload, err := ValidateUpload(data)
	require.NoError(t, err)
	assert.Equal(t, "png", upload.Format)
	assert.Equal(t, 32, upload.Width)
	assert.Equal(t, 24, upload.Height)
	assert.NotEmpty(t, upload.BlurHash)
}

func TestValidateUpload_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("definitely not pixels")},
		{"oversized", make([]byte, MaxUploadSize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateUpload(tt.data)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeBadRequest, domainErr.Code)
		})
	}
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	data := testPNG(t, 200, 150)

	first, err := ComputeBlurHash(data)
	require.NoError(t, err)
	second, err := ComputeBlurHash(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStorage_RoundTrip(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "cards")
	require.NoError(t, err)

	upload, err := ValidateUpload(testPNG(t, 16, 16))
	require.NoError(t, err)

	filename, err := storage.Save("card-001", upload)
	require.NoError(t, err)
	assert.Equal(t, "card-001.png", filename)
	assert.True(t, storage.Exists("card-001"))

	data, format, err := storage.Get("card-001")
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, upload.Data, data)

	hash, err := storage.Hash("card-001")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	require.NoError(t, storage.Delete("card-001"))
	assert.False(t, storage.Exists("card-001"))

	// Deleting again is a no-op.
	assert.NoError(t, storage.Delete("card-001"))
}

func TestStorage_SaveReplacesOldFormat(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "cards")
	require.NoError(t, err)

	upload, err := ValidateUpload(testPNG(t, 16, 16))
	require.NoError(t, err)
	_, err = storage.Save("card-001", upload)
	require.NoError(t, err)

	// Simulate a different incoming format by relabeling the upload.
	relabeled := *upload
	relabeled.Format = "gif"
	filename, err := storage.Save("card-001", &relabeled)
	require.NoError(t, err)
	assert.Equal(t, "card-001.gif", filename)

	// Only one file remains.
	_, format, err := storage.Get("card-001")
	require.NoError(t, err)
	assert.Equal(t, "gif", format)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("jpeg"))
	assert.Equal(t, "image/webp", ContentType("webp"))
	assert.Equal(t, "application/octet-stream", ContentType("tiff"))
}
