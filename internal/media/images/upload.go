// Package images provides validation, placeholder generation, and storage
// for uploaded wordbook and card illustrations.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/wordbookapp/wordbook-server/internal/errors"
)

// MaxUploadSize caps uploaded images at 5 MB.
const MaxUploadSize = 5 << 20

// Upload is a validated image ready for storage.
type Upload struct {
	Data     []byte
	Format   string // "jpeg", "png", "gif", "webp"
	Width    int
	Height   int
	BlurHash string
}

// ValidateUpload checks size and format by decoding the actual bytes, never
// trusting a client-supplied content type, and computes the BlurHash
// placeholder.
func ValidateUpload(data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, errors.BadRequest("image is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, errors.BadRequestf("image exceeds %d bytes", MaxUploadSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.BadRequest("unsupported image format").WithCause(err)
	}

	switch format {
	case "jpeg", "png", "gif", "webp":
	default:
		return nil, errors.BadRequestf("unsupported image format %q", format)
	}

	hash, err := ComputeBlurHash(data)
	if err != nil {
		return nil, fmt.Errorf("compute blurhash: %w", err)
	}

	return &Upload{
		Data:     data,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		BlurHash: hash,
	}, nil
}
