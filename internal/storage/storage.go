package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/jaevor/go-nanoid"

	"photoshare/internal/models"
)

var (
	ErrNotFound     = errors.New("image not found")
	ErrStorageWrite = errors.New("image storage write failed")
)

// ImageStorage persists image payloads and hands back a reference the photo
// record carries. Delete must be idempotent.
type ImageStorage interface {
	Kind() models.ImageKind
	Store(ctx context.Context, data []byte, contentType string) (models.ImageRef, error)
	Retrieve(ctx context.Context, ref models.ImageRef) ([]byte, string, error)
	Delete(ctx context.Context, ref models.ImageRef) error
}

var preferredExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
	"image/bmp":  ".bmp",
}

// extensionFor picks a file extension from the bare media type. The content
// type itself is stored verbatim in the reference.
func extensionFor(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if mediaType == "" {
		return ""
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func checkPayload(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrStorageWrite)
	}
	return nil
}

func newIDGenerator() (func() string, error) {
	generateID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return generateID, nil
}
