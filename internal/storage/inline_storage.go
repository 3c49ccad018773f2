package storage

import (
	"context"
	"fmt"

	"photoshare/internal/models"
)

// InlineStorage keeps the bytes inside the reference itself, so the photo
// record is the only place they live.
type InlineStorage struct{}

func NewInlineStorage() *InlineStorage {
	return &InlineStorage{}
}

func (s *InlineStorage) Kind() models.ImageKind {
	return models.ImageInline
}

func (s *InlineStorage) Store(ctx context.Context, data []byte, contentType string) (models.ImageRef, error) {
	if err := checkPayload(data); err != nil {
		return models.ImageRef{}, err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	return models.ImageRef{
		Kind:        models.ImageInline,
		Data:        buf,
		ContentType: contentType,
	}, nil
}

func (s *InlineStorage) Retrieve(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	if ref.Kind != models.ImageInline || len(ref.Data) == 0 {
		return nil, "", fmt.Errorf("no inline image data: %w", ErrNotFound)
	}
	return ref.Data, ref.ContentType, nil
}

// Delete is a no-op: removing the record removes the bytes.
func (s *InlineStorage) Delete(ctx context.Context, ref models.ImageRef) error {
	return nil
}
