package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"photoshare/internal/models"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectClient is the slice of an object store API the remote backend needs.
// GetObject reports missing keys with ErrObjectNotFound; RemoveObject must
// succeed for keys that no longer exist.
type ObjectClient interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, string, error)
	RemoveObject(ctx context.Context, key string) error
	ObjectURL(key string) string
}

type RemoteStorage struct {
	client ObjectClient
	now    func() time.Time
}

func NewRemoteStorage(client ObjectClient) *RemoteStorage {
	return &RemoteStorage{client: client, now: time.Now}
}

func (s *RemoteStorage) Kind() models.ImageKind {
	return models.ImageRemote
}

func (s *RemoteStorage) objectKey(contentType string) string {
	d := s.now().UTC()
	return fmt.Sprintf("photos/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), extensionFor(contentType))
}

func (s *RemoteStorage) Store(ctx context.Context, data []byte, contentType string) (models.ImageRef, error) {
	if err := checkPayload(data); err != nil {
		return models.ImageRef{}, err
	}
	key := s.objectKey(contentType)
	if err := s.client.PutObject(ctx, key, data, contentType); err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return models.ImageRef{
		Kind:        models.ImageRemote,
		URL:         s.client.ObjectURL(key),
		Filename:    key,
		ContentType: contentType,
	}, nil
}

func (s *RemoteStorage) Retrieve(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	if ref.Kind != models.ImageRemote || ref.Filename == "" {
		return nil, "", fmt.Errorf("not a remote image reference: %w", ErrNotFound)
	}

	data, _, err := s.client.GetObject(ctx, ref.Filename)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, "", fmt.Errorf("object %s: %w", ref.Filename, ErrNotFound)
		}
		return nil, "", err
	}

	return data, ref.ContentType, nil
}

func (s *RemoteStorage) Delete(ctx context.Context, ref models.ImageRef) error {
	if ref.Kind != models.ImageRemote || ref.Filename == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, ref.Filename); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return nil
}
