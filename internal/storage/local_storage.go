package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"photoshare/internal/models"
)

// LocalStorage keeps images on disk under basePath and references them by
// the URL they are served from (publicPrefix + relative path).
type LocalStorage struct {
	basePath     string
	publicPrefix string
	generateID   func() string
}

// CleanPublicPrefix returns the URL path local images are served under:
// one leading slash, no trailing slash, "/uploads" when blank.
func CleanPublicPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/uploads"
	}
	return "/" + prefix
}

func NewLocalStorage(basePath, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}

	generateID, err := newIDGenerator()
	if err != nil {
		return nil, err
	}

	return &LocalStorage{
		basePath:     basePath,
		publicPrefix: CleanPublicPrefix(publicPrefix),
		generateID:   generateID,
	}, nil
}

func (ls *LocalStorage) Kind() models.ImageKind {
	return models.ImageLocal
}

func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func (ls *LocalStorage) PublicPrefix() string {
	return ls.publicPrefix
}

func (ls *LocalStorage) Store(ctx context.Context, data []byte, contentType string) (models.ImageRef, error) {
	if err := checkPayload(data); err != nil {
		return models.ImageRef{}, err
	}
	id := ls.generateID()
	rel := path.Join(id[:2], id+extensionFor(contentType))
	filePath := filepath.Join(ls.basePath, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return models.ImageRef{
		Kind:        models.ImageLocal,
		URL:         ls.publicPrefix + "/" + rel,
		ContentType: contentType,
	}, nil
}

func (ls *LocalStorage) Retrieve(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	filePath, err := ls.pathFromRef(ref)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file %s not found: %w", ref.URL, ErrNotFound)
		}
		return nil, "", err
	}

	return data, ref.ContentType, nil
}

func (ls *LocalStorage) Delete(ctx context.Context, ref models.ImageRef) error {
	filePath, err := ls.pathFromRef(ref)
	if err != nil {
		// A reference this backend cannot resolve has nothing on disk to remove.
		return nil
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return nil
}

func (ls *LocalStorage) pathFromRef(ref models.ImageRef) (string, error) {
	if ref.Kind != models.ImageLocal {
		return "", fmt.Errorf("not a local image reference: %w", ErrNotFound)
	}

	rel, ok := strings.CutPrefix(ref.URL, ls.publicPrefix+"/")
	if !ok || rel == "" {
		return "", fmt.Errorf("url %q outside %s: %w", ref.URL, ls.publicPrefix, ErrNotFound)
	}

	clean := path.Clean("/" + rel)[1:]
	if clean != rel {
		return "", fmt.Errorf("invalid image path %q: %w", ref.URL, ErrNotFound)
	}

	return filepath.Join(ls.basePath, filepath.FromSlash(clean)), nil
}
