package storage

import (
	"context"
	"fmt"

	"photoshare/internal/config"
)

// New builds the backend named by cfg.Backend. The choice is made once per
// process.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStorage, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocalStorage(cfg.Path, cfg.PublicPrefix)
	case config.BackendInline:
		return NewInlineStorage(), nil
	case config.BackendRemote:
		client, err := newObjectClient(ctx, cfg.Remote)
		if err != nil {
			return nil, err
		}
		return NewRemoteStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newObjectClient(ctx context.Context, cfg config.RemoteStorageConfig) (ObjectClient, error) {
	switch cfg.Driver {
	case config.DriverS3:
		return NewS3Client(ctx, cfg)
	case config.DriverMinio:
		return NewMinioClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown remote storage driver %q", cfg.Driver)
	}
}
