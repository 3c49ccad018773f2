package photos

import (
	"context"

	"photoshare/internal/database"
	"photoshare/internal/models"
)

type Repository interface {
	PhotoExists(ctx context.Context, id string) (bool, error)
	ListPhotos(ctx context.Context) ([]models.Photo, error)
	GetPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of writes that happen together with their journal entry.
type Tx interface {
	CreatePhoto(ctx context.Context, arg database.CreatePhotoParams) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, arg database.UpdatePhotoParams) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id string) (bool, error)
	LogEvent(ctx context.Context, userID int64, eventType string, payload interface{}) error
}

type postgresRepository struct {
	*database.Store
}

func NewPostgresRepository(store *database.Store) Repository {
	return &postgresRepository{Store: store}
}

func (r *postgresRepository) WithTx(ctx context.Context, fn func(Tx) error) error {
	return r.ExecTx(ctx, func(q *database.Queries) error {
		return fn(q)
	})
}
