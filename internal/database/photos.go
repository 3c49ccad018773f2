package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"photoshare/internal/models"
)

var ErrOwnerNotFound = errors.New("photo owner does not exist")

const photoColumns = `
	p.id, p.title, p.image_kind, p.image_url, p.image_filename, p.image_data,
	p.image_content_type, p.uploaded_by, p.created_at,
	u.id, u.username, u.email, u.created_at
`

type CreatePhotoParams struct {
	ID         string
	Title      string
	Image      models.ImageRef
	UploadedBy int64
	CreatedAt  time.Time
}

// UpdatePhotoParams replaces title and image. uploaded_by is never written
// after insert.
type UpdatePhotoParams struct {
	ID    string
	Title string
	Image models.ImageRef
}

func (q *Queries) CreatePhoto(ctx context.Context, arg CreatePhotoParams) (*models.Photo, error) {
	query := `
		WITH p AS (
			INSERT INTO photos (id, title, image_kind, image_url, image_filename, image_data, image_content_type, uploaded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT ` + photoColumns + `
		FROM p LEFT JOIN users u ON u.id = p.uploaded_by
	`
	row := q.db.QueryRow(ctx, query,
		arg.ID,
		arg.Title,
		string(arg.Image.Kind),
		arg.Image.URL,
		arg.Image.Filename,
		arg.Image.Data,
		arg.Image.ContentType,
		arg.UploadedBy,
		arg.CreatedAt,
	)

	photo, err := scanPhoto(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	return photo, nil
}

func (q *Queries) PhotoExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM photos WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListPhotos returns every photo, newest first, with its owner. Orphaned
// photos are kept and come back with a nil Owner.
func (q *Queries) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos p LEFT JOIN users u ON u.id = p.uploaded_by
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if photos == nil {
		return []models.Photo{}, nil
	}

	return photos, nil
}

func (q *Queries) GetPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos p LEFT JOIN users u ON u.id = p.uploaded_by
		WHERE p.id = $1
	`
	photo, err := scanPhoto(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return photo, nil
}

func (q *Queries) UpdatePhoto(ctx context.Context, arg UpdatePhotoParams) (*models.Photo, error) {
	query := `
		WITH p AS (
			UPDATE photos
			SET title = $2,
				image_kind = $3,
				image_url = $4,
				image_filename = $5,
				image_data = $6,
				image_content_type = $7
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + photoColumns + `
		FROM p LEFT JOIN users u ON u.id = p.uploaded_by
	`
	photo, err := scanPhoto(q.db.QueryRow(ctx, query,
		arg.ID,
		arg.Title,
		string(arg.Image.Kind),
		arg.Image.URL,
		arg.Image.Filename,
		arg.Image.Data,
		arg.Image.ContentType,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return photo, nil
}

func (q *Queries) DeletePhoto(ctx context.Context, id string) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var (
		photo        models.Photo
		kind         string
		ownerID      *int64
		ownerName    *string
		ownerEmail   *string
		ownerCreated *time.Time
	)

	err := row.Scan(
		&photo.ID,
		&photo.Title,
		&kind,
		&photo.Image.URL,
		&photo.Image.Filename,
		&photo.Image.Data,
		&photo.Image.ContentType,
		&photo.UploadedBy,
		&photo.CreatedAt,
		&ownerID,
		&ownerName,
		&ownerEmail,
		&ownerCreated,
	)
	if err != nil {
		return nil, err
	}
	photo.Image.Kind = models.ImageKind(kind)

	if ownerID != nil {
		photo.Owner = &models.User{
			ID:        *ownerID,
			Username:  *ownerName,
			Email:     *ownerEmail,
			CreatedAt: *ownerCreated,
		}
	}

	return &photo, nil
}
