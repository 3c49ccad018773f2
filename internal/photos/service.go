// Package photos holds the photo lifecycle: upload, browse, edit and delete,
// with the single-owner rule applied to every mutation.
package photos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaevor/go-nanoid"

	"photoshare/internal/database"
	"photoshare/internal/logging"
	"photoshare/internal/models"
	"photoshare/internal/storage"
)

var (
	ErrValidation      = errors.New("title and image are required")
	ErrNothingToUpdate = fmt.Errorf("%w: provide a new title or a new image", ErrValidation)
	ErrNotFound        = errors.New("photo not found")
	ErrForbidden       = errors.New("only the owner may modify this photo")
	ErrUnauthenticated = errors.New("login required")
)

const (
	EventPhotoCreated = "photo.created"
	EventPhotoUpdated = "photo.updated"
	EventPhotoDeleted = "photo.deleted"
)

// Upload is a raw image payload coming from a form.
type Upload struct {
	Data        []byte
	ContentType string
}

func (u *Upload) present() bool {
	return u != nil && len(u.Data) > 0
}

type Service struct {
	repo       Repository
	images     storage.ImageStorage
	log        logging.Logger
	now        func() time.Time
	generateID func() string
}

func NewService(repo Repository, images storage.ImageStorage, log logging.Logger) (*Service, error) {
	generateID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	return &Service{
		repo:       repo,
		images:     images,
		log:        log,
		now:        time.Now,
		generateID: generateID,
	}, nil
}

// CanMutate reports whether actor owns photo.
func CanMutate(actor *models.User, photo *models.Photo) bool {
	return actor != nil && photo != nil && actor.ID == photo.UploadedBy
}

func authorize(actor *models.User, photo *models.Photo) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !CanMutate(actor, photo) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) generateUniqueID(ctx context.Context) (string, error) {
	maxRetries := 10

	for i := 0; i < maxRetries; i++ {
		id := s.generateID()
		exists, err := s.repo.PhotoExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for photo existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

func (s *Service) Create(ctx context.Context, actor *models.User, title string, image *Upload) (*models.Photo, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	title = strings.TrimSpace(title)
	if title == "" || !image.present() {
		return nil, ErrValidation
	}

	id, err := s.generateUniqueID(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := s.images.Store(ctx, image.Data, image.ContentType)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		var err error
		photo, err = tx.CreatePhoto(ctx, database.CreatePhotoParams{
			ID:         id,
			Title:      title,
			Image:      ref,
			UploadedBy: actor.ID,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return err
		}
		return tx.LogEvent(ctx, actor.ID, EventPhotoCreated, eventPayload(photo))
	})
	if err != nil {
		s.discardImage(ctx, id, ref, "create failed")
		if errors.Is(err, database.ErrOwnerNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, err
	}

	s.log.Info(ctx, "photo created", "photo_id", photo.ID, "owner_id", actor.ID, "backend", string(ref.Kind))
	return photo, nil
}

func (s *Service) List(ctx context.Context) ([]models.Photo, error) {
	return s.repo.ListPhotos(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := s.repo.GetPhotoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrNotFound
	}
	return photo, nil
}

// GetForEdit loads a photo for its owner's edit form.
func (s *Service) GetForEdit(ctx context.Context, id string, actor *models.User) (*models.Photo, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	photo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Update changes the title and/or the image. A new image is stored first,
// the record is written next, and the previous image is deleted last on a
// best-effort basis.
func (s *Service) Update(ctx context.Context, id string, actor *models.User, newTitle *string, newImage *Upload) (*models.Photo, error) {
	photo, err := s.GetForEdit(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	title := photo.Title
	if newTitle != nil {
		title = strings.TrimSpace(*newTitle)
		if title == "" {
			return nil, ErrValidation
		}
	}
	replaceImage := newImage.present()
	if newTitle == nil && !replaceImage {
		return nil, ErrNothingToUpdate
	}

	oldImage := photo.Image
	image := oldImage
	if replaceImage {
		image, err = s.images.Store(ctx, newImage.Data, newImage.ContentType)
		if err != nil {
			return nil, err
		}
	}

	var updated *models.Photo
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		var err error
		updated, err = tx.UpdatePhoto(ctx, database.UpdatePhotoParams{
			ID:    id,
			Title: title,
			Image: image,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrNotFound
		}
		return tx.LogEvent(ctx, actor.ID, EventPhotoUpdated, eventPayload(updated))
	})
	if err != nil {
		if replaceImage {
			s.discardImage(ctx, id, image, "update failed")
		}
		return nil, err
	}

	if replaceImage {
		s.discardImage(ctx, id, oldImage, "replaced")
	}

	s.log.Info(ctx, "photo updated", "photo_id", id, "owner_id", actor.ID, "image_replaced", replaceImage)
	return updated, nil
}

// Remove deletes the record first and the stored image second, so a
// failure can leave an orphaned object but never a record without its image.
func (s *Service) Remove(ctx context.Context, id string, actor *models.User) error {
	photo, err := s.GetForEdit(ctx, id, actor)
	if err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		deleted, err := tx.DeletePhoto(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return tx.LogEvent(ctx, actor.ID, EventPhotoDeleted, eventPayload(photo))
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, id, photo.Image, "photo deleted")

	s.log.Info(ctx, "photo deleted", "photo_id", id, "owner_id", actor.ID)
	return nil
}

// Image returns the raw bytes of a photo's image.
func (s *Service) Image(ctx context.Context, id string) ([]byte, string, error) {
	photo, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, contentType, err := s.images.Retrieve(ctx, photo.Image)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, "", err
	}

	return data, contentType, nil
}

// discardImage is best-effort cleanup; failures are logged and swallowed.
func (s *Service) discardImage(ctx context.Context, photoID string, ref models.ImageRef, reason string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.log.Warn(ctx, "failed to delete image from storage",
			"photo_id", photoID,
			"reason", reason,
			"kind", string(ref.Kind),
			"filename", ref.Filename,
			"error", err,
		)
	}
}

func eventPayload(photo *models.Photo) map[string]any {
	return map[string]any{
		"id":          photo.ID,
		"title":       photo.Title,
		"uploaded_by": photo.UploadedBy,
		"image_src":   photo.ImageSrc(),
	}
}
