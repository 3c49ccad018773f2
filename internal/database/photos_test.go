package database

import (
	"context"
	"testing"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/require"

	"photoshare/internal/models"
)

func newPhotoID(t *testing.T) string {
	t.Helper()
	generateID, err := nanoid.Standard(21)
	require.NoError(t, err)
	return generateID()
}

func createTestPhoto(t *testing.T, owner *models.User, title string, image models.ImageRef) *models.Photo {
	t.Helper()
	photo, err := testStore.CreatePhoto(context.Background(), CreatePhotoParams{
		ID:         newPhotoID(t),
		Title:      title,
		Image:      image,
		UploadedBy: owner.ID,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	return photo
}

func TestCreatePhoto(t *testing.T) {
	owner := createRandomUser(t, "uploader")
	image := models.ImageRef{Kind: models.ImageInline, Data: []byte{1, 2, 3}, ContentType: "image/png"}

	photo := createTestPhoto(t, owner, "Sunset", image)

	require.Equal(t, "Sunset", photo.Title)
	require.Equal(t, owner.ID, photo.UploadedBy)
	require.Equal(t, image, photo.Image)
	require.NotNil(t, photo.Owner)
	require.Equal(t, owner.Username, photo.Owner.Username)
	require.WithinDuration(t, time.Now(), photo.CreatedAt, 5*time.Second)
}

func TestCreatePhoto_UnknownOwner(t *testing.T) {
	_, err := testStore.CreatePhoto(context.Background(), CreatePhotoParams{
		ID:         newPhotoID(t),
		Title:      "Ghost",
		Image:      models.ImageRef{Kind: models.ImageLocal, URL: "/uploads/ab/x.jpg", ContentType: "image/jpeg"},
		UploadedBy: -42,
		CreatedAt:  time.Now(),
	})
	require.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestGetPhotoByID(t *testing.T) {
	ctx := context.Background()
	owner := createRandomUser(t, "getter")
	image := models.ImageRef{
		Kind:        models.ImageRemote,
		URL:         "http://objects.test/b/photos/k.jpg",
		Filename:    "photos/k.jpg",
		ContentType: "image/jpeg",
	}
	created := createTestPhoto(t, owner, "Remote", image)

	found, err := testStore.GetPhotoByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, image.Filename, found.Image.Filename)
	require.Equal(t, models.ImageRemote, found.Image.Kind)
	require.Nil(t, found.Image.Data)

	missing, err := testStore.GetPhotoByID(ctx, "does-not-exist-000000")
	require.NoError(t, err)
	require.Nil(t, missing)

	exists, err := testStore.PhotoExists(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestListPhotos_NewestFirst(t *testing.T) {
	ctx := context.Background()
	owner := createRandomUser(t, "lister")
	image := models.ImageRef{Kind: models.ImageInline, Data: []byte("x"), ContentType: "image/gif"}

	older := createTestPhoto(t, owner, "Older", image)
	newer := createTestPhoto(t, owner, "Newer", image)

	photos, err := testStore.ListPhotos(ctx)
	require.NoError(t, err)

	positions := map[string]int{}
	for i, p := range photos {
		positions[p.ID] = i
		require.NotNil(t, p.Owner)
	}
	require.Contains(t, positions, older.ID)
	require.Contains(t, positions, newer.ID)
	require.Less(t, positions[newer.ID], positions[older.ID])
}

func TestUpdatePhoto_KeepsOwner(t *testing.T) {
	ctx := context.Background()
	owner := createRandomUser(t, "updater")
	created := createTestPhoto(t, owner, "Before", models.ImageRef{Kind: models.ImageInline, Data: []byte("a"), ContentType: "image/png"})

	newImage := models.ImageRef{Kind: models.ImageInline, Data: []byte("b"), ContentType: "image/webp"}
	updated, err := testStore.UpdatePhoto(ctx, UpdatePhotoParams{ID: created.ID, Title: "After", Image: newImage})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.Equal(t, newImage, updated.Image)
	require.Equal(t, owner.ID, updated.UploadedBy)
	require.Equal(t, created.CreatedAt.UTC(), updated.CreatedAt.UTC())

	missing, err := testStore.UpdatePhoto(ctx, UpdatePhotoParams{ID: "does-not-exist-000000", Title: "x", Image: newImage})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()
	owner := createRandomUser(t, "deleter")
	created := createTestPhoto(t, owner, "Doomed", models.ImageRef{Kind: models.ImageInline, Data: []byte("a"), ContentType: "image/png"})

	deleted, err := testStore.DeletePhoto(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	found, err := testStore.GetPhotoByID(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	deleted, err = testStore.DeletePhoto(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}
