package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"photoshare/internal/photos"
)

var (
	errImageTooLarge = errors.New("image is too large")
	errNotAnImage    = errors.New("uploaded file is not an image")
)

func (s *Server) ListPhotosHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.photos.List(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "failed to list photos", "error", err)
		s.render(w, r, http.StatusInternalServerError, "photos/index", pageData{
			Title: "Gallery",
			Flash: Flash{Error: []string{"Something went wrong"}},
		})
		return
	}

	s.render(w, r, http.StatusOK, "photos/index", pageData{Title: "Gallery", Photos: list})
}

func (s *Server) NewPhotoFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "photos/new", pageData{Title: "Upload"})
}

func (s *Server) CreatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := s.parseUploadForm(w, r); err != nil {
		s.redirectWithFlash(w, r, "/photos/new", flashError, uploadErrorMessage(err))
		return
	}

	image, err := s.readUpload(r, "image")
	if err != nil {
		s.redirectWithFlash(w, r, "/photos/new", flashError, uploadErrorMessage(err))
		return
	}

	photo, err := s.photos.Create(r.Context(), user, r.FormValue("title"), image)
	if err != nil {
		if errors.Is(err, photos.ErrValidation) {
			s.redirectWithFlash(w, r, "/photos/new", flashError, "Title and Image are required")
			return
		}
		s.log.Error(r.Context(), "failed to create photo", "user_id", user.ID, "error", err)
		s.redirectWithFlash(w, r, "/photos/new", flashError, "Could not upload photo")
		return
	}

	s.log.Debug(r.Context(), "photo uploaded", "photo_id", photo.ID)
	s.redirectWithFlash(w, r, "/photos", flashSuccess, "Photo uploaded successfully!")
}

func (s *Server) ShowPhotoHandler(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoId")

	photo, err := s.photos.Get(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, photos.ErrNotFound) {
			s.redirectWithFlash(w, r, "/photos", flashError, "Photo not found")
			return
		}
		s.log.Error(r.Context(), "failed to load photo", "photo_id", photoID, "error", err)
		s.redirectWithFlash(w, r, "/photos", flashError, "Something went wrong")
		return
	}

	s.render(w, r, http.StatusOK, "photos/show", pageData{Title: photo.Title, Photo: photo})
}

func (s *Server) EditPhotoFormHandler(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoId")

	photo, err := s.photos.GetForEdit(r.Context(), photoID, GetUserFromContext(r.Context()))
	if err != nil {
		s.handlePhotoError(w, r, err, "edit")
		return
	}

	s.render(w, r, http.StatusOK, "photos/edit", pageData{Title: "Edit " + photo.Title, Photo: photo})
}

func (s *Server) UpdatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoId")
	editURL := "/photos/" + photoID + "/edit"

	if err := s.parseUploadForm(w, r); err != nil {
		s.redirectWithFlash(w, r, editURL, flashError, uploadErrorMessage(err))
		return
	}

	image, err := s.readUpload(r, "image")
	if err != nil {
		s.redirectWithFlash(w, r, editURL, flashError, uploadErrorMessage(err))
		return
	}

	var title *string
	if _, ok := r.Form["title"]; ok {
		t := r.FormValue("title")
		title = &t
	}

	_, err = s.photos.Update(r.Context(), photoID, GetUserFromContext(r.Context()), title, image)
	if err != nil {
		if errors.Is(err, photos.ErrValidation) {
			s.redirectWithFlash(w, r, editURL, flashError, "Title and Image are required")
			return
		}
		s.handlePhotoError(w, r, err, "update")
		return
	}

	s.redirectWithFlash(w, r, "/photos/"+photoID, flashSuccess, "Photo updated successfully!")
}

func (s *Server) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoId")

	if err := s.photos.Remove(r.Context(), photoID, GetUserFromContext(r.Context())); err != nil {
		s.handlePhotoError(w, r, err, "delete")
		return
	}

	s.redirectWithFlash(w, r, "/photos", flashSuccess, "Photo deleted successfully!")
}

// PhotoImageHandler streams the stored bytes for any backend.
func (s *Server) PhotoImageHandler(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoId")

	data, contentType, err := s.photos.Image(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, photos.ErrNotFound) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		s.log.Error(r.Context(), "failed to retrieve image", "photo_id", photoID, "error", err)
		http.Error(w, "Failed to retrieve image", http.StatusInternalServerError)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}

// handlePhotoError turns guard and lookup failures into a flash and a
// redirect to the gallery. action names the attempted mutation.
func (s *Server) handlePhotoError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, photos.ErrUnauthenticated):
		s.redirectWithFlash(w, r, "/login", flashError, "You must be logged in first")
	case errors.Is(err, photos.ErrNotFound):
		s.redirectWithFlash(w, r, "/photos", flashError, "Photo not found")
	case errors.Is(err, photos.ErrForbidden):
		s.redirectWithFlash(w, r, "/photos", flashError, fmt.Sprintf("You do not have permission to %s this photo", action))
	default:
		s.log.Error(r.Context(), "photo operation failed", "action", action, "photo_id", chi.URLParam(r, "photoId"), "error", err)
		message := "Something went wrong"
		if action != "edit" {
			message = fmt.Sprintf("Could not %s photo", action)
		}
		s.redirectWithFlash(w, r, "/photos", flashError, message)
	}
}

func (s *Server) parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	limit := s.config.Storage.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errImageTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return r.ParseForm()
		}
		return err
	}
	return nil
}

// readUpload returns nil when the field is absent or empty.
func (s *Server) readUpload(r *http.Request, field string) (*photos.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > s.config.Storage.MaxUploadBytes {
		return nil, errImageTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		declared := header.Header.Get("Content-Type")
		if !strings.HasPrefix(declared, "image/") {
			return nil, errNotAnImage
		}
		contentType = declared
	}

	return &photos.Upload{Data: data, ContentType: contentType}, nil
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, errImageTooLarge):
		return "Image is too large"
	case errors.Is(err, errNotAnImage):
		return "Only image files can be uploaded"
	default:
		return "Could not read the uploaded form"
	}
}
