package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"photoshare/internal/models"
	"photoshare/internal/photos"
)

//go:embed templates
var templateFS embed.FS

var pages = []string{
	"photos/index",
	"photos/new",
	"photos/show",
	"photos/edit",
	"user/signup",
	"user/login",
}

type views struct {
	pages map[string]*template.Template
}

// pageData is what every template receives. CurrentUser is filled in by
// render, and Flash is merged with the messages carried by the request.
type pageData struct {
	Title       string
	CurrentUser *models.User
	Flash       Flash
	Photos      []models.Photo
	Photo       *models.Photo
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{
		"canMutate": photos.CanMutate,
	}

	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	t, ok := s.views.pages[name]
	if !ok {
		s.log.Error(r.Context(), "unknown template", "template", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data.CurrentUser = GetUserFromContext(r.Context())
	carried := GetFlashFromContext(r.Context())
	data.Flash.Success = append(carried.Success, data.Flash.Success...)
	data.Flash.Error = append(carried.Error, data.Flash.Error...)

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.log.Error(r.Context(), "failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
