package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const (
	flashCookieName = "flash"

	flashSuccess = "success"
	flashError   = "error"
)

// Flash holds one-shot messages carried across a redirect.
type Flash struct {
	Success []string `json:"success,omitempty"`
	Error   []string `json:"error,omitempty"`
}

func (f Flash) Empty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}

func encodeFlash(f Flash) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodeFlash(value string) (Flash, error) {
	var f Flash
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return f, err
	}
	err = json.Unmarshal(data, &f)
	return f, err
}

// FlashMiddleware moves the flash cookie into the request context and
// expires it, so each message renders once.
func (s *Server) FlashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(flashCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

		f, err := decodeFlash(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), flashContextKey, f)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetFlashFromContext(ctx context.Context) Flash {
	f, _ := ctx.Value(flashContextKey).(Flash)
	return f
}

func (s *Server) setFlash(w http.ResponseWriter, kind, message string) {
	var f Flash
	switch kind {
	case flashSuccess:
		f.Success = []string{message}
	default:
		f.Error = []string{message}
	}

	value, err := encodeFlash(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, kind, message string) {
	s.setFlash(w, kind, message)
	http.Redirect(w, r, url, http.StatusFound)
}
