package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"photoshare/internal/auth"
	"photoshare/internal/models"
)

type contextKey string

const (
	userContextKey  = contextKey("user")
	flashContextKey = contextKey("flash")

	sessionCookieName = "session"
)

// SessionMiddleware resolves the session cookie into the current user.
// A bad token or a vanished account clears the cookie and the request
// continues anonymously.
func (s *Server) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseSession(cookie.Value, s.config.Session.Secret)
		if err != nil {
			s.clearSession(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.Lookup(r.Context(), claims.UserID)
		if err != nil {
			s.log.Error(r.Context(), "failed to load session user", "user_id", claims.UserID, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if user == nil {
			s.clearSession(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin gates routes that need a user.
func (s *Server) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			s.redirectWithFlash(w, r, "/login", flashError, "You must be logged in first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MethodOverride lets HTML forms send PUT and DELETE as
// POST /path?_method=PUT.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get("_method")); m {
			case http.MethodPut, http.MethodDelete, http.MethodPatch:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}

func (s *Server) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := auth.IssueSession(user, s.config.Session.Secret, s.config.Session.TTL)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.config.Session.TTL),
		MaxAge:   int(s.config.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
