package api

import (
	"errors"
	"net/http"

	"photoshare/internal/users"
)

func (s *Server) SignupFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "user/signup", pageData{Title: "Sign up"})
}

func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, "/signup", flashError, "Could not read the submitted form")
		return
	}

	user, err := s.users.Register(r.Context(), users.SignupInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if !errors.Is(err, users.ErrValidation) && !errors.Is(err, users.ErrCredential) {
			s.log.Error(r.Context(), "signup failed", "error", err)
		}
		s.redirectWithFlash(w, r, "/signup", flashError, users.Message(err))
		return
	}

	if err := s.startSession(w, user); err != nil {
		s.log.Error(r.Context(), "failed to issue session", "user_id", user.ID, "error", err)
		s.redirectWithFlash(w, r, "/login", flashError, "Something went wrong")
		return
	}

	s.log.Info(r.Context(), "user registered", "user_id", user.ID, "username", user.Username)
	s.redirectWithFlash(w, r, "/", flashSuccess, "Welcome!!!")
}

func (s *Server) LoginFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "user/login", pageData{Title: "Log in"})
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, "/login", flashError, "Could not read the submitted form")
		return
	}

	user, err := s.users.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, users.ErrCredential) {
			s.log.Error(r.Context(), "login failed", "error", err)
		}
		s.redirectWithFlash(w, r, "/login", flashError, users.Message(err))
		return
	}

	if err := s.startSession(w, user); err != nil {
		s.log.Error(r.Context(), "failed to issue session", "user_id", user.ID, "error", err)
		s.redirectWithFlash(w, r, "/login", flashError, "Something went wrong")
		return
	}

	s.redirectWithFlash(w, r, "/", flashSuccess, "Welcome back!")
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	s.redirectWithFlash(w, r, "/", flashSuccess, "You are logged out")
}
