package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/logging"
	"photoshare/internal/photos"
	"photoshare/internal/storage"
	"photoshare/internal/users"
	"photoshare/internal/websocket"
)

type Server struct {
	config *config.Config
	store  *database.Store
	users  *users.Service
	photos *photos.Service
	wsHub  *websocket.Hub
	log    logging.Logger
	views  *views
}

func NewServer(
	cfg *config.Config,
	store *database.Store,
	userService *users.Service,
	photoService *photos.Service,
	wsHub *websocket.Hub,
	log logging.Logger,
) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	return &Server{
		config: cfg,
		store:  store,
		users:  userService,
		photos: photoService,
		wsHub:  wsHub,
		log:    log,
		views:  v,
	}, nil
}

// Routes builds the full handler tree. Method override runs before
// routing so forms can reach PUT and DELETE routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		MaxAge:         300,
	}))
	r.Use(MethodOverride)
	r.Use(MetricsMiddleware)
	r.Use(s.FlashMiddleware)
	r.Use(s.SessionMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/photos", http.StatusFound)
	})

	if st := s.config.Storage; st.Backend == config.BackendLocal {
		prefix := storage.CleanPublicPrefix(st.PublicPrefix)
		r.Handle(prefix+"/*", http.StripPrefix(prefix, noListing(http.FileServer(http.Dir(st.Path)))))
	}

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)
	r.Get("/events", s.GetEventsHandler)

	r.Get("/signup", s.SignupFormHandler)
	r.Post("/signup", s.SignupHandler)
	r.Get("/login", s.LoginFormHandler)
	r.Post("/login", s.LoginHandler)

	r.Route("/photos", func(r chi.Router) {
		r.Get("/", s.ListPhotosHandler)
		r.Get("/{photoId}", s.ShowPhotoHandler)
		r.Get("/{photoId}/image", s.PhotoImageHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireLogin)
			r.Get("/new", s.NewPhotoFormHandler)
			r.Post("/", s.CreatePhotoHandler)
			r.Get("/{photoId}/edit", s.EditPhotoFormHandler)
			r.Put("/{photoId}", s.UpdatePhotoHandler)
			r.Delete("/{photoId}", s.DeletePhotoHandler)
		})
	})

	r.With(s.RequireLogin).Get("/logout", s.LogoutHandler)

	return r
}

// noListing hides directory indexes from the uploads file server.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
