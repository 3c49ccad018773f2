package api

import (
	"bytes"
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"photoshare/internal/auth"
	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/logging"
	"photoshare/internal/models"
	"photoshare/internal/photos"
	"photoshare/internal/storage"
	"photoshare/internal/users"
	"photoshare/internal/websocket"
)

var (
	testServer  *Server
	testHandler http.Handler
)

// pngBytes is enough for content sniffing to report image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(context.Background())

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Could not apply migrations: %s", err)
	}

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := &config.Config{
		Session: config.SessionConfig{Secret: "api_test_secret", TTL: time.Hour},
		Storage: config.StorageConfig{
			Backend:        config.BackendLocal,
			Path:           tempDir,
			PublicPrefix:   "/uploads",
			MaxUploadBytes: 1 << 20,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.PublicPrefix)
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	logger := logging.Nop()
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	store := database.NewStore(pool, wsHub)
	photoService, err := photos.NewService(photos.NewPostgresRepository(store), localStorage, logger)
	if err != nil {
		log.Fatalf("Could not create photo service: %s", err)
	}

	testServer, err = NewServer(cfg, store, users.NewService(store), photoService, wsHub, logger)
	if err != nil {
		log.Fatalf("Could not create server: %s", err)
	}
	testHandler = testServer.Routes()

	return m.Run()
}

// createTestUser registers a fresh user and returns it with a valid
// session cookie.
func createTestUser(t *testing.T) (*models.User, *http.Cookie) {
	t.Helper()
	suffix := uuid.NewString()[:8]

	user, err := testServer.users.Register(context.Background(), users.SignupInput{
		Username: "user_" + suffix,
		Email:    suffix + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	token, err := auth.IssueSession(user, testServer.config.Session.Secret, time.Hour)
	require.NoError(t, err)

	return user, &http.Cookie{Name: sessionCookieName, Value: token}
}

func createTestPhoto(t *testing.T, owner *models.User, title string) *models.Photo {
	t.Helper()
	photo, err := testServer.photos.Create(context.Background(), owner, title, &photos.Upload{
		Data:        pngBytes,
		ContentType: "image/png",
	})
	require.NoError(t, err)
	return photo
}

func serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rr := httptest.NewRecorder()
	testHandler.ServeHTTP(rr, req)
	return rr
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// flashFrom decodes the flash cookie set by a response.
func flashFrom(t *testing.T, rr *httptest.ResponseRecorder) Flash {
	t.Helper()
	var f Flash
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookieName && c.Value != "" {
			decoded, err := decodeFlash(c.Value)
			require.NoError(t, err)
			f = decoded
		}
	}
	return f
}

func sessionFrom(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}
