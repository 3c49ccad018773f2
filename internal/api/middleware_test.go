package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestMethodOverride(t *testing.T) {
	testCases := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodPost, "/x?_method=PUT", http.MethodPut},
		{http.MethodPost, "/x?_method=delete", http.MethodDelete},
		{http.MethodPost, "/x?_method=TRACE", http.MethodPost},
		{http.MethodGet, "/x?_method=DELETE", http.MethodGet},
		{http.MethodPost, "/x", http.MethodPost},
	}

	for _, tc := range testCases {
		var got string
		h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Method
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.target, nil))
		require.Equal(t, tc.want, got, tc.target)
	}
}

func TestFlash_ShownOnceThenCleared(t *testing.T) {
	value, err := encodeFlash(Flash{Error: []string{"Something <b>bad</b>"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := serve(req, &http.Cookie{Name: flashCookieName, Value: value})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Something &lt;b&gt;bad&lt;/b&gt;")

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "flash cookie should be expired once read")
}

func TestFlash_GarbageCookieIgnored(t *testing.T) {
	rr := serve(httptest.NewRequest(http.MethodGet, "/login", nil), &http.Cookie{Name: flashCookieName, Value: "%%%"})

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSession_InvalidTokenIsAnonymous(t *testing.T) {
	rr := serve(httptest.NewRequest(http.MethodGet, "/photos/new", nil), &http.Cookie{Name: sessionCookieName, Value: "not-a-jwt"})

	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestHealthCheck(t *testing.T) {
	rr := serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	rr := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `photoshare_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestUploads_ServesFilesWithoutListing(t *testing.T) {
	dir := filepath.Join(testServer.config.Storage.Path, "zz")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static.txt"), []byte("hello"), 0o644))

	rr := serve(httptest.NewRequest(http.MethodGet, "/uploads/zz/static.txt", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "hello", rr.Body.String())

	rr = serve(httptest.NewRequest(http.MethodGet, "/uploads/zz/", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.NotContains(t, rr.Body.String(), "static.txt")

	rr = serve(httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetEvents(t *testing.T) {
	owner, _ := createTestUser(t)
	createTestPhoto(t, owner, "Journaled")

	rr := serve(httptest.NewRequest(http.MethodGet, "/events?since=0", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var events []struct {
		EventType string          `json:"event_type"`
		Payload   json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.NotEmpty(t, events)

	rr = serve(httptest.NewRequest(http.MethodGet, "/events?since=abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeWs_ReceivesLiveEvents(t *testing.T) {
	srv := httptest.NewServer(testHandler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+srv.URL[len("http"):]+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return testServer.wsHub.Len() > 0 }, 2*time.Second, 10*time.Millisecond)

	owner, _ := createTestUser(t)
	photo := createTestPhoto(t, owner, "Live")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var event struct {
			EventType string `json:"event_type"`
			Payload   struct {
				ID string `json:"id"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		if event.Payload.ID == photo.ID {
			require.Equal(t, "photo.created", event.EventType)
			return
		}
	}
}

func TestServeWs_BadSince(t *testing.T) {
	rr := serve(httptest.NewRequest(http.MethodGet, "/ws?since=-4", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
