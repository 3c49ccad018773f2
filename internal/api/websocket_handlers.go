package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"photoshare/internal/websocket"
)

// ServeWsHandler attaches a gallery viewer to the live feed. Anonymous
// viewers are allowed. With ?since=<event id> the events after that id are
// replayed before live ones.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	var sinceID int64 = -1
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		id, err := strconv.ParseInt(sinceStr, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, "Invalid 'since' parameter, must be a number", http.StatusBadRequest)
			return
		}
		sinceID = id
	}

	var userID int64
	if user := GetUserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, userID)

	if sinceID >= 0 {
		events, err := s.store.GetEventsSince(r.Context(), sinceID)
		if err != nil {
			s.log.Error(r.Context(), "failed to load events for replay", "since", sinceID, "error", err)
		}
		for _, event := range events {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if !client.Queue(data) {
				break
			}
		}
	}

	if !s.wsHub.Attach(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
