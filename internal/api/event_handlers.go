package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// GetEventsHandler returns up to 100 feed events after ?since=<id>, for
// clients catching up after a dropped websocket.
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid 'since' parameter, must be a number", http.StatusBadRequest)
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), sinceID)
	if err != nil {
		s.log.Error(r.Context(), "failed to retrieve events", "since", sinceID, "error", err)
		http.Error(w, "Failed to retrieve events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
