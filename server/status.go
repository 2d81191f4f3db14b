package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
)

func (s *GameServer) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(HTTP_SUCCESS)
		_, _ = w.Write([]byte("ok"))
	}
}

func (s *GameServer) HandleSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, ok := s.statuses()
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		writeJSON(w, statuses)
	}
}

// HandleSession serves one session, addressed by the :id route parameter.
func (s *GameServer) HandleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(way.Param(r.Context(), "id"))
		if err != nil {
			w.WriteHeader(HTTP_BAD_REQUEST)
			return
		}
		statuses, ok := s.statuses()
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		for _, status := range statuses {
			if status.Id == id {
				writeJSON(w, status)
				return
			}
		}
		w.WriteHeader(HTTP_NOT_FOUND)
	}
}

func (s *GameServer) statuses() ([]SessionStatus, bool) {
	reply := make(chan []SessionStatus, 1)
	select {
	case s.StatusRequests <- StatusRequest{Reply: reply}:
	case <-time.After(200 * time.Millisecond):
		log.Warn("StatusRequests TIMEOUTED")
		return nil, false
	}
	return <-reply, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writing status: %v", err)
	}
}
