package alarm

import (
	"net/http"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/realtime"
)

// stream serves the SSE feed: a full snapshot on connect, then every published event.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := s.deps.Events.Subscribe()
	defer s.deps.Events.Unsubscribe(sub)

	snapshot := map[string]any{
		realtime.EventTick:         clock.Read(s.deps.Clock.Now()),
		realtime.EventAlarms:       s.alarmViews(),
		realtime.EventNotification: s.deps.Notification.View(),
	}

	for _, name := range []string{realtime.EventTick, realtime.EventAlarms, realtime.EventNotification} {
		event, err := realtime.Encode(name, snapshot[name])
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err = realtime.WriteEvent(w, event); err != nil {
			return
		}
	}

	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}

			if err := realtime.WriteEvent(w, event); err != nil {
				return
			}

			flusher.Flush()
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
