package alarm

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/realtime"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
)

func (s *Server) listAlarms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.alarmViews())
}

func (s *Server) addAlarm(w http.ResponseWriter, r *http.Request) {
	var input alarms.NewAlarm
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Alarms.Add(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.publishAlarms(r)
	writeJSON(w, http.StatusCreated, s.alarmView(created))
}

func (s *Server) removeAlarm(w http.ResponseWriter, r *http.Request) {
	if s.deps.Alarms.Remove(r.Context(), chi.URLParam(r, "id")) {
		s.publishAlarms(r)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	toggled, ok := s.deps.Alarms.Toggle(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.publishAlarms(r)
	writeJSON(w, http.StatusOK, s.alarmView(toggled))
}

func (s *Server) listSounds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SoundsResponse{
		Sounds:     s.deps.Sounds.List(),
		Previewing: s.deps.Sounds.PlayingID(),
	})
}

func (s *Server) previewSound(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sounds.Preview(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stopPreview(w http.ResponseWriter, _ *http.Request) {
	s.deps.Sounds.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readClock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, clock.Read(s.deps.Clock.Now()))
}

func (s *Server) notificationView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Notification.View())
}

func (s *Server) beginPuzzle(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Notification.BeginPuzzle(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) cancelPuzzle(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Notification.CancelPuzzle(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectDot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, errMalformedBody)
		return
	}

	selection, err := s.deps.Notification.SelectDot(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, selection)
}

func (s *Server) movePointer(w http.ResponseWriter, r *http.Request) {
	var pointer PointerRequest
	if err := decodeJSON(r, &pointer); err != nil {
		writeError(w, r, err)
		return
	}

	shown, err := s.deps.Notification.MovePointer(pointer.X, pointer.Y)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PointerResponse{Shown: shown})
}

func (s *Server) leavePointer(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Notification.LeavePointer(); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dismiss(w http.ResponseWriter, r *http.Request) {
	dismissed, err := s.deps.Notification.Dismiss(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.publishAlarms(r)
	writeJSON(w, http.StatusOK, DismissResponse{Alarm: dismissed})
}

func (s *Server) snooze(w http.ResponseWriter, r *http.Request) {
	until, err := s.deps.Notification.Snooze(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.publishAlarms(r)
	writeJSON(w, http.StatusOK, SnoozeResponse{Until: until})
}

// alarmViews renders the sorted alarm list.
func (s *Server) alarmViews() []AlarmView {
	list := s.deps.Alarms.List()
	views := make([]AlarmView, 0, len(list))

	for _, a := range list {
		views = append(views, s.alarmView(a))
	}

	return views
}

func (s *Server) alarmView(a domain.Alarm) AlarmView {
	view := AlarmView{
		Alarm:       a,
		DisplayTime: a.DisplayTime(),
	}

	if until, ok := s.deps.Alarms.SnoozedUntil(a.ID); ok {
		view.SnoozedUntil = &until
	}

	return view
}

// PublishAlarms sends the current alarm list to event subscribers.
func (s *Server) PublishAlarms() error {
	return s.deps.Events.Publish(realtime.EventAlarms, s.alarmViews())
}

func (s *Server) publishAlarms(r *http.Request) {
	if err := s.PublishAlarms(); err != nil {
		logger.WarnKV(r.Context(), "Failed to publish alarms", "error", err)
	}
}
