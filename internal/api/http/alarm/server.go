package alarm

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oshokin/alarm-clock/internal/audio"
	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/puzzle"
	"github.com/oshokin/alarm-clock/internal/realtime"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/notification"
)

// AlarmService is the alarm store as seen by the transport.
type AlarmService interface {
	List() []domain.Alarm
	Add(ctx context.Context, input alarms.NewAlarm) (domain.Alarm, error)
	Remove(ctx context.Context, id string) bool
	Toggle(ctx context.Context, id string) (domain.Alarm, bool)
	SnoozedUntil(id string) (time.Time, bool)
}

// NotificationService is the notification flow as seen by the transport.
type NotificationService interface {
	View() notification.View
	BeginPuzzle(ctx context.Context) (puzzle.View, error)
	SelectDot(ctx context.Context, id int) (puzzle.Selection, error)
	MovePointer(x, y float64) (bool, error)
	LeavePointer() error
	CancelPuzzle(ctx context.Context) error
	Dismiss(ctx context.Context) (*domain.Alarm, error)
	Snooze(ctx context.Context) (time.Time, error)
}

// SoundService lists sounds and previews them.
type SoundService interface {
	List() []audio.Sound
	Preview(ctx context.Context, id string) error
	Stop()
	PlayingID() string
}

// Dependencies are the services the server routes to.
type Dependencies struct {
	// Alarms is the alarm store.
	Alarms AlarmService
	// Notification is the notification flow.
	Notification NotificationService
	// Sounds is the catalog and previewer.
	Sounds SoundService
	// Clock supplies readings for /api/clock and the event stream.
	Clock clock.Clock
	// Events fans updates out to SSE subscribers.
	Events *realtime.Broadcaster
	// StaticDir, when set, is served under /sounds/.
	StaticDir string
}

// Server routes HTTP requests to the alarm clock services.
type Server struct {
	// deps are the wired services.
	deps Dependencies
	// keepAlive is the SSE comment interval.
	keepAlive time.Duration
}

// DefaultKeepAlive is how often an idle event stream sends a comment line.
const DefaultKeepAlive = 25 * time.Second

// NewServer wires the provided services into an HTTP handler.
func NewServer(deps Dependencies) *Server {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}

	if deps.Events == nil {
		deps.Events = realtime.NewBroadcaster()
	}

	return &Server{
		deps:      deps,
		keepAlive: DefaultKeepAlive,
	}
}

// Handler returns the chi router with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	s.RegisterRoutes(r)

	return r
}

// RegisterRoutes attaches the API to r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", s.listAlarms)
			r.Post("/", s.addAlarm)
			r.Delete("/{id}", s.removeAlarm)
			r.Post("/{id}/toggle", s.toggleAlarm)
		})

		r.Route("/sounds", func(r chi.Router) {
			r.Get("/", s.listSounds)
			r.Post("/{id}/preview", s.previewSound)
			r.Delete("/preview", s.stopPreview)
		})

		r.Get("/clock", s.readClock)

		r.Route("/notification", func(r chi.Router) {
			r.Get("/", s.notificationView)
			r.Post("/puzzle", s.beginPuzzle)
			r.Delete("/puzzle", s.cancelPuzzle)
			r.Post("/puzzle/dots/{id}", s.selectDot)
			r.Put("/puzzle/pointer", s.movePointer)
			r.Delete("/puzzle/pointer", s.leavePointer)
			r.Post("/dismiss", s.dismiss)
			r.Post("/snooze", s.snooze)
		})

		r.Get("/events", s.stream)
	})

	if s.deps.StaticDir != "" {
		r.Handle("/sounds/*", http.FileServer(http.Dir(s.deps.StaticDir)))
	}
}
