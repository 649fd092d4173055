package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	// EventTick carries a clock reading once per second.
	EventTick = "tick"
	// EventAlarms carries the alarm list after every change.
	EventAlarms = "alarms"
	// EventNotification carries the notification view after every change.
	EventNotification = "notification"

	subscriberBuffer = 16
)

// Event is a named JSON payload.
type Event struct {
	// Name is the SSE event field.
	Name string
	// Data is the JSON encoded payload.
	Data []byte
}

// Broadcaster publishes events to SSE subscribers.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

// Encode builds an event from a JSON-encodable payload.
func Encode(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", name, err)
	}

	return Event{
		Name: name,
		Data: data,
	}, nil
}

// Publish encodes payload and delivers it to all subscribers.
// Lagging subscribers miss the event; the next one of the same name catches them up.
func (b *Broadcaster) Publish(name string, payload any) error {
	event, err := Encode(name, payload)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

// WriteEvent writes e in text/event-stream framing.
func WriteEvent(w io.Writer, e Event) error {
	var sb strings.Builder

	sb.WriteString("event: ")
	sb.WriteString(e.Name)
	sb.WriteString("\n")

	for _, line := range strings.Split(string(e.Data), "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())

	return err
}
