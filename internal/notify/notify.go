// Package notify delivers short user-facing messages after task
// mutations. Delivery is fire-and-forget: a Notifier never reports
// failure to its caller.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notification struct {
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(message string, kind Kind)
}

// LogSink writes notifications to the application log.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(message string, kind Kind) {
	event := s.logger.Info()
	if kind == KindError {
		event = s.logger.Warn()
	}
	event.
		Str("kind", string(kind)).
		Msg(message)
}

// Feed buffers the most recent notifications until a client drains them.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
	now   func() time.Time
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 1
	}
	return &Feed{
		limit: limit,
		now:   time.Now,
	}
}

func (f *Feed) Notify(message string, kind Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{
		Message: message,
		Kind:    kind,
		At:      f.now().UTC(),
	})
	if overflow := len(f.items) - f.limit; overflow > 0 {
		f.items = append([]Notification(nil), f.items[overflow:]...)
	}
}

// Drain returns the buffered notifications, oldest first, and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items
	f.items = nil
	if items == nil {
		return []Notification{}
	}
	return items
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(message string, kind Kind) {
	for _, n := range m {
		n.Notify(message, kind)
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(string, Kind) {}
