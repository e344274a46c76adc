// Package notify keeps the short-lived toast messages shown to the viewer.
package notify

import (
	"sync"
	"time"
)

const (
	DefaultDuration = 5000 * time.Millisecond
	DefaultCapacity = 5
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Icon returns the glyph shown next to a toast of this severity.
func (s Severity) Icon() string {
	switch s {
	case Success:
		return "✅"
	case Error:
		return "❌"
	case Warning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Handle identifies one notification for Dismiss.
type Handle uint64

type Notification struct {
	Handle    Handle        `json:"id"`
	Message   string        `json:"message"`
	Severity  Severity      `json:"severity"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration"`
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Center holds the visible notifications. Each one removes itself when its
// own timer fires; the only cross-notification rule is capacity eviction.
// Timers run on their own goroutines, so all state sits behind mu.
type Center struct {
	mu       sync.Mutex
	active   []entry
	lastID   Handle
	capacity int
	duration time.Duration
	now      func() time.Time
	onChange func()
	closed   bool
}

type Option func(*Center)

func WithCapacity(n int) Option {
	return func(c *Center) {
		if n > 0 {
			c.capacity = n
		}
	}
}

func WithDefaultDuration(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.duration = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		capacity: DefaultCapacity,
		duration: DefaultDuration,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a callback fired, outside the lock, whenever the active
// list changes. It may run on a timer goroutine.
func (c *Center) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Notify shows a message for duration (the default when duration <= 0).
// If this pushes the list past capacity the oldest entry goes immediately.
func (c *Center) Notify(message string, severity Severity, duration time.Duration) Handle {
	if duration <= 0 {
		duration = c.duration
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.lastID++
	id := c.lastID
	n := Notification{
		Handle:    id,
		Message:   message,
		Severity:  severity,
		CreatedAt: c.now(),
		Duration:  duration,
	}
	timer := time.AfterFunc(duration, func() { c.Dismiss(id) })
	c.active = append(c.active, entry{n: n, timer: timer})

	for len(c.active) > c.capacity {
		c.active[0].timer.Stop()
		c.active = c.active[1:]
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return id
}

// Dismiss removes a notification now. Unknown or already removed handles are
// ignored.
func (c *Center) Dismiss(h Handle) {
	c.mu.Lock()
	removed := false
	for i, e := range c.active {
		if e.n.Handle == h {
			e.timer.Stop()
			c.active = append(c.active[:i:i], c.active[i+1:]...)
			removed = true
			break
		}
	}
	fn := c.onChange
	c.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

// Active returns the visible notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.active))
	for i, e := range c.active {
		out[i] = e.n
	}
	return out
}

// Close stops every pending timer and drops all notifications.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.active {
		e.timer.Stop()
	}
	c.active = nil
	c.closed = true
}
