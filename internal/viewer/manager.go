// Package viewer keeps one flashcard session per open browser session.
package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"flashdeck/internal/notify"
	"flashdeck/internal/render"
	"flashdeck/internal/session"
)

var (
	ErrUnknownSession  = errors.New("unknown viewer session")
	ErrTooManySessions = errors.New("too many viewer sessions")
)

const defaultMaxSessions = 1000

// Session is one browser session's controller.
type Session struct {
	ID         string
	Controller *session.Controller
	ctx        context.Context
	cancel     context.CancelFunc
}

// Context ends when the session expires or the manager closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Detacher drops the pages of a session that has gone away.
type Detacher interface {
	CloseSession(sessionID string)
}

type Options struct {
	IdleTimeout          time.Duration
	NotificationDuration time.Duration
	MaxSessions          int
}

// Manager creates sessions and expires the ones nobody has touched within
// the idle timeout.
type Manager struct {
	createMu sync.Mutex
	sessions *gocache.Cache
	svc      session.FlashcardService
	renderer *render.HTMLRenderer
	sink     render.Sink
	detach   Detacher
	opts     Options
	log      *zap.Logger
}

func NewManager(svc session.FlashcardService, renderer *render.HTMLRenderer, sink render.Sink, detach Detacher, opts Options, log *zap.Logger) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	m := &Manager{
		sessions: gocache.New(opts.IdleTimeout, opts.IdleTimeout/4+time.Second),
		svc:      svc,
		renderer: renderer,
		sink:     sink,
		detach:   detach,
		opts:     opts,
		log:      log,
	}
	m.sessions.OnEvicted(m.evicted)
	return m
}

func (m *Manager) evicted(id string, v interface{}) {
	s, ok := v.(*Session)
	if !ok {
		return
	}
	s.cancel()
	s.Controller.Close()
	if m.detach != nil {
		m.detach.CloseSession(id)
	}
	m.log.Info("viewer session ended", zap.String("session_id", id))
}

// Create starts a session and, in the background, loads the saved deck and
// the topic filter list the way a freshly opened page does. It fails with
// ErrTooManySessions once MaxSessions sessions are live.
func (m *Manager) Create() (*Session, error) {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	if m.sessions.ItemCount() >= m.opts.MaxSessions {
		m.sessions.DeleteExpired()
		if m.sessions.ItemCount() >= m.opts.MaxSessions {
			return nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	log := m.log.With(zap.String("session_id", id))

	center := notify.NewCenter(notify.WithDefaultDuration(m.opts.NotificationDuration))
	ctrl := session.New(m.svc, render.NewAdapter(id, m.renderer, m.sink, log), log,
		session.WithNotifications(center))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{ID: id, Controller: ctrl, ctx: ctx, cancel: cancel}
	m.sessions.SetDefault(id, s)

	go ctrl.LoadSaved(ctx, "")
	go ctrl.LoadTopics(ctx)

	log.Info("viewer session started")
	return s, nil
}

// Get returns the session and extends its idle deadline.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrUnknownSession
	}
	s := v.(*Session)
	m.sessions.SetDefault(id, s)
	return s, nil
}

// Redraw resends the current frame of id, if the session is still alive.
func (m *Manager) Redraw(id string) {
	s, err := m.Get(id)
	if err != nil {
		return
	}
	s.Controller.Redraw()
}

// End removes a session immediately.
func (m *Manager) End(id string) {
	m.sessions.Delete(id)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

// Close ends every session.
func (m *Manager) Close() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
