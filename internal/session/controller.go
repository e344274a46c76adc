// Package session runs one viewer's flashcard session: it turns user actions
// into service calls and deck transitions, and tells the view when to redraw.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"flashdeck/internal/client"
	"flashdeck/internal/deck"
	"flashdeck/internal/models"
	"flashdeck/internal/notify"
)

const (
	msgEmptyStudyText = "Please enter some study notes first."
	msgGenerateFailed = "Error generating flashcards. Please try again."
	msgLoadFailed     = "Error loading flashcards."
	msgNoneFound      = "No flashcards found."
	msgShuffled       = "Flashcards shuffled successfully!"
	msgNothingShuffle = "No flashcards to shuffle."
	msgReset          = "Reset to first card."
)

// FlashcardService is the remote generator and store of flashcards.
type FlashcardService interface {
	List(ctx context.Context, topic string) ([]models.Flashcard, error)
	Generate(ctx context.Context, text, topic string) ([]models.Flashcard, error)
}

// View draws frames and owns the page's input widgets.
type View interface {
	Render(Snapshot)
	ClearStudyText()
}

type toast struct {
	message  string
	severity notify.Severity
}

// Controller serialises every transition behind mu. Service calls run with mu
// released; a response changes the deck only if no newer request has already
// completed, so the last issued request wins regardless of arrival order.
type Controller struct {
	mu    sync.Mutex
	store *deck.Store
	notes *notify.Center
	svc   FlashcardService
	log   *zap.Logger

	// renderMu orders frames: snapshot and Render happen under it together.
	renderMu sync.Mutex
	view     View

	dirty    bool
	inflight map[Action]int
	issued   uint64
	applied  uint64
	topics   []string
	filter   string
}

type Option func(*Controller)

func WithStore(s *deck.Store) Option {
	return func(c *Controller) { c.store = s }
}

func WithNotifications(n *notify.Center) Option {
	return func(c *Controller) { c.notes = n }
}

func New(svc FlashcardService, view View, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		svc:      svc,
		view:     view,
		log:      log,
		inflight: make(map[Action]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = deck.NewStore()
	}
	if c.notes == nil {
		c.notes = notify.NewCenter()
	}

	// Store callbacks run with mu held by the transition that caused them.
	c.store.OnChange(func() { c.dirty = true })
	c.notes.OnChange(c.refresh)
	return c
}

// Close stops pending notification timers.
func (c *Controller) Close() {
	c.notes.Close()
}

// Snapshot returns the current frame.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	cards := c.store.Cards()
	snap := Snapshot{
		State:         c.stateLocked(),
		Cards:         cards,
		Flipped:       c.store.Flipped(),
		ViewerVisible: len(cards) > 0,
		Groups:        deck.GroupByTopic(cards),
		Topics:        append([]string(nil), c.topics...),
		Filter:        c.filter,
		GenerateBusy:  c.inflight[ActionGenerate] > 0,
		LoadBusy:      c.inflight[ActionLoad] > 0,
		Notifications: c.notes.Active(),
	}
	if idx, ok := c.store.Index(); ok {
		snap.Index = idx
		snap.HasCard = true
		snap.Current, _ = c.store.Current()
	}
	return snap
}

func (c *Controller) stateLocked() State {
	switch {
	case c.inflight[ActionGenerate]+c.inflight[ActionLoad] > 0:
		return Loading
	case c.store.Len() > 0:
		return Viewing
	default:
		return Idle
	}
}

// State reports Idle, Viewing or Loading.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Redraw pushes the current frame to the view, e.g. after a page reattaches.
func (c *Controller) Redraw() {
	c.refresh()
}

// refresh draws the current state. It must not be called with mu held.
func (c *Controller) refresh() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked()
	c.dirty = false
	c.mu.Unlock()

	if c.view != nil {
		c.view.Render(snap)
	}
}

// emit shows toasts (each one redraws through the center's callback), or
// redraws directly when there is nothing to say but the deck changed.
func (c *Controller) emit(changed bool, toasts ...toast) {
	for _, t := range toasts {
		c.notes.Notify(t.message, t.severity, 0)
	}
	if len(toasts) == 0 && changed {
		c.refresh()
	}
}

// mutate runs fn under mu and reports whether the deck signalled a change.
func (c *Controller) mutate(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	fn()
	return c.dirty
}

// beginLocked marks a request as in flight and returns its sequence number.
func (c *Controller) beginLocked(a Action) uint64 {
	c.issued++
	c.inflight[a]++
	return c.issued
}

// endLocked undoes beginLocked and reports whether seq is newer than every
// request already completed. A completed request counts whether it succeeded
// or failed, so an older response never overrides a newer outcome.
func (c *Controller) endLocked(a Action, seq uint64) bool {
	c.inflight[a]--
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	return true
}

// Generate sends study text to the service and replaces the deck with the
// cards it returns. Blank text is rejected locally; a second call while one
// is in flight is ignored, matching the disabled generate control.
func (c *Controller) Generate(ctx context.Context, text, topic string) {
	text = strings.TrimSpace(text)
	if text == "" {
		c.emit(false, toast{msgEmptyStudyText, notify.Error})
		return
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = models.DefaultTopic
	}

	c.mu.Lock()
	if c.inflight[ActionGenerate] > 0 {
		c.mu.Unlock()
		c.log.Debug("generate ignored: already in flight")
		return
	}
	seq := c.beginLocked(ActionGenerate)
	c.mu.Unlock()
	c.refresh()

	cards, err := c.svc.Generate(ctx, text, topic)

	// The outcome of a generation is always reported: its cards are already
	// stored. Only the deck swap is skipped when a newer request completed first.
	c.mu.Lock()
	current := c.endLocked(ActionGenerate, seq)
	if err != nil {
		c.mu.Unlock()
		c.log.Error("generate flashcards failed", zap.String("topic", topic), zap.Error(err))
		c.emit(true, toast{generateErrorMessage(err), notify.Error})
		return
	}
	if current {
		c.store.Replace(cards)
	} else {
		c.log.Info("keeping newer deck over generated cards", zap.Uint64("seq", seq))
	}
	c.mergeTopicsLocked(deck.DistinctTopics(cards))
	c.mu.Unlock()

	c.clearStudyText()
	c.emit(true, toast{fmt.Sprintf("Generated %d flashcards successfully!", len(cards)), notify.Success})
}

// generateErrorMessage keeps the generic wording and appends the service's
// own explanation when it sent one.
func generateErrorMessage(err error) string {
	var svcErr *client.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return fmt.Sprintf("%s (%s)", msgGenerateFailed, svcErr.Message)
	}
	return msgGenerateFailed
}

func (c *Controller) clearStudyText() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if c.view != nil {
		c.view.ClearStudyText()
	}
}

// LoadSaved fetches saved cards for topicFilter ("" for all topics). An empty
// result clears the deck and hides the viewer; a failure leaves the deck as
// it was.
func (c *Controller) LoadSaved(ctx context.Context, topicFilter string) {
	c.mu.Lock()
	c.filter = topicFilter
	seq := c.beginLocked(ActionLoad)
	c.mu.Unlock()
	c.refresh()

	cards, err := c.svc.List(ctx, topicFilter)

	c.mu.Lock()
	current := c.endLocked(ActionLoad, seq)
	if !current {
		c.mu.Unlock()
		c.log.Info("discarding stale load response", zap.Uint64("seq", seq), zap.String("topic", topicFilter))
		c.refresh()
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Error("load flashcards failed", zap.String("topic", topicFilter), zap.Error(err))
		c.emit(true, toast{msgLoadFailed, notify.Error})
		return
	}
	c.store.Replace(cards)
	c.mu.Unlock()

	if len(cards) == 0 {
		c.emit(true, toast{msgNoneFound, notify.Info})
		return
	}
	c.emit(true, toast{fmt.Sprintf("Loaded %d flashcards from server", len(cards)), notify.Success})
}

// LoadTopics fills the topic filter from every saved card. Failures are only
// logged; the filter keeps whatever it had.
func (c *Controller) LoadTopics(ctx context.Context) {
	cards, err := c.svc.List(ctx, "")
	if err != nil {
		c.log.Warn("load topics failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.topics = deck.DistinctTopics(cards)
	c.mu.Unlock()
	c.refresh()
}

func (c *Controller) mergeTopicsLocked(topics []string) {
	for _, t := range topics {
		found := false
		for _, have := range c.topics {
			if have == t {
				found = true
				break
			}
		}
		if !found {
			c.topics = append(c.topics, t)
		}
	}
}

func (c *Controller) Next() {
	c.emit(c.mutate(c.store.Next))
}

func (c *Controller) Previous() {
	c.emit(c.mutate(c.store.Previous))
}

// Flip turns the current card over. There is nothing to flip on an empty deck.
func (c *Controller) Flip() {
	c.emit(c.mutate(func() {
		if c.store.Len() > 0 {
			c.store.ToggleFlip()
		}
	}))
}

func (c *Controller) Shuffle() {
	var err error
	changed := c.mutate(func() { err = c.store.Shuffle() })
	if errors.Is(err, deck.ErrEmptyDeck) {
		c.emit(changed, toast{msgNothingShuffle, notify.Error})
		return
	}
	c.emit(changed, toast{msgShuffled, notify.Success})
}

// Reset rewinds to the first card. The confirmation is shown even on an
// empty deck, where there is nothing to move.
func (c *Controller) Reset() {
	changed := c.mutate(func() {
		if c.store.Len() > 0 {
			c.store.Reset()
		}
	})
	c.emit(changed, toast{msgReset, notify.Success})
}

// LoadSpecificCard shows the n-th card of a topic group from the summary.
// A selection that no longer matches any card is ignored.
func (c *Controller) LoadSpecificCard(topic string, n int) {
	c.emit(c.mutate(func() {
		if idx, ok := deck.GlobalIndex(c.store.Cards(), topic, n); ok {
			c.store.Jump(idx)
		}
	}))
}
