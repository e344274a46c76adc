package session

import (
	"strings"

	"flashdeck/internal/deck"
	"flashdeck/internal/models"
	"flashdeck/internal/notify"
)

type State string

const (
	Idle    State = "idle"    // no deck loaded
	Viewing State = "viewing" // one card on screen
	Loading State = "loading" // a service request is in flight
)

// Action names a control that can show a busy indicator.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionLoad     Action = "load"
)

// Snapshot is everything a view needs to draw one frame. It is a copy; views
// may keep it.
type Snapshot struct {
	State         State                 `json:"state"`
	Cards         []models.Flashcard    `json:"cards"`
	Index         int                   `json:"index"`
	HasCard       bool                  `json:"has_card"`
	Current       models.Flashcard      `json:"current"`
	Flipped       bool                  `json:"flipped"`
	ViewerVisible bool                  `json:"viewer_visible"`
	Groups        []deck.TopicGroup     `json:"groups"`
	Topics        []string              `json:"topics"`
	Filter        string                `json:"filter"`
	GenerateBusy  bool                  `json:"generate_busy"`
	LoadBusy      bool                  `json:"load_busy"`
	Notifications []notify.Notification `json:"notifications"`
}

// Total is the deck length shown in the "i / N" counter.
func (s Snapshot) Total() int { return len(s.Cards) }

// Position is the 1-based counter value, 0 when nothing is shown.
func (s Snapshot) Position() int {
	if !s.HasCard {
		return 0
	}
	return s.Index + 1
}

// CanNavigate is false when previous/next would have nowhere to go.
func (s Snapshot) CanNavigate() bool { return len(s.Cards) > 1 }

// EventType is a discrete input forwarded by the view.
type EventType string

const (
	EventGenerate      EventType = "generate"
	EventPrevious      EventType = "previous"
	EventNext          EventType = "next"
	EventShuffle       EventType = "shuffle"
	EventReset         EventType = "reset"
	EventLoadSaved     EventType = "load-saved"
	EventFilterChanged EventType = "filter-changed"
	EventCardClicked   EventType = "card-clicked"
	EventCardSelected  EventType = "card-selected"
	EventKey           EventType = "key"
	EventDismissToast  EventType = "dismiss-toast"
)

type Event struct {
	Type   EventType `json:"type"`
	Text   string    `json:"text,omitempty"`
	Topic  string    `json:"topic,omitempty"`
	Filter string    `json:"filter,omitempty"`
	Index  int       `json:"index,omitempty"`
	Key    KeyEvent  `json:"key,omitempty"`
	// Toast identifies the notification closed by EventDismissToast.
	Toast notify.Handle `json:"toast,omitempty"`
}

// KeyEvent is a raw key press plus where keyboard focus was at the time.
type KeyEvent struct {
	Key             string `json:"key"`
	FocusTag        string `json:"focus_tag,omitempty"`
	ContentEditable bool   `json:"content_editable,omitempty"`
}

// Editable reports whether focus sat in a field that owns its key presses.
func (k KeyEvent) Editable() bool {
	switch strings.ToUpper(k.FocusTag) {
	case "INPUT", "TEXTAREA":
		return true
	}
	return k.ContentEditable
}

// OwnedByFocus reports whether the focused element handles this key itself:
// editable fields take every key, a select takes arrows, space and Enter,
// and a button is activated by space and Enter.
func (k KeyEvent) OwnedByFocus() bool {
	if k.Editable() {
		return true
	}
	switch strings.ToUpper(k.FocusTag) {
	case "SELECT":
		return true
	case "BUTTON":
		return k.Key == " " || k.Key == "Enter"
	}
	return false
}
