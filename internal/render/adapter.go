package render

import (
	"go.uber.org/zap"

	"flashdeck/internal/models"
	"flashdeck/internal/session"
)

const (
	MessageRender         = "render"
	MessageClearStudyText = "clear-study-text"
)

// Sink delivers messages to every page attached to a viewer session.
type Sink interface {
	SendToSession(sessionID string, msg models.WSMessage)
}

// Adapter is the session.View for one browser session: it renders frames and
// pushes them to the session's pages.
type Adapter struct {
	sessionID string
	renderer  *HTMLRenderer
	sink      Sink
	log       *zap.Logger
}

func NewAdapter(sessionID string, renderer *HTMLRenderer, sink Sink, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{sessionID: sessionID, renderer: renderer, sink: sink, log: log}
}

func (a *Adapter) Render(snap session.Snapshot) {
	frame, err := a.renderer.Frame(snap)
	if err != nil {
		a.log.Error("render frame failed", zap.String("session_id", a.sessionID), zap.Error(err))
		return
	}
	a.sink.SendToSession(a.sessionID, models.WSMessage{Type: MessageRender, Payload: frame})
}

func (a *Adapter) ClearStudyText() {
	a.sink.SendToSession(a.sessionID, models.WSMessage{Type: MessageClearStudyText})
}
