package session

import (
	"context"

	"go.uber.org/zap"
)

// HandleKey routes arrow keys to navigation and space/Enter to flip. Keys
// the focused element handles itself, or pressed with no deck loaded, are
// left alone. The return value tells the view whether to suppress the browser's
// default handling.
func (c *Controller) HandleKey(k KeyEvent) bool {
	if k.OwnedByFocus() {
		return false
	}
	c.mu.Lock()
	empty := c.store.Len() == 0
	c.mu.Unlock()
	if empty {
		return false
	}

	switch k.Key {
	case "ArrowLeft":
		c.Previous()
	case "ArrowRight":
		c.Next()
	case " ", "Enter":
		c.Flip()
	default:
		return false
	}
	return true
}

// Dispatch applies one input event from the view. Generate and load block
// until the service answers; callers wanting fire-and-forget run it in a
// goroutine.
func (c *Controller) Dispatch(ctx context.Context, ev Event) bool {
	switch ev.Type {
	case EventGenerate:
		c.Generate(ctx, ev.Text, ev.Topic)
	case EventPrevious:
		c.Previous()
	case EventNext:
		c.Next()
	case EventShuffle:
		c.Shuffle()
	case EventReset:
		c.Reset()
	case EventLoadSaved:
		c.mu.Lock()
		filter := c.filter
		c.mu.Unlock()
		c.LoadSaved(ctx, filter)
	case EventFilterChanged:
		c.LoadSaved(ctx, ev.Filter)
	case EventCardClicked:
		c.Flip()
	case EventCardSelected:
		c.LoadSpecificCard(ev.Topic, ev.Index)
	case EventKey:
		return c.HandleKey(ev.Key)
	case EventDismissToast:
		c.notes.Dismiss(ev.Toast)
	default:
		c.log.Warn("unknown viewer event", zap.String("type", string(ev.Type)))
		return false
	}
	return true
}
