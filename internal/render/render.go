// Package render draws session snapshots as HTML fragments. Every card field
// passes through html/template, so text from the service is always escaped.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"flashdeck/internal/notify"
	"flashdeck/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the browser assets (script and stylesheet).
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Frame is one redraw: each field replaces the matching part of the page.
type Frame struct {
	State          session.State `json:"state"`
	ViewerVisible  bool          `json:"viewer_visible"`
	Card           template.HTML `json:"card"`
	Position       int           `json:"position"`
	Total          int           `json:"total"`
	NavEnabled     bool          `json:"nav_enabled"`
	Saved          template.HTML `json:"saved"`
	TopicOptions   template.HTML `json:"topic_options"`
	Toasts         template.HTML `json:"toasts"`
	GenerateBusy   bool          `json:"generate_busy"`
	GenerateButton template.HTML `json:"generate_button"`
}

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Frame renders every fragment of snap.
func (r *HTMLRenderer) Frame(snap session.Snapshot) (Frame, error) {
	f := Frame{
		State:         snap.State,
		ViewerVisible: snap.ViewerVisible,
		Position:      snap.Position(),
		Total:         snap.Total(),
		NavEnabled:    snap.CanNavigate(),
		GenerateBusy:  snap.GenerateBusy,
	}

	var err error
	if f.Card, err = r.fragment("card", snap); err != nil {
		return Frame{}, err
	}
	if f.Saved, err = r.fragment("saved", snap); err != nil {
		return Frame{}, err
	}
	if f.TopicOptions, err = r.fragment("topics", snap); err != nil {
		return Frame{}, err
	}
	if f.Toasts, err = r.Toasts(snap.Notifications); err != nil {
		return Frame{}, err
	}
	if f.GenerateButton, err = r.fragment("generate", snap.GenerateBusy); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Toasts renders just the notification list.
func (r *HTMLRenderer) Toasts(notes []notify.Notification) (template.HTML, error) {
	return r.fragment("toasts", notes)
}

// Page writes the full document for a freshly opened viewer.
func (r *HTMLRenderer) Page(w io.Writer, token string, snap session.Snapshot) error {
	frame, err := r.Frame(snap)
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "index", struct {
		Token string
		Frame Frame
	}{token, frame})
}

func (r *HTMLRenderer) fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}
