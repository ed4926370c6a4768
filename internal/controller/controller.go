// Package controller ties the call store, the aggregations and the renderer
// together. Each action re-reads the whole collection from storage and
// rebuilds the page from it.
package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/insights"
	"github.com/kalambet/callhighlights/internal/render"
	"github.com/kalambet/callhighlights/internal/theme"
)

var (
	ErrTranscriptRequired = errors.New("transcript is required")
	ErrCompanyRequired    = errors.New("company is required")
)

// ValidationError reports a rejected submission. Notice is the text shown
// to the person filling in the form.
type ValidationError struct {
	Err    error
	Notice string
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// CallStore is the subset of calls.Store the controller drives.
type CallStore interface {
	ListAll() []calls.CallRecord
	Create(date, company, transcript string) (calls.CallRecord, error)
	DeleteByID(id int64) error
}

// ThemeStore is the subset of theme.Store the controller drives.
type ThemeStore interface {
	Get() theme.Theme
	Toggle() (theme.Theme, error)
}

// Submission is the raw form input for a new call.
type Submission struct {
	Date       string
	Company    string
	Transcript string
}

// Controller rebuilds the page after every action.
type Controller struct {
	calls  CallStore
	themes ThemeStore
	now    func() time.Time
}

func New(cs CallStore, ts ThemeStore) *Controller {
	return &Controller{calls: cs, themes: ts, now: time.Now}
}

// Load fetches the collection and renders it in mode.
func (c *Controller) Load(mode render.Mode) render.Page {
	return c.page(c.calls.ListAll(), mode)
}

// Toggle reloads the collection and renders it in the other mode. The
// collection is re-read because the API, MCP server and CLI write to the
// store without going through the controller.
func (c *Controller) Toggle(mode render.Mode) render.Page {
	return c.Load(mode.Toggle())
}

// Submit validates and stores a new call, then reloads. A *ValidationError
// comes back together with a page that carries the notice and the draft.
func (c *Controller) Submit(sub Submission, mode render.Mode) (render.Page, error) {
	sub.Company = strings.TrimSpace(sub.Company)
	sub.Transcript = strings.TrimSpace(sub.Transcript)

	var verr *ValidationError
	switch {
	case sub.Transcript == "":
		verr = &ValidationError{Err: ErrTranscriptRequired, Notice: "Please enter a transcript"}
	case sub.Company == "":
		verr = &ValidationError{Err: ErrCompanyRequired, Notice: "Please enter a company name"}
	}
	if verr != nil {
		p := c.Load(mode)
		p.Notice = verr.Notice
		p.Draft = render.Draft{Date: sub.Date, Company: sub.Company, Transcript: sub.Transcript}
		return p, verr
	}

	if _, err := c.calls.Create(sub.Date, sub.Company, sub.Transcript); err != nil {
		return c.Load(mode), fmt.Errorf("saving call: %w", err)
	}
	return c.Load(mode), nil
}

// Delete removes a call and reloads. Unknown ids are ignored.
func (c *Controller) Delete(id int64, mode render.Mode) (render.Page, error) {
	if err := c.calls.DeleteByID(id); err != nil {
		return c.Load(mode), fmt.Errorf("deleting call %d: %w", id, err)
	}
	return c.Load(mode), nil
}

// ToggleTheme flips and saves the theme preference.
func (c *Controller) ToggleTheme() (theme.Theme, error) {
	return c.themes.Toggle()
}

func (c *Controller) page(records []calls.CallRecord, mode render.Mode) render.Page {
	return render.Page{
		View:    render.Build(records, mode),
		Summary: insights.Summarize(records),
		Theme:   c.themes.Get(),
		Today:   c.now().Format(calls.DateLayout),
	}
}
