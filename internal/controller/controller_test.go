package controller

import (
	"errors"
	"testing"

	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/render"
	"github.com/kalambet/callhighlights/internal/storage"
	"github.com/kalambet/callhighlights/internal/theme"
)

// countingStore wraps a calls.Store and counts collection reads.
type countingStore struct {
	*calls.Store
	lists int
}

func (c *countingStore) ListAll() []calls.CallRecord {
	c.lists++
	return c.Store.ListAll()
}

func newTestController(t *testing.T) (*Controller, *countingStore) {
	t.Helper()
	kv, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	cs := &countingStore{Store: calls.NewStore(kv)}
	return New(cs, theme.NewStore(kv)), cs
}

func submit(t *testing.T, c *Controller, company, transcript string) render.Page {
	t.Helper()
	p, err := c.Submit(Submission{Date: "2025-03-03", Company: company, Transcript: transcript}, render.ModeGrouped)
	if err != nil {
		t.Fatalf("Submit(%q): %v", company, err)
	}
	return p
}

func TestLoad_Empty(t *testing.T) {
	c, _ := newTestController(t)

	p := c.Load(render.ModeGrouped)
	if !p.View.Empty {
		t.Error("expected empty view")
	}
	if p.Summary.MostActiveDay != "-" {
		t.Errorf("MostActiveDay = %q, want -", p.Summary.MostActiveDay)
	}
	if p.Theme != theme.Light {
		t.Errorf("Theme = %q, want light", p.Theme)
	}
	if p.Today == "" {
		t.Error("Today not set")
	}
}

func TestSubmit_ScenarioGrouped(t *testing.T) {
	c, _ := newTestController(t)

	submit(t, c, "Acme", "first acme call")
	submit(t, c, "Beta", "beta call")
	p := submit(t, c, "Acme", "second acme call")

	if p.Summary.TotalCalls != 3 {
		t.Errorf("TotalCalls = %d, want 3", p.Summary.TotalCalls)
	}
	secs := p.View.Sections
	if len(secs) != 2 || secs[0].Title != "Acme" || secs[1].Title != "Beta" {
		t.Fatalf("sections = %+v", secs)
	}
	acme := secs[0].Items
	if len(acme) != 2 || acme[0].Transcript != "second acme call" || acme[1].Transcript != "first acme call" {
		t.Errorf("Acme items out of order: %+v", acme)
	}
}

func TestSubmit_Validation(t *testing.T) {
	c, cs := newTestController(t)

	p, err := c.Submit(Submission{Date: "2025-03-03", Company: "Acme", Transcript: "   "}, render.ModeFlat)
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrTranscriptRequired) {
		t.Fatalf("err = %v, want transcript validation error", err)
	}
	if p.Notice != "Please enter a transcript" {
		t.Errorf("Notice = %q", p.Notice)
	}
	if p.Draft.Company != "Acme" {
		t.Errorf("Draft.Company = %q, want Acme", p.Draft.Company)
	}

	_, err = c.Submit(Submission{Date: "2025-03-03", Company: " ", Transcript: "hello"}, render.ModeFlat)
	if !errors.Is(err, ErrCompanyRequired) {
		t.Fatalf("err = %v, want ErrCompanyRequired", err)
	}

	if got := cs.Store.ListAll(); len(got) != 0 {
		t.Errorf("rejected submissions stored %d records", len(got))
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestController(t)

	submit(t, c, "Acme", "keep me")
	target := submit(t, c, "Beta", "delete me").View.Sections[1].Items[0].ID

	p, err := c.Delete(target, render.ModeFlat)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items := p.View.Sections[0].Items
	if len(items) != 1 || items[0].Transcript != "keep me" {
		t.Errorf("items after delete = %+v", items)
	}

	if _, err := c.Delete(12345, render.ModeFlat); err != nil {
		t.Errorf("Delete(unknown) = %v, want nil", err)
	}
}

func TestToggle_SwitchesMode(t *testing.T) {
	c, _ := newTestController(t)
	submit(t, c, "Acme", "one")
	submit(t, c, "Beta", "two")

	p := c.Toggle(render.ModeGrouped)
	if p.View.Mode != render.ModeFlat {
		t.Errorf("Mode = %q, want flat", p.View.Mode)
	}
	if len(p.View.Sections) != 1 || len(p.View.Sections[0].Items) != 2 {
		t.Errorf("flat view = %+v", p.View)
	}

	p = c.Toggle(render.ModeFlat)
	if p.View.Mode != render.ModeGrouped || len(p.View.Sections) != 2 {
		t.Errorf("grouped view = %+v", p.View)
	}
}

// TestToggle_SeesWritesOutsideController verifies a toggle after a direct
// store write shows the new call and the updated totals.
func TestToggle_SeesWritesOutsideController(t *testing.T) {
	c, cs := newTestController(t)

	if p := c.Load(render.ModeGrouped); !p.View.Empty {
		t.Fatal("expected empty view before the write")
	}
	if _, err := cs.Create("2025-03-03", "Acme", "fresh call via api"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	reads := cs.lists

	p := c.Toggle(render.ModeGrouped)
	if cs.lists != reads+1 {
		t.Errorf("Toggle read storage %d times, want 1", cs.lists-reads)
	}
	if p.View.Empty {
		t.Fatal("toggled view is empty after a stored call")
	}
	if p.Summary.TotalCalls != 1 {
		t.Errorf("TotalCalls = %d, want 1", p.Summary.TotalCalls)
	}
	if got := p.View.Sections[0].Items[0].Transcript; got != "fresh call via api" {
		t.Errorf("first item = %q", got)
	}
}

func TestToggleTheme(t *testing.T) {
	c, _ := newTestController(t)

	got, err := c.ToggleTheme()
	if err != nil || got != theme.Dark {
		t.Fatalf("ToggleTheme = (%q, %v)", got, err)
	}
	if p := c.Load(render.ModeGrouped); p.Theme != theme.Dark {
		t.Errorf("page theme = %q, want dark", p.Theme)
	}
}
