// Package theme persists the light/dark preference of the page. It shares
// the key-value store with the call collection but never touches it.
package theme

import (
	"fmt"
	"log/slog"
)

// Key is the key-value entry holding the preference.
const Key = "callHighlights_theme"

// Theme is a visual theme name.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Icon is the glyph of the button that switches away from t.
func (t Theme) Icon() string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}

// KV is the storage the preference lives in. Implemented by storage.Store.
type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// Store reads and writes the theme preference.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Get returns the saved theme, or Light when none is saved or it can't be read.
func (s *Store) Get() Theme {
	v, ok, err := s.kv.GetItem(Key)
	if err != nil {
		slog.Warn("reading theme preference", "error", err)
		return Light
	}
	if !ok {
		return Light
	}
	switch Theme(v) {
	case Light, Dark:
		return Theme(v)
	}
	return Light
}

// Set saves t.
func (s *Store) Set(t Theme) error {
	if t != Light && t != Dark {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := s.kv.SetItem(Key, string(t)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// Toggle flips between light and dark and saves the result.
func (s *Store) Toggle() (Theme, error) {
	next := Dark
	if s.Get() == Dark {
		next = Light
	}
	if err := s.Set(next); err != nil {
		return s.Get(), err
	}
	return next, nil
}
