package render

import "fmt"

// Mode selects how the call history is arranged.
type Mode string

const (
	ModeGrouped Mode = "grouped"
	ModeFlat    Mode = "flat"
)

// ParseMode parses a mode name. The empty string is rejected so callers
// choose their own default.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGrouped, ModeFlat:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q (want %q or %q)", s, ModeGrouped, ModeFlat)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeFlat {
		return ModeGrouped
	}
	return ModeFlat
}

// ToggleLabel is the caption of the button that switches away from m.
func (m Mode) ToggleLabel() string {
	if m == ModeFlat {
		return "Group by Company"
	}
	return "Show All"
}
