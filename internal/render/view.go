// Package render turns call records into a view description and writes it
// out as HTML or plain text.
package render

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/insights"
)

const (
	previewLength = 50
	ellipsis      = "..."

	// EmptyMessage is shown in place of the history when there are no calls.
	EmptyMessage = "No calls saved yet. Add your first transcript above!"
)

// View is the render-ready call history.
type View struct {
	Mode     Mode
	Empty    bool
	Sections []Section
}

// Section is one block of the history: a company group in grouped mode, or
// the single list of all calls in flat mode.
type Section struct {
	Title       string
	CallCount   int
	TotalWords  int
	Meta        string
	Collapsible bool
	Expanded    bool
	Items       []Item
}

// Item is one call in the history. Expanded reports whether the full
// transcript is shown instead of only the preview.
type Item struct {
	ID            int64
	Date          string
	FormattedDate string
	Company       string
	Preview       string
	Truncated     bool
	WordCount     int
	WordLabel     string
	Transcript    string
	Expanded      bool
}

// Build arranges records for display. records must be in store order
// (newest first). Items only carry a company label in flat mode since the
// section title already names it in grouped mode.
func Build(records []calls.CallRecord, mode Mode) View {
	v := View{Mode: mode, Empty: len(records) == 0}
	if v.Empty {
		return v
	}

	if mode == ModeFlat {
		sec := Section{Expanded: true, CallCount: len(records)}
		for _, r := range records {
			it := buildItem(r, true)
			sec.TotalWords += it.WordCount
			sec.Items = append(sec.Items, it)
		}
		v.Sections = []Section{sec}
		return v
	}

	g := insights.GroupByCompany(records)
	for _, company := range g.Companies {
		stats := g.Stats(company)
		sec := Section{
			Title:       company,
			CallCount:   stats.CallCount,
			TotalWords:  stats.TotalWords,
			Meta:        companyMeta(stats),
			Collapsible: true,
			Expanded:    true,
		}
		for _, r := range g.Buckets[company] {
			sec.Items = append(sec.Items, buildItem(r, false))
		}
		v.Sections = append(v.Sections, sec)
	}
	return v
}

func buildItem(r calls.CallRecord, withCompany bool) Item {
	words := insights.WordCount(r.Transcript)
	preview, truncated := Preview(r.Transcript)
	it := Item{
		ID:            r.ID,
		Date:          r.Date,
		FormattedDate: FormatDate(r.Date),
		Preview:       preview,
		Truncated:     truncated,
		WordCount:     words,
		WordLabel:     humanize.Comma(int64(words)) + " words",
		Transcript:    r.Transcript,
	}
	if withCompany {
		it.Company = r.Company
		if it.Company == "" {
			it.Company = calls.UnknownCompany
		}
	}
	return it
}

func companyMeta(s insights.CompanyStats) string {
	plural := "s"
	if s.CallCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d call%s • %s words", s.CallCount, plural, humanize.Comma(int64(s.TotalWords)))
}

// Preview returns the first 50 characters of text, with "..." appended when
// anything was cut.
func Preview(text string) (string, bool) {
	if utf8.RuneCountInString(text) <= previewLength {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + ellipsis, true
}

// FormatDate renders a YYYY-MM-DD date as "Mon, Jan 2, 2006".
func FormatDate(date string) string {
	d, err := time.Parse(calls.DateLayout, date)
	if err != nil {
		return "Invalid Date"
	}
	return d.Format("Mon, Jan 2, 2006")
}
