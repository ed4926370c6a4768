package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/kalambet/callhighlights/internal/insights"
	"github.com/kalambet/callhighlights/internal/theme"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html.tmpl").Funcs(template.FuncMap{
		"comma":        func(n int) string { return humanize.Comma(int64(n)) },
		"emptyMessage": func() string { return EmptyMessage },
		"callData":     func(it Item, m Mode) callData { return callData{Item: it, Mode: m} },
	}).ParseFS(templatesFS, "templates/page.html.tmpl"),
)

// Draft holds form values echoed back after a rejected submission.
type Draft struct {
	Date       string
	Company    string
	Transcript string
}

// Page is everything the HTML page shows.
type Page struct {
	View    View
	Summary insights.Summary
	Theme   theme.Theme
	Today   string // prefills the date input
	Notice  string
	Draft   Draft
}

type callData struct {
	Item Item
	Mode Mode
}

// HTML writes p as a complete HTML document. Every text field goes through
// html/template's contextual escaping.
func HTML(w io.Writer, p Page) error {
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
