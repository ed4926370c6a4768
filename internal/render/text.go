package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kalambet/callhighlights/internal/insights"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Text writes a plain-text rendition of the insights and history, as used by
// the CLI. When full is set the whole transcript follows each preview line.
func Text(w io.Writer, v View, s insights.Summary, full bool) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Calls: %d  Words: %s  Avg: %s  Most active: %s\n\n",
		s.TotalCalls, humanize.Comma(int64(s.TotalWords)), humanize.Comma(int64(s.AvgWords)), s.MostActiveDay)

	if v.Empty {
		b.WriteString(EmptyMessage + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, sec := range v.Sections {
		indent := ""
		if sec.Title != "" {
			fmt.Fprintf(&b, "%s (%s)\n", sec.Title, sec.Meta)
			indent = "  "
		}
		for _, it := range sec.Items {
			fmt.Fprintf(&b, "%s[%d] %s", indent, it.ID, it.FormattedDate)
			if it.Company != "" {
				fmt.Fprintf(&b, "  %s", it.Company)
			}
			fmt.Fprintf(&b, "  %s\n%s    %s\n", it.WordLabel, indent, lineBreaks.Replace(it.Preview))
			if full && it.Truncated {
				for _, line := range strings.Split(it.Transcript, "\n") {
					fmt.Fprintf(&b, "%s      %s\n", indent, line)
				}
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
