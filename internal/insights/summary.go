package insights

import (
	"math"
	"time"

	"github.com/kalambet/callhighlights/internal/calls"
)

// NoActiveDay is shown when no record has a usable date.
const NoActiveDay = "-"

// Summary holds the aggregate statistics shown above the call history.
type Summary struct {
	TotalCalls    int    `json:"total_calls"`
	TotalWords    int    `json:"total_words"`
	AvgWords      int    `json:"avg_words"`
	MostActiveDay string `json:"most_active_day"`
}

// Summarize computes the statistics for records. An empty input yields
// {0, 0, 0, "-"}.
//
// MostActiveDay is the weekday with the most record dates. On a tie the
// weekday that first appeared while scanning records left to right wins.
// Dates that do not parse as YYYY-MM-DD are not counted.
func Summarize(records []calls.CallRecord) Summary {
	if len(records) == 0 {
		return Summary{MostActiveDay: NoActiveDay}
	}

	total := 0
	for _, r := range records {
		total += WordCount(r.Transcript)
	}

	return Summary{
		TotalCalls:    len(records),
		TotalWords:    total,
		AvgWords:      int(math.Round(float64(total) / float64(len(records)))),
		MostActiveDay: mostActiveDay(records),
	}
}

func mostActiveDay(records []calls.CallRecord) string {
	counts := make(map[time.Weekday]int, 7)
	var order []time.Weekday
	for _, r := range records {
		d, err := time.Parse(calls.DateLayout, r.Date)
		if err != nil {
			continue
		}
		wd := d.Weekday()
		if counts[wd] == 0 {
			order = append(order, wd)
		}
		counts[wd]++
	}

	if len(order) == 0 {
		return NoActiveDay
	}
	best := order[0]
	for _, wd := range order[1:] {
		if counts[wd] > counts[best] {
			best = wd
		}
	}
	return best.String()
}
