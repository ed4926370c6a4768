package insights

import (
	"sort"
	"strings"

	"github.com/kalambet/callhighlights/internal/calls"
)

// Grouping partitions records by company.
type Grouping struct {
	// Companies lists the distinct company names in ascending order.
	Companies []string
	// Buckets holds each company's records in their input order.
	Buckets map[string][]calls.CallRecord
}

// CompanyStats are the per-company figures shown in a group header.
type CompanyStats struct {
	CallCount  int `json:"call_count"`
	TotalWords int `json:"total_words"`
}

// GroupByCompany buckets records by company. Records with a blank company
// land in the calls.UnknownCompany bucket.
func GroupByCompany(records []calls.CallRecord) Grouping {
	g := Grouping{Buckets: make(map[string][]calls.CallRecord)}
	for _, r := range records {
		company := r.Company
		if strings.TrimSpace(company) == "" {
			company = calls.UnknownCompany
		}
		if _, ok := g.Buckets[company]; !ok {
			g.Companies = append(g.Companies, company)
		}
		g.Buckets[company] = append(g.Buckets[company], r)
	}
	sort.Strings(g.Companies)
	return g
}

// Stats returns the call count and word total of one company's bucket.
func (g Grouping) Stats(company string) CompanyStats {
	bucket := g.Buckets[company]
	s := CompanyStats{CallCount: len(bucket)}
	for _, r := range bucket {
		s.TotalWords += WordCount(r.Transcript)
	}
	return s
}

// Flatten concatenates the buckets in company order.
func (g Grouping) Flatten() []calls.CallRecord {
	var out []calls.CallRecord
	for _, c := range g.Companies {
		out = append(out, g.Buckets[c]...)
	}
	return out
}
