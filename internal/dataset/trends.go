package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// TrendDirection is the labelled direction string written by the trend
// producer. The labels are matched verbatim by the dashboard.
type TrendDirection string

const (
	TrendRising  TrendDirection = "steigend ↑"
	TrendStable  TrendDirection = "stabil →"
	TrendFalling TrendDirection = "fallend ↓"
)

// Kind returns "rising", "stable" or "falling", or "" for labels the
// producer added later.
func (d TrendDirection) Kind() string {
	switch d {
	case TrendRising:
		return "rising"
	case TrendStable:
		return "stable"
	case TrendFalling:
		return "falling"
	}
	return ""
}

// Trend columns of the affiliate opportunity CSV.
const (
	colTrendDate     = "datum"
	colTrendGroup    = "gruppe"
	colTrendCategory = "kategorie"
	colTrendLabel    = "trend"
	colTrendValue    = "aktueller_wert"
	colTrendChange   = "veraenderung_%"
	colTrendScore    = "affiliate_score"
	colTrendPartners = "empfohlene_partner"
	colTrendKeywords = "keywords"
)

type Trend struct {
	Category            string         `json:"gruppe"`
	Direction           TrendDirection `json:"trend"`
	AffiliateScore      float64        `json:"affiliate_score"`
	PercentChange       float64        `json:"veraenderung_%"`
	RecommendedPartners string         `json:"empfohlene_partner"`
	Keywords            string         `json:"keywords,omitempty"`
	Date                string         `json:"datum,omitempty"`
	Subcategory         string         `json:"kategorie,omitempty"`
	CurrentValue        float64        `json:"aktueller_wert,omitempty"`
}

// ParseTrends decodes the trend CSV. Rows whose field count differs from
// the header are skipped. Source order is kept.
func ParseTrends(body []byte) ([]Trend, bool) {
	header, records, ok := readTable(body)
	if !ok {
		return nil, false
	}

	var trends []Trend
	for _, rec := range records {
		if len(rec) != len(header) {
			continue
		}
		r := newRow(header, rec)
		trends = append(trends, Trend{
			Category:            r.text(colTrendGroup),
			Direction:           TrendDirection(r.text(colTrendLabel)),
			AffiliateScore:      parseNumber(r[colTrendScore]),
			PercentChange:       parseNumber(r[colTrendChange]),
			RecommendedPartners: r.text(colTrendPartners),
			Keywords:            r.text(colTrendKeywords),
			Date:                r.text(colTrendDate),
			Subcategory:         r.text(colTrendCategory),
			CurrentValue:        parseNumber(r[colTrendValue]),
		})
	}
	if len(trends) == 0 {
		return nil, false
	}
	return trends, true
}

// SortByScore returns a copy ordered by descending affiliate score.
func SortByScore(trends []Trend) []Trend {
	out := make([]Trend, len(trends))
	copy(out, trends)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AffiliateScore > out[j].AffiliateScore
	})
	return out
}

// parseNumber reads a float, accepting a decimal comma. Blank or invalid
// values are zero.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	f, _ := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return f
}
