package dataset

import "sort"

const (
	// CategoryColumn is the point-of-interest column counts are folded on.
	CategoryColumn = "kategorie"
	// UnknownCategory collects rows with a blank or missing category.
	UnknownCategory = "Unknown"
)

// CategoryCounts maps a category name to its number of rows.
type CategoryCounts map[string]int

// ParseCategoryCounts reads a point-of-interest CSV and counts rows per
// category. Rows shorter than the header are skipped, longer ones are
// truncated to it.
func ParseCategoryCounts(body []byte) (CategoryCounts, bool) {
	header, records, ok := readTable(body)
	if !ok {
		return nil, false
	}
	counts := CountCategories(header, records)
	if len(counts) == 0 {
		return nil, false
	}
	return counts, true
}

// CountCategories folds rows into per-category counts.
func CountCategories(header []string, records [][]string) CategoryCounts {
	counts := make(CategoryCounts)
	for _, rec := range records {
		if len(rec) < len(header) {
			continue
		}
		cat := newRow(header, rec[:len(header)]).text(CategoryColumn)
		if cat == "" {
			cat = UnknownCategory
		}
		counts[cat]++
	}
	return counts
}

// Total is the number of counted rows.
func (c CategoryCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Sorted lists categories by descending count, then by name.
func (c CategoryCounts) Sorted() []CategoryCount {
	out := make([]CategoryCount, 0, len(c))
	for cat, n := range c {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
