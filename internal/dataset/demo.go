package dataset

import "time"

const dateLayout = "2006-01-02"

// DemoSummary is returned when no real summary is available.
func DemoSummary(now time.Time) Summary {
	return Summary{
		KeyDate:          now.Format(dateLayout),
		KeyPOITotal:      342,
		KeyPOIShops:      128,
		KeyPOIGastronomy: 87,
		KeyPOILeisure:    63,
		KeyEventsTotal:   14,
		KeyPopulation:    71500,
		KeyDemo:          true,
	}
}

func DemoTrends() []Trend {
	return []Trend{
		{Category: "Fahrrad & Outdoor", Direction: TrendRising, AffiliateScore: 78, PercentChange: 12.3, RecommendedPartners: "Decathlon, Amazon"},
		{Category: "Heimwerken & Garten", Direction: TrendStable, AffiliateScore: 65, PercentChange: 2.1, RecommendedPartners: "OBI, Hornbach"},
		{Category: "Elektronik & Technik", Direction: TrendRising, AffiliateScore: 61, PercentChange: 8.7, RecommendedPartners: "Amazon, MediaMarkt"},
		{Category: "Gesundheit & Fitness", Direction: TrendStable, AffiliateScore: 54, PercentChange: 1.2, RecommendedPartners: "Myprotein, SportScheck"},
		{Category: "Familie & Kinder", Direction: TrendFalling, AffiliateScore: 38, PercentChange: -4.5, RecommendedPartners: "Amazon, myToys"},
		{Category: "Mode & Lifestyle", Direction: TrendStable, AffiliateScore: 35, PercentChange: 0.8, RecommendedPartners: "Zalando, AboutYou"},
	}
}

func DemoArticles(now time.Time) []Article {
	return []Article{{
		Date:      now.Format(dateLayout),
		Title:     "E-Bikes im Ruhrgebiet – Demo",
		Category:  "Fahrrad & Outdoor",
		WordCount: 1820,
		Status:    StatusDraft,
		URL:       "#",
	}}
}

func DemoCategoryCounts() CategoryCounts {
	return CategoryCounts{
		"Laden/Geschäft":      128,
		"Gastronomie/Service": 87,
		"Freizeit":            63,
		"Tourismus":           14,
	}
}
