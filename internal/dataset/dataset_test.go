package dataset

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"object", `{"datum":"2024-06-01","osm_gesamt":12}`, true},
		{"bom prefixed", "\xEF\xBB\xBF{\"datum\":\"2024-06-01\"}", true},
		{"empty object", `{}`, false},
		{"array", `[1,2]`, false},
		{"malformed", `{"datum":`, false},
		{"null", `null`, false},
		{"empty body", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseSummary([]byte(tt.body))
			if ok != tt.wantOK {
				t.Errorf("ParseSummary(%q) ok = %v, want %v", tt.body, ok, tt.wantOK)
			}
		})
	}
}

func TestSummaryAccessors(t *testing.T) {
	s, ok := ParseSummary([]byte(`{
		"datum": "2024-06-01",
		"osm_gesamt": 342,
		"bevoelkerung_aktuell": 71500.0,
		"events_gesamt": "14",
		"_demo": false
	}`))
	if !ok {
		t.Fatal("ParseSummary failed")
	}

	if got := s.Int(KeyPOITotal); got != 342 {
		t.Errorf("Int(osm_gesamt) = %d", got)
	}
	if got := s.Int(KeyPopulation); got != 71500 {
		t.Errorf("Int(bevoelkerung_aktuell) = %d", got)
	}
	if got := s.Int(KeyEventsTotal); got != 14 {
		t.Errorf("Int(events_gesamt) = %d", got)
	}
	if got := s.Text(KeyDate); got != "2024-06-01" {
		t.Errorf("Text(datum) = %q", got)
	}
	if got := s.Int(KeyPOIShops); got != 0 {
		t.Errorf("missing key = %d, want 0", got)
	}
	if got := s.Text("nope"); got != "" {
		t.Errorf("missing text = %q", got)
	}
	if s.IsDemo() {
		t.Error("IsDemo() = true for real data")
	}
}

func TestParseTrends(t *testing.T) {
	body := "gruppe,trend,affiliate_score\nFahrrad,steigend ↑,78\n"
	trends, ok := ParseTrends([]byte(body))
	if !ok {
		t.Fatal("ParseTrends failed")
	}
	want := []Trend{{Category: "Fahrrad", Direction: TrendRising, AffiliateScore: 78}}
	if !reflect.DeepEqual(trends, want) {
		t.Errorf("ParseTrends() = %+v, want %+v", trends, want)
	}
}

func TestParseTrendsRowTolerance(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantOK    bool
	}{
		{"all rows match", "a,b,c\n1,2,3\n4,5,6\n", 2, true},
		{"short row dropped", "a,b,c\n1,2,3\n4,5\n", 1, true},
		{"long row dropped", "a,b,c\n1,2,3\n4,5,6,7\n", 1, true},
		{"header only", "a,b,c\n", 0, false},
		{"trailing blank lines", "a,b,c\n1,2,3\n\n\n", 1, true},
		{"quoted commas", "a,b,c\n1,\"x, y\",3\n", 1, true},
		{"every row mismatched", "a,b,c\n1\n2\n", 0, false},
		{"unbalanced quote only drops its line", "a,b,c\n\"1,2,3\n4,5,6\n7,8,9\n", 2, true},
		{"crlf line endings", "a,b,c\r\n1,2,3\r\n4,5,6\r\n", 2, true},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends, ok := ParseTrends([]byte(tt.body))
			if ok != tt.wantOK || len(trends) != tt.wantCount {
				t.Errorf("ParseTrends() = %d rows, %v; want %d, %v", len(trends), ok, tt.wantCount, tt.wantOK)
			}
		})
	}
}

func TestParseTrendsFullRow(t *testing.T) {
	body := "\xEF\xBB\xBFdatum,gruppe,kategorie,trend,aktueller_wert,veraenderung_%,affiliate_score,empfohlene_partner,keywords\n" +
		"2024-06-01,Familie & Kinder,Kinderwagen,fallend ↓,41.5,-4.5,38,\"Amazon, myToys\",kinderwagen\n" +
		"2024-06-01,Fahrrad & Outdoor,E-Bike,steigend ↑,80,\"12,3\",78,Decathlon,ebike\n"

	trends, ok := ParseTrends([]byte(body))
	if !ok || len(trends) != 2 {
		t.Fatalf("ParseTrends() = %d rows, %v", len(trends), ok)
	}

	first := trends[0]
	if first.Category != "Familie & Kinder" || first.Direction != TrendFalling {
		t.Errorf("first row = %+v", first)
	}
	if first.PercentChange != -4.5 || first.AffiliateScore != 38 || first.CurrentValue != 41.5 {
		t.Errorf("first row numbers = %+v", first)
	}
	if first.RecommendedPartners != "Amazon, myToys" || first.Keywords != "kinderwagen" {
		t.Errorf("first row text = %+v", first)
	}
	if first.Date != "2024-06-01" || first.Subcategory != "Kinderwagen" {
		t.Errorf("first row extras = %+v", first)
	}
	if trends[1].PercentChange != 12.3 {
		t.Errorf("decimal comma parsed as %v", trends[1].PercentChange)
	}
	if trends[1].Direction.Kind() != "rising" {
		t.Errorf("Kind() = %q", trends[1].Direction.Kind())
	}
}

func TestTrendJSONUsesProducerKeys(t *testing.T) {
	b, err := json.Marshal(Trend{Category: "Fahrrad", Direction: TrendRising, AffiliateScore: 78, PercentChange: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"gruppe", "trend", "affiliate_score", "veraenderung_%", "empfohlene_partner"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
}

func TestSortByScore(t *testing.T) {
	in := []Trend{
		{Category: "a", AffiliateScore: 10},
		{Category: "b", AffiliateScore: 90},
		{Category: "c", AffiliateScore: 10},
	}
	got := SortByScore(in)
	order := []string{got[0].Category, got[1].Category, got[2].Category}
	if !reflect.DeepEqual(order, []string{"b", "a", "c"}) {
		t.Errorf("order = %v", order)
	}
	if in[0].Category != "a" || in[1].Category != "b" {
		t.Error("SortByScore modified its input")
	}
}

func TestParseArticles(t *testing.T) {
	body := `[
		{"datum":"2024-05-01","titel":"Erster","gruppe":"Mode","wortanzahl":900,"tokens":1200,"wp_id":null,"wp_url":null,"wp_status":"lokal_gespeichert","lokal":"output/a.md"},
		{"datum":"2024-06-01","titel":"Zweiter","gruppe":"Fahrrad","wortanzahl":"1820","wp_id":17,"wp_url":"https://example.com/?p=17","wp_status":"publish"}
	]`
	articles, ok := ParseArticles([]byte(body))
	if !ok || len(articles) != 2 {
		t.Fatalf("ParseArticles() = %d, %v", len(articles), ok)
	}
	if articles[0].Status != StatusLocal || articles[0].LocalPath != "output/a.md" || articles[0].URL != "" {
		t.Errorf("first article = %+v", articles[0])
	}
	if articles[1].WordCount != 1820 || articles[1].PostID != 17 || !articles[1].Status.Published() {
		t.Errorf("second article = %+v", articles[1])
	}

	for _, body := range []string{`[]`, `{}`, `not json`, ``} {
		if _, ok := ParseArticles([]byte(body)); ok {
			t.Errorf("ParseArticles(%q) succeeded", body)
		}
	}
}

func TestCountDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{`12`, 12},
		{`"12"`, 12},
		{`12.6`, 13},
		{`null`, 0},
		{`""`, 0},
		{`"viele"`, 0},
	}
	for _, tt := range tests {
		var c Count
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if c != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, c, tt.want)
		}
	}
}

func TestNewest(t *testing.T) {
	articles := []Article{{Title: "1"}, {Title: "2"}, {Title: "3"}}
	got := Newest(articles, 2)
	if len(got) != 2 || got[0].Title != "3" || got[1].Title != "2" {
		t.Errorf("Newest(2) = %+v", got)
	}
	if all := Newest(articles, 0); len(all) != 3 || all[2].Title != "1" {
		t.Errorf("Newest(0) = %+v", all)
	}
}

func TestParseCategoryCounts(t *testing.T) {
	body := "name,kategorie,lat\n" +
		"A,Laden,1\n" +
		"B,Laden,2\n" +
		"C,Laden,3\n" +
		"D,,4\n"
	counts, ok := ParseCategoryCounts([]byte(body))
	if !ok {
		t.Fatal("ParseCategoryCounts failed")
	}
	want := CategoryCounts{"Laden": 3, "Unknown": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestParseCategoryCountsMalformedLine(t *testing.T) {
	body := "name,kategorie\n\"Cafe,Laden\nB,Laden\nC,Laden\n"
	counts, ok := ParseCategoryCounts([]byte(body))
	if !ok {
		t.Fatal("ParseCategoryCounts failed")
	}
	want := CategoryCounts{"Laden": 2}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestCountCategoriesRowTolerance(t *testing.T) {
	header := []string{"name", "kategorie"}
	records := [][]string{
		{"A", "Freizeit"},
		{"B", "Freizeit", "extra", "fields"},
		{"C"},
		{"D", "  "},
	}
	counts := CountCategories(header, records)
	want := CategoryCounts{"Freizeit": 2, "Unknown": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
	if counts.Total() != 3 {
		t.Errorf("Total() = %d, want accepted rows 3", counts.Total())
	}
}

func TestCountCategoriesWithoutColumn(t *testing.T) {
	counts, ok := ParseCategoryCounts([]byte("name,lat\nA,1\nB,2\n"))
	if !ok || counts[UnknownCategory] != 2 || len(counts) != 1 {
		t.Errorf("counts = %v, %v", counts, ok)
	}
	if _, ok := ParseCategoryCounts([]byte("name,kategorie\n")); ok {
		t.Error("header-only file produced counts")
	}
}

func TestCategoryCountsSorted(t *testing.T) {
	got := CategoryCounts{"b": 2, "a": 2, "c": 5}.Sorted()
	want := []CategoryCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}

func TestDemoData(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	s := DemoSummary(now)
	if !s.IsDemo() || s.Text(KeyDate) != "2024-06-01" || s.Int(KeyPOITotal) != 342 {
		t.Errorf("DemoSummary() = %v", s)
	}

	trends := DemoTrends()
	if len(trends) != 6 || trends[0].Direction != TrendRising || trends[4].PercentChange != -4.5 {
		t.Errorf("DemoTrends() = %+v", trends)
	}

	articles := DemoArticles(now)
	if len(articles) != 1 || articles[0].Date != "2024-06-01" || articles[0].Status != StatusDraft {
		t.Errorf("DemoArticles() = %+v", articles)
	}

	counts := DemoCategoryCounts()
	if counts.Total() != 292 {
		t.Errorf("DemoCategoryCounts().Total() = %d", counts.Total())
	}

	// Callers may modify what they get back.
	DemoTrends()[0].AffiliateScore = 0
	if DemoTrends()[0].AffiliateScore != 78 {
		t.Error("demo trends share state between calls")
	}
}
