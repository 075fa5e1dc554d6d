// Package dataset turns published snapshot files into dashboard records.
package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Keys the summary producer is known to write. None are guaranteed.
const (
	KeyDate          = "datum"
	KeyPOITotal      = "osm_gesamt"
	KeyPOIShops      = "osm_laeden"
	KeyPOIGastronomy = "osm_gastronomie"
	KeyPOILeisure    = "osm_freizeit"
	KeyEventsTotal   = "events_gesamt"
	KeyPopulation    = "bevoelkerung_aktuell"
	KeyDemo          = "_demo"
)

// Summary is the open key/value record of a summary snapshot.
// Accessors return the zero value for missing or mistyped keys.
type Summary map[string]any

// ParseSummary decodes a JSON object. Anything else, including an empty
// object, is reported as no data.
func ParseSummary(body []byte) (Summary, bool) {
	dec := json.NewDecoder(bytes.NewReader(trimBOM(body)))
	dec.UseNumber()

	var s Summary
	if err := dec.Decode(&s); err != nil || len(s) == 0 {
		return nil, false
	}
	return s, true
}

func (s Summary) Float(key string) float64 {
	switch v := s[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

func (s Summary) Int(key string) int64 {
	switch v := s[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return int64(f)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return int64(s.Float(key))
}

func (s Summary) Text(key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func (s Summary) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case json.Number:
		return v.String() != "0"
	}
	return false
}

// IsDemo reports whether the record is demo data.
func (s Summary) IsDemo() bool {
	return s.Bool(KeyDemo)
}
