package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PublishStatus is the WordPress status recorded for an article.
type PublishStatus string

const (
	StatusPublish PublishStatus = "publish"
	StatusDraft   PublishStatus = "draft"
	StatusPrivate PublishStatus = "private"
	// StatusLocal marks articles that were only saved to disk.
	StatusLocal PublishStatus = "lokal_gespeichert"
)

// Published reports whether the article is publicly visible.
func (s PublishStatus) Published() bool {
	return s == StatusPublish
}

// Count is an integer that also decodes from a JSON string, a float or null.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*c = 0
			return nil
		}
	}
	if i, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*c = Count(i)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(math.Round(f))
	return nil
}

// Article is one entry of the content log.
type Article struct {
	Date      string        `json:"datum"`
	Title     string        `json:"titel"`
	Category  string        `json:"gruppe"`
	WordCount Count         `json:"wortanzahl"`
	Status    PublishStatus `json:"wp_status"`
	URL       string        `json:"wp_url,omitempty"`
	Tokens    Count         `json:"tokens,omitempty"`
	PostID    Count         `json:"wp_id,omitempty"`
	LocalPath string        `json:"lokal,omitempty"`
}

// ParseArticles decodes the content log, a JSON array in append order.
func ParseArticles(body []byte) ([]Article, bool) {
	var articles []Article
	if err := json.Unmarshal(trimBOM(body), &articles); err != nil || len(articles) == 0 {
		return nil, false
	}
	return articles, true
}

// Newest returns up to n articles, most recent first. n <= 0 means all.
func Newest(articles []Article, n int) []Article {
	if n <= 0 || n > len(articles) {
		n = len(articles)
	}
	out := make([]Article, 0, n)
	for i := len(articles) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, articles[i])
	}
	return out
}
