package server

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crdashboard/internal/dashboard"
	"crdashboard/internal/dataset"
	"crdashboard/internal/rss"
)

const (
	rssMaxItems       = 50
	rssTitleMaxLength = 200
)

// handleData serves one dashboard data set selected by the type parameter.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	kind, err := dashboard.ParseKind(r.FormValue("type"))
	if err != nil {
		RespondWithJSON(w, http.StatusBadRequest, dataErrorResponse{Success: false, Data: err.Error()})
		return
	}

	res, err := s.dashboard.Data(r.Context(), kind)
	if err != nil {
		RespondWithJSON(w, http.StatusBadRequest, dataErrorResponse{Success: false, Data: err.Error()})
		return
	}
	RespondWithJSON(w, http.StatusOK, dataResponse{Success: true, Demo: res.Demo, Data: res.Data})
}

// handleArticlesRSS publishes the article log as RSS 2.0, newest first.
func (s *Server) handleArticlesRSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	siteURL := s.siteURL(r)
	res := s.dashboard.GetArticles(r.Context())

	description := "Generated articles"
	if res.Demo {
		description += " (demo data)"
	}
	feed := rss.RSS{
		Version: "2.0",
		Channel: rss.Channel{
			Title:         "Content log",
			Link:          siteURL,
			Description:   description,
			Language:      "de-de",
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}
	for i, a := range dataset.Newest(res.Data, rssMaxItems) {
		feed.Channel.Items = append(feed.Channel.Items, articleItem(a, siteURL, len(res.Data)-1-i))
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		s.logger.Printf("Error marshalling RSS feed to XML: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if _, err := w.Write(out); err != nil {
		s.logger.Printf("Error writing RSS XML response: %v", err)
	}
}

// articleItem renders one log entry. seq is the entry's position in the log
// and keeps GUIDs stable for articles without a URL.
func articleItem(a dataset.Article, siteURL string, seq int) rss.Item {
	item := rss.Item{
		Title:       plainText(a.Title, rssTitleMaxLength),
		Link:        siteURL,
		Description: fmt.Sprintf("%d words, %s", a.WordCount, a.Status),
		Category:    a.Category,
		GUID:        &rss.GUID{Value: siteURL + "/articles.rss#" + strconv.Itoa(seq)},
	}
	if isAbsoluteURL(a.URL) {
		item.Link = a.URL
		item.GUID = &rss.GUID{Value: a.URL, IsPermaLink: true}
	}
	if t, err := time.Parse("2006-01-02", a.Date); err == nil {
		item.PubDate = t.Format(time.RFC1123Z)
	}
	return item
}

func isAbsoluteURL(u string) bool {
	return strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://")
}

func (s *Server) siteURL(r *http.Request) string {
	if s.config.SiteURL != "" {
		return strings.TrimRight(s.config.SiteURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Printf("Health check failed: DB ping error: %v", err)
		http.Error(w, "DB Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
