package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RespondWithError sends a JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, errorResponse{Error: message})
}

// RespondWithJSON sends a JSON response with the given status code and payload.
// If the payload is nil, no body is sent.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// stripHTML returns the text content of a markup fragment with whitespace
// collapsed. Entities are decoded.
func stripHTML(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(input))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) {
				skip++
			}
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) && skip > 0 {
				skip--
			}
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// blockTags separate words when their markup is removed.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}

// truncateText shortens text to maxLength bytes, preferring a word break,
// and appends "...".
func truncateText(input string, maxLength int) string {
	if input == "" || maxLength <= 0 {
		return ""
	}
	if len(input) <= maxLength {
		return input
	}

	actualLength := maxLength - 3
	if actualLength <= 0 {
		return "..."
	}
	for actualLength > 0 && !utf8RuneStart(input[actualLength]) {
		actualLength--
	}

	text := input[:actualLength]
	if lastSpace := strings.LastIndex(text, " "); lastSpace > actualLength/2 {
		text = text[:lastSpace]
	}
	return text + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// plainText strips markup and truncates the result when maxLength > 0.
func plainText(input string, maxLength int) string {
	text := stripHTML(input)
	if maxLength > 0 {
		text = truncateText(text, maxLength)
	}
	return text
}
