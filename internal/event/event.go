package event

import (
	"strings"
	"unicode/utf8"
)

const (
	// UnknownTitle is used when a listing has no title element at all.
	UnknownTitle = "unknown title"

	// MaxTitleLength is the longest title a carousel column accepts.
	MaxTitleLength = 40
)

// Record represents one event scraped from the listing site
type Record struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
}

// DisplayTitle returns the title cut to MaxTitleLength characters.
func (r Record) DisplayTitle() string {
	return Truncate(r.Title, MaxTitleLength)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// CompactDate converts a YYYY-MM-DD date to the YYYYMMDD form used in listing queries.
func CompactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}
