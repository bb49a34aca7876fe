package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/walker-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	SearchedAt time.Time      `json:"searched_at"`
	Date       string         `json:"date"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Events     []event.Record `json:"events"`
	EventCount int            `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		fmt.Fprintf(w, "No events found for %s.\n", result.Date)
		return nil
	}

	fmt.Fprintf(w, "Events on %s:\n", result.Date)
	for i, rec := range result.Events {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Title)
		fmt.Fprintf(w, "   %s\n", rec.LinkURL)
		if verbose && rec.ImageURL != "" {
			fmt.Fprintf(w, "   Image: %s\n", rec.ImageURL)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)

	return nil
}
