package line

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/pfrederiksen/walker-events/internal/event"
)

const (
	// SearchCommand starts a search
	SearchCommand = "search events"

	// LocationCommand is sent by the button on the location prompt. It is
	// only a reminder; the search runs when a real location message arrives.
	LocationCommand = "sending my location"

	// MaxCarouselColumns is the platform limit on carousel columns
	MaxCarouselColumns = 10

	maxColumnText = 60
	maxAltText    = 400
)

// DatePrompt asks which day to search
func DatePrompt() messaging_api.MessageInterface {
	actions := make([]messaging_api.ActionInterface, 0, len(event.Choices))
	for _, c := range event.Choices {
		actions = append(actions, &messaging_api.MessageAction{
			Label: c.Label(),
			Text:  c.Command(),
		})
	}

	return &messaging_api.TemplateMessage{
		AltText: "Choose a date",
		Template: &messaging_api.ButtonsTemplate{
			Title:   "Event search",
			Text:    "Which day are you looking for events?",
			Actions: actions,
		},
	}
}

// LocationPrompt confirms the date and asks for a location
func LocationPrompt(date string) messaging_api.MessageInterface {
	return &messaging_api.TemplateMessage{
		AltText: "Send your location",
		Template: &messaging_api.ButtonsTemplate{
			Title: "Date selected",
			Text:  fmt.Sprintf("Selected date: %s\nNow send your location.", date),
			Actions: []messaging_api.ActionInterface{
				&messaging_api.MessageAction{
					Label: "Send location",
					Text:  LocationCommand,
				},
			},
		},
	}
}

// Text wraps plain text
func Text(text string) messaging_api.MessageInterface {
	return &messaging_api.TextMessage{Text: text}
}

// NoDateSelected tells the user to pick a date before sending a location
func NoDateSelected() messaging_api.MessageInterface {
	return Text(fmt.Sprintf("No date selected yet.\nStart again with \"%s\".", SearchCommand))
}

// NoEventsFound reports an empty search
func NoEventsFound(date string, lat, lng float64) messaging_api.MessageInterface {
	return Text(fmt.Sprintf("No events found around %s, %s on %s.\nTry another date or place.",
		formatCoord(lat), formatCoord(lng), date))
}

// EventCarousel renders one column per record. Callers pass at least one record.
func EventCarousel(date string, records []event.Record) messaging_api.MessageInterface {
	if len(records) > MaxCarouselColumns {
		records = records[:MaxCarouselColumns]
	}

	// Columns must agree on whether they carry a thumbnail
	withImages := allHaveSecureImages(records)

	columns := make([]messaging_api.CarouselColumn, 0, len(records))
	for _, rec := range records {
		col := messaging_api.CarouselColumn{
			Title: rec.DisplayTitle(),
			Text:  event.Truncate(fmt.Sprintf("Date: %s", date), maxColumnText),
			Actions: []messaging_api.ActionInterface{
				&messaging_api.UriAction{
					Label: "View details",
					Uri:   rec.LinkURL,
				},
			},
		}
		if withImages {
			col.ThumbnailImageUrl = rec.ImageURL
		}
		columns = append(columns, col)
	}

	return &messaging_api.TemplateMessage{
		AltText:  event.Truncate(fmt.Sprintf("Found %d events", len(records)), maxAltText),
		Template: &messaging_api.CarouselTemplate{Columns: columns},
	}
}

// SearchResult picks the carousel or the empty-result text
func SearchResult(date string, lat, lng float64, records []event.Record) messaging_api.MessageInterface {
	if len(records) == 0 {
		return NoEventsFound(date, lat, lng)
	}
	return EventCarousel(date, records)
}

func allHaveSecureImages(records []event.Record) bool {
	for _, rec := range records {
		if !strings.HasPrefix(rec.ImageURL, "https://") {
			return false
		}
	}
	return len(records) > 0
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
