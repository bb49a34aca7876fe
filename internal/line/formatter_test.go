package line

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/pfrederiksen/walker-events/internal/event"
)

func asTemplate(t *testing.T, msg messaging_api.MessageInterface) *messaging_api.TemplateMessage {
	t.Helper()
	tm, ok := msg.(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("message is %T, want *TemplateMessage", msg)
	}
	return tm
}

func asText(t *testing.T, msg messaging_api.MessageInterface) string {
	t.Helper()
	tm, ok := msg.(*messaging_api.TextMessage)
	if !ok {
		t.Fatalf("message is %T, want *TextMessage", msg)
	}
	return tm.Text
}

func TestDatePrompt(t *testing.T) {
	tm := asTemplate(t, DatePrompt())

	buttons, ok := tm.Template.(*messaging_api.ButtonsTemplate)
	if !ok {
		t.Fatalf("template is %T, want *ButtonsTemplate", tm.Template)
	}
	if len(buttons.Actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(buttons.Actions))
	}

	wantTexts := []string{"events today", "events tomorrow", "events this weekend"}
	for i, a := range buttons.Actions {
		action, ok := a.(*messaging_api.MessageAction)
		if !ok {
			t.Fatalf("action %d is %T, want *MessageAction", i, a)
		}
		if action.Text != wantTexts[i] {
			t.Errorf("action %d text = %q, want %q", i, action.Text, wantTexts[i])
		}
		if action.Label == "" {
			t.Errorf("action %d has no label", i)
		}
	}
}

func TestLocationPrompt(t *testing.T) {
	tm := asTemplate(t, LocationPrompt("2024-01-19"))

	buttons := tm.Template.(*messaging_api.ButtonsTemplate)
	if !strings.Contains(buttons.Text, "2024-01-19") {
		t.Errorf("prompt text %q should contain the date", buttons.Text)
	}
	if len(buttons.Actions) != 1 {
		t.Errorf("got %d actions, want 1", len(buttons.Actions))
	}
}

func TestNoEventsFound(t *testing.T) {
	text := asText(t, NoEventsFound("2024-01-15", 35.6762, 139.6503))

	for _, want := range []string{"2024-01-15", "35.6762", "139.6503"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q should contain %q", text, want)
		}
	}
}

func TestNoDateSelected(t *testing.T) {
	text := asText(t, NoDateSelected())
	if !strings.Contains(text, SearchCommand) {
		t.Errorf("text %q should point at %q", text, SearchCommand)
	}
}

func TestEventCarousel(t *testing.T) {
	records := []event.Record{
		{
			Title:    "Spring Sakura Festival with a much longer name than fits a column",
			ImageURL: "https://www.walkerplus.com/images/event1.jpg",
			LinkURL:  "https://www.walkerplus.com/event/spring-sakura",
		},
		{
			Title:    "Art Exhibition",
			ImageURL: "https://www.walkerplus.com/images/event2.jpg",
			LinkURL:  "https://www.walkerplus.com/event/art-exhibition",
		},
	}

	tm := asTemplate(t, EventCarousel("2024-01-15", records))
	if !strings.Contains(tm.AltText, "2") {
		t.Errorf("alt text %q should mention the count", tm.AltText)
	}

	carousel, ok := tm.Template.(*messaging_api.CarouselTemplate)
	if !ok {
		t.Fatalf("template is %T, want *CarouselTemplate", tm.Template)
	}
	if len(carousel.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(carousel.Columns))
	}

	first := carousel.Columns[0]
	if len([]rune(first.Title)) != event.MaxTitleLength {
		t.Errorf("title length = %d, want %d", len([]rune(first.Title)), event.MaxTitleLength)
	}
	if first.Text != "Date: 2024-01-15" {
		t.Errorf("column text = %q", first.Text)
	}
	if first.ThumbnailImageUrl != records[0].ImageURL {
		t.Errorf("thumbnail = %q, want %q", first.ThumbnailImageUrl, records[0].ImageURL)
	}
	if len(first.Actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(first.Actions))
	}
	uri, ok := first.Actions[0].(*messaging_api.UriAction)
	if !ok {
		t.Fatalf("action is %T, want *UriAction", first.Actions[0])
	}
	if uri.Uri != records[0].LinkURL {
		t.Errorf("action uri = %q, want %q", uri.Uri, records[0].LinkURL)
	}

	if carousel.Columns[1].Title != "Art Exhibition" {
		t.Errorf("second title = %q", carousel.Columns[1].Title)
	}
}

func TestEventCarousel_ThumbnailsAllOrNothing(t *testing.T) {
	records := []event.Record{
		{Title: "A", ImageURL: "https://img.example.com/a.jpg", LinkURL: "https://e.example.com/a"},
		{Title: "B", LinkURL: "https://e.example.com/b"},
		{Title: "C", ImageURL: "http://img.example.com/c.jpg", LinkURL: "https://e.example.com/c"},
	}

	carousel := asTemplate(t, EventCarousel("2024-01-15", records)).Template.(*messaging_api.CarouselTemplate)
	for i, col := range carousel.Columns {
		if col.ThumbnailImageUrl != "" {
			t.Errorf("column %d thumbnail = %q, want none", i, col.ThumbnailImageUrl)
		}
	}
}

func TestEventCarousel_ColumnLimit(t *testing.T) {
	records := make([]event.Record, MaxCarouselColumns+3)
	for i := range records {
		records[i] = event.Record{Title: "x", LinkURL: "https://e.example.com"}
	}

	carousel := asTemplate(t, EventCarousel("2024-01-15", records)).Template.(*messaging_api.CarouselTemplate)
	if len(carousel.Columns) != MaxCarouselColumns {
		t.Errorf("got %d columns, want %d", len(carousel.Columns), MaxCarouselColumns)
	}
}

func TestSearchResult(t *testing.T) {
	empty := SearchResult("2024-01-15", 35.0, 139.0, nil)
	if _, ok := empty.(*messaging_api.TextMessage); !ok {
		t.Errorf("empty result is %T, want *TextMessage", empty)
	}

	found := SearchResult("2024-01-15", 35.0, 139.0, []event.Record{{Title: "A", LinkURL: "https://e.example.com/a"}})
	if _, ok := found.(*messaging_api.TemplateMessage); !ok {
		t.Errorf("result is %T, want *TemplateMessage", found)
	}
}
