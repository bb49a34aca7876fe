package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/pfrederiksen/walker-events/internal/event"
	"github.com/pfrederiksen/walker-events/internal/line"
	"github.com/pfrederiksen/walker-events/internal/logger"
	"github.com/pfrederiksen/walker-events/internal/session"
)

// NoSourceText answers a date selection from a conversation with no usable id
const NoSourceText = "Event search is not available in this conversation."

// Scraper looks up events near a coordinate on a date
type Scraper interface {
	Scrape(ctx context.Context, lat, lng float64, date string) []event.Record
}

// Bot routes webhook events through the search conversation
type Bot struct {
	sessions session.Store
	scraper  Scraper
	replier  line.Replier
	now      func() time.Time
	log      *logger.Logger
}

// Option customises a Bot
type Option func(*Bot)

// WithClock replaces time.Now for date calculations
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithLogger replaces the default logger
func WithLogger(l *logger.Logger) Option {
	return func(b *Bot) {
		b.log = l
	}
}

// New creates a Bot
func New(sessions session.Store, scraper Scraper, replier line.Replier, opts ...Option) *Bot {
	b := &Bot{
		sessions: sessions,
		scraper:  scraper,
		replier:  replier,
		now:      time.Now,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleCallback processes every event in a webhook delivery, in order
func (b *Bot) HandleCallback(ctx context.Context, cb *webhook.CallbackRequest) {
	for _, evt := range cb.Events {
		b.HandleEvent(ctx, evt)
	}
}

// HandleEvent dispatches a single webhook event. Failures are logged; the
// platform gets no retry signal.
func (b *Bot) HandleEvent(ctx context.Context, evt webhook.EventInterface) {
	switch e := evt.(type) {
	case webhook.MessageEvent:
		b.handleMessage(ctx, e)
	case webhook.PostbackEvent:
		logger.IncrCounter("events.postback")
		data := ""
		if e.Postback != nil {
			data = e.Postback.Data
		}
		b.log.Debug("Ignoring postback", logger.Fields{"key": sessionKey(e.Source), "data": data})
	default:
		logger.IncrCounter("events.ignored")
		b.log.Debug("Ignoring event", logger.Fields{"type": fmt.Sprintf("%T", evt)})
	}
}

func (b *Bot) handleMessage(ctx context.Context, e webhook.MessageEvent) {
	key := sessionKey(e.Source)

	var err error
	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		logger.IncrCounter("events.text")
		err = b.HandleText(ctx, e.ReplyToken, key, m.Text)
	case webhook.LocationMessageContent:
		logger.IncrCounter("events.location")
		err = b.HandleLocation(ctx, e.ReplyToken, key, m.Latitude, m.Longitude)
	default:
		logger.IncrCounter("events.ignored")
		b.log.Debug("Ignoring message", logger.Fields{"key": key, "type": fmt.Sprintf("%T", e.Message)})
		return
	}

	if err != nil {
		logger.IncrCounter("reply.failures")
		b.log.Error("Handling message failed", logger.Fields{"key": key, "reply_token": e.ReplyToken}, err)
	}
}

// HandleText answers a text message. key identifies whose session to use.
func (b *Bot) HandleText(ctx context.Context, replyToken, key, text string) error {
	if text == line.SearchCommand {
		return b.reply(ctx, replyToken, line.DatePrompt())
	}

	if choice, ok := event.ParseChoice(text); ok {
		if key == "" {
			b.log.Warn("Date selected without a source id", logger.Fields{"choice": string(choice)})
			return b.reply(ctx, replyToken, line.Text(NoSourceText))
		}
		date := choice.DateString(b.now())
		if err := b.sessions.Set(ctx, key, date); err != nil {
			b.log.Error("Storing session failed", logger.Fields{"key": key, "date": date}, err)
			return b.reply(ctx, replyToken, line.Text("Could not save your date, please try again."))
		}
		b.log.Info("Date selected", logger.Fields{"key": key, "choice": string(choice), "date": date})
		return b.reply(ctx, replyToken, line.LocationPrompt(date))
	}

	return b.reply(ctx, replyToken, line.Text(text))
}

// HandleLocation runs a search for the pending date, if there is one
func (b *Bot) HandleLocation(ctx context.Context, replyToken, key string, lat, lng float64) error {
	if key == "" {
		return b.reply(ctx, replyToken, line.NoDateSelected())
	}

	date, ok, err := b.sessions.Pop(ctx, key)
	if err != nil {
		b.log.Error("Reading session failed", logger.Fields{"key": key}, err)
		ok = false
	}
	if !ok {
		return b.reply(ctx, replyToken, line.NoDateSelected())
	}

	records := b.scraper.Scrape(ctx, lat, lng, date)
	b.log.Info("Search finished", logger.Fields{
		"key":    key,
		"date":   date,
		"lat":    lat,
		"lng":    lng,
		"events": len(records),
	})

	return b.reply(ctx, replyToken, line.SearchResult(date, lat, lng, records))
}

func (b *Bot) reply(ctx context.Context, replyToken string, msg messaging_api.MessageInterface) error {
	return b.replier.Reply(ctx, replyToken, msg)
}

// sessionKey identifies the conversation a session belongs to: the user when
// known, otherwise the group or room.
func sessionKey(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		if s.UserId != "" {
			return s.UserId
		}
		return s.GroupId
	case webhook.RoomSource:
		if s.UserId != "" {
			return s.UserId
		}
		return s.RoomId
	default:
		return ""
	}
}
