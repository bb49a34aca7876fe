// Package bot implements the event search conversation.
//
// A user sends "search events", picks a date from the buttons, then shares a
// location. The picked date is held in a session.Store until the location
// arrives; the location triggers one scrape and a carousel (or a "no events"
// message) as the reply. Any other text is echoed back.
package bot
