// Package line builds LINE Messaging API replies for the event search conversation.
//
// The formatter functions return ready-to-send messages (buttons prompts,
// event carousels, plain text). Client sends them as replies through the
// official SDK; handlers depend on the Replier interface so tests can record
// replies instead.
package line
