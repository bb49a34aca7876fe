// Package cli implements the command-line interface for walker-events.
//
// The root command (and its "serve" alias) runs the LINE webhook server.
// The "scrape" command runs a single listing search from the terminal and
// prints the records as text or JSON, which is handy when the site layout
// changes and the container strategies need checking.
package cli
