// Package scraper provides HTTP fetching and HTML parsing for walkerplus.com event listings.
//
// The scraper issues a single GET against the event search page for a date
// and coordinate, then extracts up to five event records from the returned
// HTML. Event containers are located by an ordered list of strategies; the
// first strategy that matches anything wins. Every failure degrades to fewer
// or zero records, never to an error for the caller.
package scraper
