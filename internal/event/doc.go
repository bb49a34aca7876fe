// Package event provides the scraped event record and the date choices a user can search by.
//
// A Record is produced per scrape and never persisted. Date choices map the
// three quick-reply labels (today, tomorrow, this weekend) to a concrete
// YYYY-MM-DD date relative to the current time.
package event
