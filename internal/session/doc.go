// Package session tracks the date each user picked while the bot waits for their location.
//
// A Store holds at most one pending date per user. Set overwrites, Pop reads
// and removes in one step. MemoryStore keeps entries in the process;
// RedisStore shares them across processes. Entries never expire.
package session
