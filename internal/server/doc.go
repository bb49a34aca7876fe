// Package server exposes the LINE webhook over HTTP.
//
// Routes:
//
//	GET  /          liveness check, static text
//	POST /callback  LINE webhook; 400 on a bad signature, 200 "OK" once handled
//	GET  /metrics   JSON snapshot of in-process counters and timings
package server
