// Package connection owns the typed view of one client session.
//
// Ownership boundary:
// - protocol-tagged receive/send over a raw channel
// - request/response sequencing for http
// - handshake and close sequencing for websocket sessions
// - the protocol name -> connection registry
//
// A Connection is driven by a single goroutine; it holds no locks.
package connection
