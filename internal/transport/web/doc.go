// Package web bridges net/http requests onto the raw message channel.
//
// Ownership boundary:
// - scope construction from an inbound request
// - http.request / http.response.* exchange over a ResponseWriter
// - websocket.* exchange over a gorilla websocket upgrade
// - optional bearer-token authentication of websocket upgrades
package web
