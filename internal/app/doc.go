// Package app owns dispatch of one established connection to a handler.
//
// Ownership boundary:
// - protocol selection through the connection registry
// - route lookup and the fixed not-found / method-not-allowed replies
// - containment of handler failures (logged, never returned)
package app
