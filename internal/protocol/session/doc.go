// Package session owns the duplex-session state machine.
//
// Ownership boundary:
// - client axis transitions (what may be received)
// - application axis transitions (what may be sent)
//
// Transitions are pure functions so the machine can be audited and tested
// without a channel.
package session
