// Package protocol owns the wire message contract shared by every connection.
//
// Ownership boundary:
// - wire message and scope shapes
// - "<protocol>.<subtype>" type parsing
// - the request value handed to applications
// - protocol error taxonomy
package protocol
