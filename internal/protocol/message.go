package protocol

import "strings"

// Message is a single wire message. Every message carries a "type" field
// formatted as "<protocol>.<subtype>".
type Message map[string]any

// SplitType splits a wire type on its first dot. The subtype keeps any further
// segments, so "http.response.body" yields ("http", "response.body").
func SplitType(t string) (string, string) {
	protocol, subtype, _ := strings.Cut(t, ".")
	return protocol, subtype
}

func (m Message) Type() string {
	v, _ := m["type"].(string)
	return v
}

func (m Message) Protocol() string {
	p, _ := SplitType(m.Type())
	return p
}

func (m Message) Subtype() string {
	_, s := SplitType(m.Type())
	return s
}

// Without returns a shallow copy of m with the given keys removed.
func (m Message) Without(keys ...string) Message {
	out := make(Message, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Bytes returns the byte payload under key. Strings are converted so that
// transports decoding text frames still read as bodies.
func (m Message) Bytes(key string) []byte {
	switch v := m[key].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}

func (m Message) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

func (m Message) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// Int returns the integer under key, tolerating the numeric types produced by
// decoders.
func (m Message) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Headers returns the raw header list carried by a start or accept message.
func (m Message) Headers() []HeaderPair {
	return headerPairs(m["headers"])
}
