package protocol

const (
	ProtocolHTTP      = "http"
	ProtocolWebSocket = "websocket"
)

// HeaderPair is one raw (name, value) header as carried on the wire.
type HeaderPair [2][]byte

// Header builds a HeaderPair from strings.
func Header(name, value string) HeaderPair {
	return HeaderPair{[]byte(name), []byte(value)}
}

// Scope is the static per-connection metadata supplied when a connection is
// established. It is never mutated after construction.
type Scope map[string]any

// Type returns the protocol name the scope declares.
func (s Scope) Type() string {
	v, _ := s["type"].(string)
	return v
}

// String returns the string value stored under key, or "" when absent.
func (s Scope) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Headers returns the raw header list.
func (s Scope) Headers() []HeaderPair {
	return headerPairs(s["headers"])
}

// headerPairs accepts the header list shapes transports and callers produce.
func headerPairs(v any) []HeaderPair {
	switch h := v.(type) {
	case []HeaderPair:
		return h
	case [][2][]byte:
		out := make([]HeaderPair, len(h))
		for i, pair := range h {
			out[i] = HeaderPair(pair)
		}
		return out
	case [][][]byte:
		out := make([]HeaderPair, 0, len(h))
		for _, pair := range h {
			if len(pair) != 2 {
				continue
			}
			out = append(out, HeaderPair{pair[0], pair[1]})
		}
		return out
	default:
		return nil
	}
}

// Request is an inbound message translated for application code. Data holds
// every wire field except "type".
type Request struct {
	Protocol string
	Type     string
	Data     Message
}

// Body returns the request's byte payload.
func (r Request) Body() []byte {
	return r.Data.Bytes("body")
}

// MoreBody reports whether further body chunks follow this request.
func (r Request) MoreBody() bool {
	return r.Data.Bool("more_body")
}

// Text returns the text payload of a websocket receive, if one is present.
func (r Request) Text() (string, bool) {
	v, ok := r.Data["text"].(string)
	return v, ok
}
