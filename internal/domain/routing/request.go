// Package routing implements the request classification and routing engine.
// It provides rules that classify an inbound chat-completion request into a
// symbolic label, and an immutable routing table that resolves labels to
// downstream model targets with deterministic fallback.
package routing

import (
	"encoding/json"
	"strings"
)

// tokenCountFields are the top-level request fields accepted as an explicit
// token count. When several are present, the largest value wins.
var tokenCountFields = []string{"token_count", "input_tokens", "prompt_tokens"}

// Message is a read-only view of a single chat message.
// Content is either a plain string or a list of typed content parts.
type Message struct {
	Role    string
	Content any
}

// Request is a read-only structured view over an inbound chat-completion
// request body. It is constructed from an arbitrary decoded JSON value and
// never mutates the underlying data.
type Request struct {
	raw map[string]any
}

// ParseRequest wraps a decoded request body in a Request view.
// Returns false if the body is not a structured object (e.g. a bare string,
// number, or nil), in which case classification falls back to the default label.
func ParseRequest(body any) (*Request, bool) {
	m, ok := body.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return &Request{raw: m}, true
}

// ParseRequestJSON decodes raw JSON bytes into a Request view.
func ParseRequestJSON(data []byte) (*Request, bool) {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, false
	}
	return ParseRequest(body)
}

// Model returns the request's target model string, or "" if absent.
func (r *Request) Model() string {
	if r == nil {
		return ""
	}
	if s, ok := r.raw["model"].(string); ok {
		return s
	}
	return ""
}

// Has reports whether the given top-level field key is present on the request,
// regardless of its value. Presence alone is significant: false, 0, "" and
// null all count as present.
func (r *Request) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.raw[key]
	return ok
}

// Field returns the value of a top-level request field.
func (r *Request) Field(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.raw[key]
	return v, ok
}

// Messages returns the request's message list in order.
// Malformed entries are skipped.
func (r *Request) Messages() []Message {
	if r == nil {
		return nil
	}
	list, ok := r.raw["messages"].([]any)
	if !ok {
		return nil
	}

	msgs := make([]Message, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role, _ := m["role"].(string)
		msgs = append(msgs, Message{Role: role, Content: m["content"]})
	}
	return msgs
}

// Tools returns the request's declared tools as an opaque list.
// Entries may be maps in either the direct-name or function-wrapped shape,
// or bare strings.
func (r *Request) Tools() []any {
	if r == nil {
		return nil
	}
	list, ok := r.raw["tools"].([]any)
	if !ok {
		return nil
	}
	return list
}

// ExplicitTokenCount returns the largest explicit numeric token count found on
// the request, checking each accepted field name. Returns false if none are
// present or none parse as a number.
func (r *Request) ExplicitTokenCount() (int, bool) {
	if r == nil {
		return 0, false
	}

	best := 0
	found := false
	for _, field := range tokenCountFields {
		if v, ok := r.raw[field]; ok {
			if n, ok := toInt(v); ok {
				found = true
				if n > best {
					best = n
				}
			}
		}
	}
	return best, found
}

// TextContent concatenates all textual content of the request: the system
// prompt (when textual) and every message's text. For mixed-modality content
// only text-typed parts contribute; images and other non-text parts are
// excluded from the tally.
func (r *Request) TextContent() string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	if sys, ok := r.raw["system"]; ok {
		appendContentText(&b, sys)
	}
	for _, msg := range r.Messages() {
		appendContentText(&b, msg.Content)
	}
	return b.String()
}

// appendContentText appends the textual portion of a message content value.
// Content is either a plain string or a list of typed parts.
func appendContentText(b *strings.Builder, content any) {
	switch c := content.(type) {
	case string:
		b.WriteString(c)
	case []any:
		for _, item := range c {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := part["type"].(string); t != "" && t != "text" {
				continue
			}
			if text, ok := part["text"].(string); ok {
				b.WriteString(text)
			}
		}
	}
}

// toInt converts the numeric types produced by JSON and YAML decoding to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
