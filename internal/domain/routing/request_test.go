package routing

import "testing"

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		wantOK bool
	}{
		{name: "object", body: map[string]any{"model": "gpt-4o"}, wantOK: true},
		{name: "empty object", body: map[string]any{}, wantOK: true},
		{name: "bare string", body: "hello", wantOK: false},
		{name: "number", body: 42.0, wantOK: false},
		{name: "nil", body: nil, wantOK: false},
		{name: "slice", body: []any{"a"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseRequest(tt.body)
			if ok != tt.wantOK {
				t.Errorf("ParseRequest(%v) ok = %v, want %v", tt.body, ok, tt.wantOK)
			}
		})
	}
}

func TestParseRequestJSON(t *testing.T) {
	req, ok := ParseRequestJSON([]byte(`{"model":"claude-3-5-haiku-20241022"}`))
	if !ok {
		t.Fatal("ParseRequestJSON returned false for valid object")
	}
	if got := req.Model(); got != "claude-3-5-haiku-20241022" {
		t.Errorf("Model() = %q", got)
	}

	if _, ok := ParseRequestJSON([]byte(`"just a string"`)); ok {
		t.Error("ParseRequestJSON should reject a bare JSON string")
	}
	if _, ok := ParseRequestJSON([]byte(`not json`)); ok {
		t.Error("ParseRequestJSON should reject invalid JSON")
	}
}

func TestRequest_Has(t *testing.T) {
	req, _ := ParseRequest(map[string]any{
		"thinking": false,
		"zero":     0,
		"empty":    "",
		"null":     nil,
	})

	// Presence, not truthiness, is what counts.
	for _, key := range []string{"thinking", "zero", "empty", "null"} {
		if !req.Has(key) {
			t.Errorf("Has(%q) = false, want true", key)
		}
	}
	if req.Has("absent") {
		t.Error("Has(absent) = true, want false")
	}
}

func TestRequest_ExplicitTokenCount(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		want      int
		wantFound bool
	}{
		{
			name:      "token_count field",
			body:      map[string]any{"token_count": 15000.0},
			want:      15000,
			wantFound: true,
		},
		{
			name:      "largest of several fields wins",
			body:      map[string]any{"token_count": 100.0, "input_tokens": 9000.0, "prompt_tokens": 50.0},
			want:      9000,
			wantFound: true,
		},
		{
			name:      "integer value",
			body:      map[string]any{"input_tokens": 1234},
			want:      1234,
			wantFound: true,
		},
		{
			name:      "non-numeric value ignored",
			body:      map[string]any{"token_count": "lots"},
			want:      0,
			wantFound: false,
		},
		{
			name:      "no fields",
			body:      map[string]any{"model": "gpt-4o"},
			want:      0,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := ParseRequest(tt.body)
			got, found := req.ExplicitTokenCount()
			if got != tt.want || found != tt.wantFound {
				t.Errorf("ExplicitTokenCount() = (%d, %v), want (%d, %v)", got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestRequest_TextContent(t *testing.T) {
	req, _ := ParseRequest(map[string]any{
		"system": "be brief",
		"messages": []any{
			map[string]any{"role": "user", "content": "hello"},
			map[string]any{"role": "assistant", "content": []any{
				map[string]any{"type": "text", "text": " world"},
				map[string]any{"type": "image", "source": map[string]any{"data": "AAAA"}},
				map[string]any{"type": "tool_result", "content": "ignored"},
			}},
			"not a message",
		},
	})

	if got := req.TextContent(); got != "be brief"+"hello"+" world" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestRequest_TextContentExcludesImages(t *testing.T) {
	req, _ := ParseRequest(map[string]any{
		"messages": []any{
			map[string]any{"role": "user", "content": []any{
				map[string]any{"type": "image", "text": "should not count"},
			}},
		},
	})

	if got := req.TextContent(); got != "" {
		t.Errorf("TextContent() = %q, want empty for image-only content", got)
	}
}

func TestRequest_Messages(t *testing.T) {
	req, _ := ParseRequest(map[string]any{
		"messages": []any{
			map[string]any{"role": "user", "content": "hi"},
			map[string]any{"role": "assistant", "content": "hello"},
		},
	})

	msgs := req.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() returned %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected roles: %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestRequest_NilReceiver(t *testing.T) {
	var req *Request

	if req.Model() != "" {
		t.Error("nil request Model() should be empty")
	}
	if req.Has("anything") {
		t.Error("nil request Has() should be false")
	}
	if req.TextContent() != "" {
		t.Error("nil request TextContent() should be empty")
	}
	if msgs := req.Messages(); msgs != nil {
		t.Error("nil request Messages() should be nil")
	}
}
