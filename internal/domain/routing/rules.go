package routing

import "strings"

// heuristicCharsPerToken is the divisor used when no tokenizer-backed counter
// is available. Three characters per token errs on the side of overcounting
// so that large requests are not misrouted below a threshold.
const heuristicCharsPerToken = 3

// heuristicCounter estimates tokens from character length alone.
type heuristicCounter struct{}

// CountTokens returns len(text)/3 as a coarse token estimate.
func (heuristicCounter) CountTokens(model, text string) int {
	if text == "" {
		return 0
	}
	return len(text) / heuristicCharsPerToken
}

// TokenThresholdRule matches when the request's estimated token count exceeds
// a configured threshold. The estimate is the maximum of any explicit token
// count fields on the request and a tokenizer-derived count of its textual
// content.
type TokenThresholdRule struct {
	threshold int
	counter   TokenCounter
}

// NewTokenThresholdRule constructs a token-threshold rule.
// Params: "threshold" (positive integer). A nil counter falls back to the
// character-based heuristic.
func NewTokenThresholdRule(params map[string]any, counter TokenCounter) (Rule, error) {
	threshold, err := intParam(params, "threshold")
	if err != nil {
		return nil, err
	}
	if counter == nil {
		counter = heuristicCounter{}
	}
	return &TokenThresholdRule{threshold: threshold, counter: counter}, nil
}

// Evaluate reports whether the estimated token count exceeds the threshold.
func (r *TokenThresholdRule) Evaluate(req *Request, _ Snapshot) (bool, error) {
	count, _ := req.ExplicitTokenCount()

	// Early out: an explicit count over the threshold decides the match
	// without paying for encoding.
	if count > r.threshold {
		return true, nil
	}

	if est := r.counter.CountTokens(req.Model(), req.TextContent()); est > count {
		count = est
	}
	return count > r.threshold, nil
}

// Threshold returns the configured token threshold.
func (r *TokenThresholdRule) Threshold() int {
	return r.threshold
}

// ModelSubstringRule matches when the request's model field contains a
// configured substring. Matching is case-sensitive simple containment;
// no wildcard or regex semantics.
type ModelSubstringRule struct {
	substring string
}

// NewModelSubstringRule constructs a model-name-substring rule.
// Params: "substring" (non-empty string).
func NewModelSubstringRule(params map[string]any) (Rule, error) {
	substring, err := stringParam(params, "substring")
	if err != nil {
		return nil, err
	}
	return &ModelSubstringRule{substring: substring}, nil
}

// Evaluate reports whether the model name contains the substring.
func (r *ModelSubstringRule) Evaluate(req *Request, _ Snapshot) (bool, error) {
	return strings.Contains(req.Model(), r.substring), nil
}

// TagPresentRule matches when a configured top-level field key is present on
// the request at all. Presence alone triggers the match: false, 0, "" and
// null values all count.
type TagPresentRule struct {
	key string
}

// NewTagPresentRule constructs a tag-presence rule.
// Params: "key" (non-empty string).
func NewTagPresentRule(params map[string]any) (Rule, error) {
	key, err := stringParam(params, "key")
	if err != nil {
		return nil, err
	}
	return &TagPresentRule{key: key}, nil
}

// Evaluate reports whether the configured key is present on the request.
func (r *TagPresentRule) Evaluate(req *Request, _ Snapshot) (bool, error) {
	return req.Has(r.key), nil
}

// ToolSubstringRule matches when any declared tool's name contains a
// configured substring, case-insensitively. Tool names are checked at both
// the direct "name" field and the nested "function.name" field to support
// the two common tool-declaration shapes; a tool entry that is itself a bare
// string is matched against directly.
type ToolSubstringRule struct {
	substring string
}

// NewToolSubstringRule constructs a tool-name-substring rule.
// Params: "substring" (non-empty string).
func NewToolSubstringRule(params map[string]any) (Rule, error) {
	substring, err := stringParam(params, "substring")
	if err != nil {
		return nil, err
	}
	return &ToolSubstringRule{substring: strings.ToLower(substring)}, nil
}

// Evaluate reports whether any declared tool name contains the substring.
func (r *ToolSubstringRule) Evaluate(req *Request, _ Snapshot) (bool, error) {
	for _, tool := range req.Tools() {
		if r.matches(tool) {
			return true, nil
		}
	}
	return false, nil
}

// matches checks a single tool declaration against the substring.
func (r *ToolSubstringRule) matches(tool any) bool {
	switch t := tool.(type) {
	case string:
		return strings.Contains(strings.ToLower(t), r.substring)
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			if strings.Contains(strings.ToLower(name), r.substring) {
				return true
			}
		}
		if fn, ok := t["function"].(map[string]any); ok {
			if name, ok := fn["name"].(string); ok {
				return strings.Contains(strings.ToLower(name), r.substring)
			}
		}
	}
	return false
}
