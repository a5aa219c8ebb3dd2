package routing

import (
	"fmt"
	"sort"
	"sync"

	domainerrors "github.com/jbctechsolutions/modelrouter/internal/domain/errors"
)

// Built-in rule type names used in configuration declarations.
const (
	RuleTypeTokenThreshold = "token_threshold"
	RuleTypeModelSubstring = "model_substring"
	RuleTypeTagPresent     = "tag_present"
	RuleTypeToolSubstring  = "tool_substring"
)

// Snapshot carries the configuration state visible to rules at evaluation
// time. Built-in rules ignore it; custom rules may consult the currently
// published routing table.
type Snapshot struct {
	// Table is the routing table published at the time of evaluation. May be nil.
	Table *Table
}

// Rule is a named predicate over a request and a configuration snapshot.
// Implementations must be safe for concurrent use; built-in rules are
// immutable after construction.
type Rule interface {
	// Evaluate reports whether the rule matches the request.
	// An error is treated by the classifier as a non-match.
	Evaluate(req *Request, snap Snapshot) (bool, error)
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(req *Request, snap Snapshot) (bool, error)

// Evaluate calls f.
func (f RuleFunc) Evaluate(req *Request, snap Snapshot) (bool, error) {
	return f(req, snap)
}

// TokenCounter estimates the token count of text for a given model.
// The tokenizer infrastructure provides an encoding-aware implementation;
// a character-based heuristic is used when none is supplied.
type TokenCounter interface {
	CountTokens(model, text string) int
}

// Constructor builds a Rule from its configured parameters.
type Constructor func(params map[string]any) (Rule, error)

// Registry maps rule-type names to constructor functions.
// Built-in rule types are registered at creation; callers may register
// additional constructors to extend the rule set.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates a Registry pre-populated with the built-in rule types.
// The counter is shared by every token-threshold rule the registry builds;
// pass nil to use the character-based heuristic.
func NewRegistry(counter TokenCounter) *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}

	r.Register(RuleTypeTokenThreshold, func(params map[string]any) (Rule, error) {
		return NewTokenThresholdRule(params, counter)
	})
	r.Register(RuleTypeModelSubstring, NewModelSubstringRule)
	r.Register(RuleTypeTagPresent, NewTagPresentRule)
	r.Register(RuleTypeToolSubstring, NewToolSubstringRule)

	return r
}

// Register adds or replaces a constructor for the given rule-type name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Build constructs a rule of the given type from its parameters.
// Returns ErrUnknownRuleType if no constructor is registered for the name.
func (r *Registry) Build(ruleType string, params map[string]any) (Rule, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[ruleType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrUnknownRuleType, ruleType)
	}
	return ctor(params)
}

// Types returns the sorted list of registered rule-type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stringParam extracts a required non-empty string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrMissingRuleParam, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", domainerrors.ErrInvalidRuleParam, key)
	}
	return s, nil
}

// intParam extracts a required positive integer parameter.
func intParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domainerrors.ErrMissingRuleParam, key)
	}
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("%w: %q must be a positive integer", domainerrors.ErrInvalidRuleParam, key)
	}
	return n, nil
}
