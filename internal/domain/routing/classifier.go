package routing

import (
	"fmt"
	"log/slog"
)

// DefaultLabel is returned when no rule matches, the rule list is empty, or
// the request is not a well-formed structured object.
const DefaultLabel = "default"

// Binding pairs a label with the rule that selects it. Binding order is
// significant and equals declaration order in configuration.
type Binding struct {
	Label string
	Rule  Rule
}

// Classifier evaluates an ordered list of rule bindings against a request and
// returns the label of the first binding whose rule matches.
//
// A Classifier is immutable after construction; when rules are reloaded a new
// Classifier is built and swapped in wholesale. Classification is a pure
// function of the request, the binding list, and the configuration snapshot,
// with no side effects beyond logging.
type Classifier struct {
	bindings []Binding
	snap     Snapshot
	logger   *slog.Logger
}

// NewClassifier creates a Classifier over the given bindings.
// A nil logger defaults to slog's package default.
func NewClassifier(bindings []Binding, snap Snapshot, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	// Copy so later mutation of the caller's slice cannot reorder evaluation.
	owned := make([]Binding, len(bindings))
	copy(owned, bindings)

	return &Classifier{bindings: owned, snap: snap, logger: logger}
}

// Classify returns the label for the given decoded request body.
//
// Bindings are evaluated in declaration order and the first match wins.
// A malformed body (bare string, number, nil) classifies as DefaultLabel
// without error. A rule that fails during evaluation is logged and treated
// as non-matching; evaluation continues with the next binding. Classify
// never panics out to the caller's request path.
func (c *Classifier) Classify(body any) string {
	req, ok := ParseRequest(body)
	if !ok {
		return DefaultLabel
	}
	return c.ClassifyRequest(req)
}

// ClassifyRequest classifies an already-parsed request view.
func (c *Classifier) ClassifyRequest(req *Request) string {
	if req == nil {
		return DefaultLabel
	}

	for _, binding := range c.bindings {
		matched, err := c.evaluate(binding, req)
		if err != nil {
			c.logger.Warn("rule evaluation failed, treating as non-match",
				"label", binding.Label,
				"error", err.Error(),
			)
			continue
		}
		if matched {
			return binding.Label
		}
	}
	return DefaultLabel
}

// evaluate runs a single rule, converting panics into errors so one bad rule
// cannot break the classification pipeline.
func (c *Classifier) evaluate(binding Binding, req *Request) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = panicError{value: r}
		}
	}()
	return binding.Rule.Evaluate(req, c.snap)
}

// Bindings returns a copy of the classifier's binding list in evaluation order.
func (c *Classifier) Bindings() []Binding {
	out := make([]Binding, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// Labels returns the labels of all bindings in evaluation order.
// Duplicates are preserved.
func (c *Classifier) Labels() []string {
	labels := make([]string, len(c.bindings))
	for i, b := range c.bindings {
		labels[i] = b.Label
	}
	return labels
}

// panicError wraps a recovered panic value as an error.
type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("rule panicked: %v", e.value)
}
