// Package config provides configuration structs and utilities for the
// modelrouter engine. The routing file declares an ordered list of
// classification rules and an ordered list of routing entries; declaration
// order is significant for both.
package config

import (
	"errors"
	"fmt"
)

// RuleDeclaration declares a single classification rule binding.
type RuleDeclaration struct {
	// Label is the symbolic label returned when this rule matches.
	Label string `yaml:"label"`

	// Type names the rule constructor in the registry
	// (token_threshold, model_substring, tag_present, tool_substring, or a
	// custom registered type).
	Type string `yaml:"type"`

	// Params holds the rule's construction parameters.
	Params map[string]any `yaml:"params,omitempty"`
}

// RouteDeclaration declares a single routing entry mapping a label to a
// downstream target.
type RouteDeclaration struct {
	// Label is the symbolic label this entry resolves.
	Label string `yaml:"label"`

	// Target is the downstream model or destination identifier.
	Target string `yaml:"target"`

	// Metadata carries optional target-specific settings passed through
	// untouched to callers.
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// RoutingFile is the top-level routing configuration document.
type RoutingFile struct {
	// Rules is the ordered list of rule declarations. Evaluation order equals
	// declaration order and the first match wins.
	Rules []RuleDeclaration `yaml:"rules"`

	// Routes is the ordered list of routing entries. Declaration order
	// determines the first-entry fallback; a duplicate label is resolved
	// last-declaration-wins.
	Routes []RouteDeclaration `yaml:"routes"`
}

// Validate checks the routing file for structural errors.
// Per-rule parameter errors are not checked here; they surface during rule
// construction so that one bad rule does not block the rest of the file.
func (f *RoutingFile) Validate() error {
	if f == nil {
		return errors.New("routing configuration is nil")
	}

	var errs []error

	for i, rule := range f.Rules {
		if rule.Label == "" {
			errs = append(errs, fmt.Errorf("rule %d: label is required", i))
		}
		if rule.Type == "" {
			errs = append(errs, fmt.Errorf("rule %d (label %q): type is required", i, rule.Label))
		}
	}

	for i, route := range f.Routes {
		if route.Label == "" {
			errs = append(errs, fmt.Errorf("route %d: label is required", i))
		}
		if route.Target == "" {
			errs = append(errs, fmt.Errorf("route %d (label %q): target is required", i, route.Label))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// RuleLabels returns the rule labels in declaration order.
func (f *RoutingFile) RuleLabels() []string {
	if f == nil {
		return nil
	}
	labels := make([]string, len(f.Rules))
	for i, rule := range f.Rules {
		labels[i] = rule.Label
	}
	return labels
}
