package routing

import (
	"fmt"
	"sort"

	domainerrors "github.com/jbctechsolutions/modelrouter/internal/domain/errors"
)

// Entry associates a label with a downstream target and optional metadata.
type Entry struct {
	Label    string
	Target   string
	Metadata map[string]any
}

// Table is an immutable snapshot mapping labels to routing entries.
//
// A Table is built once per configuration version by BuildTable and never
// mutated in place; on reload a new table is built off to the side and the
// old one is dropped once no reader holds a reference. Labels are unique
// within one table: when configuration declares the same label twice, the
// last declaration wins.
type Table struct {
	entries  []Entry
	index    map[string]int
	byTarget map[string][]string
}

// BuildTable validates entries and constructs a fully-formed, immutable Table.
// Entries with an empty label or target fail validation. Duplicate labels are
// resolved last-declaration-wins while preserving first-occurrence position
// for the fallback chain. The target-to-labels grouping is computed here,
// not per call.
func BuildTable(entries []Entry) (*Table, error) {
	deduped := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))

	for i, entry := range entries {
		if entry.Label == "" {
			return nil, fmt.Errorf("entry %d: %w", i, domainerrors.ErrEmptyLabel)
		}
		if entry.Target == "" {
			return nil, fmt.Errorf("entry %d (label %q): %w", i, entry.Label, domainerrors.ErrEmptyTarget)
		}

		if pos, seen := index[entry.Label]; seen {
			deduped[pos] = entry
			continue
		}
		index[entry.Label] = len(deduped)
		deduped = append(deduped, entry)
	}

	byTarget := make(map[string][]string)
	for _, entry := range deduped {
		byTarget[entry.Target] = append(byTarget[entry.Target], entry.Label)
	}

	return &Table{
		entries:  deduped,
		index:    index,
		byTarget: byTarget,
	}, nil
}

// Get looks up the entry for a label, applying the fallback chain on miss:
// exact label, then "default", then the first entry in declaration order.
// Returns nil only when the table has zero entries. A lookup miss is never
// an error; callers receiving nil should pass the original model through
// unrouted.
func (t *Table) Get(label string) *Entry {
	if t == nil || len(t.entries) == 0 {
		return nil
	}

	if pos, ok := t.index[label]; ok {
		return &t.entries[pos]
	}
	if pos, ok := t.index[DefaultLabel]; ok {
		return &t.entries[pos]
	}
	return &t.entries[0]
}

// Lookup returns the entry for the exact label without fallback.
func (t *Table) Lookup(label string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	pos, ok := t.index[label]
	if !ok {
		return nil, false
	}
	return &t.entries[pos], true
}

// Labels returns the sorted list of all labels in the table.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}

	labels := make([]string, 0, len(t.index))
	for label := range t.index {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// GroupByTarget returns the target-to-labels grouping computed at build time.
// The returned map is shared and must be treated as read-only.
func (t *Table) GroupByTarget() map[string][]string {
	if t == nil {
		return nil
	}
	return t.byTarget
}

// Entries returns the table's entries in declaration order.
// The returned slice is shared and must be treated as read-only.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
