package routing

import "sync/atomic"

// Router owns a pointer to the current routing Table and swaps in new tables
// atomically.
//
// Reads and reloads are linearizable: a Get issued before a reload completes
// sees only the old table, a Get issued after sees only the new one, and a
// Get concurrent with the swap sees one consistent table, never a mixture.
// The swap is the only point where readers and the single writer meet.
type Router struct {
	table atomic.Pointer[Table]
}

// NewRouter creates a Router publishing the given table. A nil table is
// published as an empty table so Get never dereferences nil.
func NewRouter(table *Table) *Router {
	r := &Router{}
	if table == nil {
		table, _ = BuildTable(nil)
	}
	r.table.Store(table)
	return r
}

// Get resolves a label through the current table's fallback chain.
// Returns nil only when the current table is empty.
func (r *Router) Get(label string) *Entry {
	return r.table.Load().Get(label)
}

// Table returns the currently published table.
func (r *Router) Table() *Table {
	return r.table.Load()
}

// Labels returns the sorted labels of the currently published table.
func (r *Router) Labels() []string {
	return r.table.Load().Labels()
}

// GroupByTarget returns the current table's target-to-labels grouping.
func (r *Router) GroupByTarget() map[string][]string {
	return r.table.Load().GroupByTarget()
}

// Reload builds a new table from entries and publishes it with a single
// atomic pointer replacement. If the build fails validation the attempted
// table is discarded and the currently published table remains authoritative.
func (r *Router) Reload(entries []Entry) error {
	table, err := BuildTable(entries)
	if err != nil {
		return err
	}
	r.table.Store(table)
	return nil
}

// Swap publishes an already-built table. A nil table is ignored.
func (r *Router) Swap(table *Table) {
	if table == nil {
		return
	}
	r.table.Store(table)
}
