package cpu

import "fmt"

// Change describes a single field that differs between two snapshots.
type Change struct {
	Field    Field
	Previous uint64
	Current  uint64
}

// String formats the change as "PC 0100>0101".
func (c Change) String() string {
	return fmt.Sprintf("%s %s>%s", c.Field, c.Field.Format(c.Previous), c.Field.Format(c.Current))
}

// Store is the register double buffer. The current snapshot of one step
// becomes the previous snapshot of the next, with no gaps.
type Store struct {
	previous Snapshot
	current  Snapshot
	steps    uint64
}

// NewStore returns a store where previous and current are both the zero snapshot.
func NewStore() *Store {
	return &Store{}
}

// Advance shifts current into previous and installs s as current.
func (st *Store) Advance(s Snapshot) {
	st.previous = st.current
	st.current = s
	st.steps++
}

// Previous returns the snapshot before the last Advance.
func (st *Store) Previous() Snapshot {
	return st.previous
}

// Current returns the most recent snapshot.
func (st *Store) Current() Snapshot {
	return st.current
}

// Steps returns how many snapshots have been installed.
func (st *Store) Steps() uint64 {
	return st.steps
}

// Diff returns the fields whose values differ between previous and current,
// in display order. Before the first Advance it is empty.
func (st *Store) Diff() []Field {
	var fields []Field
	for _, f := range Fields {
		if st.previous.Value(f) != st.current.Value(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Changes is like Diff but carries both values of every differing field.
func (st *Store) Changes() []Change {
	var changes []Change
	for _, f := range Fields {
		prev, curr := st.previous.Value(f), st.current.Value(f)
		if prev != curr {
			changes = append(changes, Change{Field: f, Previous: prev, Current: curr})
		}
	}
	return changes
}

// Changed reports whether f differs between previous and current.
func (st *Store) Changed(f Field) bool {
	return st.previous.Value(f) != st.current.Value(f)
}
