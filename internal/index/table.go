// Package index manages the resource table of an overlay container.
//
// A Table is an immutable, insertion-ordered set of entries keyed by ID.
// Mutating methods return a new Table and leave the receiver unchanged, so a
// loaded Container can be planned against freely before anything is written.
package index

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
)

// Table holds container entries in insertion order.
type Table struct {
	entries []layout.Entry
	byID    map[string]int
}

// NewTable builds a table from entries in their stored order.
//
// Returns ErrInvalidID or ErrDuplicateID if an entry breaks the ID rules.
func NewTable(entries []layout.Entry) (*Table, error) {
	t := &Table{
		entries: make([]layout.Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := t.add(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(e layout.Entry) error {
	if err := layout.ValidateID(e.ID); err != nil {
		return err
	}
	if _, ok := t.byID[e.ID]; ok {
		return fmt.Errorf("%w: %q", overlaytype.ErrDuplicateID, e.ID)
	}
	t.byID[e.ID] = len(t.entries)
	t.entries = append(t.entries, e)
	return nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the entry with the given ID.
//
// IDs match byte for byte; there is no case folding.
func (t *Table) Lookup(id string) (layout.Entry, error) {
	i, ok := t.byID[id]
	if !ok {
		return layout.Entry{}, fmt.Errorf("%w: %q", overlaytype.ErrNotFound, id)
	}
	return t.entries[i], nil
}

// Contains reports whether an entry with the given ID exists.
func (t *Table) Contains(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// All returns an iterator over entries in insertion order.
func (t *Table) All() iter.Seq[layout.Entry] {
	return slices.Values(t.entries)
}

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []layout.Entry {
	return slices.Clone(t.entries)
}

// ByOffset returns a copy of the entries sorted by ascending DataOffset.
// Empty blocks sort ahead of a non-empty block at the same offset.
func (t *Table) ByOffset() []layout.Entry {
	sorted := slices.Clone(t.entries)
	slices.SortStableFunc(sorted, func(a, b layout.Entry) int {
		switch {
		case a.DataOffset < b.DataOffset:
			return -1
		case a.DataOffset > b.DataOffset:
			return 1
		default:
			return cmp.Compare(a.StoredLength, b.StoredLength)
		}
	})
	return sorted
}

// Insert returns a new table with e appended.
func (t *Table) Insert(e layout.Entry) (*Table, error) {
	next := t.clone(1)
	if err := next.add(e); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove returns a new table without the entry for id, along with the
// removed entry.
func (t *Table) Remove(id string) (*Table, layout.Entry, error) {
	removed, err := t.Lookup(id)
	if err != nil {
		return nil, layout.Entry{}, err
	}
	next := &Table{
		entries: make([]layout.Entry, 0, len(t.entries)-1),
		byID:    make(map[string]int, len(t.entries)-1),
	}
	for _, e := range t.entries {
		if e.ID == id {
			continue
		}
		next.byID[e.ID] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	return next, removed, nil
}

// WithEntries returns a new table holding updated copies of existing entries.
// Entries are matched by ID and keep their insertion position; the update
// must cover exactly the IDs already present.
func (t *Table) WithEntries(updated []layout.Entry) (*Table, error) {
	if len(updated) != len(t.entries) {
		return nil, fmt.Errorf("update has %d entries, table has %d", len(updated), len(t.entries))
	}
	next := t.clone(0)
	for _, e := range updated {
		i, ok := next.byID[e.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", overlaytype.ErrNotFound, e.ID)
		}
		next.entries[i] = e
	}
	return next, nil
}

func (t *Table) clone(extra int) *Table {
	next := &Table{
		entries: make([]layout.Entry, len(t.entries), len(t.entries)+extra),
		byID:    make(map[string]int, len(t.entries)+extra),
	}
	copy(next.entries, t.entries)
	for id, i := range t.byID {
		next.byID[id] = i
	}
	return next
}
