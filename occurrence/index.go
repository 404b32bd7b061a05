package occurrence

import (
	"time"

	"github.com/tshepom/upcoming/calendar"
)

// Index looks up an event's persisted overrides by original slot identity.
// It is built once per event per query from a consistent read of the
// override store and is not safe for concurrent use.
type Index struct {
	entries []*indexEntry
}

type indexEntry struct {
	occ      calendar.Occurrence
	consumed bool
}

// NewIndex builds an index over the given overrides, preserving their order.
func NewIndex(overrides []calendar.Occurrence) *Index {
	entries := make([]*indexEntry, 0, len(overrides))
	for _, occ := range overrides {
		entries = append(entries, &indexEntry{occ: occ})
	}
	return &Index{entries: entries}
}

// Lookup returns the override whose original slot matches (start, end)
// exactly, marking it consumed so the leftover scan skips it. Matching is on
// the immutable original identity, never the current start/end.
func (x *Index) Lookup(start, end time.Time) (calendar.Occurrence, bool) {
	for _, e := range x.entries {
		if !e.consumed && e.occ.OriginalStart.Equal(start) && e.occ.OriginalEnd.Equal(end) {
			e.consumed = true
			return e.occ, true
		}
	}
	return calendar.Occurrence{}, false
}

// Unconsumed returns the overrides Lookup has not claimed, in insertion
// (creation) order.
func (x *Index) Unconsumed() []calendar.Occurrence {
	var out []calendar.Occurrence
	for _, e := range x.entries {
		if !e.consumed {
			out = append(out, e.occ)
		}
	}
	return out
}

// All returns every override in the index, in insertion order.
func (x *Index) All() []calendar.Occurrence {
	out := make([]calendar.Occurrence, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, e.occ)
	}
	return out
}

// Len returns the number of overrides in the index.
func (x *Index) Len() int { return len(x.entries) }
