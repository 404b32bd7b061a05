package occurrence

import (
	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/recurrence"
)

// Materialize produces the final ordered occurrence list for one event
// within the window. Generated slots come first, in chronological order,
// each replaced by its persisted override when one matches the slot's
// original identity, otherwise synthesized as a transient occurrence. After
// that come the leftover overrides the current rule no longer generates,
// kept when their current time still lies inside the window, in creation
// order. The two groups are deliberately not re-sorted together.
func Materialize(event calendar.Event, window calendar.DateRange, overrides []calendar.Occurrence, engine *recurrence.Engine) ([]calendar.Occurrence, error) {
	index := NewIndex(overrides)

	slots, err := engine.Expand(event.Start, event.End, event.Recurrence, window)
	if err != nil {
		return nil, err
	}

	occurrences := make([]calendar.Occurrence, 0, len(slots))
	for _, slot := range slots {
		if saved, ok := index.Lookup(slot.Start, slot.End); ok {
			occurrences = append(occurrences, saved)
			continue
		}
		occurrences = append(occurrences, transientFor(event, slot))
	}

	// One-off events produce at most their own slot; the leftover scan only
	// applies to rules that may have been edited after overrides were saved.
	if event.Recurrence == nil {
		return occurrences, nil
	}

	for _, saved := range index.Unconsumed() {
		if !saved.Start.Before(window.From) && !saved.End.After(window.To) {
			occurrences = append(occurrences, saved)
		}
	}
	return occurrences, nil
}

// transientFor synthesizes the default occurrence of a slot no override has
// claimed. Its identity equals the slot itself.
func transientFor(event calendar.Event, slot recurrence.Slot) calendar.Occurrence {
	return calendar.Occurrence{
		EventID:       event.ID,
		Title:         event.Title,
		Description:   event.Description,
		Start:         slot.Start,
		End:           slot.End,
		OriginalStart: slot.Start,
		OriginalEnd:   slot.End,
	}
}
