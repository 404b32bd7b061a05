package upcoming

import (
	"context"
	"fmt"
	"time"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/occurrence"
	"github.com/tshepom/upcoming/recurrence"
	"github.com/tshepom/upcoming/storage"
)

// QueryParams selects the window and the optional calendar filter of an
// upcoming query.
type QueryParams struct {
	Period   Period
	Calendar string              // exact calendar name; empty means all
	Custom   *calendar.DateRange // required when Period is Custom
}

// Query resolves the window, loads the candidate events and their overrides
// from the store, and returns the merged occurrence list. Events are
// processed in the order the source returns them and per-event results are
// concatenated without cross-event re-sorting.
func Query(ctx context.Context, params QueryParams, source storage.EventSource, overrides storage.OccurrenceSource, engine *recurrence.Engine) ([]calendar.Occurrence, error) {
	window, err := ResolveWindow(params.Period, time.Now(), params.Custom)
	if err != nil {
		return nil, err
	}

	events, err := source.Events(ctx, window, params.Calendar)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	result := make([]calendar.Occurrence, 0)
	for _, event := range events {
		saved, err := overrides.Overrides(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("load overrides for event %d: %w", event.ID, err)
		}
		occurrences, err := occurrence.Materialize(event, window, saved, engine)
		if err != nil {
			return nil, err
		}
		result = append(result, occurrences...)
	}
	return result, nil
}

// QueryEvents is the pure form of Query: the caller supplies today, the
// candidate events and each event's overrides, keyed by event ID. It applies
// the calendar filter and the same per-event ordering as Query.
func QueryEvents(params QueryParams, today time.Time, events []calendar.Event, overridesByEvent map[int64][]calendar.Occurrence, engine *recurrence.Engine) ([]calendar.Occurrence, error) {
	window, err := ResolveWindow(params.Period, today, params.Custom)
	if err != nil {
		return nil, err
	}

	result := make([]calendar.Occurrence, 0)
	for _, event := range events {
		if params.Calendar != "" && event.Calendar != params.Calendar {
			continue
		}
		occurrences, err := occurrence.Materialize(event, window, overridesByEvent[event.ID], engine)
		if err != nil {
			return nil, err
		}
		result = append(result, occurrences...)
	}
	return result, nil
}
