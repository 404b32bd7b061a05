package recurrence

import (
	"io"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tshepom/upcoming/calendar"
)

// Slot is one candidate (start, end) pair produced by expansion, before any
// persisted override is applied. End is always Start plus the event duration.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Engine expands events into candidate slots. Expansion is a pure function
// of its inputs; the optional cache is only a memoization layer.
type Engine struct {
	cache  *expansionCache
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	e := &Engine{
		config: config,
		logger: config.Logger,
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.CacheEnabled {
		e.cache = newExpansionCache(config.CacheConfig)
	}
	return e
}

// Close releases the cache's cleanup goroutine, if caching is enabled.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Expand generates the ordered candidate slots for an event with the given
// master start/end and recurrence spec, restricted to the window. Both window
// bounds are inclusive: a slot is produced when From <= slot start <= To.
//
// A nil spec means a one-off event: the single slot (start, end) is produced
// when the event overlaps the window (start < To and end > From), otherwise
// nothing.
func (e *Engine) Expand(start, end time.Time, spec *calendar.RecurrenceSpec, window calendar.DateRange) ([]Slot, error) {
	if spec == nil {
		if start.Before(window.To) && end.After(window.From) {
			return []Slot{{Start: start, End: end}}, nil
		}
		return nil, nil
	}

	if start.After(window.To) {
		return nil, nil
	}

	rule, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	if until, ok := rule.Until(); ok && dateOf(until).Before(dateOf(window.From)) {
		return nil, nil
	}

	if e.cache != nil {
		if slots, ok := e.cache.get(start, end, spec, window); ok {
			return slots, nil
		}
	}

	opt := rule.ROption(start)
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, &calendar.Error{
			Type:    calendar.ErrInvalidRecurrence,
			Message: "rule iteration rejected spec",
			Err:     err,
		}
	}

	starts := r.Between(window.From, window.To, true)
	if max := e.config.MaxOccurrences; max > 0 && len(starts) > max {
		e.logger.Warn("expansion truncated",
			"cap", max,
			"generated", len(starts))
		starts = starts[:max]
	}

	duration := end.Sub(start)
	slots := make([]Slot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, Slot{Start: s, End: s.Add(duration)})
	}

	if e.cache != nil {
		e.cache.set(start, end, spec, window, slots)
	}
	return slots, nil
}
