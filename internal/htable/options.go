package htable

import "log/slog"

// InsertOutcome classifies an Insert call for observers.
type InsertOutcome int

const (
	Placed InsertOutcome = iota
	Incremented
	Rejected
)

func (o InsertOutcome) String() string {
	switch o {
	case Placed:
		return "placed"
	case Incremented:
		return "incremented"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Observer receives a callback for every Insert and Search. Implementations
// must not call back into the table.
type Observer interface {
	ObserveInsert(outcome InsertOutcome, collisions int)
	ObserveSearch(found bool)
}

type noopObserver struct{}

func (noopObserver) ObserveInsert(InsertOutcome, int) {}
func (noopObserver) ObserveSearch(bool)               {}

// Option configures a Table at construction.
type Option func(*Table)

func WithObserver(o Observer) Option {
	return func(t *Table) {
		if o != nil {
			t.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}
