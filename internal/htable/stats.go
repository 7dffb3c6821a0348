package htable

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Snapshot summarizes the collision history of the first Entries keys
// inserted, i.e. the table as it was when it was PercentFull full.
type Snapshot struct {
	PercentFull       int
	Entries           int
	AtHomePercent     float64
	AverageCollisions float64
	MaxCollisions     int
}

// Stats takes n snapshots at evenly spaced fill levels. A snapshot is only
// reported when its prefix is non-empty and already exists in the history,
// so a table that never got that full yields fewer than n snapshots.
func (t *Table) Stats(n int) ([]Snapshot, error) {
	if n < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"number of snapshots must be at least 1, got %d", n)
	}
	out := make([]Snapshot, 0, n)
	for i := 1; i <= n; i++ {
		percent := 100 * i / n
		entries := t.capacity * percent / 100
		if entries <= 0 || entries > t.count {
			continue
		}
		out = append(out, summarize(percent, t.history[:entries]))
	}
	return out, nil
}

func summarize(percent int, prefix []int) Snapshot {
	atHome, total, maxSeen := 0, 0, 0
	for _, c := range prefix {
		if c == 0 {
			atHome++
		}
		if c > maxSeen {
			maxSeen = c
		}
		total += c
	}
	n := float64(len(prefix))
	return Snapshot{
		PercentFull:       percent,
		Entries:           len(prefix),
		AtHomePercent:     float64(atHome) * 100 / n,
		AverageCollisions: float64(total) / n,
		MaxCollisions:     maxSeen,
	}
}
